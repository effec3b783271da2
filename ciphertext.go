package bgv

import (
	"github.com/tuneinsight/bgv/ring"
)

// Ciphertext is a structure that stores an encrypted message as a list of
// polynomials (two for fresh and relinearized ciphertexts, three right after
// a multiplication), tagged with its current level in the modulus chain and
// an estimate of the magnitude of its noise term.
//
// The ciphertext decrypts correctly as long as the actual noise magnitude
// stays below q_level/(2t); the Noise field tracks a deterministic estimate
// of it, updated by every evaluator operation.
type Ciphertext struct {
	Value []ring.Poly
	Level int
	Noise float64
}

// NewCiphertext creates a new zero Ciphertext of the given degree at the
// given level.
func NewCiphertext(p Parameters, degree, level int) *Ciphertext {
	r := p.RingAt(level)
	value := make([]ring.Poly, degree+1)
	for i := range value {
		value[i] = r.NewPoly()
	}
	return &Ciphertext{Value: value, Level: level}
}

// Degree returns the degree of the ciphertext: the number of polynomials
// minus one.
func (ct *Ciphertext) Degree() int {
	return len(ct.Value) - 1
}

// CopyNew creates a deep copy of the receiver.
func (ct *Ciphertext) CopyNew() *Ciphertext {
	value := make([]ring.Poly, len(ct.Value))
	for i := range value {
		value[i] = ct.Value[i].CopyNew()
	}
	return &Ciphertext{Value: value, Level: ct.Level, Noise: ct.Noise}
}
