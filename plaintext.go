package bgv

import (
	"github.com/tuneinsight/bgv/ring"
)

// Plaintext is a structure that stores an encoded message: a polynomial with
// coefficients scaled by Delta = floor(q/t) at its level. It is a value
// object: encode, encrypt and decrypt never retain references to it.
type Plaintext struct {
	Value ring.Poly
	Level int
}

// NewPlaintext creates a new zero Plaintext at the given level.
func NewPlaintext(p Parameters, level int) *Plaintext {
	return &Plaintext{
		Value: p.RingAt(level).NewPoly(),
		Level: level,
	}
}

// CopyNew creates a deep copy of the receiver.
func (pt *Plaintext) CopyNew() *Plaintext {
	return &Plaintext{
		Value: pt.Value.CopyNew(),
		Level: pt.Level,
	}
}
