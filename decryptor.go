package bgv

import (
	"fmt"
)

// Decryptor is a structure that decrypts ciphertexts with a secret key. The
// key is read-only and the Decryptor can be shared by concurrent calls.
type Decryptor struct {
	params Parameters
	sk     *SecretKey
}

// NewDecryptor creates a new Decryptor from the provided parameters and
// secret key.
func NewDecryptor(params Parameters, sk *SecretKey) *Decryptor {
	return &Decryptor{params: params, sk: sk}
}

// DecryptNew decrypts ct and returns the result in a new Plaintext at the
// ciphertext's level, along with a noise overflow diagnostic.
//
// The diagnostic is true when the ciphertext's tracked noise estimate
// exceeds the correctness bound q_level/(2t): decryption still executes, but
// the returned plaintext must be considered unreliable.
func (d *Decryptor) DecryptNew(ct *Ciphertext) (pt *Plaintext, noiseOverflow bool) {
	pt = NewPlaintext(d.params, ct.Level)
	noiseOverflow = d.Decrypt(ct, pt)
	return
}

// Decrypt decrypts ct on pt, which must be at the same level, and returns
// the noise overflow diagnostic. The decryption computes
// c0 + c1*s + c2*s^2 modulo the modulus of the ciphertext's level; the
// plaintext stays at the scheme's scale and is mapped back to integers by
// the Encoder.
func (d *Decryptor) Decrypt(ct *Ciphertext, pt *Plaintext) (noiseOverflow bool) {

	params := d.params

	if pt.Level != ct.Level {
		panic(fmt.Errorf("cannot Decrypt: plaintext level %d does not match ciphertext level %d", pt.Level, ct.Level))
	}

	if ct.Degree() < 1 || ct.Degree() > 2 {
		panic(fmt.Errorf("cannot Decrypt: ciphertext degree %d not in [1, 2]", ct.Degree()))
	}

	r := params.RingAt(ct.Level)
	s := d.sk.AtLevel(params, ct.Level)

	// pt = c0 + c1*s (+ c2*s^2)
	pt.Value.Copy(ct.Value[0])
	r.MulPolyThenAdd(ct.Value[1], s, pt.Value)

	if ct.Degree() == 2 {
		s2 := r.NewPoly()
		r.MulPoly(s, s, s2)
		r.MulPolyThenAdd(ct.Value[2], s2, pt.Value)
	}

	return ct.Noise > params.NoiseBound(ct.Level)
}
