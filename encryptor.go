package bgv

import (
	"fmt"
	"math"

	"github.com/tuneinsight/bgv/ring"
	"github.com/tuneinsight/bgv/utils/sampling"
)

// Encryptor is a structure that encrypts plaintexts with a public key. The
// key is read-only; a single Encryptor can serve concurrent calls as long as
// each call gets its own PRNG.
type Encryptor struct {
	params Parameters
	pk     *PublicKey
}

// NewEncryptor creates a new Encryptor from the provided parameters and
// public key.
func NewEncryptor(params Parameters, pk *PublicKey) *Encryptor {
	return &Encryptor{params: params, pk: pk}
}

// EncryptNew encrypts pt and returns the result in a new Ciphertext at the
// maximum level:
//
//	(c0, c1) = (b*u + e0 + pt, a*u + e1)
//
// with u drawn from the secret distribution and e0, e1 from the error
// distribution of the parameters, using the provided PRNG.
func (enc *Encryptor) EncryptNew(pt *Plaintext, prng sampling.PRNG) (ct *Ciphertext, err error) {

	params := enc.params

	if pt.Level != params.MaxLevel() {
		return nil, fmt.Errorf("%w: plaintext at level %d but encryption happens at level %d", ErrLevelMismatch, pt.Level, params.MaxLevel())
	}

	ct = enc.EncryptZeroNew(prng)

	r := params.rings[0]
	r.Add(ct.Value[0], pt.Value, ct.Value[0])

	return ct, nil
}

// EncryptZeroNew returns a fresh encryption of zero at the maximum level.
func (enc *Encryptor) EncryptZeroNew(prng sampling.PRNG) (ct *Ciphertext) {

	params := enc.params
	r := params.rings[0]

	uSampler, err := ring.NewSampler(prng, r, params.Xs())
	if err != nil {
		panic(fmt.Errorf("cannot EncryptZeroNew: %w", err))
	}

	eSampler, err := ring.NewSampler(prng, r, params.Xe())
	if err != nil {
		panic(fmt.Errorf("cannot EncryptZeroNew: %w", err))
	}

	u := uSampler.ReadNew()

	ct = NewCiphertext(params, 1, params.MaxLevel())

	// c0 = b*u + e0
	r.MulPoly(enc.pk.Value[0], u, ct.Value[0])
	eSampler.ReadAndAdd(ct.Value[0])

	// c1 = a*u + e1
	r.MulPoly(enc.pk.Value[1], u, ct.Value[1])
	eSampler.ReadAndAdd(ct.Value[1])

	ct.Noise = noiseFresh(params)

	return
}

// noiseFresh returns the noise estimate of a fresh encryption: the noise
// term is e*u + e0 + e1*s, dominated by the two small products.
func noiseFresh(params Parameters) float64 {
	return params.ErrorBound() * (1 + 2*math.Sqrt(float64(params.N())))
}
