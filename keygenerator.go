package bgv

import (
	"fmt"

	"github.com/tuneinsight/bgv/ring"
	"github.com/tuneinsight/bgv/utils/sampling"
)

// KeyGenerator is a structure that generates the secret key, public key and
// relinearization key of the scheme. All generation methods take an explicit
// PRNG; the generator itself holds no randomness state and can be shared.
type KeyGenerator struct {
	params Parameters
}

// NewKeyGenerator creates a new KeyGenerator for the provided parameters.
func NewKeyGenerator(params Parameters) *KeyGenerator {
	return &KeyGenerator{params: params}
}

// GenKeysNew generates a fresh secret key, public key and relinearization
// key from the provided PRNG.
func (kgen *KeyGenerator) GenKeysNew(prng sampling.PRNG) (sk *SecretKey, pk *PublicKey, rlk *RelinearizationKey) {
	sk = kgen.GenSecretKeyNew(prng)
	pk = kgen.GenPublicKeyNew(sk, prng)
	rlk = kgen.GenRelinearizationKeyNew(sk, prng)
	return
}

// GenSecretKeyNew generates a new secret key: a polynomial with small
// coefficients drawn from the secret distribution, stored reduced modulo
// every modulus of the chain.
func (kgen *KeyGenerator) GenSecretKeyNew(prng sampling.PRNG) (sk *SecretKey) {

	params := kgen.params
	rTop := params.rings[0]

	sampler, err := ring.NewSampler(prng, rTop, params.Xs())
	if err != nil {
		// the distribution was validated at parameter construction
		panic(fmt.Errorf("cannot GenSecretKeyNew: %w", err))
	}

	sTop := sampler.ReadNew()

	sk = &SecretKey{Value: make([]ring.Poly, len(params.rings))}
	sk.Value[0] = sTop

	for i := 1; i < len(params.rings); i++ {
		ri := params.rings[i]
		si := ri.NewPoly()
		for j, c := range sTop.Coeffs {
			if centered := rTop.CenterCoeff(c); centered < 0 {
				si.Coeffs[j] = ri.Modulus - uint64(-centered)
			} else {
				si.Coeffs[j] = uint64(centered)
			}
		}
		sk.Value[i] = si
	}

	return
}

// GenPublicKeyNew generates a new public key (b, a) from the provided secret
// key, with a uniform and b = -(a*s) + e modulo the top modulus.
func (kgen *KeyGenerator) GenPublicKeyNew(sk *SecretKey, prng sampling.PRNG) (pk *PublicKey) {

	params := kgen.params
	r := params.rings[0]

	a := ring.NewUniformSampler(prng, r).ReadNew()

	noise, err := ring.NewSampler(prng, r, params.Xe())
	if err != nil {
		panic(fmt.Errorf("cannot GenPublicKeyNew: %w", err))
	}

	b := r.NewPoly()
	r.MulPoly(a, sk.Value[0], b)
	r.Neg(b, b)
	noise.ReadAndAdd(b)

	pk = &PublicKey{Value: [2]ring.Poly{b, a}}

	return
}

// GenRelinearizationKeyNew generates a new relinearization key from the
// provided secret key: for every modulus of the chain and every base-B digit
// j, an encryption of B^j * s^2 under s.
func (kgen *KeyGenerator) GenRelinearizationKeyNew(sk *SecretKey, prng sampling.PRNG) (rlk *RelinearizationKey) {

	params := kgen.params
	base := params.DigitBase()

	rlk = &RelinearizationKey{
		Base: base,
		Keys: make([][][2]ring.Poly, len(params.rings)),
	}

	for i, r := range params.rings {

		s := sk.Value[i]

		s2 := r.NewPoly()
		r.MulPoly(s, s, s2)

		uniform := ring.NewUniformSampler(prng, r)
		noise, err := ring.NewSampler(prng, r, params.Xe())
		if err != nil {
			panic(fmt.Errorf("cannot GenRelinearizationKeyNew: %w", err))
		}

		digits := params.DigitCount(params.depth - i)

		keys := make([][2]ring.Poly, digits)

		pw := uint64(1) // B^j mod q
		for j := 0; j < digits; j++ {

			a := uniform.ReadNew()

			b := r.NewPoly()
			r.MulPoly(a, s, b)
			r.Neg(b, b)
			noise.ReadAndAdd(b)

			buff := r.NewPoly()
			r.MulScalar(s2, pw, buff)
			r.Add(b, buff, b)

			keys[j] = [2]ring.Poly{b, a}

			pw = ring.BRed(pw, base%r.Modulus, r.Modulus, r.BRedParams)
		}

		rlk.Keys[i] = keys
	}

	return
}
