package ring

import (
	"encoding/binary"

	"github.com/tuneinsight/bgv/utils/sampling"
)

// UniformSampler wraps a sampling.PRNG and represents the state of a sampler
// of uniform polynomials.
type UniformSampler struct {
	*baseSampler
	*randomBuffer
}

// NewUniformSampler creates a new instance of UniformSampler from a PRNG and
// ring definition.
func NewUniformSampler(prng sampling.PRNG, baseRing *Ring) (u *UniformSampler) {
	u = new(UniformSampler)
	u.baseSampler = &baseSampler{prng: prng, baseRing: baseRing}
	u.randomBuffer = newRandomBuffer()
	return
}

// Read samples a new polynomial with coefficients following a uniform
// distribution over [0, q-1] on pol.
func (u *UniformSampler) Read(pol Poly) {
	u.read(pol, func(a, b, c uint64) uint64 {
		return b
	})
}

// ReadNew samples a new polynomial with coefficients following a uniform
// distribution over [0, q-1].
func (u *UniformSampler) ReadNew() (pol Poly) {
	pol = u.baseRing.NewPoly()
	u.Read(pol)
	return
}

// ReadAndAdd samples a uniform polynomial and adds it on pol.
func (u *UniformSampler) ReadAndAdd(pol Poly) {
	u.read(pol, func(a, b, c uint64) uint64 {
		return CRed(a+b, c)
	})
}

func (u *UniformSampler) read(pol Poly, f func(a, b, c uint64) uint64) {

	u.baseRing.assertCompatible(pol)

	var randomUint uint64

	prng := u.prng
	N := u.baseRing.N
	q := u.baseRing.Modulus
	mask := u.baseRing.Mask

	buffer := u.randomBufferN
	byteArrayLength := len(buffer)

	ptr := u.ptr
	if ptr == 0 || ptr == byteArrayLength {
		if _, err := prng.Read(buffer); err != nil {
			// Sanity check, this error should not happen.
			panic(err)
		}
		ptr = 0
	}

	coeffs := pol.Coeffs

	for i := 0; i < N; i++ {

		// Samples an integer in [0, q-1] by rejection
		for {

			// Refills the buffer if it runs empty
			if ptr == byteArrayLength {
				if _, err := prng.Read(buffer); err != nil {
					// Sanity check, this error should not happen.
					panic(err)
				}
				ptr = 0
			}

			randomUint = binary.BigEndian.Uint64(buffer[ptr:ptr+8]) & mask
			ptr += 8

			if randomUint < q {
				break
			}
		}

		coeffs[i] = f(coeffs[i], randomUint, q)
	}

	u.ptr = ptr
}

// randInt64 samples a uniform variable in the range [0, mask], where mask is
// of the form 2^n-1, with n in [0, 64].
func randInt64(prng sampling.PRNG, mask uint64) uint64 {
	randomBytes := make([]byte, 8)
	if _, err := prng.Read(randomBytes); err != nil {
		// Sanity check, this error should not happen.
		panic(err)
	}
	return mask & binary.BigEndian.Uint64(randomBytes)
}

// RandUniform samples a uniform variable in the range [0, mask] until it
// falls in the range [0, v-1]. mask needs to be of the form 2^n-1.
func RandUniform(prng sampling.PRNG, v uint64, mask uint64) (randomInt uint64) {
	for {
		randomInt = randInt64(prng, mask)
		if randomInt < v {
			return randomInt
		}
	}
}
