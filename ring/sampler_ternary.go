package ring

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/tuneinsight/bgv/utils/sampling"
)

const ternarySamplerPrecision = uint64(56)

// TernarySampler keeps the state of a polynomial sampler in the ternary
// distribution, parameterized either by the probability of a coefficient
// being non-zero or by the exact Hamming weight of the sampled polynomial.
type TernarySampler struct {
	*baseSampler
	p  uint64 // non-zero probability in fixed point, 0 if hw is set
	hw int
}

// NewTernarySampler creates a new instance of TernarySampler from a PRNG, a
// ring definition and ternary distribution parameters.
func NewTernarySampler(prng sampling.PRNG, baseRing *Ring, X Ternary) (*TernarySampler, error) {

	ts := &TernarySampler{baseSampler: &baseSampler{prng: prng, baseRing: baseRing}}

	switch {
	case X.P != 0 && X.H == 0:
		if X.P < 0 || X.P > 1 {
			return nil, fmt.Errorf("invalid ternary distribution: P=%f must lie in [0, 1]", X.P)
		}
		ts.p = uint64(X.P * float64(uint64(1)<<ternarySamplerPrecision))
	case X.P == 0 && X.H != 0:
		if X.H < 0 || X.H > baseRing.N {
			return nil, fmt.Errorf("invalid ternary distribution: H=%d must lie in [1, N=%d]", X.H, baseRing.N)
		}
		ts.hw = X.H
	default:
		return nil, fmt.Errorf("invalid ternary distribution: exactly one of the fields P or H must be set")
	}

	return ts, nil
}

// Read samples a ternary polynomial on pol.
func (ts *TernarySampler) Read(pol Poly) {
	ts.read(pol, func(a, b, c uint64) uint64 {
		return b
	})
}

// ReadNew samples a new ternary polynomial.
func (ts *TernarySampler) ReadNew() (pol Poly) {
	pol = ts.baseRing.NewPoly()
	ts.Read(pol)
	return
}

// ReadAndAdd samples a ternary polynomial and adds it on pol.
func (ts *TernarySampler) ReadAndAdd(pol Poly) {
	ts.read(pol, func(a, b, c uint64) uint64 {
		return CRed(a+b, c)
	})
}

func (ts *TernarySampler) read(pol Poly, f func(a, b, c uint64) uint64) {

	ts.baseRing.assertCompatible(pol)

	if ts.hw != 0 {
		ts.readSparse(pol, f)
		return
	}

	prng := ts.prng
	q := ts.baseRing.Modulus

	randomBytes := make([]byte, 8)

	for i := range pol.Coeffs {

		if _, err := prng.Read(randomBytes); err != nil {
			// Sanity check, this error should not happen.
			panic(err)
		}

		random := binary.BigEndian.Uint64(randomBytes)

		var coeff uint64
		if random>>(64-ternarySamplerPrecision) < ts.p {
			// non-zero coefficient, the low bit decides the sign
			if random&1 == 1 {
				coeff = 1
			} else {
				coeff = q - 1
			}
		}

		pol.Coeffs[i] = f(pol.Coeffs[i], coeff, q)
	}
}

// readSparse samples a uniform ternary polynomial of exact Hamming weight hw
// with a partial Fisher-Yates shuffle over the coefficient indices.
func (ts *TernarySampler) readSparse(pol Poly, f func(a, b, c uint64) uint64) {

	prng := ts.prng
	q := ts.baseRing.Modulus
	N := ts.baseRing.N

	index := make([]int, N)
	for i := range index {
		index[i] = i
	}

	coeffs := make([]uint64, N)

	signBytes := make([]byte, 1)

	for i := 0; i < ts.hw; i++ {

		remaining := uint64(N - i)
		mask := uint64(1)<<uint(bits.Len64(remaining)) - 1
		j := int(RandUniform(prng, remaining, mask)) + i

		index[i], index[j] = index[j], index[i]

		if _, err := prng.Read(signBytes); err != nil {
			// Sanity check, this error should not happen.
			panic(err)
		}

		if signBytes[0]&1 == 1 {
			coeffs[index[i]] = 1
		} else {
			coeffs[index[i]] = q - 1
		}
	}

	for i := range pol.Coeffs {
		pol.Coeffs[i] = f(pol.Coeffs[i], coeffs[i], q)
	}
}
