package ring

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuneinsight/bgv/utils/buffer"
	"github.com/tuneinsight/bgv/utils/sampling"
)

var testModuli = []uint64{12289, 1153, 0x7fffffd8001}

func testString(op string, N int, q uint64) string {
	return fmt.Sprintf("%s/N=%d/q=%d", op, N, q)
}

func newTestRing(t *testing.T, N int, q uint64) *Ring {
	r, err := NewRing(N, q)
	require.NoError(t, err)
	return r
}

func newTestPRNG(t *testing.T) sampling.PRNG {
	prng, err := sampling.NewKeyedPRNG([]byte{'r', 'i', 'n', 'g'})
	require.NoError(t, err)
	return prng
}

func TestNewRing(t *testing.T) {

	// N not a power of two
	_, err := NewRing(12, 12289)
	require.Error(t, err)

	// even modulus
	_, err = NewRing(16, 4096)
	require.Error(t, err)

	// modulus too large
	_, err = NewRing(16, 1<<62)
	require.Error(t, err)

	r, err := NewRing(16, 12289)
	require.NoError(t, err)
	require.Equal(t, 16, r.N)
	require.Equal(t, uint64(12289), r.Modulus)
}

func TestRingArithmetic(t *testing.T) {

	for _, q := range testModuli {

		N := 32
		r := newTestRing(t, N, q)
		prng := newTestPRNG(t)
		uniform := NewUniformSampler(prng, r)

		p1 := uniform.ReadNew()
		p2 := uniform.ReadNew()

		t.Run(testString("Add/Sub", N, q), func(t *testing.T) {

			p3 := r.NewPoly()
			r.Add(p1, p2, p3)

			for i := range p3.Coeffs {
				require.Less(t, p3.Coeffs[i], q)
			}

			// (p1 + p2) - p2 == p1
			r.Sub(p3, p2, p3)
			require.True(t, p3.Equal(p1))
		})

		t.Run(testString("Neg", N, q), func(t *testing.T) {

			p3 := r.NewPoly()
			r.Neg(p1, p3)
			r.Add(p1, p3, p3)

			for i := range p3.Coeffs {
				require.Equal(t, uint64(0), p3.Coeffs[i])
			}
		})

		t.Run(testString("MulScalar", N, q), func(t *testing.T) {

			p3 := r.NewPoly()
			r.MulScalar(p1, 3, p3)

			want := r.NewPoly()
			r.Add(p1, p1, want)
			r.Add(want, p1, want)

			require.True(t, p3.Equal(want))
		})

		t.Run(testString("MulPoly", N, q), func(t *testing.T) {

			p3 := r.NewPoly()
			r.MulPoly(p1, p2, p3)

			require.True(t, p3.Equal(mulPolyBigint(r, p1, p2)))

			// aliased output
			p4 := p1.CopyNew()
			r.MulPoly(p4, p2, p4)
			require.True(t, p4.Equal(p3))
		})

		t.Run(testString("MulPolyThenAdd", N, q), func(t *testing.T) {

			p3 := p2.CopyNew()
			r.MulPolyThenAdd(p1, p2, p3)

			want := r.NewPoly()
			r.MulPoly(p1, p2, want)
			r.Add(want, p2, want)

			require.True(t, p3.Equal(want))
		})

		t.Run(testString("BigintRoundTrip", N, q), func(t *testing.T) {

			coeffs := make([]*big.Int, N)
			for i := range coeffs {
				coeffs[i] = new(big.Int)
			}

			r.PolyToBigintCentered(p1, coeffs)

			half := new(big.Int).SetUint64(q >> 1)
			for i := range coeffs {
				require.LessOrEqual(t, coeffs[i].CmpAbs(half), 0)
			}

			p3 := r.NewPoly()
			r.SetCoefficientsBigint(coeffs, p3)
			require.True(t, p3.Equal(p1))
		})
	}
}

// mulPolyBigint is an independent negacyclic convolution over big.Int used
// as a reference for the Ring multiplier.
func mulPolyBigint(r *Ring, p1, p2 Poly) (p3 Poly) {

	N := r.N
	q := new(big.Int).SetUint64(r.Modulus)

	acc := make([]*big.Int, N)
	for i := range acc {
		acc[i] = new(big.Int)
	}

	tmp := new(big.Int)

	for i := 0; i < N; i++ {
		for j := 0; j < N; j++ {
			tmp.Mul(new(big.Int).SetUint64(p1.Coeffs[i]), new(big.Int).SetUint64(p2.Coeffs[j]))
			if i+j < N {
				acc[i+j].Add(acc[i+j], tmp)
			} else {
				acc[i+j-N].Sub(acc[i+j-N], tmp)
			}
		}
	}

	p3 = r.NewPoly()
	for i := range acc {
		p3.Coeffs[i] = acc[i].Mod(acc[i], q).Uint64()
	}

	return
}

func TestRescale(t *testing.T) {

	N := 16
	rQ := newTestRing(t, N, 12289)
	rNext := newTestRing(t, N, 1153)

	t.Run("Rescale/KnownValues", func(t *testing.T) {

		p1 := rQ.NewPoly()
		p1.Coeffs[0] = 0
		p1.Coeffs[1] = 12288 // -1, rescales to 0 mod 1153
		p1.Coeffs[2] = 6144  // q/2, rescales to ~qNext/2
		p1.Coeffs[3] = 722   // Delta at q, rescales to ~Delta at qNext

		p2 := rNext.NewPoly()
		rQ.Rescale(p1, rNext, p2)

		require.Equal(t, uint64(0), p2.Coeffs[0])
		require.Equal(t, uint64(0), p2.Coeffs[1])
		require.Equal(t, uint64(576), p2.Coeffs[2])
		require.Equal(t, uint64(68), p2.Coeffs[3])
	})

	t.Run("Rescale/Proportional", func(t *testing.T) {

		prng := newTestPRNG(t)
		p1 := NewUniformSampler(prng, rQ).ReadNew()
		p2 := rNext.NewPoly()

		rQ.Rescale(p1, rNext, p2)

		// every rescaled centered coefficient is within 1 of the exact ratio
		for i := range p1.Coeffs {
			want := float64(rQ.CenterCoeff(p1.Coeffs[i])) * 1153 / 12289
			got := float64(rNext.CenterCoeff(p2.Coeffs[i]))
			require.InDelta(t, want, got, 1)
		}
	})

	t.Run("Rescale/LargerTargetPanics", func(t *testing.T) {
		p := rNext.NewPoly()
		require.Panics(t, func() { rNext.Rescale(p, rQ, rQ.NewPoly()) })
	})
}

func TestPolySerialization(t *testing.T) {

	r := newTestRing(t, 16, 12289)
	prng := newTestPRNG(t)

	p := NewUniformSampler(prng, r).ReadNew()

	b := buffer.NewBufferSize(p.BinarySize())
	n, err := p.WriteTo(b)
	require.NoError(t, err)
	require.Equal(t, int64(p.BinarySize()), n)

	var pRec Poly
	n, err = pRec.ReadFrom(b)
	require.NoError(t, err)
	require.Equal(t, int64(p.BinarySize()), n)

	require.True(t, p.Equal(pRec))
}
