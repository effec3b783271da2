package ring

// Multiplier computes negacyclic polynomial products in the ring. It is the
// substitution point for a transform-based multiplication: key generation,
// encryption and evaluation only ever go through Ring.MulPoly, so a faster
// implementation can replace the schoolbook one without touching them.
type Multiplier interface {
	// MulPoly evaluates p3 = p1 * p2 mod (X^N+1, q).
	// p3 may alias p1 or p2.
	MulPoly(p1, p2, p3 Poly)
}

// schoolbookMultiplier is the quadratic-time negacyclic convolution. Each
// 64x64-bit coefficient product is reduced with Barrett reduction, so the
// result is exact for any modulus the ring accepts.
type schoolbookMultiplier struct {
	r *Ring
}

func newSchoolbookMultiplier(r *Ring) *schoolbookMultiplier {
	return &schoolbookMultiplier{r: r}
}

func (m *schoolbookMultiplier) MulPoly(p1, p2, p3 Poly) {

	r := m.r
	q := r.Modulus
	N := r.N

	acc := make([]uint64, N)

	for i := 0; i < N; i++ {

		c1 := p1.Coeffs[i]
		if c1 == 0 {
			continue
		}

		for j := 0; j < N; j++ {

			v := BRed(c1, p2.Coeffs[j], q, r.BRedParams)

			if k := i + j; k < N {
				acc[k] = CRed(acc[k]+v, q)
			} else {
				// X^N = -1
				k -= N
				acc[k] = CRed(acc[k]+q-v, q)
			}
		}
	}

	copy(p3.Coeffs, acc)
}
