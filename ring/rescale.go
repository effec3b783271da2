package ring

import (
	"fmt"
	"math/bits"
)

// Rescale maps p1, with coefficients modulo the receiver's modulus q, to p2
// with coefficients round(qNext/q * c) modulo qNext, where qNext is the
// modulus of next. The operation is exact: rounding is to the nearest
// integer, computed with 128-bit intermediates. It requires qNext < q.
func (r *Ring) Rescale(p1 Poly, next *Ring, p2 Poly) {

	r.assertCompatible(p1)
	next.assertCompatible(p2)

	q := r.Modulus
	qNext := next.Modulus

	if qNext >= q {
		panic(fmt.Errorf("cannot Rescale: target modulus %d is not smaller than %d", qNext, q))
	}

	half := q >> 1

	for i, c := range p1.Coeffs {

		// round(c * qNext / q) = floor((c*qNext + q/2) / q)
		hi, lo := bits.Mul64(c, qNext)
		lo, carry := bits.Add64(lo, half, 0)
		hi += carry

		v, _ := bits.Div64(hi, lo, q)

		// c close to q rounds up to qNext, which is congruent to 0
		if v >= qNext {
			v -= qNext
		}

		p2.Coeffs[i] = v
	}
}
