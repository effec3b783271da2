// Package ring implements modular polynomial arithmetic in the negacyclic
// rings Z_q[X]/(X^N+1), with N a power of two, along with polynomial
// samplers for the uniform, ternary and discrete Gaussian distributions and
// exact rounded rescaling between moduli.
package ring

import (
	"fmt"
	"math/big"
	"math/bits"
)

// MaxModulusBits is the largest supported modulus bit-size.
const MaxModulusBits = 61

// Ring is a structure that keeps all the variables required to operate on a
// polynomial represented in Z_q[X]/(X^N+1) for a single modulus q.
type Ring struct {
	// N is the ring degree, a power of two.
	N int

	// Modulus is the coefficient modulus q.
	Modulus uint64

	// Mask is 2^ceil(log2(q))-1, used for rejection sampling.
	Mask uint64

	// BRedParams are the Barrett reduction constants for q.
	BRedParams []uint64

	// MRedParams is the Montgomery reduction constant for q.
	MRedParams uint64

	multiplier Multiplier
}

// NewRing creates a new Ring of degree N (a power of two) and modulus q,
// with the schoolbook polynomial multiplier. The modulus must be odd and at
// most MaxModulusBits bits.
func NewRing(N int, q uint64) (r *Ring, err error) {

	if N < 2 || N&(N-1) != 0 {
		return nil, fmt.Errorf("invalid ring degree: N=%d is not a power of two greater than one", N)
	}

	if q < 3 || q&1 == 0 {
		return nil, fmt.Errorf("invalid modulus: q=%d must be an odd integer greater than two", q)
	}

	if bits.Len64(q) > MaxModulusBits {
		return nil, fmt.Errorf("invalid modulus: q=%d exceeds %d bits", q, MaxModulusBits)
	}

	r = &Ring{
		N:          N,
		Modulus:    q,
		Mask:       (1 << uint64(bits.Len64(q-1))) - 1,
		BRedParams: BRedParams(q),
		MRedParams: MRedParams(q),
	}

	r.multiplier = newSchoolbookMultiplier(r)

	return r, nil
}

// NewPoly creates a new polynomial of degree N with all coefficients set to
// zero.
func (r *Ring) NewPoly() Poly {
	return NewPoly(r.N)
}

func (r *Ring) assertCompatible(pols ...Poly) {
	for i := range pols {
		if pols[i].N() != r.N {
			panic(fmt.Errorf("polynomial degree %d does not match ring degree %d", pols[i].N(), r.N))
		}
	}
}

// Add evaluates p3 = p1 + p2 coefficient-wise in the ring.
func (r *Ring) Add(p1, p2, p3 Poly) {
	r.assertCompatible(p1, p2, p3)
	q := r.Modulus
	for i := range p3.Coeffs {
		p3.Coeffs[i] = CRed(p1.Coeffs[i]+p2.Coeffs[i], q)
	}
}

// Sub evaluates p3 = p1 - p2 coefficient-wise in the ring.
func (r *Ring) Sub(p1, p2, p3 Poly) {
	r.assertCompatible(p1, p2, p3)
	q := r.Modulus
	for i := range p3.Coeffs {
		p3.Coeffs[i] = CRed(p1.Coeffs[i]+q-p2.Coeffs[i], q)
	}
}

// Neg evaluates p2 = -p1 coefficient-wise in the ring.
func (r *Ring) Neg(p1, p2 Poly) {
	r.assertCompatible(p1, p2)
	q := r.Modulus
	for i := range p2.Coeffs {
		if p1.Coeffs[i] == 0 {
			p2.Coeffs[i] = 0
		} else {
			p2.Coeffs[i] = q - p1.Coeffs[i]
		}
	}
}

// MulScalar evaluates p2 = p1 * scalar coefficient-wise in the ring.
func (r *Ring) MulScalar(p1 Poly, scalar uint64, p2 Poly) {
	r.assertCompatible(p1, p2)
	q := r.Modulus
	scalarMont := MForm(BRedAdd(scalar, q, r.BRedParams), q, r.BRedParams)
	for i := range p2.Coeffs {
		p2.Coeffs[i] = MRed(p1.Coeffs[i], scalarMont, q, r.MRedParams)
	}
}

// MulPoly evaluates p3 = p1 * p2, the product being taken modulo X^N+1 and
// modulo q. The computation is exact; the multiplier implementation only
// dictates its cost.
func (r *Ring) MulPoly(p1, p2, p3 Poly) {
	r.assertCompatible(p1, p2, p3)
	r.multiplier.MulPoly(p1, p2, p3)
}

// MulPolyThenAdd evaluates p3 = p3 + p1 * p2 in the ring.
func (r *Ring) MulPolyThenAdd(p1, p2, p3 Poly) {
	r.assertCompatible(p1, p2, p3)
	buff := r.NewPoly()
	r.multiplier.MulPoly(p1, p2, buff)
	r.Add(p3, buff, p3)
}

// CenterCoeff maps a canonical coefficient c in [0, q) to its centered
// representative in [-q/2, q/2).
func (r *Ring) CenterCoeff(c uint64) int64 {
	if c >= (r.Modulus+1)>>1 {
		return int64(c) - int64(r.Modulus)
	}
	return int64(c)
}

// PolyToBigintCentered lifts the coefficients of p to their centered
// representatives in [-q/2, q/2), written on coeffs. The coeffs slice must
// hold N allocated *big.Int.
func (r *Ring) PolyToBigintCentered(p Poly, coeffs []*big.Int) {
	r.assertCompatible(p)
	for i, c := range p.Coeffs {
		coeffs[i].SetInt64(r.CenterCoeff(c))
	}
}

// SetCoefficientsBigint reduces the arbitrary precision coefficients coeffs
// modulo q into the canonical range [0, q) and writes them on p.
func (r *Ring) SetCoefficientsBigint(coeffs []*big.Int, p Poly) {
	r.assertCompatible(p)
	qBig := new(big.Int).SetUint64(r.Modulus)
	tmp := new(big.Int)
	for i := range p.Coeffs {
		p.Coeffs[i] = tmp.Mod(coeffs[i], qBig).Uint64()
	}
}

// Equal returns true if both rings have the same degree and modulus.
func (r *Ring) Equal(other *Ring) bool {
	return r.N == other.N && r.Modulus == other.Modulus
}
