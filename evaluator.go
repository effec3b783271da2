package bgv

import (
	"fmt"
	"math"
	"math/big"

	"github.com/tuneinsight/bgv/ring"
	"github.com/tuneinsight/bgv/utils"
	"github.com/tuneinsight/bgv/utils/bignum"
)

// Evaluator is a structure that performs homomorphic operations on
// ciphertexts: addition, multiplication, relinearization and modulus
// switching. It is stateless apart from the parameters and can be shared by
// concurrent calls operating on distinct ciphertexts.
type Evaluator struct {
	params Parameters
}

// NewEvaluator creates a new Evaluator for the provided parameters.
func NewEvaluator(params Parameters) *Evaluator {
	return &Evaluator{params: params}
}

// AddNew homomorphically adds ct0 and ct1 and returns the result in a new
// ciphertext. Both operands must be at the same level; their degrees may
// differ (e.g. a degree-2 ciphertext plus a degree-1 one), the output degree
// being the maximum of the two. The output noise estimate is the sum of the
// input estimates.
func (eval *Evaluator) AddNew(ct0, ct1 *Ciphertext) (ct *Ciphertext, err error) {
	return eval.addNew(ct0, ct1, eval.params.RingAt(ct0.Level).Add)
}

// SubNew homomorphically subtracts ct1 from ct0 and returns the result in a
// new ciphertext. Same constraints and noise growth as AddNew.
func (eval *Evaluator) SubNew(ct0, ct1 *Ciphertext) (ct *Ciphertext, err error) {
	return eval.addNew(ct0, ct1, eval.params.RingAt(ct0.Level).Sub)
}

func (eval *Evaluator) addNew(ct0, ct1 *Ciphertext, op func(p1, p2, p3 ring.Poly)) (ct *Ciphertext, err error) {

	if ct0.Level != ct1.Level {
		return nil, fmt.Errorf("%w: cannot operate on ciphertexts at levels %d and %d", ErrLevelMismatch, ct0.Level, ct1.Level)
	}

	r := eval.params.RingAt(ct0.Level)

	degree := utils.Max(ct0.Degree(), ct1.Degree())

	ct = NewCiphertext(eval.params, degree, ct0.Level)

	zero := r.NewPoly()

	for i := range ct.Value {

		c0, c1 := zero, zero
		if i <= ct0.Degree() {
			c0 = ct0.Value[i]
		}
		if i <= ct1.Degree() {
			c1 = ct1.Value[i]
		}

		op(c0, c1, ct.Value[i])
	}

	ct.Noise = ct0.Noise + ct1.Noise

	return ct, nil
}

// NegNew homomorphically negates ct and returns the result in a new
// ciphertext. The noise estimate is unchanged.
func (eval *Evaluator) NegNew(ct0 *Ciphertext) (ct *Ciphertext) {

	r := eval.params.RingAt(ct0.Level)

	ct = NewCiphertext(eval.params, ct0.Degree(), ct0.Level)
	for i := range ct.Value {
		r.Neg(ct0.Value[i], ct.Value[i])
	}

	ct.Noise = ct0.Noise

	return
}

// MulNew homomorphically multiplies ct0 and ct1 and returns the result in a
// new degree-2 ciphertext at the same level, which must be relinearized
// before any further multiplication.
//
// Both operands must be degree-1 ciphertexts at the same non-zero level:
// multiplying at level 0 fails with ErrLevelExhausted since no modulus
// switch can absorb the noise growth afterwards.
//
// The tensoring is computed exactly: components are lifted to centered
// arbitrary precision integers, convolved, scaled by t/q with rounding to
// nearest and reduced back modulo q. The output noise estimate is dominated
// by a term proportional to the product of the input estimates.
func (eval *Evaluator) MulNew(ct0, ct1 *Ciphertext) (ct *Ciphertext, err error) {

	params := eval.params

	if ct0.Level != ct1.Level {
		return nil, fmt.Errorf("%w: cannot multiply ciphertexts at levels %d and %d", ErrLevelMismatch, ct0.Level, ct1.Level)
	}

	if ct0.Level == 0 {
		return nil, fmt.Errorf("%w: cannot multiply at the bottom of the modulus chain", ErrLevelExhausted)
	}

	if ct0.Degree() != 1 || ct1.Degree() != 1 {
		return nil, fmt.Errorf("cannot MulNew: operands must be degree-1 ciphertexts (relinearize first) but have degrees %d and %d", ct0.Degree(), ct1.Degree())
	}

	level := ct0.Level
	r := params.RingAt(level)
	N := params.N()
	qBig := new(big.Int).SetUint64(r.Modulus)
	tBig := new(big.Int).SetUint64(params.PlaintextModulus())

	lift := func(p ring.Poly) []*big.Int {
		coeffs := make([]*big.Int, N)
		for i := range coeffs {
			coeffs[i] = new(big.Int)
		}
		r.PolyToBigintCentered(p, coeffs)
		return coeffs
	}

	a0, a1 := lift(ct0.Value[0]), lift(ct0.Value[1])
	b0, b1 := lift(ct1.Value[0]), lift(ct1.Value[1])

	// (a0 + a1*S)(b0 + b1*S) = d0 + d1*S + d2*S^2
	d0 := negacyclicMulBigint(a0, b0)
	d1 := negacyclicMulBigint(a0, b1)
	for i, c := range negacyclicMulBigint(a1, b0) {
		d1[i].Add(d1[i], c)
	}
	d2 := negacyclicMulBigint(a1, b1)

	ct = NewCiphertext(params, 2, level)

	buff := new(big.Int)
	for i, d := range [][]*big.Int{d0, d1, d2} {
		for _, c := range d {
			c.Mul(c, tBig)
			divRoundBigint(c, qBig, buff)
		}
		r.SetCoefficientsBigint(d, ct.Value[i])
	}

	t := float64(params.PlaintextModulus())
	delta := float64(params.Delta(level))
	sqrt2N := math.Sqrt(2 * float64(N))

	ct.Noise = ct0.Noise*ct1.Noise*t*sqrt2N/(2*delta) + t*(ct0.Noise+ct1.Noise)/2

	return ct, nil
}

// negacyclicMulBigint computes the negacyclic convolution of a and b over
// the integers.
func negacyclicMulBigint(a, b []*big.Int) (acc []*big.Int) {

	N := len(a)

	acc = make([]*big.Int, N)
	for i := range acc {
		acc[i] = new(big.Int)
	}

	tmp := new(big.Int)

	for i := range a {

		if a[i].Sign() == 0 {
			continue
		}

		for j := range b {
			tmp.Mul(a[i], b[j])
			if i+j < N {
				acc[i+j].Add(acc[i+j], tmp)
			} else {
				// X^N = -1
				acc[i+j-N].Sub(acc[i+j-N], tmp)
			}
		}
	}

	return
}

// RelinearizeNew collapses the degree-2 ciphertext ct0 back to a degree-1
// ciphertext using the relinearization key: the third component is
// decomposed in base B and each digit is multiplied with the matching key
// pair. The added noise is bounded by the digit count, the base and the
// key-switching error.
func (eval *Evaluator) RelinearizeNew(ct0 *Ciphertext, rlk *RelinearizationKey) (ct *Ciphertext, err error) {

	params := eval.params

	if ct0.Degree() != 2 {
		return nil, fmt.Errorf("cannot RelinearizeNew: ciphertext degree %d is not 2", ct0.Degree())
	}

	r := params.RingAt(ct0.Level)
	keys := rlk.keysAtLevel(params, ct0.Level)
	base := rlk.Base

	ct = NewCiphertext(params, 1, ct0.Level)
	ct.Value[0].Copy(ct0.Value[0])
	ct.Value[1].Copy(ct0.Value[1])

	rem := ct0.Value[2].CopyNew()
	digit := r.NewPoly()

	for j := range keys {

		for i, c := range rem.Coeffs {
			digit.Coeffs[i] = c % base
			rem.Coeffs[i] = c / base
		}

		r.MulPolyThenAdd(digit, keys[j][0], ct.Value[0])
		r.MulPolyThenAdd(digit, keys[j][1], ct.Value[1])
	}

	N := float64(params.N())

	ct.Noise = ct0.Noise + float64(len(keys))*float64(base)/2*math.Sqrt(N)*params.ErrorBound()

	return ct, nil
}

// ModSwitchNew switches ct0 to the next smaller modulus of the chain,
// rescaling every component by q_next/q_cur with rounding to nearest. The
// plaintext is preserved while the noise-to-modulus ratio improves, at the
// cost of one level. It fails with ErrLevelExhausted at the bottom of the
// chain.
func (eval *Evaluator) ModSwitchNew(ct0 *Ciphertext) (ct *Ciphertext, err error) {

	params := eval.params

	if ct0.Level == 0 {
		return nil, fmt.Errorf("%w: cannot switch below the bottom of the modulus chain", ErrLevelExhausted)
	}

	rCur := params.RingAt(ct0.Level)
	rNext := params.RingAt(ct0.Level - 1)

	ct = NewCiphertext(params, ct0.Degree(), ct0.Level-1)
	for i := range ct.Value {
		rCur.Rescale(ct0.Value[i], rNext, ct.Value[i])
	}

	ratio := float64(rNext.Modulus) / float64(rCur.Modulus)
	rounding := math.Sqrt(float64(params.N())) * (1 + params.xsExpectedHammingWeight()) / 2

	ct.Noise = ct0.Noise*ratio + rounding

	return ct, nil
}

// NoiseBudget returns the remaining noise headroom of ct in bits:
// log2 of the ratio between the correctness bound q_level/(2t) and the
// ciphertext's noise estimate. A non-positive budget means decryption will
// report a noise overflow.
func (eval *Evaluator) NoiseBudget(ct *Ciphertext) float64 {

	const prec = 128

	bound := bignum.NewFloat(eval.params.NoiseBound(ct.Level), prec)
	noise := bignum.NewFloat(math.Max(ct.Noise, 1), prec)

	budget, _ := bignum.Log2(bound.Quo(bound, noise)).Float64()

	return budget
}
