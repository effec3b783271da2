package bgv

import (
	"math/big"
	"math/bits"
)

// mulDivRound returns round(c * m / q) computed exactly with 128-bit
// intermediates, for c < q and m < q. half must be q >> 1.
func mulDivRound(c, m, q, half uint64) uint64 {
	hi, lo := bits.Mul64(c, m)
	lo, carry := bits.Add64(lo, half, 0)
	hi += carry
	v, _ := bits.Div64(hi, lo, q)
	return v
}

// divRoundBigint sets num to round(num / q), rounding half away from zero.
// buff is a scratch big.Int.
func divRoundBigint(num *big.Int, q *big.Int, buff *big.Int) {

	quo, rem := num.QuoRem(num, q, buff)

	negative := rem.Sign() < 0

	// |rem| >= q/2 rounds away from zero
	rem.Abs(rem)
	rem.Lsh(rem, 1)
	if rem.Cmp(q) >= 0 {
		if negative {
			quo.Sub(quo, bigOne)
		} else {
			quo.Add(quo, bigOne)
		}
	}
}

var bigOne = big.NewInt(1)
