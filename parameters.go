package bgv

import (
	"encoding/json"
	"fmt"
	"math"
	"math/bits"

	"github.com/google/go-cmp/cmp"
	"github.com/zeebo/blake3"

	"github.com/tuneinsight/bgv/ring"
	"github.com/tuneinsight/bgv/utils"
	"github.com/tuneinsight/bgv/utils/buffer"
)

const (
	// DefaultSigma is the default standard deviation of the error
	// distribution.
	DefaultSigma = 3.2

	// DefaultNoiseBound is the default bound (in number of standard
	// deviations) of the error distribution.
	DefaultNoiseBound = 19.2

	// DefaultDigitBase is the default base of the digit decomposition used
	// by the relinearization keys.
	DefaultDigitBase = 1 << 4
)

// ParametersLiteral is a literal representation of BGV parameters. It has
// public fields and is used to express unchecked user-defined parameters
// literally into Go programs. The NewParametersFromLiteral function resolves
// it into a validated Parameters object.
//
// Q is the ciphertext modulus chain, ordered from the largest (fresh
// ciphertexts) to the smallest modulus, with one modulus per level:
// Depth+1 in total.
type ParametersLiteral struct {
	N                int
	Q                []uint64
	Depth            int
	PlaintextModulus uint64
	Xe               ring.DistributionParameters
	Xs               ring.DistributionParameters
	DigitBase        uint64
}

// UnmarshalJSON reads a JSON representation of ParametersLiteral on the
// receiver, decoding the Xe and Xs distributions from their generic form.
func (p *ParametersLiteral) UnmarshalJSON(b []byte) (err error) {

	var pl struct {
		N                int
		Q                []uint64
		Depth            int
		PlaintextModulus uint64
		Xe               map[string]interface{}
		Xs               map[string]interface{}
		DigitBase        uint64
	}

	if err = json.Unmarshal(b, &pl); err != nil {
		return err
	}

	p.N = pl.N
	p.Q = pl.Q
	p.Depth = pl.Depth
	p.PlaintextModulus = pl.PlaintextModulus
	p.DigitBase = pl.DigitBase

	if pl.Xe != nil {
		if p.Xe, err = ring.ParametersFromMap(pl.Xe); err != nil {
			return err
		}
	}
	if pl.Xs != nil {
		if p.Xs, err = ring.ParametersFromMap(pl.Xs); err != nil {
			return err
		}
	}

	return nil
}

// Parameters represents a validated, immutable parameter set for the scheme.
// It stores one ring per modulus of the chain along with the derived
// constants used by the encoder, the evaluator and the noise model.
type Parameters struct {
	n         int
	q         []uint64
	depth     int
	t         uint64
	xe        ring.DistributionParameters
	xs        ring.DistributionParameters
	digitBase uint64

	rings  []*ring.Ring
	delta  []uint64
	eBound float64
	digest [32]byte
}

// NewParametersFromLiteral instantiates a set of Parameters from a
// ParametersLiteral specification. It returns an error wrapping
// ErrInvalidParameters if the ring degree is not a power of two, if the
// modulus chain is not strictly decreasing, or if the depth does not match
// the chain length.
func NewParametersFromLiteral(pl ParametersLiteral) (p Parameters, err error) {

	if !utils.IsPowerOfTwo(pl.N) || pl.N < 2 {
		return Parameters{}, fmt.Errorf("%w: ring degree N=%d is not a power of two", ErrInvalidParameters, pl.N)
	}

	if len(pl.Q) == 0 {
		return Parameters{}, fmt.Errorf("%w: empty modulus chain", ErrInvalidParameters)
	}

	for i := 1; i < len(pl.Q); i++ {
		if pl.Q[i] >= pl.Q[i-1] {
			return Parameters{}, fmt.Errorf("%w: modulus chain is not strictly decreasing at index %d", ErrInvalidParameters, i)
		}
	}

	if pl.Depth+1 != len(pl.Q) {
		return Parameters{}, fmt.Errorf("%w: Depth+1=%d does not match the modulus chain length %d", ErrInvalidParameters, pl.Depth+1, len(pl.Q))
	}

	if pl.PlaintextModulus < 2 {
		return Parameters{}, fmt.Errorf("%w: plaintext modulus t=%d must be at least 2", ErrInvalidParameters, pl.PlaintextModulus)
	}

	if qL := pl.Q[len(pl.Q)-1]; qL <= pl.PlaintextModulus {
		return Parameters{}, fmt.Errorf("%w: smallest modulus %d must exceed the plaintext modulus %d", ErrInvalidParameters, qL, pl.PlaintextModulus)
	}

	xe := pl.Xe
	if xe == nil {
		xe = ring.DiscreteGaussian{Sigma: DefaultSigma, Bound: DefaultNoiseBound}
	}

	xs := pl.Xs
	if xs == nil {
		xs = ring.Ternary{P: 2.0 / 3.0}
	}

	digitBase := pl.DigitBase
	if digitBase == 0 {
		digitBase = DefaultDigitBase
	}

	if digitBase < 2 {
		return Parameters{}, fmt.Errorf("%w: digit base %d must be at least 2", ErrInvalidParameters, digitBase)
	}

	eBound, err := ring.NoiseBound(xe)
	if err != nil {
		return Parameters{}, fmt.Errorf("%w: %s", ErrInvalidParameters, err)
	}

	if _, err = ring.NoiseBound(xs); err != nil {
		return Parameters{}, fmt.Errorf("%w: %s", ErrInvalidParameters, err)
	}

	rings := make([]*ring.Ring, len(pl.Q))
	delta := make([]uint64, len(pl.Q))
	for i, qi := range pl.Q {
		if rings[i], err = ring.NewRing(pl.N, qi); err != nil {
			return Parameters{}, fmt.Errorf("%w: %s", ErrInvalidParameters, err)
		}
		delta[i] = qi / pl.PlaintextModulus
	}

	p = Parameters{
		n:         pl.N,
		q:         append([]uint64{}, pl.Q...),
		depth:     pl.Depth,
		t:         pl.PlaintextModulus,
		xe:        xe,
		xs:        xs,
		digitBase: digitBase,
		rings:     rings,
		delta:     delta,
		eBound:    eBound,
	}

	p.digest = p.computeDigest()

	return p, nil
}

// N returns the ring degree.
func (p Parameters) N() int {
	return p.n
}

// LogN returns log2 of the ring degree.
func (p Parameters) LogN() int {
	return bits.Len64(uint64(p.n)) - 1
}

// Depth returns the maximum multiplicative depth, i.e. the number of modulus
// switches supported by the chain.
func (p Parameters) Depth() int {
	return p.depth
}

// MaxLevel returns the level of fresh ciphertexts, equal to Depth.
func (p Parameters) MaxLevel() int {
	return p.depth
}

// PlaintextModulus returns the plaintext modulus t.
func (p Parameters) PlaintextModulus() uint64 {
	return p.t
}

// Q returns a copy of the modulus chain, from largest to smallest.
func (p Parameters) Q() []uint64 {
	return append([]uint64{}, p.q...)
}

// Xe returns the error distribution parameters.
func (p Parameters) Xe() ring.DistributionParameters {
	return p.xe
}

// Xs returns the secret distribution parameters.
func (p Parameters) Xs() ring.DistributionParameters {
	return p.xs
}

// DigitBase returns the base of the digit decomposition used by the
// relinearization keys.
func (p Parameters) DigitBase() uint64 {
	return p.digitBase
}

// chainIndex maps a level to its index in the modulus chain: fresh
// ciphertexts (level MaxLevel) use q[0], level 0 uses the last modulus.
func (p Parameters) chainIndex(level int) int {
	if level < 0 || level > p.depth {
		panic(fmt.Errorf("invalid level %d: must be in [0, %d]", level, p.depth))
	}
	return p.depth - level
}

// QAtLevel returns the ciphertext modulus at the given level.
func (p Parameters) QAtLevel(level int) uint64 {
	return p.q[p.chainIndex(level)]
}

// RingAt returns the ring operating modulo the modulus of the given level.
func (p Parameters) RingAt(level int) *ring.Ring {
	return p.rings[p.chainIndex(level)]
}

// Delta returns the plaintext scaling factor floor(q/t) at the given level.
func (p Parameters) Delta(level int) uint64 {
	return p.delta[p.chainIndex(level)]
}

// NoiseBound returns the correctness bound q/(2t) at the given level: a
// ciphertext at that level decrypts correctly as long as its noise magnitude
// stays below it.
func (p Parameters) NoiseBound(level int) float64 {
	return float64(p.QAtLevel(level)) / (2 * float64(p.t))
}

// ErrorBound returns the bound on the magnitude of a coefficient drawn from
// the error distribution.
func (p Parameters) ErrorBound() float64 {
	return p.eBound
}

// DigitCount returns the number of base-B digits required to decompose a
// coefficient at the given level.
func (p Parameters) DigitCount(level int) int {
	q := p.QAtLevel(level)
	var d int
	for w := q; w > 0; w /= p.digitBase {
		d++
	}
	return d
}

// xsExpectedHammingWeight returns the expected number of non-zero
// coefficients of the secret key, used by the noise model.
func (p Parameters) xsExpectedHammingWeight() float64 {
	switch xs := p.xs.(type) {
	case ring.Ternary:
		if xs.H != 0 {
			return float64(xs.H)
		}
		return float64(p.n) * xs.P
	case ring.DiscreteGaussian:
		// a Gaussian coefficient is non-zero with probability ~0.88 at
		// sigma >= 1
		return float64(p.n) * math.Min(1, xs.Sigma)
	default:
		return float64(p.n)
	}
}

// Equal returns true if the receiver and other hold identical parameters.
func (p Parameters) Equal(other *Parameters) bool {
	res := p.n == other.n
	res = res && p.depth == other.depth
	res = res && p.t == other.t
	res = res && p.digitBase == other.digitBase
	res = res && cmp.Equal(p.q, other.q)
	res = res && cmp.Equal(p.xe, other.xe)
	res = res && cmp.Equal(p.xs, other.xs)
	return res
}

// Digest returns the blake3 digest of the canonical encoding of the
// parameters. It is embedded in every serialized key and ciphertext so that
// deserialization can verify that the data matches the active parameters.
func (p Parameters) Digest() [32]byte {
	return p.digest
}

func (p Parameters) computeDigest() [32]byte {

	b := buffer.NewBufferSize(64 + len(p.q)<<3)

	buffer.WriteUint64(b, uint64(p.n))
	buffer.WriteUint64(b, uint64(p.depth))
	buffer.WriteUint64(b, p.t)
	buffer.WriteUint64(b, p.digitBase)
	buffer.WriteUint64Slice(b, p.q)
	buffer.WriteUint8Slice(b, []byte(p.xe.Type()))
	buffer.WriteUint8Slice(b, []byte(p.xs.Type()))

	switch xe := p.xe.(type) {
	case ring.DiscreteGaussian:
		buffer.WriteUint64(b, math.Float64bits(xe.Sigma))
		buffer.WriteUint64(b, math.Float64bits(xe.Bound))
	case ring.Ternary:
		buffer.WriteUint64(b, math.Float64bits(xe.P))
		buffer.WriteUint64(b, uint64(xe.H))
	}

	switch xs := p.xs.(type) {
	case ring.DiscreteGaussian:
		buffer.WriteUint64(b, math.Float64bits(xs.Sigma))
		buffer.WriteUint64(b, math.Float64bits(xs.Bound))
	case ring.Ternary:
		buffer.WriteUint64(b, math.Float64bits(xs.P))
		buffer.WriteUint64(b, uint64(xs.H))
	}

	return blake3.Sum256(b.Bytes())
}
