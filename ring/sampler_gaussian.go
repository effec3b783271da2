package ring

import (
	"encoding/binary"
	"math"
	"math/rand"

	"github.com/tuneinsight/bgv/utils/sampling"
)

// GaussianSampler keeps the state of a truncated discrete Gaussian
// polynomial sampler.
type GaussianSampler struct {
	*baseSampler
	xe  DiscreteGaussian
	rng *rand.Rand
}

// NewGaussianSampler creates a new instance of GaussianSampler from a PRNG,
// a ring definition and discrete Gaussian distribution parameters. A zero
// bound is interpreted as 6*Sigma.
func NewGaussianSampler(prng sampling.PRNG, baseRing *Ring, X DiscreteGaussian) (g *GaussianSampler) {
	g = new(GaussianSampler)
	g.baseSampler = &baseSampler{prng: prng, baseRing: baseRing}
	if X.Bound == 0 {
		X.Bound = 6 * X.Sigma
	}
	g.xe = X
	/* #nosec G404: the underlying source is the caller-provided PRNG */
	g.rng = rand.New(&prngSource{prng: prng})
	return
}

// Read samples a truncated Gaussian polynomial on pol.
func (g *GaussianSampler) Read(pol Poly) {
	g.read(pol, func(a, b, c uint64) uint64 {
		return b
	})
}

// ReadNew samples a new truncated Gaussian polynomial.
func (g *GaussianSampler) ReadNew() (pol Poly) {
	pol = g.baseRing.NewPoly()
	g.Read(pol)
	return
}

// ReadAndAdd samples a truncated Gaussian polynomial and adds it on pol.
func (g *GaussianSampler) ReadAndAdd(pol Poly) {
	g.read(pol, func(a, b, c uint64) uint64 {
		return CRed(a+b, c)
	})
}

func (g *GaussianSampler) read(pol Poly, f func(a, b, c uint64) uint64) {

	g.baseRing.assertCompatible(pol)

	var norm float64
	var coeffInt uint64

	q := g.baseRing.Modulus
	sigma := g.xe.Sigma
	bound := g.xe.Bound

	for i := range pol.Coeffs {

		for {
			norm = g.rng.NormFloat64()
			if v := math.Abs(norm * sigma); v <= bound {
				coeffInt = uint64(v + 0.5) // rounding
				break
			}
		}

		var coeff uint64
		if coeffInt != 0 {
			if norm < 0 {
				coeff = q - coeffInt
			} else {
				coeff = coeffInt
			}
		}

		pol.Coeffs[i] = f(pol.Coeffs[i], coeff, q)
	}
}

// prngSource adapts a sampling.PRNG to the math/rand.Source64 interface, so
// that the normal variate generator can consume the caller-provided
// randomness instead of a process-wide one.
type prngSource struct {
	prng sampling.PRNG
}

func (s *prngSource) Uint64() uint64 {
	b := make([]byte, 8)
	if _, err := s.prng.Read(b); err != nil {
		// Sanity check, this error should not happen.
		panic(err)
	}
	return binary.BigEndian.Uint64(b)
}

func (s *prngSource) Int63() int64 {
	return int64(s.Uint64() >> 1)
}

// Seed is a no-op: the stream is fully determined by the underlying PRNG.
func (s *prngSource) Seed(seed int64) {}
