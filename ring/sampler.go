package ring

import (
	"encoding/json"
	"fmt"

	"github.com/tuneinsight/bgv/utils/sampling"
)

const (
	discreteGaussianName = "DiscreteGaussian"
	ternaryDistName      = "Ternary"
	uniformDistName      = "Uniform"
)

// Sampler is an interface for random polynomial samplers.
// It has a single Read method which takes as argument the polynomial to be
// populated according to the Sampler's distribution.
type Sampler interface {
	Read(pol Poly)
	ReadNew() (pol Poly)
	ReadAndAdd(pol Poly)
}

// DistributionParameters is an interface for distribution parameters in the
// ring. There are three implementations of this interface:
//   - DiscreteGaussian for sampling polynomials with discretized Gaussian
//     coefficients of given standard deviation and bound.
//   - Ternary for sampling polynomials with coefficients in [-1, 1].
//   - Uniform for sampling polynomials with uniformly random coefficients in
//     the ring.
type DistributionParameters interface {
	// Type returns a string representation of the distribution name.
	Type() string
	mustBeDist()
}

// DiscreteGaussian represents the parameters of a discrete Gaussian
// distribution with standard deviation Sigma and bounds [-Bound, Bound].
type DiscreteGaussian struct {
	Sigma float64
	Bound float64
}

// Ternary represents the parameters of a distribution with coefficients in
// [-1, 0, 1]. Exactly one of its fields must be set to a non-zero value:
//
//   - If P is set, each coefficient is sampled in [-1, 0, 1] with
//     probabilities [0.5*P, 1-P, 0.5*P].
//   - If H is set, the coefficients are sampled uniformly in the set of
//     ternary polynomials with H non-zero coefficients (i.e., of Hamming
//     weight H).
type Ternary struct {
	P float64
	H int
}

// Uniform represents the parameters of a uniform distribution, i.e., with
// coefficients uniformly distributed in the given ring.
type Uniform struct{}

// NewSampler instantiates a new polynomial sampler over baseRing, drawing
// randomness from prng, for the distribution described by X.
func NewSampler(prng sampling.PRNG, baseRing *Ring, X DistributionParameters) (Sampler, error) {
	switch X := X.(type) {
	case DiscreteGaussian:
		return NewGaussianSampler(prng, baseRing, X), nil
	case Ternary:
		return NewTernarySampler(prng, baseRing, X)
	case Uniform:
		return NewUniformSampler(prng, baseRing), nil
	default:
		return nil, fmt.Errorf("invalid distribution: want ring.DiscreteGaussian, ring.Ternary or ring.Uniform but have %T", X)
	}
}

// NoiseBound returns a high-probability bound on the magnitude of a
// coefficient drawn from X. It is the quantity the noise estimates of the
// scheme are seeded with.
func NoiseBound(X DistributionParameters) (bound float64, err error) {
	switch X := X.(type) {
	case DiscreteGaussian:
		if X.Bound != 0 {
			return X.Bound, nil
		}
		return 6 * X.Sigma, nil
	case Ternary:
		return 1, nil
	default:
		return 0, fmt.Errorf("invalid noise distribution: want ring.DiscreteGaussian or ring.Ternary but have %T", X)
	}
}

type baseSampler struct {
	prng     sampling.PRNG
	baseRing *Ring
}

type randomBuffer struct {
	randomBufferN []byte
	ptr           int
}

func newRandomBuffer() *randomBuffer {
	return &randomBuffer{
		randomBufferN: make([]byte, 1024),
	}
}

func (d DiscreteGaussian) Type() string {
	return discreteGaussianName
}

func (d DiscreteGaussian) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type         string
		Sigma, Bound float64 `json:",omitempty"`
	}{d.Type(), d.Sigma, d.Bound})
}

func (d DiscreteGaussian) mustBeDist() {}

func (d Ternary) Type() string {
	return ternaryDistName
}

func (d Ternary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string
		P    float64 `json:",omitempty"`
		H    int     `json:",omitempty"`
	}{Type: d.Type(), P: d.P, H: d.H})
}

func (d Ternary) mustBeDist() {}

func (d Uniform) Type() string {
	return uniformDistName
}

func (d Uniform) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string
	}{Type: d.Type()})
}

func (d Uniform) mustBeDist() {}

func getFloatFromMap(distDef map[string]interface{}, key string) (float64, error) {
	val, hasVal := distDef[key]
	if !hasVal {
		return 0, fmt.Errorf("map specifies no value for %s", key)
	}
	f, isFloat := val.(float64)
	if !isFloat {
		return 0, fmt.Errorf("value for key %s in map should be of type float", key)
	}
	return f, nil
}

func getIntFromMap(distDef map[string]interface{}, key string) (int, error) {
	val, hasVal := distDef[key]
	if !hasVal {
		return 0, fmt.Errorf("map specifies no value for %s", key)
	}
	f, isNumeric := val.(float64)
	if !isNumeric || f != float64(int(f)) {
		return 0, fmt.Errorf("value for key %s in map should be an integer", key)
	}
	return int(f), nil
}

// ParametersFromMap decodes a DistributionParameters from its generic JSON
// representation.
func ParametersFromMap(distDef map[string]interface{}) (DistributionParameters, error) {
	distTypeVal, specified := distDef["Type"]
	if !specified {
		return nil, fmt.Errorf("map specifies no distribution type")
	}
	distTypeStr, isString := distTypeVal.(string)
	if !isString {
		return nil, fmt.Errorf("value for key Type of map should be of type string")
	}
	switch distTypeStr {
	case uniformDistName:
		return Uniform{}, nil
	case ternaryDistName:
		var (
			p   float64
			h   int
			err error
		)

		// a zero value for both P and H is interpreted as an unset value
		if _, hasP := distDef["P"]; hasP {
			if p, err = getFloatFromMap(distDef, "P"); err != nil {
				return nil, fmt.Errorf("unable to parse ternary parameter P: %w", err)
			}
		}
		if _, hasH := distDef["H"]; hasH {
			if h, err = getIntFromMap(distDef, "H"); err != nil {
				return nil, fmt.Errorf("unable to parse ternary parameter H: %w", err)
			}
		}
		if (p != 0) == (h != 0) {
			return nil, fmt.Errorf("exactly one of the fields P or H need to be set")
		}

		return Ternary{P: p, H: h}, nil
	case discreteGaussianName:
		sigma, err := getFloatFromMap(distDef, "Sigma")
		if err != nil {
			return nil, err
		}
		bound, err := getFloatFromMap(distDef, "Bound")
		if err != nil {
			return nil, err
		}
		return DiscreteGaussian{Sigma: sigma, Bound: bound}, nil
	default:
		return nil, fmt.Errorf("distribution type %s does not exist", distTypeStr)
	}
}
