package bgv

import (
	"fmt"
)

// Encoder is a structure that maps integer vectors to and from plaintext
// polynomials. Values are carried in the polynomial coefficients, scaled by
// Delta = floor(q/t) at the plaintext's level.
type Encoder struct {
	params Parameters
}

// NewEncoder creates a new Encoder from the provided parameters.
func NewEncoder(params Parameters) *Encoder {
	return &Encoder{params: params}
}

// EncodeNew encodes a slice of integers of type []uint64 or []int64 of at
// most N elements on a new Plaintext at the maximum level.
//
// Unsigned values must lie in [0, t), signed values in (-t/2, t/2); any
// other value is rejected with an error wrapping ErrValueOutOfRange. A
// signed value v and the unsigned value v mod t encode to the same
// plaintext.
func (ecd *Encoder) EncodeNew(values interface{}) (pt *Plaintext, err error) {
	pt = NewPlaintext(ecd.params, ecd.params.MaxLevel())
	if err = ecd.Encode(values, pt); err != nil {
		return nil, err
	}
	return
}

// Encode encodes a slice of integers of type []uint64 or []int64 of at most
// N elements on the provided Plaintext, at the Plaintext's level. See
// EncodeNew for the accepted ranges.
func (ecd *Encoder) Encode(values interface{}, pt *Plaintext) (err error) {

	params := ecd.params
	t := params.PlaintextModulus()
	r := params.RingAt(pt.Level)
	delta := params.Delta(pt.Level)

	pt.Value.Zero()

	switch values := values.(type) {
	case []uint64:

		if len(values) > params.N() {
			return fmt.Errorf("%w: cannot encode %d values on a ring of degree %d", ErrValueOutOfRange, len(values), params.N())
		}

		for i, v := range values {
			if v >= t {
				return fmt.Errorf("%w: value %d exceeds the plaintext modulus %d", ErrValueOutOfRange, v, t)
			}
			pt.Value.Coeffs[i] = v
		}

	case []int64:

		if len(values) > params.N() {
			return fmt.Errorf("%w: cannot encode %d values on a ring of degree %d", ErrValueOutOfRange, len(values), params.N())
		}

		for i, v := range values {

			var mag uint64
			if v < 0 {
				mag = -uint64(v)
			} else {
				mag = uint64(v)
			}

			if mag >= (t+1)>>1 {
				return fmt.Errorf("%w: value %d has magnitude >= t/2 for t=%d", ErrValueOutOfRange, v, t)
			}

			if v < 0 {
				pt.Value.Coeffs[i] = t - mag
			} else {
				pt.Value.Coeffs[i] = mag
			}
		}

	default:
		return fmt.Errorf("unsupported values.(type): want []uint64 or []int64 but have %T", values)
	}

	// scale the message by Delta
	r.MulScalar(pt.Value, delta, pt.Value)

	return nil
}

// Decode decodes the provided Plaintext on a slice of integers of type
// []uint64 or []int64 of at most N elements. Each coefficient is recovered
// as round(c * t / q) mod t: canonical representatives in [0, t) for
// []uint64, centered representatives for []int64.
func (ecd *Encoder) Decode(pt *Plaintext, values interface{}) (err error) {

	params := ecd.params
	t := params.PlaintextModulus()
	r := params.RingAt(pt.Level)
	q := r.Modulus
	half := q >> 1

	decodeCoeff := func(c uint64) uint64 {
		// round(c * t / q) mod t on the canonical representative
		v := mulDivRound(c, t, q, half)
		if v >= t {
			v -= t
		}
		return v
	}

	switch values := values.(type) {
	case []uint64:

		if len(values) > params.N() {
			return fmt.Errorf("%w: cannot decode %d values from a ring of degree %d", ErrValueOutOfRange, len(values), params.N())
		}

		for i := range values {
			values[i] = decodeCoeff(pt.Value.Coeffs[i])
		}

	case []int64:

		if len(values) > params.N() {
			return fmt.Errorf("%w: cannot decode %d values from a ring of degree %d", ErrValueOutOfRange, len(values), params.N())
		}

		for i := range values {
			v := decodeCoeff(pt.Value.Coeffs[i])
			if v >= (t+1)>>1 {
				values[i] = int64(v) - int64(t)
			} else {
				values[i] = int64(v)
			}
		}

	default:
		return fmt.Errorf("unsupported values.(type): want []uint64 or []int64 but have %T", values)
	}

	return nil
}
