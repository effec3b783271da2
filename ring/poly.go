package ring

import (
	"io"

	"github.com/tuneinsight/bgv/utils"
	"github.com/tuneinsight/bgv/utils/buffer"
)

// Poly is the structure that contains the coefficients of a polynomial of
// degree at most N-1, reduced modulo X^N+1 and modulo the modulus of the
// ring it belongs to. Coefficients are always kept in the canonical range
// [0, q).
type Poly struct {
	Coeffs []uint64
}

// NewPoly creates a new polynomial with N coefficients set to zero.
func NewPoly(N int) Poly {
	return Poly{Coeffs: make([]uint64, N)}
}

// N returns the number of coefficients of the polynomial.
func (pol Poly) N() int {
	return len(pol.Coeffs)
}

// CopyNew creates an exact copy of the target polynomial.
func (pol Poly) CopyNew() (p Poly) {
	p = Poly{Coeffs: make([]uint64, len(pol.Coeffs))}
	copy(p.Coeffs, pol.Coeffs)
	return
}

// Copy copies the coefficients of p on the target polynomial.
// Expects both polynomials to have the same degree.
func (pol Poly) Copy(p Poly) {
	copy(pol.Coeffs, p.Coeffs)
}

// Zero sets all coefficients of the target polynomial to 0.
func (pol Poly) Zero() {
	for i := range pol.Coeffs {
		pol.Coeffs[i] = 0
	}
}

// Equal returns true if the receiver and other have identical coefficients.
func (pol Poly) Equal(other Poly) bool {
	return utils.EqualSlice(pol.Coeffs, other.Coeffs)
}

// BinarySize returns the serialized size of the polynomial in bytes.
func (pol Poly) BinarySize() int {
	return 8 + len(pol.Coeffs)<<3
}

// WriteTo writes the polynomial on w as a length-prefixed coefficient array.
func (pol Poly) WriteTo(w io.Writer) (n int64, err error) {
	return buffer.WriteUint64Slice(w, pol.Coeffs)
}

// ReadFrom reads a polynomial from r on the receiver, reallocating the
// coefficient array if needed.
func (pol *Poly) ReadFrom(r io.Reader) (n int64, err error) {
	return buffer.ReadUint64Slice(r, &pol.Coeffs)
}
