package bgv

import (
	"fmt"
	"io"
	"math"

	"github.com/tuneinsight/bgv/ring"
	"github.com/tuneinsight/bgv/utils/buffer"
)

// codecVersion is the on-wire format version, bumped on any incompatible
// layout change.
const codecVersion uint8 = 1

var codecMagic = [3]byte{'B', 'G', 'V'}

// Codec serializes and deserializes the scheme's objects for a fixed
// parameter set. Every serialized object starts with a header binding it to
// the parameters it was produced under; reading an object written under
// different parameters fails with ErrParameterMismatch instead of silently
// producing garbage.
type Codec struct {
	params Parameters
}

// NewCodec creates a new Codec bound to the provided parameters.
func NewCodec(params Parameters) *Codec {
	return &Codec{params: params}
}

func (c *Codec) writeHeader(w io.Writer) (n int64, err error) {

	var inc int
	if inc, err = w.Write(codecMagic[:]); err != nil {
		return n + int64(inc), err
	}
	n += int64(inc)

	var inc64 int64
	if inc64, err = buffer.WriteUint8(w, codecVersion); err != nil {
		return n + inc64, err
	}
	n += inc64

	digest := c.params.Digest()
	if inc, err = w.Write(digest[:]); err != nil {
		return n + int64(inc), err
	}

	return n + int64(inc), nil
}

func (c *Codec) readHeader(r io.Reader) (n int64, err error) {

	var magic [3]byte
	var inc int
	if inc, err = io.ReadFull(r, magic[:]); err != nil {
		return n + int64(inc), err
	}
	n += int64(inc)

	if magic != codecMagic {
		return n, fmt.Errorf("%w: invalid magic bytes %q", ErrParameterMismatch, magic[:])
	}

	var version uint8
	var inc64 int64
	if inc64, err = buffer.ReadUint8(r, &version); err != nil {
		return n + inc64, err
	}
	n += inc64

	if version != codecVersion {
		return n, fmt.Errorf("%w: unsupported format version %d", ErrParameterMismatch, version)
	}

	var digest [32]byte
	if inc, err = io.ReadFull(r, digest[:]); err != nil {
		return n + int64(inc), err
	}
	n += int64(inc)

	if digest != c.params.Digest() {
		return n, fmt.Errorf("%w: object was serialized under different parameters", ErrParameterMismatch)
	}

	return n, nil
}

func writePolys(w io.Writer, pols []ring.Poly) (n int64, err error) {

	var inc int64
	if inc, err = buffer.WriteUint64(w, uint64(len(pols))); err != nil {
		return n + inc, err
	}
	n += inc

	for i := range pols {
		if inc, err = pols[i].WriteTo(w); err != nil {
			return n + inc, err
		}
		n += inc
	}

	return n, nil
}

// readPoly reads a single polynomial from r, rejecting any coefficient count
// other than the ring degree of the codec's parameters before allocating.
func (c *Codec) readPoly(r io.Reader, pol *ring.Poly) (err error) {

	var size uint64
	if _, err = buffer.ReadUint64(r, &size); err != nil {
		return err
	}

	if size != uint64(c.params.N()) {
		return fmt.Errorf("%w: polynomial has %d coefficients, expected %d", ErrParameterMismatch, size, c.params.N())
	}

	if len(pol.Coeffs) != c.params.N() {
		*pol = ring.NewPoly(c.params.N())
	}

	for i := range pol.Coeffs {
		if _, err = buffer.ReadUint64(r, &pol.Coeffs[i]); err != nil {
			return err
		}
	}

	return nil
}

// readPolys reads a length-prefixed list of polynomials from r, rejecting any
// count outside [minCount, maxCount].
func (c *Codec) readPolys(r io.Reader, pols *[]ring.Poly, minCount, maxCount int) (err error) {

	var size uint64
	if _, err = buffer.ReadUint64(r, &size); err != nil {
		return err
	}

	if size < uint64(minCount) || size > uint64(maxCount) {
		return fmt.Errorf("%w: %d polynomials, expected between %d and %d", ErrParameterMismatch, size, minCount, maxCount)
	}

	if uint64(len(*pols)) != size {
		*pols = make([]ring.Poly, size)
	}

	for i := range *pols {
		if err = c.readPoly(r, &(*pols)[i]); err != nil {
			return err
		}
	}

	return nil
}

// WriteSecretKey writes sk on w.
func (c *Codec) WriteSecretKey(w io.Writer, sk *SecretKey) (n int64, err error) {

	if n, err = c.writeHeader(w); err != nil {
		return n, err
	}

	var inc int64
	inc, err = writePolys(w, sk.Value)
	return n + inc, err
}

// ReadSecretKeyNew reads a secret key from r. It fails with
// ErrParameterMismatch if the key was not serialized under the codec's
// parameters.
func (c *Codec) ReadSecretKeyNew(r io.Reader) (sk *SecretKey, err error) {

	if _, err = c.readHeader(r); err != nil {
		return nil, err
	}

	sk = &SecretKey{}
	moduli := c.params.Depth() + 1
	if err = c.readPolys(r, &sk.Value, moduli, moduli); err != nil {
		return nil, err
	}

	return sk, nil
}

// WritePublicKey writes pk on w.
func (c *Codec) WritePublicKey(w io.Writer, pk *PublicKey) (n int64, err error) {

	if n, err = c.writeHeader(w); err != nil {
		return n, err
	}

	var inc int64
	for i := range pk.Value {
		if inc, err = pk.Value[i].WriteTo(w); err != nil {
			return n + inc, err
		}
		n += inc
	}

	return n, nil
}

// ReadPublicKeyNew reads a public key from r.
func (c *Codec) ReadPublicKeyNew(r io.Reader) (pk *PublicKey, err error) {

	if _, err = c.readHeader(r); err != nil {
		return nil, err
	}

	pk = &PublicKey{}
	for i := range pk.Value {
		if err = c.readPoly(r, &pk.Value[i]); err != nil {
			return nil, err
		}
	}

	return pk, nil
}

// WriteRelinearizationKey writes rlk on w.
func (c *Codec) WriteRelinearizationKey(w io.Writer, rlk *RelinearizationKey) (n int64, err error) {

	if n, err = c.writeHeader(w); err != nil {
		return n, err
	}

	var inc int64
	if inc, err = buffer.WriteUint64(w, rlk.Base); err != nil {
		return n + inc, err
	}
	n += inc

	if inc, err = buffer.WriteUint64(w, uint64(len(rlk.Keys))); err != nil {
		return n + inc, err
	}
	n += inc

	for i := range rlk.Keys {

		if inc, err = buffer.WriteUint64(w, uint64(len(rlk.Keys[i]))); err != nil {
			return n + inc, err
		}
		n += inc

		for j := range rlk.Keys[i] {
			for k := range rlk.Keys[i][j] {
				if inc, err = rlk.Keys[i][j][k].WriteTo(w); err != nil {
					return n + inc, err
				}
				n += inc
			}
		}
	}

	return n, nil
}

// ReadRelinearizationKeyNew reads a relinearization key from r.
func (c *Codec) ReadRelinearizationKeyNew(r io.Reader) (rlk *RelinearizationKey, err error) {

	if _, err = c.readHeader(r); err != nil {
		return nil, err
	}

	rlk = &RelinearizationKey{}
	if _, err = buffer.ReadUint64(r, &rlk.Base); err != nil {
		return nil, err
	}

	if rlk.Base != c.params.DigitBase() {
		return nil, fmt.Errorf("%w: relinearization key has digit base %d, expected %d", ErrParameterMismatch, rlk.Base, c.params.DigitBase())
	}

	var size uint64
	if _, err = buffer.ReadUint64(r, &size); err != nil {
		return nil, err
	}

	depth := c.params.Depth()
	if size != uint64(depth+1) {
		return nil, fmt.Errorf("%w: relinearization key covers %d moduli, expected %d", ErrParameterMismatch, size, depth+1)
	}

	rlk.Keys = make([][][2]ring.Poly, size)
	for i := range rlk.Keys {

		if _, err = buffer.ReadUint64(r, &size); err != nil {
			return nil, err
		}

		if digits := c.params.DigitCount(depth - i); size != uint64(digits) {
			return nil, fmt.Errorf("%w: relinearization key holds %d digits for modulus %d, expected %d", ErrParameterMismatch, size, i, digits)
		}

		rlk.Keys[i] = make([][2]ring.Poly, size)
		for j := range rlk.Keys[i] {
			for k := range rlk.Keys[i][j] {
				if err = c.readPoly(r, &rlk.Keys[i][j][k]); err != nil {
					return nil, err
				}
			}
		}
	}

	return rlk, nil
}

// WritePlaintext writes pt on w.
func (c *Codec) WritePlaintext(w io.Writer, pt *Plaintext) (n int64, err error) {

	if n, err = c.writeHeader(w); err != nil {
		return n, err
	}

	var inc int64
	if inc, err = buffer.WriteUint8(w, uint8(pt.Level)); err != nil {
		return n + inc, err
	}
	n += inc

	inc, err = pt.Value.WriteTo(w)
	return n + inc, err
}

// ReadPlaintextNew reads a plaintext from r.
func (c *Codec) ReadPlaintextNew(r io.Reader) (pt *Plaintext, err error) {

	if _, err = c.readHeader(r); err != nil {
		return nil, err
	}

	var level uint8
	if _, err = buffer.ReadUint8(r, &level); err != nil {
		return nil, err
	}

	if int(level) > c.params.MaxLevel() {
		return nil, fmt.Errorf("%w: plaintext level %d exceeds the modulus chain", ErrParameterMismatch, level)
	}

	pt = &Plaintext{Level: int(level)}
	if err = c.readPoly(r, &pt.Value); err != nil {
		return nil, err
	}

	return pt, nil
}

// WriteCiphertext writes ct on w, including its noise estimate so that
// budget tracking survives a round-trip.
func (c *Codec) WriteCiphertext(w io.Writer, ct *Ciphertext) (n int64, err error) {

	if n, err = c.writeHeader(w); err != nil {
		return n, err
	}

	var inc int64
	if inc, err = buffer.WriteUint8(w, uint8(ct.Level)); err != nil {
		return n + inc, err
	}
	n += inc

	if inc, err = buffer.WriteUint64(w, math.Float64bits(ct.Noise)); err != nil {
		return n + inc, err
	}
	n += inc

	inc, err = writePolys(w, ct.Value)
	return n + inc, err
}

// ReadCiphertextNew reads a ciphertext from r.
func (c *Codec) ReadCiphertextNew(r io.Reader) (ct *Ciphertext, err error) {

	if _, err = c.readHeader(r); err != nil {
		return nil, err
	}

	var level uint8
	if _, err = buffer.ReadUint8(r, &level); err != nil {
		return nil, err
	}

	if int(level) > c.params.MaxLevel() {
		return nil, fmt.Errorf("%w: ciphertext level %d exceeds the modulus chain", ErrParameterMismatch, level)
	}

	var noise uint64
	if _, err = buffer.ReadUint64(r, &noise); err != nil {
		return nil, err
	}

	ct = &Ciphertext{Level: int(level), Noise: math.Float64frombits(noise)}
	if err = c.readPolys(r, &ct.Value, 2, 3); err != nil {
		return nil, err
	}

	return ct, nil
}
