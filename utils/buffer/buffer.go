// Package buffer implements helpers for writing and reading fixed-width
// values to and from byte buffers, in big-endian order.
package buffer

import (
	"fmt"
	"io"
)

// Buffer is a simple []byte-based buffer complying to the io.Writer and
// io.Reader interfaces. The backing slice grows as needed on writes.
type Buffer struct {
	buf []byte
	off int
}

// NewBuffer creates a new Buffer with buff as backing slice.
// The read offset is initialized at buff[0].
func NewBuffer(buff []byte) *Buffer {
	return &Buffer{buf: buff}
}

// NewBufferSize creates a new empty Buffer with an initial capacity of size.
func NewBufferSize(size int) *Buffer {
	return &Buffer{buf: make([]byte, 0, size)}
}

// Bytes returns the written but unread portion of the buffer.
func (b *Buffer) Bytes() []byte {
	return b.buf[b.off:]
}

// Write appends p to the buffer.
func (b *Buffer) Write(p []byte) (n int, err error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// Read reads up to len(p) bytes from the buffer.
func (b *Buffer) Read(p []byte) (n int, err error) {
	if b.off >= len(b.buf) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n = copy(p, b.buf[b.off:])
	b.off += n
	return n, nil
}

// WriteUint8 writes a single byte on w.
func WriteUint8(w io.Writer, c uint8) (n int64, err error) {
	inc, err := w.Write([]byte{c})
	return int64(inc), err
}

// WriteUint64 writes a big-endian uint64 on w.
func WriteUint64(w io.Writer, c uint64) (n int64, err error) {
	inc, err := w.Write([]byte{
		byte(c >> 56), byte(c >> 48), byte(c >> 40), byte(c >> 32),
		byte(c >> 24), byte(c >> 16), byte(c >> 8), byte(c),
	})
	return int64(inc), err
}

// WriteUint64Slice writes a slice of big-endian uint64 on w, prefixed by its
// length as a uint64.
func WriteUint64Slice(w io.Writer, c []uint64) (n int64, err error) {

	var inc int64

	if inc, err = WriteUint64(w, uint64(len(c))); err != nil {
		return n + inc, fmt.Errorf("buffer.WriteUint64: %w", err)
	}
	n += inc

	for _, ci := range c {
		if inc, err = WriteUint64(w, ci); err != nil {
			return n + inc, fmt.Errorf("buffer.WriteUint64: %w", err)
		}
		n += inc
	}

	return n, nil
}

// WriteUint8Slice writes a slice of bytes on w, prefixed by its length as a
// uint64.
func WriteUint8Slice(w io.Writer, c []uint8) (n int64, err error) {

	var inc int64
	if inc, err = WriteUint64(w, uint64(len(c))); err != nil {
		return n + inc, fmt.Errorf("buffer.WriteUint64: %w", err)
	}
	n += inc

	var inc2 int
	if inc2, err = w.Write(c); err != nil {
		return n + int64(inc2), fmt.Errorf("io.Writer.Write: %w", err)
	}

	return n + int64(inc2), nil
}

// ReadUint8 reads a single byte from r on c.
func ReadUint8(r io.Reader, c *uint8) (n int64, err error) {
	b := make([]byte, 1)
	inc, err := io.ReadFull(r, b)
	*c = b[0]
	return int64(inc), err
}

// ReadUint64 reads a big-endian uint64 from r on c.
func ReadUint64(r io.Reader, c *uint64) (n int64, err error) {
	b := make([]byte, 8)
	inc, err := io.ReadFull(r, b)
	*c = uint64(b[0])<<56 | uint64(b[1])<<48 | uint64(b[2])<<40 | uint64(b[3])<<32 |
		uint64(b[4])<<24 | uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7])
	return int64(inc), err
}

// ReadUint64Slice reads a length-prefixed slice of big-endian uint64 from r
// on c, reallocating c if it is of the wrong size.
func ReadUint64Slice(r io.Reader, c *[]uint64) (n int64, err error) {

	var inc int64

	var size uint64
	if inc, err = ReadUint64(r, &size); err != nil {
		return n + inc, fmt.Errorf("buffer.ReadUint64: %w", err)
	}
	n += inc

	if *c == nil || uint64(len(*c)) != size {
		*c = make([]uint64, size)
	}

	for i := range *c {
		if inc, err = ReadUint64(r, &(*c)[i]); err != nil {
			return n + inc, fmt.Errorf("buffer.ReadUint64: %w", err)
		}
		n += inc
	}

	return n, nil
}

// ReadUint8Slice reads a length-prefixed slice of bytes from r on c,
// reallocating c if it is of the wrong size.
func ReadUint8Slice(r io.Reader, c *[]uint8) (n int64, err error) {

	var inc int64
	var size uint64
	if inc, err = ReadUint64(r, &size); err != nil {
		return n + inc, fmt.Errorf("buffer.ReadUint64: %w", err)
	}
	n += inc

	if *c == nil || uint64(len(*c)) != size {
		*c = make([]uint8, size)
	}

	var inc2 int
	if inc2, err = io.ReadFull(r, *c); err != nil {
		return n + int64(inc2), fmt.Errorf("io.ReadFull: %w", err)
	}

	return n + int64(inc2), nil
}
