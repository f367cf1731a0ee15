// Package bio provides byte- and bit-level I/O for edgebreaker connectivity streams.
//
// This includes:
// - Buffer / BufferWriter: fixed-width little-endian integers, LEB128 varints
// - Reader / Writer: MSB-first bit packing used by the base traversal symbols
package bio

import (
	"io"

	"github.com/pkg/errors"
)

// Reader provides bit-level reading from a byte stream.
type Reader struct {
	r   io.Reader
	buf byte  // Current byte buffer
	cnt uint8 // Number of valid bits in buf (0-8)
}

// NewReader creates a new bit reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadBit reads a single bit (0 or 1).
func (r *Reader) ReadBit() (int, error) {
	if r.cnt == 0 {
		var b [1]byte
		if _, err := io.ReadFull(r.r, b[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return 0, errors.Wrap(ErrShortBuffer, "reading bit")
			}
			return 0, err
		}
		r.buf = b[0]
		r.cnt = 8
	}
	r.cnt--
	return int((r.buf >> r.cnt) & 1), nil
}

// ReadBits reads n bits (0-32), most significant first.
func (r *Reader) ReadBits(n uint) (uint32, error) {
	var result uint32
	for i := uint(0); i < n; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		result = (result << 1) | uint32(bit)
	}
	return result, nil
}

// Writer provides bit-level writing to a byte stream.
type Writer struct {
	w   io.Writer
	buf byte  // Current byte buffer
	cnt uint8 // Number of valid bits in buf (0-7)
}

// NewWriter creates a new bit writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteBit writes a single bit.
func (w *Writer) WriteBit(bit int) error {
	w.buf = (w.buf << 1) | byte(bit&1)
	w.cnt++
	if w.cnt == 8 {
		if err := w.flushByte(); err != nil {
			return err
		}
	}
	return nil
}

// WriteBits writes n bits from the lowest n bits of val.
func (w *Writer) WriteBits(val uint32, n uint) error {
	for i := n; i > 0; i-- {
		bit := int((val >> (i - 1)) & 1)
		if err := w.WriteBit(bit); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) flushByte() error {
	b := [1]byte{w.buf}
	_, err := w.w.Write(b[:])
	w.buf = 0
	w.cnt = 0
	return err
}

// Flush writes any remaining bits, padding with zeros.
func (w *Writer) Flush() error {
	if w.cnt > 0 {
		w.buf <<= (8 - w.cnt)
		return w.flushByte()
	}
	return nil
}
