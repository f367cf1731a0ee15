package bio

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

var (
	// ErrShortBuffer indicates a read ran past the end of the input.
	ErrShortBuffer = errors.New("bio: unexpected end of buffer")

	// ErrVarintOverflow indicates a varint that does not fit in 32 bits.
	ErrVarintOverflow = errors.New("bio: varint overflows 32 bits")
)

// maxVarintLen32 is the longest LEB128 encoding of a uint32.
const maxVarintLen32 = 5

// Buffer is a positioned, read-only view over an encoded stream.
// A failed decode leaves the position unchanged.
type Buffer struct {
	data []byte
	pos  int
}

// NewBuffer creates a buffer positioned at the start of data.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return len(b.data) - b.pos
}

// Pos returns the current read offset.
func (b *Buffer) Pos() int {
	return b.pos
}

func (b *Buffer) need(n int) error {
	if n < 0 || b.Len() < n {
		return errors.Wrapf(ErrShortBuffer, "need %d bytes at offset %d, have %d", n, b.pos, b.Len())
	}
	return nil
}

// DecodeUint8 reads one unsigned byte.
func (b *Buffer) DecodeUint8() (uint8, error) {
	if err := b.need(1); err != nil {
		return 0, err
	}
	v := b.data[b.pos]
	b.pos++
	return v, nil
}

// DecodeInt8 reads one signed byte.
func (b *Buffer) DecodeInt8() (int8, error) {
	v, err := b.DecodeUint8()
	return int8(v), err
}

// DecodeUint32 reads a little-endian uint32.
func (b *Buffer) DecodeUint32() (uint32, error) {
	if err := b.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(b.data[b.pos:])
	b.pos += 4
	return v, nil
}

// DecodeInt32 reads a little-endian int32.
func (b *Buffer) DecodeInt32() (int32, error) {
	v, err := b.DecodeUint32()
	return int32(v), err
}

// DecodeVarint reads an LEB128 encoded uint32 (low 7-bit group first,
// continuation bit 0x80 on every byte but the last).
func (b *Buffer) DecodeVarint() (uint32, error) {
	var result uint32
	for i := 0; i < maxVarintLen32; i++ {
		if b.pos+i >= len(b.data) {
			return 0, errors.Wrapf(ErrShortBuffer, "varint at offset %d", b.pos)
		}
		c := b.data[b.pos+i]
		if i == maxVarintLen32-1 && c > 0x0F {
			return 0, errors.Wrapf(ErrVarintOverflow, "varint at offset %d", b.pos)
		}
		result |= uint32(c&0x7F) << (7 * uint(i))
		if c&0x80 == 0 {
			b.pos += i + 1
			return result, nil
		}
	}
	// unreachable: the fifth byte either terminates or overflows
	return 0, errors.Wrapf(ErrVarintOverflow, "varint at offset %d", b.pos)
}

// DecodeBytes returns the next n bytes without copying.
func (b *Buffer) DecodeBytes(n int) ([]byte, error) {
	if err := b.need(n); err != nil {
		return nil, err
	}
	p := b.data[b.pos : b.pos+n : b.pos+n]
	b.pos += n
	return p, nil
}

// BufferWriter accumulates an encoded stream in memory.
type BufferWriter struct {
	buf []byte
}

// NewBufferWriter creates an empty writer.
func NewBufferWriter() *BufferWriter {
	return &BufferWriter{buf: make([]byte, 0, 64)}
}

// Bytes returns the encoded data.
func (w *BufferWriter) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *BufferWriter) Len() int {
	return len(w.buf)
}

// Write implements io.Writer so bit writers can target the buffer.
func (w *BufferWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// EncodeUint8 appends one unsigned byte.
func (w *BufferWriter) EncodeUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// EncodeInt8 appends one signed byte.
func (w *BufferWriter) EncodeInt8(v int8) {
	w.EncodeUint8(uint8(v))
}

// EncodeUint32 appends a little-endian uint32.
func (w *BufferWriter) EncodeUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// EncodeInt32 appends a little-endian int32.
func (w *BufferWriter) EncodeInt32(v int32) {
	w.EncodeUint32(uint32(v))
}

// EncodeVarint appends v in LEB128 form.
func (w *BufferWriter) EncodeVarint(v uint32) {
	for v >= 0x80 {
		w.buf = append(w.buf, byte(v)|0x80)
		v >>= 7
	}
	w.buf = append(w.buf, byte(v))
}

// EncodeBytes appends p verbatim.
func (w *BufferWriter) EncodeBytes(p []byte) {
	w.buf = append(w.buf, p...)
}
