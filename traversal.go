package edgebreaker

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/mrjoshuak/go-edgebreaker/internal/bio"
)

// TraversalDecoder is the base, context-free traversal symbol decoder.
//
// Its header is a varint byte count followed by that many bytes of
// MSB-first packed symbols: C is the single bit 0, every other symbol is a
// 1 bit followed by the two bits symbol>>1.
type TraversalDecoder struct {
	numVertices int
	bits        *bio.Reader
}

// SetNumEncodedVertices sets the vertex count known before any split symbol.
func (d *TraversalDecoder) SetNumEncodedVertices(n int) {
	d.numVertices = n
}

// NumEncodedVertices returns the vertex count set by SetNumEncodedVertices.
func (d *TraversalDecoder) NumEncodedVertices() int {
	return d.numVertices
}

// Start reads the traversal header.
func (d *TraversalDecoder) Start(buf *DecoderBuffer) error {
	size, err := buf.DecodeVarint()
	if err != nil {
		return errors.Wrap(err, "traversal buffer size")
	}
	data, err := buf.DecodeBytes(int(size))
	if err != nil {
		return errors.Wrap(err, "traversal buffer")
	}
	d.bits = bio.NewReader(bytes.NewReader(data))
	return nil
}

// DecodeSymbol reads one symbol straight from the traversal bits.
func (d *TraversalDecoder) DecodeSymbol() (TopologySymbol, error) {
	if d.bits == nil {
		return TopologyInvalid, ErrNotStarted
	}
	first, err := d.bits.ReadBit()
	if err != nil {
		return TopologyInvalid, errors.Wrap(err, "traversal symbol")
	}
	if first == 0 {
		return TopologyC, nil
	}
	suffix, err := d.bits.ReadBits(2)
	if err != nil {
		return TopologyInvalid, errors.Wrap(err, "traversal symbol")
	}
	return TopologySymbol(1 | suffix<<1), nil
}

// TraversalEncoder writes symbols in the TraversalDecoder format.
type TraversalEncoder struct {
	buf  bytes.Buffer
	bits *bio.Writer
}

// EncodeSymbol appends one symbol.
func (e *TraversalEncoder) EncodeSymbol(s TopologySymbol) error {
	if !s.Valid() {
		return errors.Wrapf(ErrInvalidSymbol, "value 0x%X", uint8(s))
	}
	if e.bits == nil {
		e.bits = bio.NewWriter(&e.buf)
	}
	if s == TopologyC {
		return e.bits.WriteBit(0)
	}
	return e.bits.WriteBits(1<<2|uint32(s)>>1, 3)
}

// Encode flushes pending bits and writes the traversal header to w.
func (e *TraversalEncoder) Encode(w *EncoderBuffer) error {
	if e.bits != nil {
		if err := e.bits.Flush(); err != nil {
			return err
		}
	}
	w.EncodeVarint(uint32(e.buf.Len()))
	w.EncodeBytes(e.buf.Bytes())
	return nil
}
