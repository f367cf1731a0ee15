package entropy

import (
	"math/bits"

	"github.com/pkg/errors"

	"github.com/mrjoshuak/go-edgebreaker/internal/bio"
)

var (
	// ErrSymbolDecode indicates a bulk symbol payload that cannot produce
	// the requested symbols.
	ErrSymbolDecode = errors.New("entropy: symbol decode failed")

	// ErrAlphabet indicates an alphabet size outside [2, MaxAlphabetSize].
	ErrAlphabet = errors.New("entropy: invalid alphabet size")
)

// MaxAlphabetSize is the largest supported symbol alphabet.
const MaxAlphabetSize = 256

// overrunLimit bounds how far past its payload the MQ decoder may read.
// A well-formed payload overruns by a few bytes at most.
const overrunLimit = 16

// initialSymbolCap caps the up-front allocation of DecodeSymbols.
const initialSymbolCap = 4096

// treeBits returns the depth of the binary tree needed for alphabetSize codes.
func treeBits(alphabetSize int) (int, error) {
	if alphabetSize < 2 || alphabetSize > MaxAlphabetSize {
		return 0, errors.Wrapf(ErrAlphabet, "size %d", alphabetSize)
	}
	return bits.Len(uint(alphabetSize - 1)), nil
}

// SymbolEncoder codes symbols as a walk down a binary tree whose inner
// nodes are MQ contexts (node m has children 2m and 2m+1, root is 1).
type SymbolEncoder struct {
	mq       *MQEncoder
	bits     int
	alphabet int
}

// NewSymbolEncoder creates an encoder for codes in [0, alphabetSize).
func NewSymbolEncoder(alphabetSize int) (*SymbolEncoder, error) {
	n, err := treeBits(alphabetSize)
	if err != nil {
		return nil, err
	}
	return &SymbolEncoder{
		mq:       NewMQEncoder(1 << uint(n)),
		bits:     n,
		alphabet: alphabetSize,
	}, nil
}

// Encode codes one symbol.
func (e *SymbolEncoder) Encode(v uint32) error {
	if v >= uint32(e.alphabet) {
		return errors.Errorf("entropy: symbol %d outside alphabet of %d", v, e.alphabet)
	}
	m := uint32(1)
	for i := e.bits - 1; i >= 0; i-- {
		b := (v >> uint(i)) & 1
		e.mq.Encode(int(m), int(b))
		m = (m << 1) | b
	}
	return nil
}

// Flush terminates the MQ stream and returns the payload.
func (e *SymbolEncoder) Flush() []byte {
	return e.mq.Flush()
}

// SymbolDecoder is the inverse of SymbolEncoder.
type SymbolDecoder struct {
	mq       *MQDecoder
	bits     int
	alphabet int
}

// NewSymbolDecoder creates a decoder over an MQ payload.
func NewSymbolDecoder(payload []byte, alphabetSize int) (*SymbolDecoder, error) {
	n, err := treeBits(alphabetSize)
	if err != nil {
		return nil, err
	}
	return &SymbolDecoder{
		mq:       NewMQDecoder(payload, 1<<uint(n)),
		bits:     n,
		alphabet: alphabetSize,
	}, nil
}

// Decode decodes one symbol.
func (d *SymbolDecoder) Decode() (uint32, error) {
	m := uint32(1)
	for j := 0; j < d.bits; j++ {
		b := uint32(d.mq.Decode(int(m)))
		m = (m << 1) | b
	}
	v := m - (1 << uint(d.bits))
	if v >= uint32(d.alphabet) {
		return 0, errors.Wrapf(ErrSymbolDecode, "code %d outside alphabet of %d", v, d.alphabet)
	}
	if d.mq.Overrun() > overrunLimit {
		return 0, errors.Wrap(ErrSymbolDecode, "payload exhausted")
	}
	return v, nil
}

// EncodeSymbols writes symbols as a varint payload length followed by the
// MQ-coded payload.
func EncodeSymbols(w *bio.BufferWriter, symbols []uint32, alphabetSize int) error {
	enc, err := NewSymbolEncoder(alphabetSize)
	if err != nil {
		return err
	}
	for _, s := range symbols {
		if err := enc.Encode(s); err != nil {
			return err
		}
	}
	payload := enc.Flush()
	w.EncodeVarint(uint32(len(payload)))
	w.EncodeBytes(payload)
	return nil
}

// DecodeSymbols reads a payload written by EncodeSymbols and decodes
// numSymbols codes. The result grows as symbols are decoded, so a large
// announced count costs memory only once the payload backs it.
func DecodeSymbols(buf *bio.Buffer, numSymbols int, alphabetSize int) ([]uint32, error) {
	if numSymbols < 0 {
		return nil, errors.Errorf("entropy: negative symbol count %d", numSymbols)
	}
	size, err := buf.DecodeVarint()
	if err != nil {
		return nil, errors.Wrap(err, "symbol payload length")
	}
	payload, err := buf.DecodeBytes(int(size))
	if err != nil {
		return nil, errors.Wrap(err, "symbol payload")
	}
	dec, err := NewSymbolDecoder(payload, alphabetSize)
	if err != nil {
		return nil, err
	}
	capacity := numSymbols
	if capacity > initialSymbolCap {
		capacity = initialSymbolCap
	}
	out := make([]uint32, 0, capacity)
	for i := 0; i < numSymbols; i++ {
		v, err := dec.Decode()
		if err != nil {
			return nil, errors.Wrapf(err, "symbol %d of %d", i, numSymbols)
		}
		out = append(out, v)
	}
	return out, nil
}
