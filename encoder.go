package edgebreaker

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/mrjoshuak/go-edgebreaker/internal/entropy"
)

// ValenceEncoder produces streams for ValenceDecoder.
//
// The caller drives it with the same protocol the decoder sees, in decode
// order: EncodeSymbol, NewActiveCornerReached and MergeVertices. Symbols are
// collected per context and each context is written back to front, so the
// decoder's back-to-front consumption replays them in order.
type ValenceEncoder struct {
	base      TraversalEncoder
	corners   CornerTable
	numSplits int
	mode      ValenceMode
	valence   valenceState
	contexts  [][]uint32
	logger    *slog.Logger
}

// NewValenceEncoder creates an encoder for a mesh with numVertices encoded
// vertices and numSplits split symbols.
func NewValenceEncoder(corners CornerTable, numVertices, numSplits int, opts ...Option) (*ValenceEncoder, error) {
	if numVertices < 0 {
		return nil, errors.Wrapf(ErrInvalidVertexCount, "%d encoded vertices", numVertices)
	}
	if numSplits < 0 || int64(numSplits) > int64(^uint32(0)>>1) {
		return nil, errors.Wrapf(ErrInvalidSplitCount, "%d", numSplits)
	}
	o := buildOptions(opts)
	minValence, maxValence, _ := ValenceMode2To7.bounds()
	e := &ValenceEncoder{
		corners:   corners,
		numSplits: numSplits,
		mode:      ValenceMode2To7,
		valence:   newValenceState(numVertices+numSplits, minValence, maxValence),
		logger:    o.logger,
	}
	e.contexts = make([][]uint32, e.valence.numContexts())
	return e, nil
}

// EncodeSymbol records the next symbol in the active context, or in the
// base traversal bits when no context is active yet.
func (e *ValenceEncoder) EncodeSymbol(s TopologySymbol) error {
	code, ok := localSymbol(s)
	if !ok {
		return errors.Wrapf(ErrInvalidSymbol, "value 0x%X", uint8(s))
	}
	if ctx := e.valence.active; ctx.ok {
		if len(e.contexts[ctx.index]) >= MaxContextSymbols {
			return errors.Wrapf(ErrSymbolDecode, "context %d is full", ctx.index)
		}
		e.contexts[ctx.index] = append(e.contexts[ctx.index], code)
	} else if err := e.base.EncodeSymbol(s); err != nil {
		return err
	}
	e.valence.lastSymbol = s
	return nil
}

// NewActiveCornerReached mirrors ValenceDecoder.NewActiveCornerReached.
func (e *ValenceEncoder) NewActiveCornerReached(corner CornerIndex) error {
	if e.corners == nil {
		return errors.New("edgebreaker: encoder has no corner table")
	}
	return e.valence.cornerReached(e.corners, corner)
}

// MergeVertices mirrors ValenceDecoder.MergeVertices.
func (e *ValenceEncoder) MergeVertices(dest, source VertexIndex) error {
	return e.valence.merge(dest, source)
}

// Encode writes the traversal header, the valence header and every
// context's symbols to w.
func (e *ValenceEncoder) Encode(w *EncoderBuffer) error {
	if err := e.base.Encode(w); err != nil {
		return errors.Wrap(err, "traversal header")
	}
	w.EncodeInt32(int32(e.numSplits))
	w.EncodeInt8(int8(e.mode))
	for i, symbols := range e.contexts {
		w.EncodeVarint(uint32(len(symbols)))
		if len(symbols) == 0 {
			continue
		}
		reversed := make([]uint32, len(symbols))
		for j, s := range symbols {
			reversed[len(symbols)-1-j] = s
		}
		if err := entropy.EncodeSymbols(w, reversed, NumLocalSymbols); err != nil {
			return errors.Wrapf(err, "context %d", i)
		}
	}
	e.logger.Debug("valence stream encoded", "splits", e.numSplits, "bytes", w.Len())
	return nil
}

// Bytes encodes into a fresh buffer and returns the stream.
func (e *ValenceEncoder) Bytes() ([]byte, error) {
	w := NewEncoderBuffer()
	if err := e.Encode(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Valence returns the current valence of v, or -1 for an unknown vertex.
func (e *ValenceEncoder) Valence(v VertexIndex) int {
	if e.valence.checkVertex(v) != nil {
		return -1
	}
	return e.valence.valences[v]
}

// ActiveContext returns the context the next symbol is assigned to.
func (e *ValenceEncoder) ActiveContext() (index int, ok bool) {
	return e.valence.active.index, e.valence.active.ok
}

// NumContexts returns the number of valence contexts.
func (e *ValenceEncoder) NumContexts() int {
	return len(e.contexts)
}

// ContextSize returns how many symbols context ctx has collected.
func (e *ValenceEncoder) ContextSize(ctx int) int {
	if ctx < 0 || ctx >= len(e.contexts) {
		return 0
	}
	return len(e.contexts[ctx])
}
