package edgebreaker

import (
	"context"
	"log/slog"
	"math"

	"github.com/pkg/errors"

	"github.com/mrjoshuak/go-edgebreaker/internal/entropy"
	"github.com/mrjoshuak/go-edgebreaker/internal/logging"
)

// MaxContextSymbols bounds the symbol count a single context may announce.
const MaxContextSymbols = 1 << 24

// Option configures a ValenceDecoder or ValenceEncoder.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// coderState tracks the lifecycle of a ValenceDecoder.
type coderState int

const (
	stateInit coderState = iota
	stateReady
	stateFailed
)

// ValenceDecoder decodes traversal symbols encoded by ValenceEncoder.
//
// It keeps the valence of every vertex of the portion of the mesh decoded
// so far and uses the clamped valence of the active face to pick the
// context the next symbol is read from. A ValenceDecoder serves a single
// mesh and is not safe for concurrent use.
type ValenceDecoder struct {
	base    TraversalDecoder
	corners CornerTable
	state   coderState
	valence valenceState
	store   contextStore
	logger  *slog.Logger
}

// NewValenceDecoder creates a decoder that reads topology through corners.
// The corner table is borrowed, never modified.
func NewValenceDecoder(corners CornerTable, opts ...Option) *ValenceDecoder {
	o := buildOptions(opts)
	return &ValenceDecoder{
		corners: corners,
		valence: valenceState{lastSymbol: TopologyInvalid},
		logger:  o.logger,
	}
}

// CornerTable returns the corner table the decoder reads.
func (d *ValenceDecoder) CornerTable() CornerTable {
	return d.corners
}

// SetNumEncodedVertices sets the vertex count known before split symbols
// are accounted for. It must be called before Start.
func (d *ValenceDecoder) SetNumEncodedVertices(n int) {
	d.base.SetNumEncodedVertices(n)
}

// Start reads the traversal and valence headers and bulk-decodes every
// context's symbols. A decoder whose Start failed cannot be reused.
func (d *ValenceDecoder) Start(buf *DecoderBuffer) error {
	if d.state != stateInit {
		return errors.Wrap(ErrNotStarted, "start called twice")
	}
	if err := d.start(buf); err != nil {
		d.state = stateFailed
		d.logger.Warn("valence header rejected", "error", err)
		return err
	}
	d.state = stateReady
	return nil
}

func (d *ValenceDecoder) start(buf *DecoderBuffer) error {
	if err := d.base.Start(buf); err != nil {
		return err
	}

	numSplits, err := buf.DecodeInt32()
	if err != nil {
		return errors.Wrap(err, "split symbol count")
	}
	if numSplits < 0 {
		return errors.Wrapf(ErrInvalidSplitCount, "%d", numSplits)
	}
	numEncoded := d.base.NumEncodedVertices()
	if numEncoded < 0 {
		return errors.Wrapf(ErrInvalidVertexCount, "%d encoded vertices", numEncoded)
	}
	numVertices := int64(numEncoded) + int64(numSplits)
	if numVertices > math.MaxInt32 {
		return errors.Wrapf(ErrInvalidVertexCount, "%d encoded + %d split vertices", numEncoded, numSplits)
	}

	mode, err := buf.DecodeInt8()
	if err != nil {
		return errors.Wrap(err, "valence mode")
	}
	minValence, maxValence, ok := ValenceMode(mode).bounds()
	if !ok {
		return errors.Wrapf(ErrUnsupportedMode, "mode %d", mode)
	}

	valence := newValenceState(0, minValence, maxValence)
	store := newContextStore(valence.numContexts())
	total := 0
	for i := 0; i < store.numContexts(); i++ {
		n, err := buf.DecodeVarint()
		if err != nil {
			return errors.Wrapf(err, "context %d symbol count", i)
		}
		if n == 0 {
			continue
		}
		if n > MaxContextSymbols {
			return errors.Wrapf(ErrSymbolDecode, "context %d announces %d symbols", i, n)
		}
		symbols, err := entropy.DecodeSymbols(buf, int(n), NumLocalSymbols)
		if err != nil {
			return errors.Wrapf(err, "context %d", i)
		}
		store.load(i, symbols)
		total += int(n)
	}

	valence.valences = make([]int, numVertices)
	d.valence = valence
	d.store = store

	if d.logger.Enabled(context.Background(), slog.LevelDebug) {
		counts := make([]int, store.numContexts())
		for i := range counts {
			counts[i] = store.remaining(i)
		}
		d.logger.Debug("valence header decoded",
			"splits", numSplits,
			"vertices", numVertices,
			"min_valence", minValence,
			"max_valence", maxValence,
			"context_symbols", counts,
			"total_symbols", total,
			"header_bytes", buf.Pos())
	}
	return nil
}

func (d *ValenceDecoder) ready() error {
	if d.state != stateReady {
		return ErrNotStarted
	}
	return nil
}

// fail makes the decoder unusable after a traversal error.
func (d *ValenceDecoder) fail(err error) error {
	d.state = stateFailed
	d.logger.Warn("traversal aborted", "error", err)
	return err
}

// DecodeSymbol returns the next topology symbol. Symbols come from the
// active context's queue, or from the base traversal bits before any
// corner has been reached.
func (d *ValenceDecoder) DecodeSymbol() (TopologySymbol, error) {
	if err := d.ready(); err != nil {
		return TopologyInvalid, err
	}
	var sym TopologySymbol
	if ctx := d.valence.active; ctx.ok {
		code, err := d.store.pop(ctx.index)
		if err != nil {
			return TopologyInvalid, d.fail(err)
		}
		// Codes are range-checked by the bulk decoder.
		sym = symbolToTopology[code]
	} else {
		s, err := d.base.DecodeSymbol()
		if err != nil {
			return TopologyInvalid, d.fail(err)
		}
		sym = s
	}
	d.valence.lastSymbol = sym
	return sym, nil
}

// NewActiveCornerReached updates valences for the symbol just decoded at
// corner and selects the context of the next symbol.
func (d *ValenceDecoder) NewActiveCornerReached(corner CornerIndex) error {
	if err := d.ready(); err != nil {
		return err
	}
	if d.corners == nil {
		return d.fail(errors.New("edgebreaker: decoder has no corner table"))
	}
	if err := d.valence.cornerReached(d.corners, corner); err != nil {
		return d.fail(err)
	}
	return nil
}

// MergeVertices adds the valence of source to dest after the traversal
// found that both ids denote the same vertex.
func (d *ValenceDecoder) MergeVertices(dest, source VertexIndex) error {
	if err := d.ready(); err != nil {
		return err
	}
	if err := d.valence.merge(dest, source); err != nil {
		return d.fail(err)
	}
	return nil
}

// Finish checks that the traversal consumed every context symbol.
func (d *ValenceDecoder) Finish() error {
	if err := d.ready(); err != nil {
		return err
	}
	return d.store.checkDrained()
}

// ActiveContext returns the context the next symbol is read from. ok is
// false before the first corner is reached.
func (d *ValenceDecoder) ActiveContext() (index int, ok bool) {
	return d.valence.active.index, d.valence.active.ok
}

// LastSymbol returns the most recently decoded symbol.
func (d *ValenceDecoder) LastSymbol() TopologySymbol {
	return d.valence.lastSymbol
}

// NumVertices returns the size of the valence table, split vertices included.
func (d *ValenceDecoder) NumVertices() int {
	return len(d.valence.valences)
}

// NumContexts returns the number of valence contexts of the stream.
func (d *ValenceDecoder) NumContexts() int {
	return d.store.numContexts()
}

// Valence returns the current valence of v, or -1 for an unknown vertex.
func (d *ValenceDecoder) Valence(v VertexIndex) int {
	if d.valence.checkVertex(v) != nil {
		return -1
	}
	return d.valence.valences[v]
}

// Remaining returns how many symbols context ctx still holds.
func (d *ValenceDecoder) Remaining(ctx int) int {
	return d.store.remaining(ctx)
}
