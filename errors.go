package edgebreaker

import (
	"github.com/pkg/errors"

	"github.com/mrjoshuak/go-edgebreaker/internal/bio"
	"github.com/mrjoshuak/go-edgebreaker/internal/entropy"
)

// Errors returned by the valence coder. All of them are fatal to the
// current mesh decode.
var (
	// ErrTruncated indicates a fixed-width or variable-length read ran past
	// the end of the stream.
	ErrTruncated = bio.ErrShortBuffer

	// ErrSymbolDecode indicates the bulk symbol decoder could not produce
	// the symbol count announced for a context.
	ErrSymbolDecode = entropy.ErrSymbolDecode

	// ErrUnsupportedMode indicates a valence mode byte other than
	// ValenceMode2To7.
	ErrUnsupportedMode = errors.New("edgebreaker: unsupported valence mode")

	// ErrInvalidSplitCount indicates a negative split symbol count, or one
	// the stream cannot hold.
	ErrInvalidSplitCount = errors.New("edgebreaker: invalid split symbol count")

	// ErrInvalidVertexCount indicates a negative or overflowing vertex count.
	ErrInvalidVertexCount = errors.New("edgebreaker: invalid vertex count")

	// ErrContextUnderflow indicates a symbol was requested from a context
	// whose queue is already drained. The stream and the traversal disagree.
	ErrContextUnderflow = errors.New("edgebreaker: context symbol underflow")

	// ErrUnconsumedSymbols indicates contexts still hold symbols after the
	// traversal finished.
	ErrUnconsumedSymbols = errors.New("edgebreaker: unconsumed context symbols")

	// ErrVertexOutOfRange indicates a vertex id outside the valence table.
	ErrVertexOutOfRange = errors.New("edgebreaker: vertex out of range")

	// ErrInvalidSymbol indicates a value that is not an edgebreaker operation.
	ErrInvalidSymbol = errors.New("edgebreaker: invalid topology symbol")

	// ErrNotStarted indicates a call on a coder that has not been started,
	// or whose earlier failure made it unusable.
	ErrNotStarted = errors.New("edgebreaker: coder not started or failed")
)
