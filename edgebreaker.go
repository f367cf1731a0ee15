// Package edgebreaker provides the valence-driven connectivity symbol decoder
// of an edgebreaker mesh codec.
//
// An edgebreaker encoder visits a triangle mesh corner by corner and emits
// one topology symbol per visit (C, S, L, R or E). The valence coder sorts
// those symbols into entropy contexts keyed by the clamped valence of a
// vertex of the current face, so that symbols with correlated statistics
// share one adaptive model. The decoder in this package tracks the same
// valences while the mesh is rebuilt and replays the per-context symbol
// queues in the order the encoder filled them.
//
// The outer mesh decoder drives a ValenceDecoder through a strict protocol:
//
//	dec := edgebreaker.NewValenceDecoder(corners)
//	dec.SetNumEncodedVertices(numVertices)
//	if err := dec.Start(edgebreaker.NewDecoderBuffer(data)); err != nil {
//	    return err
//	}
//	for each traversal step {
//	    sym, err := dec.DecodeSymbol()
//	    // ... apply sym to the mesh, choose the active corner ...
//	    err = dec.NewActiveCornerReached(corner)
//	    // ... on split resolution: dec.MergeVertices(dest, src)
//	}
//
// ValenceEncoder is the matching encoder; it runs the identical state
// machine and produces streams the decoder accepts.
package edgebreaker

import (
	"github.com/pkg/errors"

	"github.com/mrjoshuak/go-edgebreaker/internal/bio"
)

// TopologySymbol is an edgebreaker operation. The values are the bit
// patterns used by the base traversal coder.
type TopologySymbol uint8

// Topology symbols.
const (
	// TopologyC continues the traversal onto a face with a new tip vertex.
	TopologyC TopologySymbol = 0x0
	// TopologyS splits the active boundary in two.
	TopologyS TopologySymbol = 0x1
	// TopologyL merges the face with the left neighbor.
	TopologyL TopologySymbol = 0x3
	// TopologyR merges the face with the right neighbor.
	TopologyR TopologySymbol = 0x5
	// TopologyE ends a traversal branch with an isolated face.
	TopologyE TopologySymbol = 0x7
	// TopologyInvalid marks the absence of a symbol.
	TopologyInvalid TopologySymbol = 0x9
)

// String returns the single-letter name of the symbol.
func (s TopologySymbol) String() string {
	switch s {
	case TopologyC:
		return "C"
	case TopologyS:
		return "S"
	case TopologyL:
		return "L"
	case TopologyR:
		return "R"
	case TopologyE:
		return "E"
	default:
		return "Invalid"
	}
}

// Valid reports whether s is one of the five edgebreaker operations.
func (s TopologySymbol) Valid() bool {
	_, ok := localSymbol(s)
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (s TopologySymbol) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, errors.Wrapf(ErrInvalidSymbol, "value 0x%X", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *TopologySymbol) UnmarshalText(text []byte) error {
	v, err := ParseTopologySymbol(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseTopologySymbol parses a single-letter symbol name.
func ParseTopologySymbol(name string) (TopologySymbol, error) {
	switch name {
	case "C", "c":
		return TopologyC, nil
	case "S", "s":
		return TopologyS, nil
	case "L", "l":
		return TopologyL, nil
	case "R", "r":
		return TopologyR, nil
	case "E", "e":
		return TopologyE, nil
	}
	return TopologyInvalid, errors.Wrapf(ErrInvalidSymbol, "%q", name)
}

// NumLocalSymbols is the size of the per-context symbol alphabet.
const NumLocalSymbols = 5

// symbolToTopology maps a local context symbol code to its operation.
var symbolToTopology = [NumLocalSymbols]TopologySymbol{
	TopologyC, TopologyS, TopologyL, TopologyR, TopologyE,
}

// localSymbol is the inverse of symbolToTopology.
func localSymbol(s TopologySymbol) (uint32, bool) {
	switch s {
	case TopologyC:
		return 0, true
	case TopologyS:
		return 1, true
	case TopologyL:
		return 2, true
	case TopologyR:
		return 3, true
	case TopologyE:
		return 4, true
	}
	return 0, false
}

// CornerIndex identifies a (vertex, face) corner; face f owns corners
// 3f, 3f+1 and 3f+2.
type CornerIndex int

// VertexIndex identifies a vertex of the decoded mesh.
type VertexIndex int

// CornerTable is the read-only view of mesh topology the valence coder
// consults. It must reflect the mesh as decoded so far at call time.
type CornerTable interface {
	// Next returns the next corner of the same face.
	Next(c CornerIndex) CornerIndex
	// Previous returns the previous corner of the same face.
	Previous(c CornerIndex) CornerIndex
	// Vertex returns the vertex at corner c.
	Vertex(c CornerIndex) VertexIndex
}

// ValenceMode selects the valence clamping range of a stream.
type ValenceMode int8

const (
	// ValenceMode2To7 clamps valences to [2, 7], giving six contexts.
	ValenceMode2To7 ValenceMode = 0
)

// bounds returns the clamping range of the mode.
func (m ValenceMode) bounds() (minValence, maxValence int, ok bool) {
	switch m {
	case ValenceMode2To7:
		return 2, 7, true
	}
	return 0, 0, false
}

// DecoderBuffer is a positioned view over an encoded stream.
type DecoderBuffer = bio.Buffer

// EncoderBuffer accumulates an encoded stream.
type EncoderBuffer = bio.BufferWriter

// NewDecoderBuffer creates a buffer positioned at the start of data.
func NewDecoderBuffer(data []byte) *DecoderBuffer {
	return bio.NewBuffer(data)
}

// NewEncoderBuffer creates an empty encoder buffer.
func NewEncoderBuffer() *EncoderBuffer {
	return bio.NewBufferWriter()
}
