package edgebreaker

import (
	"github.com/pkg/errors"
)

// activeContext is the entropy context used for the next symbol. The zero
// value means no context is active and the base traversal coder is used.
type activeContext struct {
	index int
	ok    bool
}

// valenceState is the state machine shared by ValenceDecoder and
// ValenceEncoder. Both sides must apply exactly the same updates in the
// same order, or the decoder silently selects the wrong contexts.
type valenceState struct {
	valences   []int
	minValence int
	maxValence int
	lastSymbol TopologySymbol
	active     activeContext
}

func newValenceState(numVertices, minValence, maxValence int) valenceState {
	return valenceState{
		valences:   make([]int, numVertices),
		minValence: minValence,
		maxValence: maxValence,
		lastSymbol: TopologyInvalid,
	}
}

func (s *valenceState) numContexts() int {
	return s.maxValence - s.minValence + 1
}

// contextFor clamps a valence into [minValence, maxValence] and returns its
// context index.
func (s *valenceState) contextFor(valence int) int {
	if valence < s.minValence {
		valence = s.minValence
	} else if valence > s.maxValence {
		valence = s.maxValence
	}
	return valence - s.minValence
}

func (s *valenceState) checkVertex(v VertexIndex) error {
	if v < 0 || int(v) >= len(s.valences) {
		return errors.Wrapf(ErrVertexOutOfRange, "vertex %d of %d", v, len(s.valences))
	}
	return nil
}

// cornerReached applies the valence increments of the last symbol to the
// vertices of corner's face and selects the context for the next symbol
// from the valence of next's vertex.
func (s *valenceState) cornerReached(ct CornerTable, corner CornerIndex) error {
	next := ct.Next(corner)
	prev := ct.Previous(corner)
	vc, vn, vp := ct.Vertex(corner), ct.Vertex(next), ct.Vertex(prev)
	for _, v := range [...]VertexIndex{vc, vn, vp} {
		if err := s.checkVertex(v); err != nil {
			return errors.Wrapf(err, "corner %d", corner)
		}
	}

	switch s.lastSymbol {
	case TopologyC, TopologyS:
		s.valences[vn]++
		s.valences[vp]++
	case TopologyR:
		s.valences[vc]++
		s.valences[vn]++
		s.valences[vp] += 2
	case TopologyL:
		s.valences[vc]++
		s.valences[vn] += 2
		s.valences[vp]++
	case TopologyE:
		s.valences[vc] += 2
		s.valences[vn] += 2
		s.valences[vp] += 2
	}

	s.active = activeContext{index: s.contextFor(s.valences[vn]), ok: true}
	return nil
}

// merge folds the valence of src into dest. src is never read again.
func (s *valenceState) merge(dest, src VertexIndex) error {
	if err := s.checkVertex(dest); err != nil {
		return err
	}
	if err := s.checkVertex(src); err != nil {
		return err
	}
	s.valences[dest] += s.valences[src]
	return nil
}
