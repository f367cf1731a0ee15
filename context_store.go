package edgebreaker

import (
	"github.com/pkg/errors"
)

// contextStore holds the bulk-decoded symbol queue of every valence
// context. Each queue is drained from the back: counters[i] is the number
// of symbols context i still holds, and the next symbol is the entry just
// below it.
type contextStore struct {
	symbols  [][]uint32
	counters []int
}

func newContextStore(numContexts int) contextStore {
	return contextStore{
		symbols:  make([][]uint32, numContexts),
		counters: make([]int, numContexts),
	}
}

// load installs the queue of context ctx. The queue is consumed last entry first.
func (s *contextStore) load(ctx int, symbols []uint32) {
	s.symbols[ctx] = symbols
	s.counters[ctx] = len(symbols)
}

// pop returns the next symbol code of context ctx.
func (s *contextStore) pop(ctx int) (uint32, error) {
	if ctx < 0 || ctx >= len(s.counters) {
		return 0, errors.Wrapf(ErrContextUnderflow, "context %d of %d", ctx, len(s.counters))
	}
	if s.counters[ctx] <= 0 {
		return 0, errors.Wrapf(ErrContextUnderflow, "context %d is drained", ctx)
	}
	s.counters[ctx]--
	return s.symbols[ctx][s.counters[ctx]], nil
}

// remaining returns how many symbols context ctx still holds.
func (s *contextStore) remaining(ctx int) int {
	if ctx < 0 || ctx >= len(s.counters) {
		return 0
	}
	return s.counters[ctx]
}

// numContexts returns the number of queues.
func (s *contextStore) numContexts() int {
	return len(s.counters)
}

// checkDrained fails if any queue still holds symbols.
func (s *contextStore) checkDrained() error {
	for i, n := range s.counters {
		if n != 0 {
			return errors.Wrapf(ErrUnconsumedSymbols, "context %d holds %d symbols", i, n)
		}
	}
	return nil
}
