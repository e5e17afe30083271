package sequence

import "sync/atomic"

// Sequencer hands out strictly increasing ids for committed catalog moves.
// The entry WAL, the outbox and snapshots all share this numbering.
type Sequencer struct {
	last atomic.Uint64
}

// New starts after start: fresh catalogs pass 0, a restarted one passes
// the highest sequence recovered from snapshot and WAL.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.last.Store(start)
	return s
}

func (s *Sequencer) Next() uint64 {
	return s.last.Add(1)
}

// Current returns the last issued id.
func (s *Sequencer) Current() uint64 {
	return s.last.Load()
}

// Reset moves the sequencer to v. Only startup recovery uses it.
func (s *Sequencer) Reset(v uint64) {
	s.last.Store(v)
}
