package we

import (
	"sync"
	"sync/atomic"
)

// Subscription is the handle returned by Subscribe. Deliveries to a single
// subscription are serialised and never go backwards in sequence.
type Subscription[S any] struct {
	store    *Store[S]
	observer func(snapshot Snapshot[S])

	mu        sync.Mutex
	delivered bool
	sequence  uint64
	closed    atomic.Bool
}

func (s *Subscription[S]) Unsubscribe() {
	if s == nil {
		return
	}

	s.store.Unsubscribe(s)
}

func (s *Subscription[S]) Closed() bool {
	return s.closed.Load()
}

func (s *Subscription[S]) deliver(snapshot Snapshot[S]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return
	}

	// a concurrent dispatch may overtake the replay made on subscribe
	if s.delivered && snapshot.Sequence <= s.sequence {
		return
	}

	s.delivered = true
	s.sequence = snapshot.Sequence
	s.observer(snapshot)
}
