package we

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "wee-store"

// Snapshot is the unit a store publishes: a state together with the position
// at which it was produced.
type Snapshot[S any] struct {
	Sequence  uint64
	Revision  Revision
	Timestamp Timestamp
	State     S
}

type StoreOption[S any] func(store *Store[S])

func WithLogger[S any](log *zerolog.Logger) StoreOption[S] {
	return func(store *Store[S]) {
		store.log = log
	}
}

func WithTracer[S any](tracer trace.Tracer) StoreOption[S] {
	return func(store *Store[S]) {
		store.tracer = tracer
	}
}

func WithClock[S any](clock func() time.Time) StoreOption[S] {
	return func(store *Store[S]) {
		store.clock = clock
	}
}

type pending[S any] struct {
	ctx     context.Context
	action  Action
	applied chan Snapshot[S]
}

// Store owns the current state. State changes only through Dispatch; each
// dispatch notifies every subscriber, in subscription order, before the next
// dispatch is applied.
type Store[S any] struct {
	reducers  Reducers[S]
	revisions *RevisionGenerator
	clock     func() time.Time
	log       *zerolog.Logger
	tracer    trace.Tracer

	mu            sync.Mutex
	current       Snapshot[S]
	subscriptions []*Subscription[S]
	queue         []pending[S]
	draining      bool
}

func NewStore[S any](initial S, reducers Reducers[S], options ...StoreOption[S]) *Store[S] {
	store := &Store[S]{
		reducers:  reducers,
		revisions: NewRevisionGenerator(),
		clock:     time.Now,
	}
	for _, option := range options {
		option(store)
	}
	if store.log == nil {
		store.log = &log.Logger
	}
	if store.tracer == nil {
		store.tracer = otel.Tracer(tracerName)
	}

	store.current = Snapshot[S]{
		Sequence:  0,
		Revision:  InitialRevision,
		Timestamp: TimestampFromTime(store.clock()),
		State:     initial,
	}

	return store
}

func (s *Store[S]) Snapshot() Snapshot[S] {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

func (s *Store[S]) State() S {
	return s.Snapshot().State
}

// Dispatch reduces action into a new state and notifies subscribers. A
// dispatch made while another is notifying (from an observer or another
// goroutine) is queued and applied once that round completes.
func (s *Store[S]) Dispatch(ctx context.Context, action Action) {
	s.enqueue(pending[S]{ctx: ctx, action: action})
}

// DispatchAndWait dispatches action and returns the snapshot it produced. It
// waits while the action is queued behind other dispatches, so an observer
// calling it blocks until ctx is done.
func (s *Store[S]) DispatchAndWait(ctx context.Context, action Action) (Snapshot[S], error) {
	applied := make(chan Snapshot[S], 1)
	s.enqueue(pending[S]{ctx: ctx, action: action, applied: applied})

	select {
	case snapshot := <-applied:
		return snapshot, nil
	case <-ctx.Done():
		return Snapshot[S]{}, ctx.Err()
	}
}

// DispatchRemote decodes a remote action with the store's reducers and
// dispatches it.
func (s *Store[S]) DispatchRemote(ctx context.Context, remote RemoteAction) error {
	action, err := s.Decode(remote)
	if err != nil {
		return err
	}

	s.Dispatch(ctx, action)
	return nil
}

// Decode turns a remote action into the action its reducer expects.
func (s *Store[S]) Decode(remote RemoteAction) (Action, error) {
	return s.reducers.Decode(remote)
}

func (s *Store[S]) enqueue(next pending[S]) {
	s.mu.Lock()
	s.queue = append(s.queue, next)
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	s.drain()
}

// drain applies queued actions until the queue is empty. The caller must have
// set s.draining. If a reducer or observer panics the round is abandoned and
// whatever is still queued is applied by the next dispatch.
func (s *Store[S]) drain() {
	locked := false
	defer func() {
		if !locked {
			s.mu.Lock()
		}
		s.draining = false
		s.mu.Unlock()
	}()

	for {
		s.mu.Lock()
		locked = true
		if len(s.queue) == 0 {
			return
		}

		next := s.queue[0]
		s.queue[0] = pending[S]{}
		s.queue = s.queue[1:]

		snapshot := s.apply(next.action)
		if next.applied != nil {
			next.applied <- snapshot
		}
		subscriptions := make([]*Subscription[S], len(s.subscriptions))
		copy(subscriptions, s.subscriptions)
		s.mu.Unlock()
		locked = false

		s.notify(next.ctx, next.action, snapshot, subscriptions)
	}
}

// apply must be called with s.mu held.
func (s *Store[S]) apply(action Action) Snapshot[S] {
	now := s.clock()
	s.current = Snapshot[S]{
		Sequence:  s.current.Sequence + 1,
		Revision:  s.revisions.NewRevision(now),
		Timestamp: TimestampFromTime(now),
		State:     s.reducers.Reduce(s.current.State, action),
	}

	return s.current
}

func (s *Store[S]) notify(ctx context.Context, action Action, snapshot Snapshot[S], subscriptions []*Subscription[S]) {
	actionType := ActionTypeOf(action)

	_, span := s.tracer.Start(ctx, fmt.Sprintf("dispatch %s", actionType))
	defer span.End()

	span.SetAttributes(
		attribute.String("action", actionType.String()),
		attribute.Int64("sequence", int64(snapshot.Sequence)),
		attribute.Int("subscribers", len(subscriptions)),
	)

	s.log.Debug().
		Str("action", actionType.String()).
		Uint64("sequence", snapshot.Sequence).
		Str("revision", snapshot.Revision.String()).
		Int("subscribers", len(subscriptions)).
		Msg("dispatched")

	for _, subscription := range subscriptions {
		subscription.deliver(snapshot)
	}
}

// Subscribe registers observer for every state the store publishes. The
// observer is called with the current state before Subscribe returns.
func (s *Store[S]) Subscribe(observer func(state S)) *Subscription[S] {
	return s.SubscribeSnapshots(func(snapshot Snapshot[S]) {
		observer(snapshot.State)
	})
}

func (s *Store[S]) SubscribeSnapshots(observer func(snapshot Snapshot[S])) *Subscription[S] {
	subscription := &Subscription[S]{store: s, observer: observer}

	s.mu.Lock()
	s.subscriptions = append(s.subscriptions, subscription)
	current := s.current
	if s.draining {
		s.mu.Unlock()
		subscription.deliver(current)
		return subscription
	}

	// the replay counts as a round: dispatches made by the observer are
	// queued until it returns
	s.draining = true
	s.mu.Unlock()

	replayed := false
	defer func() {
		if !replayed {
			s.mu.Lock()
			s.draining = false
			s.mu.Unlock()
		}
	}()

	subscription.deliver(current)
	replayed = true
	s.drain()

	return subscription
}

// Unsubscribe removes subscription. Removing a subscription twice, or one
// from another store, does nothing.
func (s *Store[S]) Unsubscribe(subscription *Subscription[S]) {
	if subscription == nil || subscription.store != s {
		return
	}

	subscription.closed.Store(true)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, registered := range s.subscriptions {
		if registered == subscription {
			s.subscriptions = append(s.subscriptions[:i:i], s.subscriptions[i+1:]...)
			return
		}
	}
}

func (s *Store[S]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.subscriptions)
}
