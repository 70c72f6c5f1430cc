package we

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTallyStore() *Store[tally] {
	return NewStore(tally{}, tallyReducers())
}

func replaysCurrentStateOnSubscribe(t *testing.T) {
	store := NewStore(tally{Count: 4}, tallyReducers())

	var seen []int
	store.Subscribe(func(state tally) { seen = append(seen, state.Count) })

	assert.Equal(t, []int{4}, seen)
}

func notifiesInSubscriptionOrder(t *testing.T) {
	store := newTallyStore()

	var calls []string
	store.Subscribe(func(state tally) { calls = append(calls, "a") })
	store.Subscribe(func(state tally) { calls = append(calls, "b") })
	calls = nil

	store.Dispatch(context.Background(), add{Amount: 1})
	store.Dispatch(context.Background(), subtract{})

	assert.Equal(t, []string{"a", "b", "a", "b"}, calls)
}

func notifiesUnknownActionsWithIdenticalState(t *testing.T) {
	store := NewStore(tally{Count: 7}, tallyReducers())

	var seen []Snapshot[tally]
	store.SubscribeSnapshots(func(snapshot Snapshot[tally]) { seen = append(seen, snapshot) })

	store.Dispatch(context.Background(), unknown{})

	require.Len(t, seen, 2)
	assert.Equal(t, seen[0].State, seen[1].State)
	assert.Equal(t, uint64(1), seen[1].Sequence)
	assert.NotEqual(t, seen[0].Revision, seen[1].Revision)
}

func advancesSnapshots(t *testing.T) {
	now := time.Date(2022, 2, 2, 10, 0, 0, 0, time.UTC)
	store := NewStore(tally{}, tallyReducers(), WithClock[tally](func() time.Time { return now }))

	initial := store.Snapshot()
	assert.Equal(t, uint64(0), initial.Sequence)
	assert.Equal(t, InitialRevision, initial.Revision)
	assert.Equal(t, TimestampFromTime(now), initial.Timestamp)

	store.Dispatch(context.Background(), add{Amount: 2})

	next := store.Snapshot()
	assert.Equal(t, uint64(1), next.Sequence)
	assert.Equal(t, 2, next.State.Count)
	assert.Greater(t, next.Revision.String(), initial.Revision.String())
	assert.Equal(t, TimestampFromTime(now), next.Revision.Timestamp())
}

func unsubscribesIdempotently(t *testing.T) {
	store := newTallyStore()

	var seen []int
	subscription := store.Subscribe(func(state tally) { seen = append(seen, state.Count) })
	assert.Equal(t, 1, store.Subscribers())

	subscription.Unsubscribe()
	subscription.Unsubscribe()
	store.Unsubscribe(subscription)
	store.Unsubscribe(nil)

	store.Dispatch(context.Background(), add{Amount: 1})

	assert.Equal(t, []int{0}, seen)
	assert.Equal(t, 0, store.Subscribers())
	assert.True(t, subscription.Closed())
}

func ignoresForeignSubscriptions(t *testing.T) {
	first := newTallyStore()
	second := newTallyStore()

	subscription := first.Subscribe(func(state tally) {})
	second.Unsubscribe(subscription)

	assert.False(t, subscription.Closed())
	assert.Equal(t, 1, first.Subscribers())
}

func unsubscribesDuringNotification(t *testing.T) {
	store := newTallyStore()

	var (
		first  *Subscription[tally]
		calls  []string
		replay = true
	)
	first = store.Subscribe(func(state tally) {
		calls = append(calls, "first")
		if !replay {
			first.Unsubscribe()
		}
	})
	store.Subscribe(func(state tally) { calls = append(calls, "second") })
	replay = false
	calls = nil

	store.Dispatch(context.Background(), add{Amount: 1})
	store.Dispatch(context.Background(), add{Amount: 1})

	assert.Equal(t, []string{"first", "second", "second"}, calls)
}

func queuesReentrantDispatches(t *testing.T) {
	store := newTallyStore()
	ctx := context.Background()

	var a, b []int
	store.Subscribe(func(state tally) {
		a = append(a, state.Count)
		if state.Count == 1 {
			store.Dispatch(ctx, add{Amount: 10})
		}
	})
	store.Subscribe(func(state tally) { b = append(b, state.Count) })

	store.Dispatch(ctx, add{Amount: 1})

	assert.Equal(t, []int{0, 1, 11}, a)
	assert.Equal(t, []int{0, 1, 11}, b)
	assert.Equal(t, 11, store.State().Count)
}

func subscribesDuringNotification(t *testing.T) {
	store := newTallyStore()
	ctx := context.Background()

	var late []int
	store.Subscribe(func(state tally) {
		if state.Count == 1 {
			store.Subscribe(func(state tally) { late = append(late, state.Count) })
		}
	})

	store.Dispatch(ctx, add{Amount: 1})
	store.Dispatch(ctx, add{Amount: 1})

	assert.Equal(t, []int{1, 2}, late)
}

func serialisesConcurrentDispatches(t *testing.T) {
	store := newTallyStore()
	ctx := context.Background()

	var (
		lk        sync.Mutex
		sequences []uint64
	)
	store.SubscribeSnapshots(func(snapshot Snapshot[tally]) {
		lk.Lock()
		defer lk.Unlock()
		sequences = append(sequences, snapshot.Sequence)
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				store.Dispatch(ctx, add{Amount: 1})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, store.State().Count)

	lk.Lock()
	defer lk.Unlock()
	require.Len(t, sequences, 1001)
	for i, sequence := range sequences {
		assert.Equal(t, uint64(i), sequence)
	}
}

func queuesDispatchesFromReplay(t *testing.T) {
	store := newTallyStore()
	ctx := context.Background()

	done := make(chan struct{})
	var seen []uint64
	go func() {
		defer close(done)
		store.SubscribeSnapshots(func(snapshot Snapshot[tally]) {
			seen = append(seen, snapshot.Sequence)
			if snapshot.State.Count == 0 {
				store.Dispatch(ctx, add{Amount: 1})
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscribe did not return after the observer dispatched")
	}

	assert.Equal(t, []uint64{0, 1}, seen)
	assert.Equal(t, 1, store.State().Count)

	store.Dispatch(ctx, add{Amount: 1})
	assert.Equal(t, []uint64{0, 1, 2}, seen)
}

func recoversFromPanickingObservers(t *testing.T) {
	store := newTallyStore()
	ctx := context.Background()

	var seen []int
	store.Subscribe(func(state tally) {
		seen = append(seen, state.Count)
		if state.Count == 1 {
			panic("observer failed")
		}
	})

	assert.Panics(t, func() { store.Dispatch(ctx, add{Amount: 1}) })

	store.Dispatch(ctx, add{Amount: 1})

	assert.Equal(t, 2, store.State().Count)
	assert.Equal(t, []int{0, 1, 2}, seen)
}

func recoversFromPanickingReplays(t *testing.T) {
	store := newTallyStore()
	ctx := context.Background()

	var seen []int
	assert.Panics(t, func() {
		store.Subscribe(func(state tally) {
			seen = append(seen, state.Count)
			if state.Count == 0 {
				panic("observer failed")
			}
		})
	})

	store.Dispatch(ctx, add{Amount: 1})

	assert.Equal(t, 1, store.State().Count)
	assert.Equal(t, []int{0, 1}, seen)
}

func returnsAppliedSnapshots(t *testing.T) {
	store := newTallyStore()
	ctx := context.Background()
	store.Dispatch(ctx, add{Amount: 3})

	snapshot, err := store.DispatchAndWait(ctx, add{Amount: 2})
	require.NoError(t, err)

	assert.Equal(t, uint64(2), snapshot.Sequence)
	assert.Equal(t, 5, snapshot.State.Count)
}

func returnsOwnSnapshotsUnderConcurrency(t *testing.T) {
	store := newTallyStore()
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		lk        sync.Mutex
		sequences = make(map[uint64]int)
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				snapshot, err := store.DispatchAndWait(ctx, add{Amount: 1})
				assert.NoError(t, err)

				lk.Lock()
				sequences[snapshot.Sequence]++
				lk.Unlock()

				assert.Equal(t, int(snapshot.Sequence), snapshot.State.Count)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, sequences, 500)
	for sequence, count := range sequences {
		assert.Equal(t, 1, count, "sequence %d returned more than once", sequence)
	}
}

func abandonsWaitsWhenCancelled(t *testing.T) {
	store := newTallyStore()
	ctx, cancel := context.WithCancel(context.Background())

	var result error
	store.Subscribe(func(state tally) {
		if state.Count == 1 {
			cancel()
			_, result = store.DispatchAndWait(ctx, add{Amount: 1})
		}
	})

	store.Dispatch(context.Background(), add{Amount: 1})

	assert.ErrorIs(t, result, context.Canceled)
	assert.Equal(t, 2, store.State().Count)
}

func TestStore(t *testing.T) {
	t.Run("replays current state on subscribe", replaysCurrentStateOnSubscribe)
	t.Run("notifies in subscription order", notifiesInSubscriptionOrder)
	t.Run("notifies unknown actions with identical state", notifiesUnknownActionsWithIdenticalState)
	t.Run("advances snapshots", advancesSnapshots)
	t.Run("unsubscribes idempotently", unsubscribesIdempotently)
	t.Run("ignores foreign subscriptions", ignoresForeignSubscriptions)
	t.Run("unsubscribes during notification", unsubscribesDuringNotification)
	t.Run("queues reentrant dispatches", queuesReentrantDispatches)
	t.Run("subscribes during notification", subscribesDuringNotification)
	t.Run("serialises concurrent dispatches", serialisesConcurrentDispatches)
	t.Run("queues dispatches from replay", queuesDispatchesFromReplay)
	t.Run("recovers from panicking observers", recoversFromPanickingObservers)
	t.Run("recovers from panicking replays", recoversFromPanickingReplays)
	t.Run("returns applied snapshots", returnsAppliedSnapshots)
	t.Run("returns own snapshots under concurrency", returnsOwnSnapshotsUnderConcurrency)
	t.Run("abandons waits when cancelled", abandonsWaitsWhenCancelled)
}
