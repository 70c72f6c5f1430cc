package we

// Source is anything a selection can project from.
type Source[S any] interface {
	Snapshot() Snapshot[S]
	SubscribeSnapshots(observer func(snapshot Snapshot[S])) *Subscription[S]
}

// Selection is a projection of a store's state. Each subscriber receives the
// current projected value on attach and then one value per notification.
type Selection[S any, V any] struct {
	source   Source[S]
	project  func(state S) V
	distinct func(previous V, next V) bool
}

// Select follows every notification of source, including those that leave the
// projected value unchanged.
func Select[S any, V any](source Source[S], project func(state S) V) *Selection[S, V] {
	return &Selection[S, V]{source: source, project: project}
}

// SelectDistinct drops values equal to the last value seen by the same
// subscriber.
func SelectDistinct[S any, V comparable](source Source[S], project func(state S) V) *Selection[S, V] {
	return &Selection[S, V]{
		source:   source,
		project:  project,
		distinct: func(previous V, next V) bool { return previous == next },
	}
}

func (s *Selection[S, V]) Value() V {
	return s.project(s.source.Snapshot().State)
}

func (s *Selection[S, V]) Subscribe(observer func(value V)) *Subscription[S] {
	if s.distinct == nil {
		return s.source.SubscribeSnapshots(func(snapshot Snapshot[S]) {
			observer(s.project(snapshot.State))
		})
	}

	var (
		seen     bool
		previous V
	)
	equal := s.distinct

	return s.source.SubscribeSnapshots(func(snapshot Snapshot[S]) {
		value := s.project(snapshot.State)
		if seen && equal(previous, value) {
			return
		}

		seen = true
		previous = value
		observer(value)
	})
}
