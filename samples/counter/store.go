package counter

import "github.com/weegigs/wee-store-go/we"

type Store = we.Store[State]

func NewStore(options ...we.StoreOption[State]) *Store {
	return we.NewStore(InitialState, Reducers(), options...)
}

func SelectCounter(source we.Source[State]) *we.Selection[State, int] {
	return we.Select(source, State.Value)
}
