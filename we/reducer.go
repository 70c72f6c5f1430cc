package we

import (
	"fmt"

	"github.com/pkg/errors"
)

// Reducer computes the next state for one action type. Reduce must not
// mutate state and returns it unchanged for actions it does not handle.
type Reducer[S any] interface {
	Reduce(state S, action Action) S
	Decode(payload Data) (Action, error)
}

type ReducerFunction[S any, A any] func(state S, action A) S

func (f ReducerFunction[S, A]) Reduce(state S, action Action) S {
	typed, ok := action.(A)
	if !ok {
		return state
	}

	return f(state, typed)
}

// Decode builds the typed action from a remote payload. An empty payload
// yields the zero action, which is how payload-less actions travel.
func (f ReducerFunction[S, A]) Decode(payload Data) (Action, error) {
	var action A
	if payload.Empty() {
		return action, nil
	}

	if err := UnmarshalFromData(payload, &action); err != nil {
		return nil, err
	}

	return action, nil
}

type Reducers[S any] map[ActionType]Reducer[S]

// Reduce applies the reducer registered for the action's type. Actions with no
// registered reducer leave the state untouched.
func (r Reducers[S]) Reduce(state S, action Action) S {
	reducer := r[ActionTypeOf(action)]
	if reducer == nil {
		return state
	}

	return reducer.Reduce(state, action)
}

// Decode resolves a remote action to its typed form. Unregistered action types
// are returned as the remote action itself.
func (r Reducers[S]) Decode(remote RemoteAction) (Action, error) {
	reducer := r[remote.ActionType]
	if reducer == nil {
		return remote, nil
	}

	action, err := reducer.Decode(remote.Payload)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to decode %s", remote.ActionType))
	}

	return action, nil
}
