package counter

import "github.com/weegigs/wee-store-go/we"

func incremented(state State, _ Increment) State {
	return State{Counter: state.Counter + 1}
}

func decremented(state State, _ Decrement) State {
	return State{Counter: state.Counter - 1}
}

func Reducers() we.Reducers[State] {
	return we.Reducers[State]{
		we.ActionTypeOf(Increment{}): we.ReducerFunction[State, Increment](incremented),
		we.ActionTypeOf(Decrement{}): we.ReducerFunction[State, Decrement](decremented),
	}
}

func Reduce(state State, action we.Action) State {
	return Reducers().Reduce(state, action)
}
