package counter

type State struct {
	Counter int `json:"counter"`
}

var InitialState = State{Counter: 0}

func (state State) Value() int {
	return state.Counter
}
