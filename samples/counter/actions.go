package counter

const (
	IncrementAction = "[App] Increase Counter"
	DecrementAction = "[App] Decrease Counter"
)

type Increment struct{}

func (Increment) TypeName() string {
	return IncrementAction
}

type Decrement struct{}

func (Decrement) TypeName() string {
	return DecrementAction
}
