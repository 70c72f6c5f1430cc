package we

import "context"

type ActionType string

func (at ActionType) String() string {
	return string(at)
}

type Action any

// RemoteAction is an action received over the wire. The payload is decoded
// into the typed action registered for ActionType before it is reduced.
type RemoteAction struct {
	ActionType ActionType `json:"action"`
	Payload    Data       `json:"payload,omitempty"`
}

func ActionTypeOf(action Action) ActionType {
	switch act := action.(type) {
	case RemoteAction:
		return act.ActionType
	case *RemoteAction:
		return act.ActionType
	default:
		return ActionType(NameOf(action))
	}
}

type Dispatcher interface {
	Dispatch(ctx context.Context, action Action)
}
