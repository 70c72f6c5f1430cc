package counter

import (
	"context"

	"github.com/weegigs/wee-store-go/we"
)

type Controls struct {
	dispatcher we.Dispatcher
}

func NewControls(dispatcher we.Dispatcher) *Controls {
	return &Controls{dispatcher: dispatcher}
}

func (c *Controls) Increment(ctx context.Context) {
	c.dispatcher.Dispatch(ctx, Increment{})
}

func (c *Controls) Decrement(ctx context.Context) {
	c.dispatcher.Dispatch(ctx, Decrement{})
}
