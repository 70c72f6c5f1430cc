package counter

import (
	"fmt"
	"io"
	"sync"

	"github.com/weegigs/wee-store-go/we"
)

// Display renders every counter value it is notified of as "<name>: <value>".
type Display struct {
	name string
	out  io.Writer

	lk           sync.Mutex
	values       []int
	subscription *we.Subscription[State]
}

func NewDisplay(name string, selection *we.Selection[State, int], out io.Writer) *Display {
	display := &Display{name: name, out: out}
	display.subscription = selection.Subscribe(display.render)

	return display
}

func (d *Display) render(value int) {
	d.lk.Lock()
	defer d.lk.Unlock()

	d.values = append(d.values, value)
	if d.out != nil {
		fmt.Fprintf(d.out, "%s: %d\n", d.name, value)
	}
}

func (d *Display) Name() string {
	return d.name
}

// Values returns every value rendered so far, oldest first.
func (d *Display) Values() []int {
	d.lk.Lock()
	defer d.lk.Unlock()

	values := make([]int, len(d.values))
	copy(values, d.values)

	return values
}

func (d *Display) Close() {
	d.subscription.Unsubscribe()
}
