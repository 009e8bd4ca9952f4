package event

import (
	"github.com/cbegin/kunquat-go/internal/channel"
	"github.com/cbegin/kunquat-go/internal/ordermap"
	"github.com/cbegin/kunquat-go/internal/tstamp"
)

// MaxBindingRecursion bounds how many binding-triggered event waves a
// single dispatch pass may chain, so a misconfigured binding cannot
// recurse forever (spec.md §4.6: "recursion depth must be bounded").
const MaxBindingRecursion = 16

// Dispatcher drives one pattern instance's per-channel event maps,
// advancing a cursor per channel and firing every event at or before
// the current row Tstamp ahead of each chunk's audio (spec.md §4.6).
type Dispatcher struct {
	maps    [channel.Count]*ordermap.Map[Event]
	cursors [channel.Count]*ordermap.Cursor[Event]
	handler Handler

	// bindings is a side-channel event source that runs after user
	// events at each timestamp (spec.md §4.6); nil if the pattern has
	// none.
	bindings func(channel int, ev Event) []Event
}

// NewDispatcher creates a Dispatcher bound to handler.
func NewDispatcher(handler Handler) *Dispatcher {
	return &Dispatcher{handler: handler}
}

// SetBindings installs the binding side-channel function.
func (d *Dispatcher) SetBindings(fn func(channel int, ev Event) []Event) {
	d.bindings = fn
}

// EnterPattern resets the dispatcher to the start of a new pattern
// instance's per-channel event maps.
func (d *Dispatcher) EnterPattern(maps [channel.Count]*ordermap.Map[Event]) {
	d.maps = maps
	for c := 0; c < channel.Count; c++ {
		if d.maps[c] != nil {
			d.cursors[c] = d.maps[c].SeekFirst()
		} else {
			d.cursors[c] = nil
		}
	}
}

// AdvanceTo fires every event, on every channel, with a timestamp
// less-than-or-equal-to now, chaining bound side-channel events after
// each. Channels are processed one after another in index order; within
// a channel, events fire in ascending-timestamp then insertion order.
func (d *Dispatcher) AdvanceTo(now tstamp.Tstamp) {
	for c := 0; c < channel.Count; c++ {
		cur := d.cursors[c]
		if cur == nil {
			continue
		}
		for !cur.Done() && cur.Key().LessEq(now) {
			for _, ev := range cur.Values() {
				d.fire(c, ev, 0)
			}
			cur.Step()
		}
	}
}

// NextDue returns the timestamp of the earliest not-yet-fired event
// across every channel, without firing or advancing anything. ok is
// false once every channel's cursor is exhausted. Render uses this to
// clamp a chunk to end exactly where the next event is due, so that
// AdvanceTo at the start of the following chunk dispatches it at the
// right frame boundary instead of early.
func (d *Dispatcher) NextDue() (now tstamp.Tstamp, ok bool) {
	for c := 0; c < channel.Count; c++ {
		cur := d.cursors[c]
		if cur == nil || cur.Done() {
			continue
		}
		k := cur.Key()
		if !ok || k.Less(now) {
			now, ok = k, true
		}
	}
	return now, ok
}

func (d *Dispatcher) fire(ch int, ev Event, depth int) {
	Dispatch(d.handler, ch, ev)
	if d.bindings == nil || depth >= MaxBindingRecursion {
		return
	}
	for _, bound := range d.bindings(ch, ev) {
		d.fire(ch, bound, depth+1)
	}
}
