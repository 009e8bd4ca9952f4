// Package event implements the generalized Event type and the
// timestamp-driven per-chunk dispatcher of spec.md §4.6: for every
// channel, a cursor into that pattern's Ordered Event Map advances to
// and fires every event up to the current row Tstamp.
package event

// Kind classifies an Event for the Handler's dispatch switch.
type Kind int

const (
	KindNoteOn Kind = iota
	KindNoteOff
	KindHit
	KindParamSet  // writes into channel or master state
	KindStreamSet // mutates linear-controls of target voices, and
	// carries into channel state when the channel's carry flag is set
	KindBinding
)

// Event is one entry in a pattern's per-channel Ordered Event Map.
type Event struct {
	Kind Kind
	Name string  // parameter/stream/binding name, when applicable
	Arg  float64 // numeric argument (pitch in cents, dB, raw value, ...)
}

// Handler receives dispatched events. Concrete wiring (voice spawning,
// channel-state mutation) lives in internal/master, which owns the
// voice pool and channel states the spec.md §4.7 spawn algorithm needs.
type Handler interface {
	NoteOn(channel int, ev Event)
	NoteOff(channel int, ev Event)
	Hit(channel int, ev Event)
	ParamSet(channel int, ev Event)
	StreamSet(channel int, ev Event)
	Binding(channel int, ev Event)
}

// Dispatch routes one event to the matching Handler method.
func Dispatch(h Handler, channel int, ev Event) {
	switch ev.Kind {
	case KindNoteOn:
		h.NoteOn(channel, ev)
	case KindNoteOff:
		h.NoteOff(channel, ev)
	case KindHit:
		h.Hit(channel, ev)
	case KindParamSet:
		h.ParamSet(channel, ev)
	case KindStreamSet:
		h.StreamSet(channel, ev)
	case KindBinding:
		h.Binding(channel, ev)
	}
}
