package event

import (
	"testing"

	"github.com/cbegin/kunquat-go/internal/channel"
	"github.com/cbegin/kunquat-go/internal/ordermap"
	"github.com/cbegin/kunquat-go/internal/tstamp"
)

type recordingHandler struct {
	fired []string
}

func (r *recordingHandler) NoteOn(ch int, ev Event)    { r.fired = append(r.fired, "on:"+ev.Name) }
func (r *recordingHandler) NoteOff(ch int, ev Event)   { r.fired = append(r.fired, "off") }
func (r *recordingHandler) Hit(ch int, ev Event)       { r.fired = append(r.fired, "hit") }
func (r *recordingHandler) ParamSet(ch int, ev Event)  { r.fired = append(r.fired, "param:"+ev.Name) }
func (r *recordingHandler) StreamSet(ch int, ev Event) { r.fired = append(r.fired, "stream:"+ev.Name) }
func (r *recordingHandler) Binding(ch int, ev Event)    { r.fired = append(r.fired, "binding") }

func TestDispatcherFiresInOrderUpToNow(t *testing.T) {
	h := &recordingHandler{}
	d := NewDispatcher(h)

	m := ordermap.New[Event]()
	m.Insert(tstamp.FromBeats(0), Event{Kind: KindNoteOn, Name: "a"})
	m.Insert(tstamp.FromBeats(1), Event{Kind: KindParamSet, Name: "cutoff"})
	m.Insert(tstamp.FromBeats(2), Event{Kind: KindNoteOff})

	var maps [channel.Count]*ordermap.Map[Event]
	maps[0] = m
	d.EnterPattern(maps)

	d.AdvanceTo(tstamp.FromBeats(1))
	if len(h.fired) != 2 || h.fired[0] != "on:a" || h.fired[1] != "param:cutoff" {
		t.Fatalf("unexpected fired events after AdvanceTo(1): %v", h.fired)
	}

	d.AdvanceTo(tstamp.FromBeats(5))
	if len(h.fired) != 3 || h.fired[2] != "off" {
		t.Fatalf("unexpected fired events after AdvanceTo(5): %v", h.fired)
	}
}

func TestDispatcherChainsBindings(t *testing.T) {
	h := &recordingHandler{}
	d := NewDispatcher(h)
	d.SetBindings(func(ch int, ev Event) []Event {
		if ev.Kind == KindNoteOn {
			return []Event{{Kind: KindParamSet, Name: "bound"}}
		}
		return nil
	})

	m := ordermap.New[Event]()
	m.Insert(tstamp.FromBeats(0), Event{Kind: KindNoteOn, Name: "a"})
	var maps [channel.Count]*ordermap.Map[Event]
	maps[0] = m
	d.EnterPattern(maps)
	d.AdvanceTo(tstamp.FromBeats(0))

	if len(h.fired) != 2 || h.fired[1] != "param:bound" {
		t.Fatalf("expected the note-on to trigger a bound param-set, got %v", h.fired)
	}
}
