package lfo

import (
	"math"
	"testing"

	"github.com/cbegin/kunquat-go/internal/tstamp"
)

func TestLFOProducesSineWithinDepth(t *testing.T) {
	l := NewLFO()
	l.SetSpeed(2, tstamp.Zero)
	l.SetDepth(1, tstamp.Zero)
	l.TurnOn()
	rate := int32(44100)
	tempo := 120.0
	var maxAbs float64
	for i := 0; i < int(rate); i++ {
		v := l.Step(tempo, rate)
		if math.Abs(v) > maxAbs {
			maxAbs = math.Abs(v)
		}
	}
	if maxAbs < 0.9 || maxAbs > 1.0001 {
		t.Errorf("max |value| = %v, want close to depth 1", maxAbs)
	}
}

func TestLFOTurnOffFinishesHalfCycleThenStops(t *testing.T) {
	l := NewLFO()
	l.SetSpeed(4, tstamp.Zero)
	l.SetDepth(1, tstamp.Zero)
	l.TurnOn()
	rate := int32(44100)
	tempo := 120.0
	// run briefly so the oscillator is mid-cycle, then request turn-off
	for i := 0; i < 100; i++ {
		l.Step(tempo, rate)
	}
	l.TurnOff()
	if !l.Active() {
		t.Fatal("LFO should still be active right after TurnOff (finishing the cycle)")
	}
	stopped := false
	for i := 0; i < int(rate); i++ {
		l.Step(tempo, rate)
		if !l.Active() {
			stopped = true
			break
		}
	}
	if !stopped {
		t.Error("LFO never stopped after TurnOff within one second")
	}
	if l.Step(tempo, rate) != 0 {
		t.Error("a stopped LFO should output 0")
	}
}

func TestNewLFOStartsInactive(t *testing.T) {
	l := NewLFO()
	if l.Active() {
		t.Error("a fresh LFO should not be active before TurnOn")
	}
}
