package lfo

import (
	"testing"

	"github.com/cbegin/kunquat-go/internal/tstamp"
)

func TestLinearSlidesToTarget(t *testing.T) {
	l := NewLinear(0)
	l.Slide(10, tstamp.FromBeats(1))
	rate := int32(44100)
	tempo := 120.0
	for i := 0; i < int(rate) && l.Active(); i++ {
		l.Step(tempo, rate)
	}
	if l.Active() {
		t.Error("slide should have settled")
	}
	if v := l.Value(); v < 9.99 || v > 10.01 {
		t.Errorf("Value() = %v, want ~10", v)
	}
}

func TestLinearRangeClamp(t *testing.T) {
	l := NewLinear(0)
	l.SetRange(-1, 1)
	l.Slide(5, tstamp.Zero)
	v := l.Step(120, 44100)
	if v != 1 {
		t.Errorf("Step() = %v, want clamped to 1", v)
	}
}

func TestLinearLFOContribution(t *testing.T) {
	l := NewLinear(0)
	osc := NewLFO()
	osc.SetSpeed(2, tstamp.Zero)
	osc.SetDepth(0.5, tstamp.Zero)
	l.EnableLFO(osc)
	if !l.Active() {
		t.Error("Linear with an enabled LFO should be active")
	}
	nonZeroSeen := false
	for i := 0; i < 1000; i++ {
		if v := l.Step(120, 44100); v != 0 {
			nonZeroSeen = true
		}
	}
	if !nonZeroSeen {
		t.Error("expected the attached LFO to contribute non-zero output")
	}
}
