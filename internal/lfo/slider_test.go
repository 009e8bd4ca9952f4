package lfo

import (
	"testing"

	"github.com/cbegin/kunquat-go/internal/tstamp"
)

func TestSliderZeroLengthSnaps(t *testing.T) {
	s := NewSlider(0)
	s.Start(1, tstamp.Zero)
	if s.Active() {
		t.Error("a zero-length slide should settle immediately")
	}
	if s.Value() != 1 {
		t.Errorf("Value() = %v, want 1", s.Value())
	}
}

func TestSliderReachesTarget(t *testing.T) {
	s := NewSlider(0)
	s.Start(1, tstamp.FromBeats(1))
	rate := int32(44100)
	tempo := 120.0
	for i := 0; i < 44100 && s.Active(); i++ {
		s.Step(tempo, rate)
	}
	if s.Active() {
		t.Error("slide should have completed within its duration")
	}
	if v := s.Value(); v < 0.999 || v > 1.001 {
		t.Errorf("Value() = %v, want ~1", v)
	}
}

func TestSliderSkipMatchesSequentialSteps(t *testing.T) {
	rate := int32(44100)
	tempo := 120.0

	a := NewSlider(0)
	a.Start(1, tstamp.FromBeats(2))
	for i := 0; i < 100; i++ {
		a.Step(tempo, rate)
	}

	b := NewSlider(0)
	b.Start(1, tstamp.FromBeats(2))
	b.Skip(100, tempo, rate)

	if diff := a.Value() - b.Value(); diff > 1e-6 || diff < -1e-6 {
		t.Errorf("Skip(100) = %v, want %v (100 sequential Steps)", b.Value(), a.Value())
	}
}

func TestSliderBreakHaltsImmediately(t *testing.T) {
	s := NewSlider(0)
	s.Start(1, tstamp.FromBeats(4))
	s.Step(120, 44100)
	s.Break()
	v := s.Value()
	if s.Active() {
		t.Error("Break should deactivate the slide")
	}
	if s.Step(120, 44100) != v {
		t.Error("Step after Break should not change the value")
	}
}
