// Package lfo implements the scalar modulators of spec.md §4.2: a
// sample-accurate Slider ramp, a sine LFO with independently slidable
// speed/depth, and a Linear-controls wrapper combining the two for
// stream-written control signals. All three are tempo/audio-rate
// aware: rather than caching a frame-domain step size, they track
// remaining distance in musical time (Tstamp) and recompute the
// per-frame step from whatever tempo/audio-rate is current, so a
// tempo change mid-slide redistributes the remaining distance instead
// of producing a discontinuity (spec.md Open Questions).
//
// This generalizes the per-frame linear ramp idiom the teacher engines
// (fm/chiptune/wavetable's portamentoStep/portamentoFrames) used for
// pitch glides into a tempo-aware, reusable primitive.
package lfo

import "github.com/cbegin/kunquat-go/internal/tstamp"

// Slider ramps linearly from its current value to a target over a
// duration expressed in musical time.
type Slider struct {
	current float64
	target  float64
	length  tstamp.Tstamp
	elapsed tstamp.Tstamp
	active  bool
}

// NewSlider returns a Slider initialised to value v, at rest.
func NewSlider(v float64) Slider {
	return Slider{current: v, target: v}
}

// Value returns the current value without advancing the slide.
func (s *Slider) Value() float64 { return s.current }

// Active reports whether a slide is in progress.
func (s *Slider) Active() bool { return s.active }

// Start begins a slide from the current value to target over length of
// musical time. A zero length snaps immediately.
func (s *Slider) Start(target float64, length tstamp.Tstamp) {
	s.target = target
	s.length = length
	s.elapsed = tstamp.Zero
	if length.IsZero() {
		s.current = target
		s.active = false
		return
	}
	s.active = true
}

// Step advances the slide by one frame at the given tempo/audio-rate and
// returns the new current value. The remaining Tstamp distance is
// recomputed into a frame count every step, so tempo changes mid-slide
// redistribute smoothly instead of causing a discontinuity.
func (s *Slider) Step(tempo float64, audioRate int32) float64 {
	if !s.active {
		return s.current
	}
	remaining := s.length.Sub(s.elapsed)
	framesLeft := remaining.ToFrames(tempo, audioRate)
	if framesLeft <= 1 {
		s.current = s.target
		s.active = false
		return s.current
	}
	s.current += (s.target - s.current) / float64(framesLeft)
	s.elapsed = s.elapsed.Add(tstamp.FromFrames(1, tempo, audioRate))
	return s.current
}

// Skip advances the slide by n frames, returning the resulting value.
// Skip(n) equals n sequential calls to Step given a fixed tempo/rate.
func (s *Slider) Skip(n int, tempo float64, audioRate int32) float64 {
	for i := 0; i < n && s.active; i++ {
		s.Step(tempo, audioRate)
	}
	return s.current
}

// Break halts the slide immediately, leaving the value at whatever it
// currently is (a "snap to current" per spec.md §4.2).
func (s *Slider) Break() {
	s.active = false
}

// EstimateActiveStepsLeft returns an estimate of the remaining frame
// count in the slide, for splitting a render chunk into a ramping
// segment and a constant segment.
func (s *Slider) EstimateActiveStepsLeft(tempo float64, audioRate int32) int64 {
	if !s.active {
		return 0
	}
	return s.length.Sub(s.elapsed).ToFrames(tempo, audioRate)
}
