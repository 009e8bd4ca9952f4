package lfo

import "github.com/cbegin/kunquat-go/internal/tstamp"

// Linear is a stream-written control signal of spec.md §4.2: a target
// value that the engine slides towards (Slider), with an optional
// periodic LFO riding on top of the settled value, clamped to a valid
// range. Pitch, force and other per-voice/per-channel controls are all
// built from one of these.
type Linear struct {
	slide Slider
	osc   *LFO
	min   float64
	max   float64
	hasRange bool
}

// NewLinear returns a Linear control at rest at value v, with no range
// clamp and no LFO attached.
func NewLinear(v float64) *Linear {
	return &Linear{slide: NewSlider(v)}
}

// SetRange clamps Step's output to [min, max].
func (l *Linear) SetRange(min, max float64) {
	l.min, l.max, l.hasRange = min, max, true
}

// Slide begins a linear ramp to target over length of musical time.
func (l *Linear) Slide(target float64, length tstamp.Tstamp) {
	l.slide.Start(target, length)
}

// Break halts any in-progress slide at the current value.
func (l *Linear) Break() {
	l.slide.Break()
}

// Value returns the settled (pre-LFO) value without advancing.
func (l *Linear) Value() float64 { return l.slide.Value() }

// EnableLFO attaches (or replaces) the oscillator riding on this control.
func (l *Linear) EnableLFO(osc *LFO) {
	l.osc = osc
	osc.TurnOn()
}

// DisableLFO requests the attached oscillator wind down; it keeps
// contributing until its current half-cycle completes.
func (l *Linear) DisableLFO() {
	if l.osc != nil {
		l.osc.TurnOff()
	}
}

// Step advances the slide and any attached LFO by one frame and returns
// the combined, range-clamped output.
func (l *Linear) Step(tempo float64, audioRate int32) float64 {
	v := l.slide.Step(tempo, audioRate)
	if l.osc != nil {
		v += l.osc.Step(tempo, audioRate)
	}
	if l.hasRange {
		if v < l.min {
			v = l.min
		}
		if v > l.max {
			v = l.max
		}
	}
	return v
}

// Active reports whether the control is still changing (a slide in
// progress or an LFO that has not fully stopped).
func (l *Linear) Active() bool {
	if l.slide.Active() {
		return true
	}
	if l.osc != nil && l.osc.Active() {
		return true
	}
	return false
}

// EstimateActiveStepsLeft estimates how many more frames this control
// will keep changing, for splitting a render chunk into a changing
// segment and a constant tail.
func (l *Linear) EstimateActiveStepsLeft(tempo float64, audioRate int32) int64 {
	steps := l.slide.EstimateActiveStepsLeft(tempo, audioRate)
	if l.osc != nil {
		if o := l.osc.EstimateActiveStepsLeft(tempo, audioRate); o > steps {
			steps = o
		}
	}
	return steps
}
