package lfo

import (
	"math"

	"github.com/cbegin/kunquat-go/internal/tstamp"
)

// LFO is a sine oscillator with independently slidable speed and depth
// (spec.md §4.2). Turning it off does not cut the signal immediately:
// the current half-cycle finishes first (decided by the sign of the
// next zero crossing) so releases don't click.
type LFO struct {
	speed      Slider // Hz
	depth      Slider
	phase      float64 // [0,1)
	on         bool
	turningOff bool
	stopped    bool
}

// NewLFO returns a disabled LFO at zero depth/speed.
func NewLFO() *LFO {
	l := &LFO{stopped: true}
	l.speed = NewSlider(0)
	l.depth = NewSlider(0)
	return l
}

// SetSpeed slides the oscillation speed (Hz) to target over length.
func (l *LFO) SetSpeed(target float64, length tstamp.Tstamp) {
	l.speed.Start(target, length)
}

// SetDepth slides the modulation depth to target over length.
func (l *LFO) SetDepth(target float64, length tstamp.Tstamp) {
	l.depth.Start(target, length)
}

// TurnOn (re)activates the oscillator; it will resume producing signal
// on the next Step.
func (l *LFO) TurnOn() {
	l.on = true
	l.turningOff = false
	l.stopped = false
}

// TurnOff requests the oscillator halt; it keeps running until the next
// zero crossing, then stays at zero.
func (l *LFO) TurnOff() {
	l.on = false
	l.turningOff = true
}

// Active reports whether the LFO is still producing non-zero signal
// (i.e. has not fully stopped after a TurnOff).
func (l *LFO) Active() bool { return !l.stopped }

// Step advances the oscillator by one frame and returns its signed
// output in [-depth, +depth].
func (l *LFO) Step(tempo float64, audioRate int32) float64 {
	speed := l.speed.Step(tempo, audioRate)
	depth := l.depth.Step(tempo, audioRate)
	if l.stopped {
		return 0
	}
	prevPhase := l.phase
	if audioRate > 0 {
		l.phase += speed / float64(audioRate)
	}
	for l.phase >= 1 {
		l.phase -= 1
	}
	for l.phase < 0 {
		l.phase += 1
	}
	val := math.Sin(l.phase*2*math.Pi) * depth
	if l.turningOff {
		crossedZero := (prevPhase < 0.5 && l.phase >= 0.5) || l.phase < prevPhase
		if crossedZero {
			l.stopped = true
			l.turningOff = false
		}
	}
	return val
}

// EstimateActiveStepsLeft reports, conservatively, how many frames
// remain before the oscillator can be treated as constant: 0 once fully
// stopped, otherwise the longer of the pending speed/depth slides (at
// least 1 while actively oscillating, since a sine never holds still).
func (l *LFO) EstimateActiveStepsLeft(tempo float64, audioRate int32) int64 {
	if l.stopped {
		return 0
	}
	s := l.speed.EstimateActiveStepsLeft(tempo, audioRate)
	d := l.depth.EstimateActiveStepsLeft(tempo, audioRate)
	if s > d {
		return max64(s, 1)
	}
	return max64(d, 1)
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
