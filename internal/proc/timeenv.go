package proc

import (
	"math"

	"github.com/cbegin/kunquat-go/internal/param"
)

// timeEnvState iterates a param.Envelope over time at a rate controlled
// by a stretch input in cents (spec.md §4.5 "Time envelope state"),
// used by Force and EnvGen. The
// stretch input is clamped to a safe pitch range before exponentiation
// so a pathological input can't blow up the playback rate.
type timeEnvState struct {
	env      *param.Envelope
	pos      float64 // x position in the envelope's own coordinate space
	finished bool
	loop     bool
	sustain  bool
}

const stretchCentsMin = -9600.0
const stretchCentsMax = 9600.0

func newTimeEnvState(env *param.Envelope) *timeEnvState {
	return &timeEnvState{env: env, loop: env != nil && env.HasLoop()}
}

// Step advances the envelope by one frame at the given tempo/audio-rate
// (the rate is expressed as x-units/sec; stretchCents defaults to 0 =
// unstretched) and returns the current value.
func (s *timeEnvState) Step(tempo float64, audioRate int32) float64 {
	return s.StepStretched(tempo, audioRate, 0)
}

// StepStretched is Step with an explicit pitch-like stretch input in
// cents: positive values speed the envelope up, negative slow it down.
func (s *timeEnvState) StepStretched(tempo float64, audioRate int32, stretchCents float64) float64 {
	if s.env == nil || s.finished || audioRate <= 0 {
		if s.env == nil {
			return 0
		}
		return s.env.Value(s.pos)
	}
	stretchCents = clampF(stretchCents, stretchCentsMin, stretchCentsMax)
	rateMul := pow2(stretchCents / 1200.0)
	// x advances in envelope-x-units per second, scaled by the pitch-like
	// stretch factor and the audio rate.
	dx := rateMul / float64(audioRate)
	v := s.env.Value(s.pos)
	s.pos += dx

	if s.loop {
		loopStart := s.env.Nodes[s.env.LoopStart].X
		loopEnd := s.env.Nodes[s.env.LoopEnd].X
		if loopEnd > loopStart && s.pos >= loopEnd {
			over := s.pos - loopEnd
			span := loopEnd - loopStart
			if span > 0 {
				over = mod(over, span)
			}
			s.pos = loopStart + over
		}
	} else if s.pos >= s.env.XMax() {
		s.pos = s.env.XMax()
		if !s.sustain {
			s.finished = true
		}
	}
	return v
}

// Finished reports whether a non-looping envelope has reached its end
// (and is not held open by sustain).
func (s *timeEnvState) Finished() bool { return s.finished }

// SetSustain gates completion: while true, the envelope holds its final
// value instead of finishing, until sustain is released.
func (s *timeEnvState) SetSustain(on bool) { s.sustain = on }

func pow2(x float64) float64 {
	return math.Pow(2, x)
}

func mod(a, b float64) float64 {
	for a >= b {
		a -= b
	}
	for a < 0 {
		a += b
	}
	return a
}
