package proc

import (
	"github.com/cbegin/kunquat-go/internal/param"
	"github.com/cbegin/kunquat-go/internal/workbuf"
)

type envGenVoiceState struct {
	env *timeEnvState
}

// EnvGen produces an arbitrary time-envelope value to a send port,
// optionally scaled by an incoming force curve, remapped to an output
// range (spec.md §4.5 Envelope generator).
type EnvGen struct {
	voices      []envGenVoiceState
	timeEnv     *param.Envelope
	forceEnv    *param.Envelope
	yMin, yMax  float64
	loop        bool
	scaleAmount float64
	audioRate   int32
}

// NewEnvGen allocates an EnvGen processor for up to maxVoices voices.
func NewEnvGen(maxVoices int) *EnvGen {
	return &EnvGen{voices: make([]envGenVoiceState, maxVoices), yMin: 0, yMax: 1, audioRate: 44100}
}

func (e *EnvGen) Name() string            { return "envgen" }
func (e *EnvGen) NumSendPorts() int       { return 1 }
func (e *EnvGen) NumReceivePorts() int    { return 1 } // incoming force 0..1
func (e *EnvGen) VoiceProducing() bool    { return true }
func (e *EnvGen) VoiceStateSize() int     { return 1 }
func (e *EnvGen) SetAudioRate(rate int32) { e.audioRate = rate }
func (e *EnvGen) SetBufferSize(int)       {}
func (e *EnvGen) Reset() {
	for i := range e.voices {
		e.InitVoiceState(i)
	}
}

// Configure sets the time envelope, optional force-mapping envelope,
// output range, and loop flag.
func (e *EnvGen) Configure(timeEnv, forceEnv *param.Envelope, yMin, yMax float64, loop bool, scaleAmount float64) {
	e.timeEnv, e.forceEnv, e.yMin, e.yMax, e.loop, e.scaleAmount = timeEnv, forceEnv, yMin, yMax, loop, scaleAmount
}

func (e *EnvGen) InitVoiceState(slot int) {
	var env *timeEnvState
	if e.timeEnv != nil {
		env = newTimeEnvState(e.timeEnv)
		env.loop = e.loop
	}
	e.voices[slot] = envGenVoiceState{env: env}
}

func (e *EnvGen) FireEvent(string, float64) {}

func (e *EnvGen) RenderMixed([]*workbuf.Buffer, []*workbuf.Buffer, int, float64) {}

// RenderVoice computes the envelope output per frame, applies the force
// curve (or a linear pass-through of the incoming force if no force
// envelope is configured), and remaps into [yMin, yMax].
func (e *EnvGen) RenderVoice(slot int, recv, send []*workbuf.Buffer, frames int, tempo float64) {
	if slot >= len(e.voices) || len(send) == 0 || e.voices[slot].env == nil {
		return
	}
	v := &e.voices[slot]
	out := send[0]
	var forceIn *workbuf.Buffer
	if len(recv) > 0 {
		forceIn = recv[0]
	}

	finishedAt := -1
	for i := 0; i < frames; i++ {
		raw := v.env.Step(tempo, e.audioRate)

		force := 1.0
		if forceIn != nil && forceIn.Valid {
			idx := i
			if idx >= forceIn.ConstStart {
				idx = forceIn.ConstStart
			}
			force = float64(forceIn.Data[idx])
		}

		var shaped float64
		if e.forceEnv != nil {
			shaped = raw * e.forceEnv.Value(force)
		} else {
			shaped = raw * force
		}

		out.Data[i] = float32(e.yMin + shaped*(e.yMax-e.yMin))

		if v.env.Finished() && finishedAt < 0 {
			finishedAt = i
		}
	}

	out.Valid = true
	if finishedAt >= 0 {
		out.ConstStart = finishedAt
		out.Final = true
	} else {
		out.ConstStart = frames
		out.Final = false
	}
}
