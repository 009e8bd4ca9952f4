package proc

import (
	"github.com/cbegin/kunquat-go/internal/lfo"
	"github.com/cbegin/kunquat-go/internal/param"
	"github.com/cbegin/kunquat-go/internal/tstamp"
	"github.com/cbegin/kunquat-go/internal/workbuf"
)

// RampReleaseSpeed is the fallback linear release rate in dB/sec used
// when neither a force envelope nor a release envelope applies
// (spec.md §4.5 Force).
const RampReleaseSpeed = 200.0

// negInfDB is the force processor's -inf sentinel, matching
// workbuf.NegInf() so Mix's silent-tail detection recognizes it.
var negInfDB = float64(workbuf.NegInf())

// silenceFloorDB is the practical "inaudible" threshold the release
// ramp snaps to -inf at, rather than counting down to the literal
// sentinel at RampReleaseSpeed dB/sec (which would take far too long).
const silenceFloorDB = -120.0

type forceVoiceState struct {
	level     lfo.Linear
	tremolo   *lfo.LFO
	noteOn    bool
	releasing bool
	releaseDB float64

	forceEnv   *timeEnvState
	releaseEnv *timeEnvState
	sustain    bool
}

// Force emits per-voice amplitude in dB (spec.md §4.5 Force).
type Force struct {
	voices                []forceVoiceState
	forceEnvelope         *param.Envelope
	releaseEnvelope       *param.Envelope
	forceEnvXScalePitch   bool
	audioRate             int32
}

// NewForce allocates a Force processor for up to maxVoices simultaneous voices.
func NewForce(maxVoices int) *Force {
	f := &Force{voices: make([]forceVoiceState, maxVoices), audioRate: 44100}
	for i := range f.voices {
		f.InitVoiceState(i)
	}
	return f
}

func (f *Force) Name() string            { return "force" }
func (f *Force) NumSendPorts() int       { return 1 }
func (f *Force) NumReceivePorts() int    { return 0 }
func (f *Force) VoiceProducing() bool    { return true }
func (f *Force) VoiceStateSize() int     { return 1 }
func (f *Force) SetAudioRate(rate int32) { f.audioRate = rate }
func (f *Force) SetBufferSize(int)       {}
func (f *Force) Reset() {
	for i := range f.voices {
		f.InitVoiceState(i)
	}
}

// SetEnvelopes configures the optional force (note-on triggered) and
// release (note-off triggered, sustain-gated) envelopes.
func (f *Force) SetEnvelopes(force, release *param.Envelope, xScalePitch bool) {
	f.forceEnvelope = force
	f.releaseEnvelope = release
	f.forceEnvXScalePitch = xScalePitch
}

func (f *Force) InitVoiceState(slot int) {
	f.voices[slot] = forceVoiceState{level: *lfo.NewLinear(0), tremolo: lfo.NewLFO(), noteOn: true}
	if f.forceEnvelope != nil {
		f.voices[slot].forceEnv = newTimeEnvState(f.forceEnvelope)
	}
}

// NoteOff marks the voice as releasing; its release envelope (if any)
// begins, gated by sustain.
func (f *Force) NoteOff(slot int, sustain bool) {
	v := &f.voices[slot]
	v.noteOn = false
	v.sustain = sustain
	if f.releaseEnvelope != nil && !sustain {
		v.releaseEnv = newTimeEnvState(f.releaseEnvelope)
	}
	if f.releaseEnvelope == nil {
		v.releasing = true
		v.releaseDB = v.level.Value()
	}
}

// SetLevel jumps the force level immediately (note-on).
func (f *Force) SetLevel(slot int, db float64) {
	f.voices[slot].level = *lfo.NewLinear(db)
}

// Slide begins a force slide to target dB over length.
func (f *Force) Slide(slot int, target float64, length tstamp.Tstamp) {
	f.voices[slot].level.Slide(target, length)
}

// SetTremolo configures the tremolo LFO's speed (Hz) and depth (dB).
func (f *Force) SetTremolo(slot int, speedHz, depthDB float64, length tstamp.Tstamp) {
	v := &f.voices[slot]
	v.tremolo.SetSpeed(speedHz, length)
	v.tremolo.SetDepth(depthDB, length)
	if depthDB != 0 {
		v.tremolo.TurnOn()
	} else {
		v.tremolo.TurnOff()
	}
}

func (f *Force) FireEvent(name string, arg float64) {
	switch name {
	case "force":
		for i := range f.voices {
			f.SetLevel(i, arg)
		}
	}
}

func (f *Force) RenderMixed([]*workbuf.Buffer, []*workbuf.Buffer, int, float64) {}

// RenderVoice computes dB output for frames samples: force envelope or
// tremolo-modulated level while note_on, a release envelope once
// note_on goes false (if configured), else a linear ramp to -inf at
// RampReleaseSpeed dB/sec.
func (f *Force) RenderVoice(slot int, _ []*workbuf.Buffer, send []*workbuf.Buffer, frames int, tempo float64) {
	if slot >= len(f.voices) || len(send) == 0 {
		return
	}
	v := &f.voices[slot]
	out := send[0]
	constFromIdx := -1

	for i := 0; i < frames; i++ {
		var db float64
		if v.noteOn && v.forceEnv != nil {
			db = v.forceEnv.Step(tempo, f.audioRate) + v.tremolo.Step(tempo, f.audioRate)
		} else {
			db = v.level.Step(tempo, f.audioRate) + v.tremolo.Step(tempo, f.audioRate)
		}

		if !v.noteOn {
			if v.releaseEnv != nil {
				db = v.releaseEnv.Step(tempo, f.audioRate)
				if v.releaseEnv.Finished() && constFromIdx < 0 {
					constFromIdx = i
				}
			} else {
				if !v.releasing {
					v.releasing = true
					v.releaseDB = db
				}
				v.releaseDB -= RampReleaseSpeed / float64(f.audioRate)
				db = v.releaseDB
				if db <= silenceFloorDB && constFromIdx < 0 {
					db = negInfDB
					v.releaseDB = negInfDB
					constFromIdx = i
				}
			}
		}

		out.Data[i] = float32(db)
	}

	out.Valid = true
	if constFromIdx >= 0 {
		out.ConstStart = constFromIdx
		out.Final = true
	} else if !v.level.Active() && !v.tremolo.Active() && v.noteOn {
		out.ConstStart = 0
		out.Final = false
	} else {
		out.ConstStart = frames
		out.Final = false
	}
}

// Finished reports whether this voice's force output has reached
// permanent silence (the release ramp or release envelope completed).
func (f *Force) Finished(slot int) bool {
	v := &f.voices[slot]
	if v.releasing && v.releaseDB <= negInfDB {
		return true
	}
	if v.releaseEnv != nil && v.releaseEnv.Finished() {
		return true
	}
	return false
}
