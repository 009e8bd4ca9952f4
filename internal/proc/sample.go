package proc

import (
	"github.com/cbegin/kunquat-go/internal/param"
	"github.com/cbegin/kunquat-go/internal/workbuf"
)

type sampleVoiceState struct {
	relPos    int
	relPosRem float64
	dir       int // +1 or -1, for bidirectional loops
	active    bool
}

// Sample plays back a stored param.Sample with linear interpolation
// between adjacent frames (spec.md §4.5 Sample / PCM).
type Sample struct {
	voices    []sampleVoiceState
	data      *param.Sample
	audioRate int32
	onNoteOff func(slot int) // hook: triggers the release envelope elsewhere
}

// NewSample allocates a Sample/PCM processor for up to maxVoices voices.
func NewSample(maxVoices int) *Sample {
	return &Sample{voices: make([]sampleVoiceState, maxVoices), audioRate: 44100}
}

func (s *Sample) Name() string            { return "sample" }
func (s *Sample) NumSendPorts() int       { return 1 }
func (s *Sample) NumReceivePorts() int    { return 1 } // pitch in cents
func (s *Sample) VoiceProducing() bool    { return true }
func (s *Sample) VoiceStateSize() int     { return 1 }
func (s *Sample) SetAudioRate(rate int32) { s.audioRate = rate }
func (s *Sample) SetBufferSize(int)       {}
func (s *Sample) Reset() {
	for i := range s.voices {
		s.InitVoiceState(i)
	}
}

// SetData attaches the sample to play back.
func (s *Sample) SetData(data *param.Sample) { s.data = data }

// SetNoteOffHook registers a callback fired the first frame a voice's
// playback hits loop-off end-of-data. It is the only place the hook
// fires; Sample has no note-off handler of its own.
func (s *Sample) SetNoteOffHook(fn func(slot int)) { s.onNoteOff = fn }

func (s *Sample) InitVoiceState(slot int) {
	s.voices[slot] = sampleVoiceState{dir: 1, active: true}
}

func (s *Sample) FireEvent(string, float64) {}

func (s *Sample) RenderMixed([]*workbuf.Buffer, []*workbuf.Buffer, int, float64) {}

// RenderVoice advances playback position by target_freq/mid_freq per
// output frame (see the sample_rate/audio_rate note below), applying
// the configured loop mode, and linearly interpolates between adjacent
// sample frames.
func (s *Sample) RenderVoice(slot int, recv, send []*workbuf.Buffer, frames int, tempo float64) {
	if s.data == nil || slot >= len(s.voices) || len(send) == 0 {
		return
	}
	v := &s.voices[slot]
	out := send[0]
	var pitch *workbuf.Buffer
	if len(recv) > 0 {
		pitch = recv[0]
	}
	length := s.data.Len()

	endedAt := -1
	for i := 0; i < frames; i++ {
		if !v.active {
			out.Data[i] = 0
			if endedAt < 0 {
				endedAt = i
			}
			continue
		}
		cents := 0.0
		if pitch != nil && pitch.Valid {
			idx := i
			if idx >= pitch.ConstStart {
				idx = pitch.ConstStart
			}
			cents = float64(pitch.Data[idx])
		}
		// advance = (target_freq/mid_freq)*(sample_rate/audio_rate); this
		// engine has no separate native-sample-rate field on param.Sample,
		// so sample_rate/audio_rate collapses to 1 (the PCM data is
		// assumed pre-resampled to the render's audio rate).
		targetFreq := centsToFreq(440, cents)
		advance := targetFreq / s.data.MidFreq

		a := s.data.At(0, v.relPos)
		b := s.data.At(0, v.relPos+v.dir)
		out.Data[i] = a + float32(v.relPosRem)*(b-a)

		v.relPosRem += advance
		step := int(v.relPosRem)
		v.relPosRem -= float64(step)
		v.relPos += step * v.dir

		switch s.data.LoopMode {
		case param.LoopOff:
			if v.relPos >= length || v.relPos < 0 {
				v.active = false
				if s.onNoteOff != nil {
					s.onNoteOff(slot)
				}
			}
		case param.LoopUnidirectional:
			if v.relPos >= s.data.LoopEnd {
				v.relPos = s.data.LoopStart + (v.relPos - s.data.LoopEnd)
			}
		case param.LoopBidirectional:
			if v.relPos >= s.data.LoopEnd-1 {
				v.relPos = s.data.LoopEnd - 1 - (v.relPos - (s.data.LoopEnd - 1))
				v.dir = -1
			} else if v.relPos <= s.data.LoopStart {
				v.relPos = s.data.LoopStart + (s.data.LoopStart - v.relPos)
				v.dir = 1
			}
		}
	}
	out.Valid = true
	if endedAt >= 0 {
		out.ConstStart = endedAt
		out.Final = true
	} else {
		out.ConstStart = frames
		out.Final = false
	}
}

// Active reports whether the voice is still producing sample data
// (false once a non-looping sample has run past its end).
func (s *Sample) Active(slot int) bool { return s.voices[slot].active }
