package proc

import (
	"math"

	"github.com/cbegin/kunquat-go/internal/workbuf"
)

// FilterMode selects the state-variable filter's output tap.
type FilterMode int

const (
	FilterLowpass FilterMode = iota
	FilterHighpass
)

type filterVoiceState struct {
	s1, s2 float64
}

// Filter is a state-variable lowpass/highpass filter, per channel
// (spec.md §4.5 Filter).
type Filter struct {
	voices    []filterVoiceState
	mode      FilterMode
	cutoff    float64 // normalised 0..1
	resonance float64 // 0..100 raw input, warped internally
	audioRate int32
}

// NewFilter allocates a Filter processor for up to maxVoices voices.
func NewFilter(maxVoices int, mode FilterMode) *Filter {
	return &Filter{voices: make([]filterVoiceState, maxVoices), mode: mode, cutoff: 1, audioRate: 44100}
}

func (f *Filter) Name() string            { return "filter" }
func (f *Filter) NumSendPorts() int       { return 1 }
func (f *Filter) NumReceivePorts() int    { return 1 }
func (f *Filter) VoiceProducing() bool    { return true }
func (f *Filter) VoiceStateSize() int     { return 1 }
func (f *Filter) SetAudioRate(rate int32) { f.audioRate = rate }
func (f *Filter) SetBufferSize(int)       {}
func (f *Filter) Reset() {
	for i := range f.voices {
		f.InitVoiceState(i)
	}
}

func (f *Filter) InitVoiceState(slot int) { f.voices[slot] = filterVoiceState{} }

// Configure sets the normalised cutoff (0..1) and the raw resonance
// input (0..100), warped by the §4.5 formula for musical response.
func (f *Filter) Configure(cutoff, resonance float64) {
	f.cutoff, f.resonance = cutoff, resonance
}

// warpResonance maps a raw 0..100 resonance input into the filter's
// internal Q^-1 coefficient, per spec.md §4.5:
// (50^((100-r)/100) - 1) * 2 / (50-1)
func warpResonance(r float64) float64 {
	return (math.Pow(50, (100-r)/100) - 1) * 2 / (50 - 1)
}

func (f *Filter) FireEvent(name string, arg float64) {
	switch name {
	case "cutoff":
		f.cutoff = arg
	case "resonance":
		f.resonance = arg
	}
}

func (f *Filter) RenderMixed([]*workbuf.Buffer, []*workbuf.Buffer, int, float64) {}

// RenderVoice runs the exact state-variable update given in spec.md
// §4.5: u1 = g*hp, bp = u1+s1, s1 = u1+bp; u2 = g*bp, lp = u2+s2,
// s2 = u2+lp.
func (f *Filter) RenderVoice(slot int, recv, send []*workbuf.Buffer, frames int, tempo float64) {
	if slot >= len(f.voices) || len(send) == 0 || len(recv) == 0 {
		return
	}
	v := &f.voices[slot]
	in := recv[0]
	out := send[0]

	g := clampF(f.cutoff, 0, 1)
	k := warpResonance(clampF(f.resonance, 0, 100))
	if k <= 0 {
		k = 1e-6
	}

	for i := 0; i < frames; i++ {
		x := float64(in.Data[i])
		hp := (x - v.s1*(k+g) - v.s2) / (1 + k*g + g*g)
		u1 := g * hp
		bp := u1 + v.s1
		v.s1 = u1 + bp
		u2 := g * bp
		lp := u2 + v.s2
		v.s2 = u2 + lp

		if f.mode == FilterLowpass {
			out.Data[i] = float32(lp)
		} else {
			out.Data[i] = float32(hp)
		}
	}
	out.Valid = true
	out.ConstStart = frames
	out.Final = false
}
