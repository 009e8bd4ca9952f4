package proc

import (
	"math"
	"math/rand"

	"github.com/cbegin/kunquat-go/internal/workbuf"
)

// Waveform selects an Oscillator's shape.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSawtooth
	WaveTriangle
	WaveSquare
	WaveNoise
)

type oscVoiceState struct {
	phase  float64
	accum  float64 // running integral, for colored noise
	rng    *rand.Rand
}

// Oscillator is a phase-accumulator driven by a pitch input in cents
// (spec.md §4.5 Oscillator kinds). Noise is white, optionally
// integrated NoiseOrder times for colour.
type Oscillator struct {
	voices     []oscVoiceState
	wave       Waveform
	noiseOrder int
	audioRate  int32
	baseFreq   float64 // frequency at 0 cents
}

// NewOscillator allocates an Oscillator processor for up to maxVoices
// voices, with a reference frequency of 440Hz at 0 cents.
func NewOscillator(maxVoices int, wave Waveform) *Oscillator {
	o := &Oscillator{voices: make([]oscVoiceState, maxVoices), wave: wave, audioRate: 44100, baseFreq: 440}
	for i := range o.voices {
		o.voices[i].rng = rand.New(rand.NewSource(int64(i) + 1))
	}
	return o
}

func (o *Oscillator) Name() string            { return "osc" }
func (o *Oscillator) NumSendPorts() int       { return 1 }
func (o *Oscillator) NumReceivePorts() int    { return 1 } // pitch in cents
func (o *Oscillator) VoiceProducing() bool    { return true }
func (o *Oscillator) VoiceStateSize() int     { return 1 }
func (o *Oscillator) SetAudioRate(rate int32) { o.audioRate = rate }
func (o *Oscillator) SetBufferSize(int)       {}
func (o *Oscillator) Reset() {
	for i := range o.voices {
		o.InitVoiceState(i)
	}
}

func (o *Oscillator) InitVoiceState(slot int) {
	seed := o.voices[slot].rng
	o.voices[slot] = oscVoiceState{rng: seed}
}

// Seed sets the voice's noise RNG seed (spec.md §4.7 per-voice derived seed).
func (o *Oscillator) Seed(slot int, seed int64) {
	o.voices[slot].rng = rand.New(rand.NewSource(seed))
}

// SetNoiseOrder sets how many times white noise is integrated for colour.
func (o *Oscillator) SetNoiseOrder(order int) { o.noiseOrder = order }

func (o *Oscillator) FireEvent(name string, arg float64) {
	switch name {
	case "noise_order":
		o.noiseOrder = int(arg)
	}
}

func (o *Oscillator) RenderMixed([]*workbuf.Buffer, []*workbuf.Buffer, int, float64) {}

func centsToFreq(base, cents float64) float64 {
	return base * math.Pow(2, cents/1200.0)
}

// RenderVoice advances the phase accumulator by the pitch-input-derived
// frequency each frame and writes the selected waveform's value.
func (o *Oscillator) RenderVoice(slot int, recv, send []*workbuf.Buffer, frames int, tempo float64) {
	if slot >= len(o.voices) || len(send) == 0 {
		return
	}
	v := &o.voices[slot]
	out := send[0]
	var pitch *workbuf.Buffer
	if len(recv) > 0 {
		pitch = recv[0]
	}

	for i := 0; i < frames; i++ {
		cents := 0.0
		if pitch != nil && pitch.Valid {
			idx := i
			if idx >= pitch.ConstStart {
				idx = pitch.ConstStart
			}
			cents = float64(pitch.Data[idx])
		}
		freq := centsToFreq(o.baseFreq, cents)
		v.phase += freq / float64(o.audioRate)
		for v.phase >= 1 {
			v.phase -= 1
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(v.phase * 2 * math.Pi)
		case WaveSawtooth:
			val = 2*v.phase - 1
		case WaveTriangle:
			val = 4*math.Abs(v.phase-0.5) - 1
		case WaveSquare:
			if v.phase < 0.5 {
				val = 1
			} else {
				val = -1
			}
		case WaveNoise:
			val = v.rng.Float64()*2 - 1
			for n := 0; n < o.noiseOrder; n++ {
				v.accum += val
				val = v.accum
			}
		}
		out.Data[i] = float32(val)
	}
	out.Valid = true
	out.ConstStart = frames
	out.Final = false
}
