package proc

import (
	"math"

	"github.com/cbegin/kunquat-go/internal/workbuf"
)

type bitcrusherVoiceState struct {
	held       float32
	holdFrames float64 // remaining hold-timer frames
}

// Bitcrusher applies independent sample-rate-reduction (hold) and
// resolution-reduction effects (spec.md §4.5 Bitcrusher).
type Bitcrusher struct {
	voices       []bitcrusherVoiceState
	cutoff       float64 // semitone-like cutoff parameter
	resolution   float64
	resIgnoreMin bool
	audioRate    int32
}

// NewBitcrusher allocates a Bitcrusher processor for up to maxVoices voices.
func NewBitcrusher(maxVoices int) *Bitcrusher {
	return &Bitcrusher{voices: make([]bitcrusherVoiceState, maxVoices), cutoff: 0, resolution: 24, audioRate: 44100}
}

func (b *Bitcrusher) Name() string            { return "bitcrusher" }
func (b *Bitcrusher) NumSendPorts() int       { return 1 }
func (b *Bitcrusher) NumReceivePorts() int    { return 1 }
func (b *Bitcrusher) VoiceProducing() bool    { return true }
func (b *Bitcrusher) VoiceStateSize() int     { return 1 }
func (b *Bitcrusher) SetAudioRate(rate int32) { b.audioRate = rate }
func (b *Bitcrusher) SetBufferSize(int)       {}
func (b *Bitcrusher) Reset() {
	for i := range b.voices {
		b.InitVoiceState(i)
	}
}

func (b *Bitcrusher) InitVoiceState(slot int) { b.voices[slot] = bitcrusherVoiceState{} }

// Configure sets the hold cutoff (in the spec's 2^(cutoff/12)*220
// formula units) and the resolution-reduction bit depth.
func (b *Bitcrusher) Configure(cutoff, resolution float64, ignoreMin bool) {
	b.cutoff, b.resolution, b.resIgnoreMin = cutoff, resolution, ignoreMin
}

func (b *Bitcrusher) FireEvent(name string, arg float64) {
	switch name {
	case "cutoff":
		b.cutoff = arg
	case "resolution":
		b.resolution = arg
	}
}

func (b *Bitcrusher) RenderMixed([]*workbuf.Buffer, []*workbuf.Buffer, int, float64) {}

// RenderVoice applies the hold (sample-rate reduction) then the
// resolution reduction, in that order, per spec.md's formulas.
func (b *Bitcrusher) RenderVoice(slot int, recv, send []*workbuf.Buffer, frames int, tempo float64) {
	if slot >= len(b.voices) || len(send) == 0 || len(recv) == 0 {
		return
	}
	v := &b.voices[slot]
	in := recv[0]
	out := send[0]

	holdFrames := float64(b.audioRate) / (math.Pow(2, b.cutoff/12) * 220)

	for i := 0; i < frames; i++ {
		x := in.Data[i]

		if holdFrames <= 1 {
			// A hold of at most one frame disables sample-rate reduction.
			v.held = x
		} else {
			if v.holdFrames <= 0 {
				excess := -v.holdFrames
				v.held = lerpExcess(v.held, x, excess, holdFrames)
				v.holdFrames = holdFrames - excess
			}
			v.holdFrames--
		}

		out.Data[i] = b.reduceResolution(v.held)
	}
	out.Valid = true
	out.ConstStart = frames
	out.Final = false
}

func lerpExcess(held, next float32, excess, holdFrames float64) float32 {
	if holdFrames <= 0 {
		return next
	}
	t := float32(clampF(excess/holdFrames, 0, 1))
	return held + t*(next-held)
}

func (b *Bitcrusher) reduceResolution(in float32) float32 {
	if b.resIgnoreMin || b.resolution <= 0 {
		return in
	}
	mult := math.Pow(2, b.resolution)
	v := (math.Floor((float64(in)+1)/2*mult) / mult) * 2 - 1
	return float32(v)
}
