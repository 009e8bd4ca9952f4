package proc

import (
	"github.com/cbegin/kunquat-go/internal/lfo"
	"github.com/cbegin/kunquat-go/internal/tstamp"
	"github.com/cbegin/kunquat-go/internal/workbuf"
)

// KQTArpeggioNotesMax bounds the arpeggio cycle length (spec.md §4.5).
const KQTArpeggioNotesMax = 8

// pitchVoiceState is one voice's pitch-processor state: the carried
// base pitch (cents) driven by a Slider for slides, a vibrato LFO, and
// an optional arpeggio cycling through offsets.
type pitchVoiceState struct {
	base       lfo.Linear
	vibrato    *lfo.LFO
	arp        [KQTArpeggioNotesMax]float64
	arpLen     int
	arpRateHz  float64
	arpPhase   float64
	active     bool
}

// Pitch emits a pitch stream in cents (spec.md §4.5 Pitch).
type Pitch struct {
	voices    []pitchVoiceState
	audioRate int32
	tempo     float64
}

// NewPitch allocates a Pitch processor for up to maxVoices simultaneous voices.
func NewPitch(maxVoices int) *Pitch {
	p := &Pitch{voices: make([]pitchVoiceState, maxVoices), audioRate: 44100, tempo: 120}
	for i := range p.voices {
		p.voices[i].base = *lfo.NewLinear(0)
		p.voices[i].vibrato = lfo.NewLFO()
	}
	return p
}

func (p *Pitch) Name() string            { return "pitch" }
func (p *Pitch) NumSendPorts() int       { return 1 }
func (p *Pitch) NumReceivePorts() int    { return 0 }
func (p *Pitch) VoiceProducing() bool    { return true }
func (p *Pitch) VoiceStateSize() int     { return 1 }
func (p *Pitch) SetAudioRate(rate int32) { p.audioRate = rate }
func (p *Pitch) SetBufferSize(int)       {}
func (p *Pitch) Reset() {
	for i := range p.voices {
		p.InitVoiceState(i)
	}
}

// InitVoiceState resets one voice's pitch state to silence/rest.
func (p *Pitch) InitVoiceState(slot int) {
	p.voices[slot] = pitchVoiceState{base: *lfo.NewLinear(0), vibrato: lfo.NewLFO(), active: true}
}

// SetBase jumps the voice's base pitch to cents immediately (note-on).
func (p *Pitch) SetBase(slot int, cents float64) {
	p.voices[slot].base = *lfo.NewLinear(cents)
}

// Slide begins a pitch slide to target cents over length of musical time.
func (p *Pitch) Slide(slot int, target float64, length tstamp.Tstamp) {
	p.voices[slot].base.Slide(target, length)
}

// SetVibrato configures the vibrato LFO's speed (Hz) and depth (cents).
func (p *Pitch) SetVibrato(slot int, speedHz, depthCents float64, length tstamp.Tstamp) {
	v := &p.voices[slot]
	v.vibrato.SetSpeed(speedHz, length)
	v.vibrato.SetDepth(depthCents, length)
	if depthCents != 0 {
		v.vibrato.TurnOn()
	} else {
		v.vibrato.TurnOff()
	}
}

// SetArpeggio configures up to KQTArpeggioNotesMax cent offsets cycled
// at rateHz, a frame-count-driven phase counter.
func (p *Pitch) SetArpeggio(slot int, offsets []float64, rateHz float64) {
	v := &p.voices[slot]
	n := len(offsets)
	if n > KQTArpeggioNotesMax {
		n = KQTArpeggioNotesMax
	}
	v.arpLen = n
	for i := 0; i < n; i++ {
		v.arp[i] = offsets[i]
	}
	v.arpRateHz = rateHz
	v.arpPhase = 0
}

func (p *Pitch) FireEvent(name string, arg float64) {
	switch name {
	case "pitch":
		for i := range p.voices {
			p.SetBase(i, arg)
		}
	}
}

func (p *Pitch) RenderMixed([]*workbuf.Buffer, []*workbuf.Buffer, int, float64) {}

// RenderVoice computes one voice's pitch-in-cents output for frames
// samples, combining base+slide, vibrato, and arpeggio.
func (p *Pitch) RenderVoice(slot int, _ []*workbuf.Buffer, send []*workbuf.Buffer, frames int, tempo float64) {
	if slot >= len(p.voices) || len(send) == 0 {
		return
	}
	v := &p.voices[slot]
	out := send[0]
	for i := 0; i < frames; i++ {
		cents := v.base.Step(tempo, p.audioRate) + v.vibrato.Step(tempo, p.audioRate)
		if v.arpLen > 0 && v.arpRateHz > 0 {
			idx := int(v.arpPhase) % v.arpLen
			cents += v.arp[idx]
			v.arpPhase += v.arpRateHz / float64(p.audioRate)
			for v.arpPhase >= float64(v.arpLen) {
				v.arpPhase -= float64(v.arpLen)
			}
		}
		out.Data[i] = float32(cents)
	}
	out.Valid = true
	if !v.base.Active() && !v.vibrato.Active() && v.arpLen == 0 {
		out.ConstStart = 0
		out.Final = true
	} else {
		out.ConstStart = frames
		out.Final = false
	}
}
