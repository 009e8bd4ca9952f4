package proc

import (
	"math"

	"github.com/cbegin/kunquat-go/internal/workbuf"
)

// ChorusDelayMax bounds a chorus voice's delay in seconds; a
// configured delay outside [0, ChorusDelayMax) disables that voice
// (spec.md §4.5 Chorus).
const ChorusDelayMax = 0.25

const chorusMaxVoices = 8

type chorusVoice struct {
	delaySec float64
	rangeSec float64
	speedHz  float64
	volumeDB float64
	phase    float64
	enabled  bool
}

// Chorus mixes up to 8 modulated delay-line voices read from a single
// shared history buffer, each with its own delay/depth/speed/volume
// (spec.md §4.5 Chorus).
type Chorus struct {
	voices    [chorusMaxVoices]chorusVoice
	history   []float32
	writePos  int
	audioRate int32
}

// NewChorus allocates a Chorus processor with an empty voice set.
func NewChorus() *Chorus {
	c := &Chorus{audioRate: 44100}
	c.resizeHistory()
	return c
}

func (c *Chorus) Name() string         { return "chorus" }
func (c *Chorus) NumSendPorts() int    { return 1 }
func (c *Chorus) NumReceivePorts() int { return 1 }
func (c *Chorus) VoiceProducing() bool { return false }
func (c *Chorus) VoiceStateSize() int  { return 0 }
func (c *Chorus) SetAudioRate(rate int32) {
	c.audioRate = rate
	c.resizeHistory()
}
func (c *Chorus) SetBufferSize(int)  {}
func (c *Chorus) InitVoiceState(int) {}
func (c *Chorus) RenderVoice(int, []*workbuf.Buffer, []*workbuf.Buffer, int, float64) {}

func (c *Chorus) Reset() {
	clearF32(c.history)
	c.writePos = 0
	for i := range c.voices {
		c.voices[i].phase = 0
	}
}

func (c *Chorus) resizeHistory() {
	n := int(ChorusDelayMax*float64(c.audioRate)) + 8
	if n < 8 {
		n = 8
	}
	c.history = make([]float32, n)
}

// ConfigureVoice sets voice i's delay/range/speed/volume. A delay
// outside [0, ChorusDelayMax) disables the voice.
func (c *Chorus) ConfigureVoice(i int, delaySec, rangeSec, speedHz, volumeDB float64) {
	if i < 0 || i >= chorusMaxVoices {
		return
	}
	v := &c.voices[i]
	v.delaySec, v.rangeSec, v.speedHz, v.volumeDB = delaySec, rangeSec, speedHz, volumeDB
	v.enabled = delaySec >= 0 && delaySec < ChorusDelayMax
}

func (c *Chorus) FireEvent(string, float64) {}

func (c *Chorus) RenderMixed(recv, send []*workbuf.Buffer, frames int, tempo float64) {
	if len(recv) == 0 || len(send) == 0 {
		return
	}
	in := recv[0]
	out := send[0]
	n := len(c.history)

	for i := 0; i < frames; i++ {
		x := in.Data[i]
		c.history[c.writePos] = x

		var mix float32
		for vi := range c.voices {
			v := &c.voices[vi]
			if !v.enabled {
				continue
			}
			mod := math.Sin(v.phase * 2 * math.Pi)
			v.phase += v.speedHz / float64(c.audioRate)
			for v.phase >= 1 {
				v.phase -= 1
			}
			delaySec := v.delaySec + v.rangeSec*mod
			delayFrames := delaySec * float64(c.audioRate)
			if delayFrames < 0 {
				delayFrames = 0
			}

			readPos := float64(c.writePos) - delayFrames
			for readPos < 0 {
				readPos += float64(n)
			}
			i0 := int(readPos) % n
			i1 := (i0 + 1) % n
			frac := float32(readPos - math.Floor(readPos))
			sample := c.history[i0] + frac*(c.history[i1]-c.history[i0])

			gain := float32(math.Pow(10, v.volumeDB/20))
			mix += sample * gain
		}
		out.Data[i] = x + mix
		c.writePos = (c.writePos + 1) % n
	}
	out.Valid = true
	out.ConstStart = frames
	out.Final = false
}
