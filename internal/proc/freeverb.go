package proc

import (
	"math"

	"github.com/cbegin/kunquat-go/internal/workbuf"
)

// combFilter is a damped feedback comb: a classic Freeverb/Schroeder
// building block, generalized from the teacher's 4-comb Reverb into an
// 8-comb stereo pair with a one-pole damping stage in the feedback path.
type combFilter struct {
	buf    []float32
	pos    int
	fb     float32
	damp   float32
	filter float32
}

func (c *combFilter) process(in float32) float32 {
	out := c.buf[c.pos]
	c.filter = out*(1-c.damp) + c.filter*c.damp
	c.buf[c.pos] = in + c.filter*c.fb
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

type allpassFilter struct {
	buf []float32
	pos int
	fb  float32
}

func (a *allpassFilter) process(in float32) float32 {
	bufOut := a.buf[a.pos]
	out := -in + bufOut
	a.buf[a.pos] = in + bufOut*a.fb
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}

const freeverbNumCombs = 8
const freeverbNumAllpass = 4

// channelReverb is one channel's (left or right) bank of combs + allpasses.
type channelReverb struct {
	combs   [freeverbNumCombs]combFilter
	allpass [freeverbNumAllpass]allpassFilter
}

// Freeverb is a Schroeder reverb: 8 comb filters + 4 all-pass filters
// per channel, with the right channel's delay lines offset by
// stereo_spread samples (spec.md §4.5 Freeverb).
type Freeverb struct {
	left, right channelReverb
	roomSize    float32
	damp01      float32
	reflSetting float32
	stereo      int
	audioRate   int32
}

// NewFreeverb allocates a stereo Freeverb processor.
func NewFreeverb() *Freeverb {
	f := &Freeverb{roomSize: 0.5, damp01: 0.5, reflSetting: 20, stereo: 23, audioRate: 44100}
	f.build()
	return f
}

func (f *Freeverb) Name() string            { return "freeverb" }
func (f *Freeverb) NumSendPorts() int       { return 2 }
func (f *Freeverb) NumReceivePorts() int    { return 2 }
func (f *Freeverb) VoiceProducing() bool    { return false }
func (f *Freeverb) VoiceStateSize() int     { return 0 }
func (f *Freeverb) SetAudioRate(rate int32) { f.audioRate = rate; f.build() }
func (f *Freeverb) SetBufferSize(int)       {}
func (f *Freeverb) InitVoiceState(int)      {}
func (f *Freeverb) RenderVoice(int, []*workbuf.Buffer, []*workbuf.Buffer, int, float64) {}

func (f *Freeverb) Reset() {
	for i := range f.left.combs {
		clearF32(f.left.combs[i].buf)
		clearF32(f.right.combs[i].buf)
	}
	for i := range f.left.allpass {
		clearF32(f.left.allpass[i].buf)
		clearF32(f.right.allpass[i].buf)
	}
}

func clearF32(s []float32) {
	for i := range s {
		s[i] = 0
	}
}

// Configure sets room size, damping (0..1), reflectivity setting, and
// the right-channel stereo spread in samples.
func (f *Freeverb) Configure(roomSize, damp01, reflSetting float32, stereoSpread int) {
	f.roomSize, f.damp01, f.reflSetting, f.stereo = roomSize, damp01, reflSetting, stereoSpread
	f.build()
}

func (f *Freeverb) FireEvent(name string, arg float64) {
	switch name {
	case "room_size":
		f.roomSize = float32(arg)
		f.build()
	case "damp":
		f.damp01 = float32(arg)
		f.build()
	}
}

// baseCombLens/baseAllpassLens are the classic Freeverb tuning lengths
// at 44100Hz (in samples), scaled by room size and rescaled to the
// current audio rate.
var baseCombLens = [freeverbNumCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
var baseAllpassLens = [freeverbNumAllpass]int{556, 441, 341, 225}

func (f *Freeverb) build() {
	dampAdj := clampF(math.Pow(float64(f.damp01), 44100.0/float64(f.audioRate)), 0, 1)
	reflCoef := math.Pow(2, -5/float64(maxF(f.reflSetting, 1)))
	rateScale := float64(f.audioRate) / 44100.0

	build := func(ch *channelReverb, spread int) {
		for i := 0; i < freeverbNumCombs; i++ {
			n := int(float64(baseCombLens[i]+spread)*rateScale*float64(f.roomSize)) + 1
			ch.combs[i] = combFilter{buf: make([]float32, n), fb: float32(reflCoef), damp: float32(dampAdj)}
		}
		for i := 0; i < freeverbNumAllpass; i++ {
			n := int(float64(baseAllpassLens[i]+spread)*rateScale) + 1
			ch.allpass[i] = allpassFilter{buf: make([]float32, n), fb: 0.5}
		}
	}
	build(&f.left, 0)
	build(&f.right, f.stereo)
}

func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func (f *Freeverb) RenderMixed(recv, send []*workbuf.Buffer, frames int, tempo float64) {
	if len(recv) < 2 || len(send) < 2 {
		return
	}
	inL, inR := recv[0], recv[1]
	outL, outR := send[0], send[1]

	for i := 0; i < frames; i++ {
		mono := (inL.Data[i] + inR.Data[i]) * 0.5

		var l, r float32
		for c := range f.left.combs {
			l += f.left.combs[c].process(mono)
		}
		for c := range f.right.combs {
			r += f.right.combs[c].process(mono)
		}
		l *= 1.0 / freeverbNumCombs
		r *= 1.0 / freeverbNumCombs
		for a := range f.left.allpass {
			l = f.left.allpass[a].process(l)
		}
		for a := range f.right.allpass {
			r = f.right.allpass[a].process(r)
		}
		outL.Data[i] = l
		outR.Data[i] = r
	}
	outL.Valid, outR.Valid = true, true
	outL.ConstStart, outR.ConstStart = frames, frames
	outL.Final, outR.Final = false, false
}
