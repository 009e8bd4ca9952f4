package proc

import (
	"math"

	"github.com/cbegin/kunquat-go/internal/workbuf"
)

// Amplify combines an audio-rate signal with a dB control signal
// (typically a Force processor's output) into a gain-applied output:
// out = signal * 10^(db/20). The uniform processor interface has no
// dedicated "apply force to signal" stage, so audio units wire Force's
// dB buffer into one of these wherever a voice-signal-producing
// processor needs to be scaled by it.
type Amplify struct{}

// NewAmplify allocates an Amplify processor; it needs no per-voice
// state beyond what its two receive ports already carry.
func NewAmplify() *Amplify { return &Amplify{} }

func (a *Amplify) Name() string         { return "amplify" }
func (a *Amplify) NumSendPorts() int    { return 1 }
func (a *Amplify) NumReceivePorts() int { return 2 } // 0: signal, 1: dB control
func (a *Amplify) VoiceProducing() bool { return true }
func (a *Amplify) VoiceStateSize() int  { return 0 }
func (a *Amplify) SetAudioRate(int32)   {}
func (a *Amplify) SetBufferSize(int)    {}
func (a *Amplify) Reset()               {}
func (a *Amplify) InitVoiceState(int)   {}
func (a *Amplify) FireEvent(string, float64) {}

func (a *Amplify) RenderMixed(recv, send []*workbuf.Buffer, frames int, tempo float64) {
	a.render(recv, send, frames)
}

// RenderVoice and mixed rendering share the same gain-multiply logic;
// Amplify is wired either as a per-voice stage (signal+dB both voice
// buffers) or a mixed stage (both mixed buffers), so both call this.
func (a *Amplify) render(recv, send []*workbuf.Buffer, frames int) {
	if len(recv) < 2 || len(send) == 0 {
		return
	}
	sig, ctrl := recv[0], recv[1]
	out := send[0]
	constFrom := frames
	final := sig.Final && ctrl.Final
	for i := 0; i < frames; i++ {
		db := float64(ctrl.Data[i])
		gain := 0.0
		if db > -100 {
			gain = math.Pow(10, db/20)
		}
		out.Data[i] = sig.Data[i] * float32(gain)
	}
	if sig.ConstStart > ctrl.ConstStart {
		constFrom = sig.ConstStart
	} else {
		constFrom = ctrl.ConstStart
	}
	if constFrom > frames {
		constFrom = frames
	}
	out.Valid = true
	out.ConstStart = constFrom
	out.Final = final
}

func (a *Amplify) RenderVoice(slot int, recv, send []*workbuf.Buffer, frames int, tempo float64) {
	a.render(recv, send, frames)
}
