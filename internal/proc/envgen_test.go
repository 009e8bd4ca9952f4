package proc

import (
	"testing"

	"github.com/cbegin/kunquat-go/internal/param"
)

func TestEnvGenRemapsToRange(t *testing.T) {
	env, err := param.NewEnvelope([]param.Point{{0, 0}, {1, 1}}, -1, -1, param.InterpLinear)
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}
	e := NewEnvGen(1)
	e.SetAudioRate(44100)
	e.Configure(env, nil, -10, 10, false, 0)
	e.InitVoiceState(0)

	force := newWBuf(8)
	out := newWBuf(8)
	e.RenderVoice(0, force.bufs(), out.bufs(), 8, 120)
	if out.buf.Data[0] < -10.0001 || out.buf.Data[0] > 10.0001 {
		t.Errorf("Data[0] = %v, want within [-10,10]", out.buf.Data[0])
	}
}

func TestEnvGenFinishesNonLoopingEnvelope(t *testing.T) {
	env, _ := param.NewEnvelope([]param.Point{{0, 0}, {0.0001, 1}}, -1, -1, param.InterpLinear)
	e := NewEnvGen(1)
	e.SetAudioRate(44100)
	e.Configure(env, nil, 0, 1, false, 0)
	e.InitVoiceState(0)

	force := newWBuf(256)
	out := newWBuf(256)
	e.RenderVoice(0, force.bufs(), out.bufs(), 256, 120)
	if !out.buf.Final {
		t.Error("a short non-looping envelope should finish and report Final within 256 frames")
	}
}
