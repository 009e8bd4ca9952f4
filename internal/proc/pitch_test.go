package proc

import (
	"testing"

	"github.com/cbegin/kunquat-go/internal/tstamp"
)

func TestPitchBaseHoldsSteadyWithoutModulation(t *testing.T) {
	p := NewPitch(1)
	p.SetAudioRate(44100)
	p.InitVoiceState(0)
	p.SetBase(0, 1200) // one octave up

	out := newWBuf(64)
	p.RenderVoice(0, nil, out.bufs(), 64, 120)
	for i, v := range out.buf.Data[:64] {
		if v != 1200 {
			t.Fatalf("Data[%d] = %v, want steady 1200 cents", i, v)
		}
	}
	if !out.buf.Final {
		t.Error("a steady, unmodulated pitch should report Final")
	}
}

func TestPitchSlideMovesTowardTarget(t *testing.T) {
	p := NewPitch(1)
	p.SetAudioRate(44100)
	p.InitVoiceState(0)
	p.SetBase(0, 0)
	p.Slide(0, 1200, tstamp.FromBeats(1))

	out := newWBuf(512)
	p.RenderVoice(0, nil, out.bufs(), 512, 120)
	if out.buf.Data[511] <= out.buf.Data[0] {
		t.Errorf("pitch should be climbing toward 1200: start=%v end=%v", out.buf.Data[0], out.buf.Data[511])
	}
}
