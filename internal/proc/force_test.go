package proc

import "testing"

func TestForceRampReleaseReachesSilence(t *testing.T) {
	f := NewForce(1)
	f.SetAudioRate(44100)
	f.InitVoiceState(0)
	f.SetLevel(0, 0)
	f.NoteOff(0, false)

	out := newWBuf(44100)
	f.RenderVoice(0, nil, out.bufs(), 44100, 120)

	// at 200 dB/sec from 0dB, silence (-1e18 sentinel) is reached well within 1 second
	if !out.buf.Final {
		t.Error("a completed release ramp should mark the buffer Final")
	}
	if out.buf.Data[out.buf.ConstStart] > -1e8 {
		t.Errorf("expected the ramp to reach the silence sentinel, got %v", out.buf.Data[out.buf.ConstStart])
	}
}

func TestForceNoteOnHoldsLevel(t *testing.T) {
	f := NewForce(1)
	f.SetAudioRate(44100)
	f.InitVoiceState(0)
	f.SetLevel(0, -6)

	out := newWBuf(64)
	f.RenderVoice(0, nil, out.bufs(), 64, 120)
	for i, v := range out.buf.Data[:64] {
		if v != -6 {
			t.Fatalf("Data[%d] = %v, want steady -6dB while held", i, v)
		}
	}
}
