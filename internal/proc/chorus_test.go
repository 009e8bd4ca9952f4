package proc

import "testing"

func TestChorusDisabledVoiceDoesNotContribute(t *testing.T) {
	c := NewChorus()
	c.SetAudioRate(44100)
	c.ConfigureVoice(0, -1, 0, 1, 0) // negative delay disables per spec

	in := newWBuf(64)
	in.buf.Data[0] = 1
	out := newWBuf(64)
	c.RenderMixed(in.bufs(), out.bufs(), 64, 120)
	if out.buf.Data[0] != 1 {
		t.Errorf("with no enabled voices, output should equal dry input: got %v", out.buf.Data[0])
	}
}

func TestChorusEnabledVoiceAddsDelayedSignal(t *testing.T) {
	c := NewChorus()
	c.SetAudioRate(44100)
	c.ConfigureVoice(0, 0.01, 0, 0, 0) // 10ms delay, no modulation, unity gain

	in := newWBuf(1024)
	in.buf.Data[0] = 1
	out := newWBuf(1024)
	c.RenderMixed(in.bufs(), out.bufs(), 1024, 120)

	// ~441 frames later the delayed impulse should appear added to the dry signal
	if out.buf.Data[441] <= 0 {
		t.Errorf("expected a delayed contribution near frame 441, got %v", out.buf.Data[441])
	}
}
