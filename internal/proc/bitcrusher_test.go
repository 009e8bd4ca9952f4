package proc

import "testing"

func TestBitcrusherResolutionReductionQuantizes(t *testing.T) {
	b := NewBitcrusher(1)
	b.SetAudioRate(44100)
	b.InitVoiceState(0)
	b.Configure(120, 1, false) // 1-bit resolution: only two output levels

	in := newWBuf(64)
	for i := range in.buf.Data[:64] {
		in.buf.Data[i] = float32(i) / 64
	}
	out := newWBuf(64)
	b.RenderVoice(0, in.bufs(), out.bufs(), 64, 120)

	seen := map[float32]bool{}
	for _, v := range out.buf.Data[:64] {
		seen[v] = true
	}
	if len(seen) > 2 {
		t.Errorf("1-bit resolution should produce at most 2 distinct levels, got %d: %v", len(seen), seen)
	}
}

func TestBitcrusherIgnoreMinBypassesResolution(t *testing.T) {
	b := NewBitcrusher(1)
	b.SetAudioRate(44100)
	b.InitVoiceState(0)
	b.Configure(120, 1, true)

	in := newWBuf(8)
	in.buf.Data[0] = 0.3137
	out := newWBuf(8)
	b.RenderVoice(0, in.bufs(), out.bufs(), 8, 120)
	if out.buf.Data[0] == 0 {
		t.Error("expected non-zero passthrough with res_ignore_min")
	}
}
