package proc

import (
	"math"
	"testing"
)

func TestWarpResonanceEndpoints(t *testing.T) {
	if got := warpResonance(100); math.Abs(got) > 1e-9 {
		t.Errorf("warpResonance(100) = %v, want ~0", got)
	}
	if got := warpResonance(0); math.Abs(got-2) > 1e-9 {
		t.Errorf("warpResonance(0) = %v, want 2 (50^1 - 1)*2/49 = 2", got)
	}
}

func TestFilterLowpassAttenuatesHighFrequency(t *testing.T) {
	rate := int32(44100)
	f := NewFilter(1, FilterLowpass)
	f.SetAudioRate(rate)
	f.InitVoiceState(0)
	f.Configure(0.02, 0) // very low cutoff

	recv := []*wbuf{newWBuf(512)}
	send := []*wbuf{newWBuf(512)}

	// feed a high frequency tone and measure RMS after settling
	freq := 8000.0
	for i := 0; i < 512; i++ {
		recv[0].buf.Data[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(rate)))
	}
	f.RenderVoice(0, recv[0].bufs(), send[0].bufs(), 512, 120)

	var rmsIn, rmsOut float64
	for i := 256; i < 512; i++ {
		rmsIn += float64(recv[0].buf.Data[i]) * float64(recv[0].buf.Data[i])
		rmsOut += float64(send[0].buf.Data[i]) * float64(send[0].buf.Data[i])
	}
	if rmsOut >= rmsIn {
		t.Errorf("lowpass should attenuate an 8kHz tone at cutoff~0.02: rmsIn=%v rmsOut=%v", rmsIn, rmsOut)
	}
}
