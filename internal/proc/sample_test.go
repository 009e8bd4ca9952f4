package proc

import (
	"testing"

	"github.com/cbegin/kunquat-go/internal/param"
)

func TestSampleLoopOffDeactivatesAtEnd(t *testing.T) {
	data := [][]float32{{0, 1, 2, 3, 4}}
	samp, err := param.NewSample(data, 440, param.LoopOff, 0, 0)
	if err != nil {
		t.Fatalf("NewSample failed: %v", err)
	}

	s := NewSample(1)
	s.SetAudioRate(44100)
	s.InitVoiceState(0)
	s.SetData(samp)

	pitch := newWBuf(64)
	pitch.buf.Valid = true
	out := newWBuf(64)
	s.RenderVoice(0, pitch.bufs(), out.bufs(), 64, 120)

	if s.Active(0) {
		t.Error("sample should have deactivated after running past its 5-frame length")
	}
}

func TestSampleLoopUnidirectionalWraps(t *testing.T) {
	data := [][]float32{{0, 1, 2, 3, 4, 5, 6, 7}}
	samp, _ := param.NewSample(data, 440, param.LoopUnidirectional, 2, 6)

	s := NewSample(1)
	s.SetAudioRate(44100)
	s.InitVoiceState(0)
	s.SetData(samp)

	pitch := newWBuf(256)
	pitch.buf.Valid = true
	out := newWBuf(256)
	s.RenderVoice(0, pitch.bufs(), out.bufs(), 256, 120)

	if !s.Active(0) {
		t.Error("a looping sample should remain active indefinitely")
	}
}
