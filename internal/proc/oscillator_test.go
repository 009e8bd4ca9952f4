package proc

import (
	"math"
	"testing"
)

func TestOscillatorSineBounded(t *testing.T) {
	o := NewOscillator(1, WaveSine)
	o.SetAudioRate(44100)
	o.InitVoiceState(0)

	pitch := newWBuf(256)
	pitch.buf.Valid = true
	pitch.buf.ConstStart = 256
	for i := range pitch.buf.Data[:256] {
		pitch.buf.Data[i] = 0 // 0 cents = 440Hz
	}
	out := newWBuf(256)

	o.RenderVoice(0, pitch.bufs(), out.bufs(), 256, 120)
	for i, v := range out.buf.Data[:256] {
		if math.Abs(float64(v)) > 1.0001 {
			t.Fatalf("Data[%d] = %v out of [-1,1]", i, v)
		}
	}
}

func TestOscillatorSquareIsBinary(t *testing.T) {
	o := NewOscillator(1, WaveSquare)
	o.SetAudioRate(44100)
	o.InitVoiceState(0)
	pitch := newWBuf(128)
	pitch.buf.Valid = true
	out := newWBuf(128)
	o.RenderVoice(0, pitch.bufs(), out.bufs(), 128, 120)
	for _, v := range out.buf.Data[:128] {
		if v != 1 && v != -1 {
			t.Fatalf("square wave value %v is not +-1", v)
		}
	}
}

func TestOscillatorNoiseWithinRange(t *testing.T) {
	o := NewOscillator(1, WaveNoise)
	o.SetAudioRate(44100)
	o.InitVoiceState(0)
	pitch := newWBuf(128)
	out := newWBuf(128)
	o.RenderVoice(0, pitch.bufs(), out.bufs(), 128, 120)
	for _, v := range out.buf.Data[:128] {
		if v < -1.0001 || v > 1.0001 {
			t.Fatalf("noise value %v out of [-1,1]", v)
		}
	}
}
