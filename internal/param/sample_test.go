package param

import "testing"

func TestNewSampleValidatesChannels(t *testing.T) {
	_, err := NewSample([][]float32{{1}, {1}, {1}}, 440, LoopOff, 0, 0)
	if err == nil {
		t.Error("expected error for 3 channels")
	}
}

func TestNewSampleValidatesLoopRegion(t *testing.T) {
	data := [][]float32{make([]float32, 10)}
	if _, err := NewSample(data, 440, LoopUnidirectional, 5, 3); err == nil {
		t.Error("expected error for loopEnd <= loopStart")
	}
	if _, err := NewSample(data, 440, LoopUnidirectional, 0, 20); err == nil {
		t.Error("expected error for loopEnd past length")
	}
}

func TestSampleAtOutOfRangeIsZero(t *testing.T) {
	data := [][]float32{{1, 2, 3}}
	s, err := NewSample(data, 440, LoopOff, 0, 0)
	if err != nil {
		t.Fatalf("NewSample failed: %v", err)
	}
	if s.At(0, -1) != 0 || s.At(0, 3) != 0 {
		t.Error("At should return 0 out of range")
	}
	if s.At(0, 1) != 2 {
		t.Errorf("At(0,1) = %v, want 2", s.At(0, 1))
	}
}

func TestSampleMonoChannelFallback(t *testing.T) {
	data := [][]float32{{1, 2, 3}}
	s, _ := NewSample(data, 440, LoopOff, 0, 0)
	if s.Channels() != 1 {
		t.Errorf("Channels() = %d, want 1", s.Channels())
	}
	if s.At(1, 0) != 1 {
		t.Error("requesting channel 1 on a mono sample should fall back to channel 0")
	}
}
