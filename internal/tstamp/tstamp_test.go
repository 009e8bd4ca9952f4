package tstamp

import "testing"

func TestNormalizeFoldsOverflow(t *testing.T) {
	ts := New(1, Beat+5)
	if ts.Beats != 2 || ts.Rem != 5 {
		t.Errorf("expected {2 5}, got {%d %d}", ts.Beats, ts.Rem)
	}
}

func TestNormalizeBorrowsNegative(t *testing.T) {
	ts := New(2, -5)
	if ts.Beats != 1 || ts.Rem != Beat-5 {
		t.Errorf("expected {1 %d}, got {%d %d}", Beat-5, ts.Beats, ts.Rem)
	}
}

func TestAddSub(t *testing.T) {
	a := FromBeats(1.5)
	b := FromBeats(0.25)
	sum := a.Add(b)
	if got := sum.ToFloatBeats(); got < 1.749999 || got > 1.750001 {
		t.Errorf("1.5+0.25 = %v, want 1.75", got)
	}
	diff := a.Sub(b)
	if got := diff.ToFloatBeats(); got < 1.249999 || got > 1.250001 {
		t.Errorf("1.5-0.25 = %v, want 1.25", got)
	}
}

func TestCmp(t *testing.T) {
	a := FromBeats(1)
	b := FromBeats(2)
	if a.Cmp(b) != -1 || b.Cmp(a) != 1 || a.Cmp(a) != 0 {
		t.Error("Cmp ordering broken")
	}
	if !a.Less(b) || !b.Greater(a) {
		t.Error("Less/Greater broken")
	}
}

func TestFramesRoundTrip(t *testing.T) {
	tempo := 120.0
	rate := int32(44100)
	ts := FromBeats(2)
	frames := ts.ToFrames(tempo, rate)
	// at 120 bpm, 1 beat = 0.5s, so 2 beats = 1s = 44100 frames
	if frames != 44100 {
		t.Errorf("ToFrames = %d, want 44100", frames)
	}
	back := FromFrames(frames, tempo, rate)
	if diff := back.ToFloatBeats() - ts.ToFloatBeats(); diff > 1e-6 || diff < -1e-6 {
		t.Errorf("round trip drifted: %v vs %v", back.ToFloatBeats(), ts.ToFloatBeats())
	}
}

func TestIsZero(t *testing.T) {
	if !Zero.IsZero() {
		t.Error("Zero should report IsZero")
	}
	if FromBeats(0.001).IsZero() {
		t.Error("non-zero Tstamp reported IsZero")
	}
}
