package channel

import "testing"

func TestNewPoolHasSixteenDeterministicChannels(t *testing.T) {
	p1 := NewPool(42)
	p2 := NewPool(42)
	if len(p1.Channels) != Count {
		t.Fatalf("len(Channels) = %d, want %d", len(p1.Channels), Count)
	}
	for i := 0; i < Count; i++ {
		a := p1.Channels[i].NextNoteSeed()
		b := p2.Channels[i].NextNoteSeed()
		if a != b {
			t.Errorf("channel %d: seeds diverged for the same master seed: %v vs %v", i, a, b)
		}
	}
}

func TestForegroundGroupLifecycle(t *testing.T) {
	s := New(0, 1)
	if s.HasForeground {
		t.Error("a fresh channel should have no foreground group")
	}
	s.SetForegroundGroup(7)
	if !s.HasForeground || s.ForegroundGroup != 7 {
		t.Errorf("expected foreground group 7, got %v has=%v", s.ForegroundGroup, s.HasForeground)
	}
	s.ClearForegroundGroup()
	if s.HasForeground {
		t.Error("ClearForegroundGroup should reset HasForeground")
	}
}

func TestStreamCreatesOnDemand(t *testing.T) {
	s := New(0, 1)
	sc := s.Stream("cutoff")
	if sc == nil {
		t.Fatal("Stream should never return nil")
	}
	if s.Stream("cutoff") != sc {
		t.Error("Stream should return the same control on repeat calls")
	}
}
