package voice

import "testing"

func TestReserveFillsInactiveFirst(t *testing.T) {
	p := New(4)
	id, err := p.Reserve(0, 2)
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	g, ok := p.GetGroup(id)
	if !ok || len(g.Slots) != 2 {
		t.Fatalf("expected a 2-voice group, got %+v ok=%v", g, ok)
	}
	for _, s := range g.Slots {
		if !p.Voice(s).Active || p.Voice(s).Priority != PriorityForeground {
			t.Errorf("slot %d should be active foreground", s)
		}
	}
}

func TestReserveFailsForOversizedGroup(t *testing.T) {
	p := New(2)
	if _, err := p.Reserve(0, 2); err != nil {
		t.Fatalf("first reserve should succeed: %v", err)
	}
	// a 3-voice group can never fit in a 2-voice pool
	if _, err := p.Reserve(1, 3); err != ErrUnavailable {
		t.Errorf("expected ErrUnavailable for an oversized group, got %v", err)
	}
}

func TestReleaseGroupDemotesToBackground(t *testing.T) {
	p := New(2)
	id, _ := p.Reserve(0, 2)
	p.ReleaseGroup(id)
	g, _ := p.GetGroup(id)
	for _, s := range g.Slots {
		v := p.Voice(s)
		if v.Priority != PriorityBackground || v.NoteOn {
			t.Errorf("slot %d should be background/!note_on after release, got %+v", s, v)
		}
	}
}

func TestStealingPrefersBackgroundOverForeground(t *testing.T) {
	p := New(3)
	id1, _ := p.Reserve(0, 2)
	p.ReleaseGroup(id1) // both now background
	// the last inactive slot goes to a foreground group
	fg, _ := p.Reserve(2, 1)

	id2, err := p.Reserve(1, 1)
	if err != nil {
		t.Fatalf("reserve should steal a background voice: %v", err)
	}
	g2, _ := p.GetGroup(id2)
	if len(g2.Slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(g2.Slots))
	}
	// the stolen slot should no longer belong to the old group
	g1, ok := p.GetGroup(id1)
	if ok && len(g1.Slots) == 2 {
		t.Error("old group should have lost the stolen slot")
	}
	// the foreground group must keep its voice while background ones exist
	if g, ok := p.GetGroup(fg); !ok || len(g.Slots) != 1 {
		t.Error("foreground group should not be stolen from while background voices exist")
	}
}

func TestResetGroupInactivatesImmediately(t *testing.T) {
	p := New(2)
	id, _ := p.Reserve(0, 2)
	p.ResetGroup(id)
	if _, ok := p.GetGroup(id); ok {
		t.Error("group should be gone after ResetGroup")
	}
	for i := 0; i < p.Size(); i++ {
		if p.Voice(i).Active {
			t.Errorf("slot %d should be inactive after ResetGroup", i)
		}
	}
}

func TestForegroundGroupOf(t *testing.T) {
	p := New(2)
	id, _ := p.Reserve(3, 1)
	got, ok := p.ForegroundGroupOf(3)
	if !ok || got != id {
		t.Errorf("ForegroundGroupOf(3) = %v,%v want %v,true", got, ok, id)
	}
	if _, ok := p.ForegroundGroupOf(9); ok {
		t.Error("channel with no voices should report ok=false")
	}
}
