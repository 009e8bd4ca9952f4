package ordermap

import (
	"testing"

	"github.com/cbegin/kunquat-go/internal/tstamp"
)

func TestInsertGetOrderWithinKey(t *testing.T) {
	m := New[string]()
	k := tstamp.FromBeats(1)
	m.Insert(k, "a")
	m.Insert(k, "b")
	vals, ok := m.Get(k)
	if !ok || len(vals) != 2 || vals[0] != "a" || vals[1] != "b" {
		t.Fatalf("expected [a b] at key, got %v ok=%v", vals, ok)
	}
}

func TestCursorAscendingOrder(t *testing.T) {
	m := New[int]()
	keys := []float64{3, 1, 4, 1.5, 2}
	for _, k := range keys {
		m.Insert(tstamp.FromBeats(k), int(k*10))
	}
	c := m.SeekFirst()
	var got []float64
	for !c.Done() {
		got = append(got, c.Key().ToFloatBeats())
		c.Step()
	}
	want := []float64{1, 1.5, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] < want[i]-1e-9 || got[i] > want[i]+1e-9 {
			t.Errorf("key[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSeekAtLeast(t *testing.T) {
	m := New[int]()
	m.Insert(tstamp.FromBeats(1), 1)
	m.Insert(tstamp.FromBeats(3), 3)
	m.Insert(tstamp.FromBeats(5), 5)

	c := m.Seek(tstamp.FromBeats(2))
	if c.Done() {
		t.Fatal("seek(2) should land on key 3")
	}
	if got := c.Key().ToFloatBeats(); got < 2.9999 || got > 3.0001 {
		t.Errorf("seek(2) landed on %v, want 3", got)
	}
}

func TestSeekPastEndIsDone(t *testing.T) {
	m := New[int]()
	m.Insert(tstamp.FromBeats(1), 1)
	c := m.Seek(tstamp.FromBeats(5))
	if !c.Done() {
		t.Error("seeking past the last key should yield a done cursor")
	}
}

func TestRemove(t *testing.T) {
	m := New[int]()
	for _, k := range []float64{1, 2, 3, 4, 5, 6, 7} {
		m.Insert(tstamp.FromBeats(k), int(k))
	}
	m.Remove(tstamp.FromBeats(4))
	if _, ok := m.Get(tstamp.FromBeats(4)); ok {
		t.Error("key 4 should be gone after Remove")
	}
	if m.Len() != 6 {
		t.Errorf("Len() = %d, want 6", m.Len())
	}
	// remaining keys should still iterate in order
	c := m.SeekFirst()
	var n int
	prev := -1.0
	for !c.Done() {
		cur := c.Key().ToFloatBeats()
		if cur < prev {
			t.Errorf("out of order after remove: %v before %v", prev, cur)
		}
		prev = cur
		n++
		c.Step()
	}
	if n != 6 {
		t.Errorf("iterated %d keys, want 6", n)
	}
}
