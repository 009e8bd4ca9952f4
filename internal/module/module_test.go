package module

import (
	"testing"

	"github.com/cbegin/kunquat-go/internal/tstamp"
)

func TestValidateEmptyModule(t *testing.T) {
	m := New()
	if err := m.Validate(); err != nil {
		t.Errorf("an empty module should validate, got %v", err)
	}
}

func TestValidateRejectsDuplicatePatInstRef(t *testing.T) {
	m := New()
	m.Patterns = append(m.Patterns, NewPattern(tstamp.FromBeats(16)))
	m.Songs = append(m.Songs, Song{Order: []PatInstRef{{Pattern: 0, Instance: 0}}})
	m.Songs = append(m.Songs, Song{Order: []PatInstRef{{Pattern: 0, Instance: 0}}})
	m.Album.Tracks = []int{0, 1}

	if err := m.Validate(); err == nil {
		t.Error("expected an error for a (pattern,instance) reused across songs")
	}
}

func TestValidateRejectsOutOfRangeTrack(t *testing.T) {
	m := New()
	m.Album.Tracks = []int{0}
	if err := m.Validate(); err == nil {
		t.Error("expected an error for a track referencing a nonexistent song")
	}
}

func TestValidateRejectsOutOfRangeConnection(t *testing.T) {
	m := New()
	au := &AudioUnit{Name: "lead", Processors: []ProcessorSpec{{Name: "p1", Kind: ProcOscillator}}}
	au.Connections = []ConnectionSpec{{FromProc: 0, ToProc: 5}}
	m.AudioUnits = append(m.AudioUnits, au)
	if err := m.Validate(); err == nil {
		t.Error("expected an error for a connection referencing an out-of-range processor")
	}
}
