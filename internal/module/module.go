// Package module implements the loader-facing data model of spec.md
// §6.1: a validated tree of Album/Song/Pattern/AudioUnit objects the
// core treats as already-checked input, plus the validate() pass that
// enforces the loader invariants before the core will render.
package module

import (
	"github.com/cbegin/kunquat-go/internal/channel"
	"github.com/cbegin/kunquat-go/internal/event"
	"github.com/cbegin/kunquat-go/internal/kqerr"
	"github.com/cbegin/kunquat-go/internal/ordermap"
	"github.com/cbegin/kunquat-go/internal/param"
	"github.com/cbegin/kunquat-go/internal/tstamp"
)

// PatInstRef identifies one pattern instance: (pattern_index, instance_index).
type PatInstRef struct {
	Pattern  int
	Instance int
}

// Song is an order list of pattern instance references played in sequence.
type Song struct {
	Order []PatInstRef
}

// Pattern is a length (in musical time) plus a per-channel Ordered
// Event Map.
type Pattern struct {
	Length   tstamp.Tstamp
	Channels [channel.Count]*ordermap.Map[event.Event]
}

// NewPattern creates an empty pattern of the given length.
func NewPattern(length tstamp.Tstamp) *Pattern {
	p := &Pattern{Length: length}
	for c := 0; c < channel.Count; c++ {
		p.Channels[c] = ordermap.New[event.Event]()
	}
	return p
}

// ProcessorKind names which proc.* constructor an AudioUnit's table
// entry should be built from; the concrete wiring lives in internal/master
// (which owns the devicegraph and proc instances), keeping this package
// free of a dependency on internal/proc and internal/devicegraph.
type ProcessorKind string

const (
	ProcPitch       ProcessorKind = "pitch"
	ProcForce       ProcessorKind = "force"
	ProcOscillator  ProcessorKind = "oscillator"
	ProcSample      ProcessorKind = "sample"
	ProcEnvGen      ProcessorKind = "envgen"
	ProcBitcrusher  ProcessorKind = "bitcrusher"
	ProcFilter      ProcessorKind = "filter"
	ProcFreeverb    ProcessorKind = "freeverb"
	ProcChorus      ProcessorKind = "chorus"
	ProcLooper      ProcessorKind = "looper"
	ProcAmplify     ProcessorKind = "amplify"
)

// ProcessorSpec is one processor table entry: its kind and its typed
// parameters (envelopes, samples, numeric maps) as supplied by the loader.
type ProcessorSpec struct {
	Name       string
	Kind       ProcessorKind
	Envelopes  map[string]*param.Envelope
	Samples    map[string]*param.Sample
	NumLists   map[string]param.NumList
	Maps       param.Maps
	Produces   bool // emits a per-voice signal (spec.md §4.7 step 3)
}

// ConnectionSpec is one edge in an audio unit's internal device graph,
// named by processor index (into AudioUnit.Processors) and port index.
type ConnectionSpec struct {
	FromProc, FromPort int
	ToProc, ToPort     int
}

// AudioUnit is a composite device (instrument or effect) with its own
// processor table and internal device graph (spec.md GLOSSARY).
type AudioUnit struct {
	Name        string
	IsInstrument bool
	Processors  []ProcessorSpec
	Connections []ConnectionSpec
}

// Album is a possibly empty list of song indices.
type Album struct {
	Tracks []int // indices into Module.Songs
}

// Module is the complete validated tree the core renders: songs,
// patterns, audio units, all owned here (spec.md §3 "Ownership summary").
type Module struct {
	Album      Album
	Songs      []Song
	Patterns   []*Pattern
	AudioUnits []*AudioUnit
	Tempo      float64
}

// New returns an empty Module at the default tempo.
func New() *Module {
	return &Module{Tempo: 120}
}

// Validate enforces the spec.md §6.1 loader invariants the core
// otherwise assumes. Errors are wrapped with enough context (offending
// index/name) to debug loader output, per spec.md §7 FormatError.
func (m *Module) Validate() error {
	for ti, songIdx := range m.Album.Tracks {
		if songIdx < 0 || songIdx >= len(m.Songs) {
			return kqerr.Formatf("track %d references nonexistent song %d", ti, songIdx)
		}
	}

	seen := make(map[PatInstRef]bool)
	for si, song := range m.Songs {
		for oi, ref := range song.Order {
			if ref.Pattern < 0 || ref.Pattern >= len(m.Patterns) {
				return kqerr.Formatf("song %d order %d references nonexistent pattern %d", si, oi, ref.Pattern)
			}
			if seen[ref] {
				return kqerr.Formatf("pattern instance (%d,%d) reused across songs' order lists", ref.Pattern, ref.Instance)
			}
			seen[ref] = true
			if m.Patterns[ref.Pattern] == nil {
				return kqerr.Formatf("pattern %d has instances but no length (nil pattern)", ref.Pattern)
			}
		}
	}

	for ai, au := range m.AudioUnits {
		for pi, proc := range au.Processors {
			if proc.Name == "" {
				return kqerr.Formatf("audio unit %d processor %d has an empty name", ai, pi)
			}
		}
		for ci, conn := range au.Connections {
			if conn.FromProc < 0 || conn.FromProc >= len(au.Processors) || conn.ToProc < 0 || conn.ToProc >= len(au.Processors) {
				return kqerr.Formatf("audio unit %d connection %d references an out-of-range processor", ai, ci)
			}
		}
	}

	return nil
}
