package kunquat

import (
	"github.com/cbegin/kunquat-go/internal/event"
	"github.com/cbegin/kunquat-go/internal/module"
	"github.com/cbegin/kunquat-go/internal/param"
	"github.com/cbegin/kunquat-go/internal/tstamp"
)

// The types below re-export the loader-facing data model of spec.md
// §6.1 and its event/time/parameter building blocks as public aliases.
// internal/module, internal/event, internal/param, and internal/tstamp
// are unreachable from outside this module (Go's internal/ rule), so a
// host assembling a Module in-memory — the way the demo CLI and the
// test suite both do, standing in for the external loader spec.md
// treats as out of scope — builds it entirely through this package.

// Tstamp is musical time as (beats, remainder) with a fixed
// subdivision (spec.md §3).
type Tstamp = tstamp.Tstamp

// FromBeats and FromFrames construct a Tstamp; Zero is the origin.
var (
	FromBeats  = tstamp.FromBeats
	FromFrames = tstamp.FromFrames
	Zero       = tstamp.Zero
)

// Event is one entry in a pattern's per-channel event stream (spec.md §4.6).
type Event = event.Event

// EventKind classifies an Event.
type EventKind = event.Kind

const (
	KindNoteOn    = event.KindNoteOn
	KindNoteOff   = event.KindNoteOff
	KindHit       = event.KindHit
	KindParamSet  = event.KindParamSet
	KindStreamSet = event.KindStreamSet
	KindBinding   = event.KindBinding
)

// PatInstRef identifies one pattern instance: (pattern_index, instance_index).
type PatInstRef = module.PatInstRef

// Song is an order list of pattern instance references played in sequence.
type Song = module.Song

// Pattern is a length plus a per-channel ordered event map.
type Pattern = module.Pattern

// NewPattern creates an empty pattern of the given length.
func NewPattern(length Tstamp) *Pattern { return module.NewPattern(length) }

// ProcessorKind names a processor implementation (spec.md §4.5).
type ProcessorKind = module.ProcessorKind

const (
	ProcPitch      = module.ProcPitch
	ProcForce      = module.ProcForce
	ProcOscillator = module.ProcOscillator
	ProcSample     = module.ProcSample
	ProcEnvGen     = module.ProcEnvGen
	ProcBitcrusher = module.ProcBitcrusher
	ProcFilter     = module.ProcFilter
	ProcFreeverb   = module.ProcFreeverb
	ProcChorus     = module.ProcChorus
	ProcLooper     = module.ProcLooper
	ProcAmplify    = module.ProcAmplify
)

// ProcessorSpec is one processor table entry: its kind and typed
// parameters as supplied by the loader.
type ProcessorSpec = module.ProcessorSpec

// ConnectionSpec is one edge in an audio unit's internal device graph.
type ConnectionSpec = module.ConnectionSpec

// AudioUnit is a composite device (instrument or effect), spec.md GLOSSARY.
type AudioUnit = module.AudioUnit

// Album is a possibly empty list of song indices.
type Album = module.Album

// Envelope, Sample, NumList and Maps are the loader's immutable typed
// parameter containers (spec.md §3).
type (
	Envelope = param.Envelope
	Sample   = param.Sample
	NumList  = param.NumList
	Maps     = param.Maps
	Point    = param.Point
	Interp   = param.Interp
	LoopMode = param.LoopMode
)

const (
	InterpNearest = param.InterpNearest
	InterpLinear  = param.InterpLinear

	LoopOff            = param.LoopOff
	LoopUnidirectional = param.LoopUnidirectional
	LoopBidirectional  = param.LoopBidirectional
)

// NewEnvelope and NewSample forward to the param package's constructors.
var (
	NewEnvelope = param.NewEnvelope
	NewSample   = param.NewSample
)
