// Package channel implements Channel State (spec.md §3): one per
// playback channel, holding the selected audio-unit input, the
// channel's foreground voice group, carried pitch/force/stream
// controls, test-output routing, and a channel-local RNG for
// deterministic per-note seed derivation.
package channel

import (
	"math/rand"

	"github.com/cbegin/kunquat-go/internal/lfo"
)

// Count is the number of channels a Module exposes (CH in spec.md §3).
const Count = 16

// CarriedPitch is the channel's carried pitch control state, copied
// into a newly spawned voice's Pitch processor state when the carry
// flag is set.
type CarriedPitch struct {
	Cents      float64
	OrigCents  float64
	Slider     lfo.Slider
	Vibrato    *lfo.LFO
	Carry      bool
}

// CarriedForce is the channel's carried force control state.
type CarriedForce struct {
	DB      float64
	Slider  lfo.Slider
	Tremolo *lfo.LFO
	Carry   bool
}

// StreamControl is one named per-stream linear control with a carry flag.
type StreamControl struct {
	Value *lfo.Linear
	Carry bool
}

// State is one channel's complete control and routing state.
type State struct {
	AudioUnitInput int // selected audio-unit input index, -1 = none
	ForegroundGroup int64
	HasForeground   bool

	Pitch CarriedPitch
	Force CarriedForce

	Streams map[string]*StreamControl

	TestOutput bool

	rng *rand.Rand
}

// New returns a channel state at rest, seeded deterministically from
// the channel index so a fixed master seed reproduces identical
// playback (spec.md §8 property 6).
func New(index int, masterSeed int64) *State {
	return &State{
		AudioUnitInput: -1,
		Pitch:          CarriedPitch{Vibrato: lfo.NewLFO()},
		Force:          CarriedForce{Tremolo: lfo.NewLFO()},
		Streams:        make(map[string]*StreamControl),
		rng:            rand.New(rand.NewSource(masterSeed + int64(index)*1000003)),
	}
}

// NextNoteSeed draws the next deterministic per-note RNG seed from the
// channel's RNG, used as input to the note-level voice seed derivation
// of spec.md §4.7.
func (s *State) NextNoteSeed() int64 {
	return s.rng.Int63()
}

// SetForegroundGroup records the channel's current foreground voice
// group (0 = none).
func (s *State) SetForegroundGroup(id int64) {
	s.ForegroundGroup = id
	s.HasForeground = true
}

// ClearForegroundGroup marks the channel as having no foreground group
// (e.g. after it has been released to background).
func (s *State) ClearForegroundGroup() {
	s.ForegroundGroup = 0
	s.HasForeground = false
}

// Stream returns (creating if absent) the named stream control.
func (s *State) Stream(name string) *StreamControl {
	sc, ok := s.Streams[name]
	if !ok {
		sc = &StreamControl{Value: lfo.NewLinear(0)}
		s.Streams[name] = sc
	}
	return sc
}

// Pool is the fixed set of Count channel states a Module renders through.
type Pool struct {
	Channels [Count]*State
}

// NewPool builds a channel Pool, each channel deterministically seeded
// from masterSeed.
func NewPool(masterSeed int64) *Pool {
	p := &Pool{}
	for i := 0; i < Count; i++ {
		p.Channels[i] = New(i, masterSeed)
	}
	return p
}
