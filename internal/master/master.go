// Package master implements Master Params and the Sequencer of spec.md
// §3/§4.6/§4.7: the playback cursor and transport state, the per-audio-unit
// device graphs built from a Module, and the event.Handler that realizes
// note-on voice spawning, note-off release, and channel/master control
// updates.
//
// Render generalizes the teacher's Sequencer.Process/dispatchTick loop
// (advance time -> dispatch due events -> render -> emit) from one
// fixed-function synth engine into a data-driven graph of audio units.
package master

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/cbegin/kunquat-go/internal/channel"
	"github.com/cbegin/kunquat-go/internal/devicegraph"
	"github.com/cbegin/kunquat-go/internal/event"
	"github.com/cbegin/kunquat-go/internal/module"
	"github.com/cbegin/kunquat-go/internal/proc"
	"github.com/cbegin/kunquat-go/internal/tstamp"
	"github.com/cbegin/kunquat-go/internal/voice"
	"github.com/cbegin/kunquat-go/internal/workbuf"
)

// DefaultVoices is the voice pool size used when a caller doesn't
// request a specific capacity.
const DefaultVoices = 256

// Params is the Master Params record of spec.md §3: the playback
// cursor plus the transport-wide state threaded through every Render call.
type Params struct {
	Track, System int
	PatInst       module.PatInstRef
	RowTstamp     tstamp.Tstamp
	Tempo         float64
	GlobalVolume  float64 // dB
	JumpCounter   int
	TuningIndex   int
	Sustain       bool
	FrameCount    int64
}

// Sequencer owns the complete render-side object graph built from a
// Module: channel state, the voice pool, one device graph per audio
// unit, and the event dispatcher.
type Sequencer struct {
	mod      *module.Module
	channels *channel.Pool
	voices   *voice.Pool
	runtimes []*audioUnitRuntime // parallel to mod.AudioUnits
	dispatch *event.Dispatcher

	audioRate  int32
	bufferSize int
	maxVoices  int
	masterSeed int64

	voiceAudioUnit []int // per voice slot: AudioUnits index, -1 = none

	Params Params
	rng    *rand.Rand

	mixL, mixR *workbuf.Buffer
}

// New builds a Sequencer from a validated Module. Call Validate on mod
// before this; New does not re-check loader invariants.
func New(mod *module.Module, maxVoices int, audioRate int32, bufferSize int, masterSeed int64) (*Sequencer, error) {
	if maxVoices <= 0 {
		maxVoices = DefaultVoices
	}
	s := &Sequencer{
		mod:        mod,
		audioRate:  audioRate,
		bufferSize: bufferSize,
		maxVoices:  maxVoices,
		masterSeed: masterSeed,
		mixL:       workbuf.New(bufferSize),
		mixR:       workbuf.New(bufferSize),
	}

	for _, au := range mod.AudioUnits {
		rt, err := buildRuntime(au, maxVoices, bufferSize, audioRate)
		if err != nil {
			return nil, err
		}
		s.runtimes = append(s.runtimes, rt)
	}

	s.dispatch = event.NewDispatcher(s)
	s.Reset()
	return s, nil
}

// Reset rewinds playback to the start of the album and reinitialises
// every voice, channel and processor, for spec.md §8 property 6
// ("reset; play(N); reset; play(N) must be byte-identical").
func (s *Sequencer) Reset() {
	s.voices = voice.New(s.maxVoices)
	s.channels = channel.NewPool(s.masterSeed)
	s.voiceAudioUnit = make([]int, s.maxVoices)
	for i := range s.voiceAudioUnit {
		s.voiceAudioUnit[i] = -1
	}
	for _, rt := range s.runtimes {
		for _, lc := range rt.lifecycles {
			lc.Reset()
		}
	}
	s.rng = rand.New(rand.NewSource(s.masterSeed))

	tempo := s.mod.Tempo
	if tempo <= 0 {
		tempo = 120
	}
	s.Params = Params{Tempo: tempo}

	if pat := s.currentPattern(); pat != nil {
		s.enterPattern(pat)
	}
}

func (s *Sequencer) enterPattern(pat *module.Pattern) {
	s.dispatch.EnterPattern(pat.Channels)
}

func (s *Sequencer) currentPattern() *module.Pattern {
	tracks := s.mod.Album.Tracks
	if s.Params.Track < 0 || s.Params.Track >= len(tracks) {
		return nil
	}
	songIdx := tracks[s.Params.Track]
	if songIdx < 0 || songIdx >= len(s.mod.Songs) {
		return nil
	}
	song := s.mod.Songs[songIdx]
	if s.Params.System < 0 || s.Params.System >= len(song.Order) {
		return nil
	}
	ref := song.Order[s.Params.System]
	if ref.Pattern < 0 || ref.Pattern >= len(s.mod.Patterns) {
		return nil
	}
	return s.mod.Patterns[ref.Pattern]
}

func (s *Sequencer) framesUntilPatternEnd(pat *module.Pattern) int {
	remaining := pat.Length.Sub(s.Params.RowTstamp)
	if remaining.Cmp(tstamp.Zero) <= 0 {
		return 0
	}
	f := remaining.ToFrames(s.Params.Tempo, s.audioRate)
	if f <= 0 {
		return 0
	}
	return int(f)
}

// advanceOrder moves the playback cursor to the next pattern instance
// in the current song's order list, or the next track, or ends
// playback (currentPattern starts returning nil) when the album is
// exhausted.
func (s *Sequencer) advanceOrder() {
	s.Params.System++
	s.Params.RowTstamp = tstamp.Zero
	pat := s.currentPattern()
	if pat == nil {
		s.Params.Track++
		s.Params.System = 0
		pat = s.currentPattern()
	}
	if pat != nil {
		s.enterPattern(pat)
	}
}

// Render advances playback by frames audio frames, dispatching due
// events and rendering every audio unit's device graph, mixing their
// stereo output (scaled by Params.GlobalVolume) into the Sequencer's
// internal buffers. Playback that runs past the end of the album
// leaves the remainder of the chunk silent rather than erroring.
//
// Each iteration dispatches events due at the row's current position
// before rendering a single frame of that chunk (spec.md §8 property 7's
// boundary exception: an event timestamped exactly at a chunk boundary
// belongs to the chunk that starts there), then renders only the next
// k frames it can produce without a further state change — clamped to
// the pattern end and to whatever event is next due — so a large Render
// call is sample-accurate to the same call split into many small ones.
func (s *Sequencer) Render(frames int) error {
	if frames > s.mixL.Size() {
		s.mixL.Resize(frames)
		s.mixR.Resize(frames)
	}
	s.mixL.Clear(0, frames)
	s.mixR.Clear(0, frames)
	s.mixL.Final, s.mixR.Final = false, false
	gain := float32(math.Pow(10, s.Params.GlobalVolume/20))

	produced := 0
	for produced < frames {
		pat := s.currentPattern()
		if pat == nil {
			break
		}

		s.dispatch.AdvanceTo(s.Params.RowTstamp)

		untilEnd := s.framesUntilPatternEnd(pat)
		if untilEnd <= 0 {
			s.advanceOrder()
			continue
		}

		chunk := frames - produced
		if chunk > untilEnd {
			chunk = untilEnd
		}
		if due, ok := s.dispatch.NextDue(); ok {
			untilDue := int(due.Sub(s.Params.RowTstamp).ToFrames(s.Params.Tempo, s.audioRate))
			if untilDue <= 0 {
				// due is strictly after RowTstamp (AdvanceTo already fired
				// anything at-or-before it), but frame rounding can floor a
				// sub-frame remainder to zero; take one frame rather than spin.
				untilDue = 1
			}
			if untilDue < chunk {
				chunk = untilDue
			}
		}

		chunkEnd := s.Params.RowTstamp.Add(tstamp.FromFrames(int64(chunk), s.Params.Tempo, s.audioRate))

		for auIdx, rt := range s.runtimes {
			if rt.numProcs == 0 {
				continue
			}
			active := s.activeVoicesFor(auIdx)
			if err := rt.graph.Render(chunk, s.Params.Tempo, active); err != nil {
				return fmt.Errorf("master: render audio unit %d: %w", auIdx, err)
			}
			outL := rt.graph.MixedSendBuffer(rt.outProc, rt.outPortL)
			outR := rt.graph.MixedSendBuffer(rt.outProc, rt.outPortR)
			addInto(s.mixL, outL, produced, chunk, gain)
			addInto(s.mixR, outR, produced, chunk, gain)
			s.reapFinishedVoices(auIdx, rt)
		}

		s.Params.RowTstamp = chunkEnd
		s.Params.FrameCount += int64(chunk)
		produced += chunk
	}

	return nil
}

// voiceDone reports whether every finishing-capable producing processor
// of rt considers slot done: a Force that has ramped to permanent
// silence, or a Sample that has run off the end of its non-looping
// data. Processors with no such notion (oscillator, envgen, filter, ...)
// are skipped. If none of an audio unit's producing processors can
// report "done", voiceDone always returns false and the voice is only
// ever reclaimed by stealing.
func voiceDone(rt *audioUnitRuntime, slot int) bool {
	checked := false
	for _, procIdx := range rt.producing {
		switch p := rt.lifecycles[procIdx].(type) {
		case interface{ Finished(int) bool }:
			checked = true
			if !p.Finished(slot) {
				return false
			}
		case interface{ Active(int) bool }:
			checked = true
			if p.Active(slot) {
				return false
			}
		}
	}
	return checked
}

// reapFinishedVoices releases every active voice of auIdx whose
// finishing-capable processors all report done, inactivating its pool
// slot immediately instead of leaving it to be reclaimed only by
// stealing (spec.md §8 properties 1 and 4).
func (s *Sequencer) reapFinishedVoices(auIdx int, rt *audioUnitRuntime) {
	for _, slot := range s.voices.ActiveSlots() {
		if s.voiceAudioUnit[slot] != auIdx {
			continue
		}
		if !voiceDone(rt, slot) {
			continue
		}
		v := s.voices.Voice(slot)
		id, ch := v.GroupID, v.Channel
		s.voices.ResetGroup(id)
		s.voiceAudioUnit[slot] = -1

		chState := s.channels.Channels[ch]
		if chState.HasForeground && chState.ForegroundGroup == id {
			chState.ClearForegroundGroup()
		}
	}
}

func addInto(dest, src *workbuf.Buffer, offset, n int, gain float32) {
	for i := 0; i < n; i++ {
		dest.Data[offset+i] += src.Data[i] * gain
	}
}

// Left and Right return the most recently rendered chunk's stereo
// channels, valid for the number of frames passed to the last Render call.
func (s *Sequencer) Left() []float32  { return s.mixL.Data }
func (s *Sequencer) Right() []float32 { return s.mixR.Data }

// Finished reports whether the playback cursor has run past the end
// of the album: every subsequent Render call produces only silence.
func (s *Sequencer) Finished() bool { return s.currentPattern() == nil }

// activeVoicesFor returns, for any processor in the given audio unit's
// graph, the pool slots currently live for that audio unit. One pool
// slot is one voice: every voice-producing processor in an audio unit
// indexes its per-voice state arrays by the same shared slot number, so
// the active set doesn't depend on which processor is asking.
func (s *Sequencer) activeVoicesFor(auIdx int) devicegraph.ActiveVoices {
	return func(int) []int {
		var out []int
		for _, slot := range s.voices.ActiveSlots() {
			if s.voiceAudioUnit[slot] == auIdx {
				out = append(out, slot)
			}
		}
		return out
	}
}

// deriveSeed implements spec.md §4.7's "voice_seed = rng(seed, np<i>)":
// a deterministic per-processor seed derived from the note's RNG draw
// and the processor's position in the audio unit's table.
func deriveSeed(seed int64, i int) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:np%d", seed, i)
	return int64(h.Sum64())
}

// spawnGroup implements spec.md §4.7's voice-spawning algorithm: resolve
// the channel's audio unit, reserve one voice slot, and initialise every
// voice-signal-producing processor's state at that slot with a derived
// seed and the channel's carried controls. Returns the audio unit index
// and group id, or ok=false if the channel has no audio unit or the pool
// has no room (the note is silently dropped; channel state is
// unaffected by the drop).
func (s *Sequencer) spawnGroup(ch int, pitchCents float64) (auIdx int, id int64, ok bool) {
	chState := s.channels.Channels[ch]
	auIdx = chState.AudioUnitInput
	if auIdx < 0 || auIdx >= len(s.runtimes) {
		return 0, 0, false
	}
	rt := s.runtimes[auIdx]
	if len(rt.producing) == 0 {
		return 0, 0, false
	}

	noteSeed := chState.NextNoteSeed()
	id, err := s.voices.Reserve(ch, 1)
	if err != nil {
		return 0, 0, false
	}

	group, _ := s.voices.GetGroup(id)
	slot := group.Slots[0]
	s.voiceAudioUnit[slot] = auIdx

	for i, procIdx := range rt.producing {
		voiceSeed := deriveSeed(noteSeed, i)
		lc := rt.lifecycles[procIdx]
		lc.InitVoiceState(slot)

		switch rt.kinds[procIdx] {
		case module.ProcPitch:
			p := lc.(*proc.Pitch)
			cents := pitchCents
			if chState.Pitch.Carry {
				cents = chState.Pitch.Cents
			}
			p.SetBase(slot, cents)
		case module.ProcForce:
			p := lc.(*proc.Force)
			db := 0.0
			if chState.Force.Carry {
				db = chState.Force.DB
			}
			p.SetLevel(slot, db)
		case module.ProcOscillator:
			p := lc.(*proc.Oscillator)
			p.Seed(slot, voiceSeed)
		}
	}
	return auIdx, id, true
}

// NoteOn implements event.Handler: release any previous foreground group
// on the channel to background, then spawn the new one (spec.md §4.7).
// Releasing first — rather than after reserving — is what keeps voice
// stealing from ever preferring this channel's own previous foreground
// group over another channel's background voices (§4.4: never steal a
// newer group on the same channel than the one being replaced); with
// the old group already demoted by the time Reserve ranks victims,
// there is no foreground group left on this channel to steal from.
func (s *Sequencer) NoteOn(ch int, ev event.Event) {
	chState := s.channels.Channels[ch]
	if chState.HasForeground {
		s.voices.ReleaseGroup(chState.ForegroundGroup)
		chState.ClearForegroundGroup()
	}
	_, id, ok := s.spawnGroup(ch, ev.Arg)
	if !ok {
		return
	}
	chState.SetForegroundGroup(id)
}

// Hit spawns a one-shot group that is never tracked as the channel's
// foreground (so it ages out under normal voice-stealing pressure
// rather than waiting for an explicit note-off).
func (s *Sequencer) Hit(ch int, ev event.Event) {
	_, id, ok := s.spawnGroup(ch, ev.Arg)
	if !ok {
		return
	}
	s.voices.ReleaseGroup(id)
}

// NoteOff implements event.Handler: trigger the channel's foreground
// group's Force processors into release and demote the group to background.
func (s *Sequencer) NoteOff(ch int, ev event.Event) {
	chState := s.channels.Channels[ch]
	if !chState.HasForeground {
		return
	}
	group, ok := s.voices.GetGroup(chState.ForegroundGroup)
	if ok && len(group.Slots) > 0 {
		slot := group.Slots[0]
		auIdx := s.voiceAudioUnit[slot]
		if auIdx >= 0 && auIdx < len(s.runtimes) {
			rt := s.runtimes[auIdx]
			for _, procIdx := range rt.producing {
				if rt.kinds[procIdx] == module.ProcForce {
					rt.lifecycles[procIdx].(*proc.Force).NoteOff(slot, s.Params.Sustain)
				}
			}
		}
	}
	s.voices.ReleaseGroup(chState.ForegroundGroup)
	chState.ClearForegroundGroup()
}

// ParamSet implements event.Handler: mutates master or channel state,
// or forwards a named control directly to the channel's current audio
// unit's processors (spec.md §4.6 "writes into channel or master state").
func (s *Sequencer) ParamSet(ch int, ev event.Event) {
	chState := s.channels.Channels[ch]
	switch ev.Name {
	case "audio_unit":
		chState.AudioUnitInput = int(ev.Arg)
	case "tempo":
		s.Params.Tempo = ev.Arg
	case "volume":
		s.Params.GlobalVolume = ev.Arg
	case "sustain":
		s.Params.Sustain = ev.Arg != 0
	case "pitch":
		chState.Pitch.Cents = ev.Arg
		s.applyToForeground(ch, module.ProcPitch, ev.Arg)
	case "force":
		chState.Force.DB = ev.Arg
		s.applyToForeground(ch, module.ProcForce, ev.Arg)
	default:
		s.broadcastToChannel(ch, ev.Name, ev.Arg)
	}
}

// StreamSet implements event.Handler: mutates a named per-channel
// stream control and, when the stream carries, forwards it as a named
// control to the channel's current audio unit.
func (s *Sequencer) StreamSet(ch int, ev event.Event) {
	chState := s.channels.Channels[ch]
	sc := chState.Stream(ev.Name)
	sc.Value.Slide(ev.Arg, tstamp.Zero)
	if sc.Carry {
		s.broadcastToChannel(ch, ev.Name, ev.Arg)
	}
}

// Binding implements event.Handler for a Binding-kind event placed
// directly in a pattern (bindings fired as a side-channel by the
// dispatcher never reach here; they are dispatched as their own kind).
func (s *Sequencer) Binding(ch int, ev event.Event) {
	s.broadcastToChannel(ch, ev.Name, ev.Arg)
}

// applyToForeground immediately jumps the named control on every
// processor of the given kind in the channel's live foreground group.
func (s *Sequencer) applyToForeground(ch int, kind module.ProcessorKind, arg float64) {
	chState := s.channels.Channels[ch]
	if !chState.HasForeground {
		return
	}
	group, ok := s.voices.GetGroup(chState.ForegroundGroup)
	if !ok || len(group.Slots) == 0 {
		return
	}
	slot := group.Slots[0]
	auIdx := s.voiceAudioUnit[slot]
	if auIdx < 0 || auIdx >= len(s.runtimes) {
		return
	}
	rt := s.runtimes[auIdx]
	for _, procIdx := range rt.producing {
		if rt.kinds[procIdx] != kind {
			continue
		}
		switch kind {
		case module.ProcPitch:
			rt.lifecycles[procIdx].(*proc.Pitch).SetBase(slot, arg)
		case module.ProcForce:
			rt.lifecycles[procIdx].(*proc.Force).SetLevel(slot, arg)
		}
	}
}

// broadcastToChannel fires a named control event at every processor of
// the channel's currently selected audio unit, for controls (filter
// cutoff, reverb room size, ...) that aren't one of the reserved
// pitch/force/tempo/volume/sustain/audio_unit names.
func (s *Sequencer) broadcastToChannel(ch int, name string, arg float64) {
	chState := s.channels.Channels[ch]
	auIdx := chState.AudioUnitInput
	if auIdx < 0 || auIdx >= len(s.runtimes) {
		return
	}
	for _, lc := range s.runtimes[auIdx].lifecycles {
		lc.FireEvent(name, arg)
	}
}
