// Command kunquat-render assembles a tiny in-memory Module (no
// loader, per spec.md §1 Non-goals) and renders it offline to a WAV
// file, the same shape as the teacher's cmd/play_mml but driven
// through the Handle_play render API (spec.md §6.2) instead of a
// Player/MML score.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/cbegin/kunquat-go"
	"github.com/cbegin/kunquat-go/internal/event"
	"github.com/cbegin/kunquat-go/internal/module"
	"github.com/cbegin/kunquat-go/internal/param"
	"github.com/cbegin/kunquat-go/internal/tstamp"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 44100, "output sample rate")
		seconds    = flag.Float64("seconds", 2.0, "seconds to render")
		pitch      = flag.Float64("pitch", 0, "note pitch in cents relative to 440Hz")
		wave       = flag.Int("wave", 0, "oscillator wave: 0=sine 1=saw 2=triangle 3=square 4=noise")
		out        = flag.String("out", "out.wav", "output WAV path")
		seed       = flag.Int64("seed", 1, "master RNG seed")
	)
	flag.Parse()

	mod := buildDemoModule(*wave, *pitch)

	h := kunquat.New(mod, kunquat.WithAudioRate(int32(*sampleRate)), kunquat.WithSeed(*seed))
	if err := h.Validate(); err != nil {
		log.Fatal(err)
	}

	frames := int(float64(*sampleRate) * *seconds)
	left := make([]float32, 0, frames)
	right := make([]float32, 0, frames)
	const chunk = 1024
	for rendered := 0; rendered < frames; {
		n := chunk
		if rendered+n > frames {
			n = frames - rendered
		}
		if _, err := h.Play(n); err != nil {
			log.Fatal(err)
		}
		buf := make([]float32, n)
		h.GetAudio(0, buf, n)
		left = append(left, buf...)
		h.GetAudio(1, buf, n)
		right = append(right, buf...)
		rendered += n
		if h.Finished() {
			break
		}
	}

	interleaved := make([]float32, 0, len(left)*2)
	for i := range left {
		r := float32(0)
		if i < len(right) {
			r = right[i]
		}
		interleaved = append(interleaved, left[i], r)
	}

	wav := kunquat.EncodeWAVFloat32LE(interleaved, *sampleRate, 2)
	if err := os.WriteFile(*out, wav, 0644); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %d frames to %s", len(left), *out)
}

// buildDemoModule wires one instrument (pitch -> oscillator, force ->
// amplify) playing a single note held for the first seven of the
// pattern's eight beats and then released, the same
// shape internal/master's own tests build their fixture module from.
func buildDemoModule(wave int, pitchCents float64) *module.Module {
	m := module.New()
	m.Tempo = 120

	au := &module.AudioUnit{
		Name:         "lead",
		IsInstrument: true,
		Processors: []module.ProcessorSpec{
			{Name: "pitch", Kind: module.ProcPitch, Produces: true},
			{Name: "osc", Kind: module.ProcOscillator, Produces: true, Maps: param.Maps{"wave": float64(wave)}},
			{Name: "force", Kind: module.ProcForce, Produces: true},
			{Name: "amp", Kind: module.ProcAmplify, Produces: true},
		},
		Connections: []module.ConnectionSpec{
			{FromProc: 0, FromPort: 0, ToProc: 1, ToPort: 0},
			{FromProc: 1, FromPort: 0, ToProc: 3, ToPort: 0},
			{FromProc: 2, FromPort: 0, ToProc: 3, ToPort: 1},
		},
	}
	m.AudioUnits = append(m.AudioUnits, au)

	length := tstamp.FromBeats(8)
	pat := module.NewPattern(length)
	pat.Channels[0].Insert(tstamp.Zero, event.Event{Kind: event.KindParamSet, Name: "audio_unit", Arg: 0})
	pat.Channels[0].Insert(tstamp.Zero, event.Event{Kind: event.KindParamSet, Name: "pitch", Arg: pitchCents})
	pat.Channels[0].Insert(tstamp.Zero, event.Event{Kind: event.KindNoteOn, Arg: pitchCents})
	pat.Channels[0].Insert(tstamp.FromBeats(7), event.Event{Kind: event.KindNoteOff})
	m.Patterns = append(m.Patterns, pat)

	m.Songs = append(m.Songs, module.Song{Order: []module.PatInstRef{{Pattern: 0, Instance: 0}}})
	m.Album.Tracks = []int{0}

	return m
}
