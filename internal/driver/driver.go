// Package driver implements the optional real-time output backend of
// spec.md §5 ("sound-driver backends... are treated as external"; the
// core's contract ends at Handle_play's PCM frames). It adapts the
// teacher's internal/audio StreamReader/Player — a pulled io.Reader
// backed by ebiten's audio context — from a single SampleSource engine
// interface to the top-level Handle's Play/ReadInterleaved pull model,
// so a driver is wired up the same way the teacher's cmd/play_mml does
// it, never imported by the render core itself.
package driver

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// SampleSource produces interleaved stereo float32 frames on demand,
// the same pull contract the teacher's engines satisfy.
type SampleSource interface {
	Process(dst []float32)
}

// FinishingSource is a SampleSource that can signal when playback has
// ended. When Finished returns true, the stream returns io.EOF on the
// next Read.
type FinishingSource interface {
	SampleSource
	Finished() bool
}

// Handle is the slice of *kunquat.Handle a HandleSource needs: render a
// chunk and pull it back out as interleaved frames. Defined locally
// (rather than importing the root package) so internal/driver has no
// dependency on kunquat, matching the teacher's layering where
// internal/audio never imports an engine package either.
type Handle interface {
	Play(frames int) (int, error)
	ReadInterleaved(dst []float32) int
	Finished() bool
}

// HandleSource adapts a Handle to SampleSource/FinishingSource,
// rendering exactly as many frames as the stream asks for each pull.
type HandleSource struct {
	h Handle
}

// NewHandleSource wraps a validated, playable Handle for realtime output.
func NewHandleSource(h Handle) *HandleSource { return &HandleSource{h: h} }

func (s *HandleSource) Process(dst []float32) {
	frames, err := s.h.Play(len(dst) / 2)
	if err != nil || frames == 0 {
		for i := range dst {
			dst[i] = 0
		}
		return
	}
	n := s.h.ReadInterleaved(dst)
	for i := n * 2; i < len(dst); i++ {
		dst[i] = 0
	}
}

func (s *HandleSource) Finished() bool { return s.h.Finished() }

// StreamReader turns a SampleSource into an io.Reader of 32-bit-float
// stereo PCM bytes, the format ebiten's audio.Context.NewPlayerF32 wants.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
}

// NewStreamReader wraps source as an io.Reader.
func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i := 0; i < need; i++ {
		u := math.Float32bits(r.buf[i])
		binary.LittleEndian.PutUint32(p[i*4:], u)
	}
	n := frames * 8
	if fs, ok := r.source.(FinishingSource); ok && fs.Finished() {
		return n, io.EOF
	}
	return n, nil
}

func (r *StreamReader) Close() error { return nil }

// Player drives an ebiten audio.Player pulling from a StreamReader.
type Player struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioContextErr  error
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioContextErr != nil {
		return nil, audioContextErr
	}
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// NewPlayer builds and starts a realtime player pulling audio from source.
func NewPlayer(sampleRate int, source SampleSource) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Player{
		player: pl,
		reader: reader,
	}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

// Position returns the current playback position (what the listener actually hears).
func (p *Player) Position() time.Duration {
	return p.player.Position()
}

func (p *Player) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}
