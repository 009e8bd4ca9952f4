// Package kunquat implements the Handle_play render API of spec.md
// §6.2 over the internal render core: a validated Module renders to
// interleaved-by-channel float32 PCM at a caller-chosen sample rate
// and buffer size, driven by Play/FireEvent/Reset.
package kunquat

import (
	"github.com/cbegin/kunquat-go/internal/channel"
	"github.com/cbegin/kunquat-go/internal/event"
	"github.com/cbegin/kunquat-go/internal/kqerr"
	"github.com/cbegin/kunquat-go/internal/master"
	"github.com/cbegin/kunquat-go/internal/module"
)

// Module is the validated composition tree a Handle renders (spec.md
// §6.1). Building one is the external loader's job; this package only
// consumes it.
type Module = module.Module

// NewModule returns an empty Module at the default tempo, for callers
// assembling one in-memory (tests, the demo CLI) rather than going
// through an external loader.
func NewModule() *Module { return module.New() }

// Handle is one playback session over a Module: the render graph, the
// transport cursor, and the validated/configured state Play refuses to
// run ahead of (spec.md §6.2).
type Handle struct {
	opts Options
	m   *Module

	seq       *master.Sequencer
	validated bool
	frames    int
	lastErr   error
}

// New builds a Handle over mod. The Handle is not playable until
// Validate succeeds.
func New(mod *Module, opts ...Option) *Handle {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Handle{opts: o, m: mod}
}

// SetAudioRate reconfigures the output sample rate. Per spec.md §7,
// pools and work buffers are (re-)established here, not during Play,
// so the render path never allocates; if the Handle was already
// validated the render graph is rebuilt immediately.
func (h *Handle) SetAudioRate(rate int32) error {
	h.opts.AudioRate = rate
	return h.rebuildIfValidated()
}

// SetBufferSize reconfigures the render chunk size work buffers are
// pre-sized for.
func (h *Handle) SetBufferSize(n int) error {
	h.opts.BufferSize = n
	return h.rebuildIfValidated()
}

func (h *Handle) rebuildIfValidated() error {
	if !h.validated {
		return nil
	}
	return h.build()
}

func (h *Handle) build() error {
	seq, err := master.New(h.m, h.opts.MaxVoices, h.opts.AudioRate, h.opts.BufferSize, h.opts.Seed)
	if err != nil {
		return kqerr.Wrap(kqerr.Memory, err, "building render graph")
	}
	h.seq = seq
	return nil
}

// Validate runs the spec.md §6.1 loader invariants over the Module and,
// if they hold, builds the render graph. Play refuses to produce any
// frames until Validate has succeeded at least once.
func (h *Handle) Validate() error {
	if err := h.m.Validate(); err != nil {
		return err
	}
	if err := h.build(); err != nil {
		return err
	}
	h.validated = true
	return nil
}

// Reset rewinds playback to the start of the album and reinitialises
// every voice, channel, and processor (spec.md §6.2, §5 "between
// calls, the host may call reset").
func (h *Handle) Reset() {
	h.frames = 0
	h.lastErr = nil
	if h.seq != nil {
		h.seq.Reset()
	}
}

// Play renders the next `frames` audio frames, returning the number of
// frames available via GetAudio. Play refuses to produce any frames
// (returning an ErrArgument naming "valid") until Validate has
// succeeded; per spec.md §7 "render-time failures are impossible by
// construction", a graph error leaves the rest of the call's output
// silent rather than propagating, with the failure retrievable via
// LastError.
func (h *Handle) Play(frames int) (int, error) {
	if !h.validated || h.seq == nil {
		return 0, kqerr.Argumentf("handle is not valid: call Validate before Play")
	}
	if frames < 0 {
		return 0, kqerr.Argumentf("negative frame count %d", frames)
	}
	if frames == 0 {
		h.frames = 0
		return 0, nil
	}
	if err := h.seq.Render(frames); err != nil {
		h.lastErr = err
		h.frames = frames
		return frames, nil
	}
	h.frames = frames
	return frames, nil
}

// FramesAvailable returns the number of frames produced by the most
// recent Play call. GetAudio does not consume them: they stay readable
// until the next Play call.
func (h *Handle) FramesAvailable() int { return h.frames }

// Finished reports whether playback has advanced past the end of the
// album: every further Play call will only emit silence.
func (h *Handle) Finished() bool {
	return h.seq == nil || h.seq.Finished()
}

// LastError returns the most recent event-dispatch or render-time
// error the engine swallowed per spec.md §7, or nil.
func (h *Handle) LastError() error { return h.lastErr }

// GetAudio copies up to size frames of the most recent Play call's
// output for the given output channel (0 = left, 1 = right) into buf,
// returning the number of frames copied.
func (h *Handle) GetAudio(ch int, buf []float32, size int) int {
	if h.seq == nil {
		return 0
	}
	var src []float32
	switch ch {
	case 0:
		src = h.seq.Left()
	case 1:
		src = h.seq.Right()
	default:
		return 0
	}
	n := size
	if n > h.frames {
		n = h.frames
	}
	if n > len(src) {
		n = len(src)
	}
	if n > len(buf) {
		n = len(buf)
	}
	if n <= 0 {
		return 0
	}
	copy(buf[:n], src[:n])
	return n
}

// ReadInterleaved copies the most recent Play call's output into dst as
// interleaved stereo (L,R,L,R,...), returning the number of frames
// written. It is a convenience on top of GetAudio for stream-pulling
// drivers (internal/driver's ebiten-backed output uses it).
func (h *Handle) ReadInterleaved(dst []float32) int {
	n := len(dst) / 2
	if h.seq == nil || n <= 0 {
		return 0
	}
	if n > h.frames {
		n = h.frames
	}
	left, right := h.seq.Left(), h.seq.Right()
	if n > len(left) {
		n = len(left)
	}
	if n > len(right) {
		n = len(right)
	}
	for i := 0; i < n; i++ {
		dst[i*2] = left[i]
		dst[i*2+1] = right[i]
	}
	return n
}

// FireEvent dispatches a host-originated control event at the named
// channel (spec.md §6.2), using the same Handler path pattern events
// use: "note_on"/"note_off"/"hit" map to their dedicated event kinds;
// any other name is routed as a parameter write, except a
// "stream:<name>" prefix which routes as a stream-control write
// (spec.md §4.6 KindStreamSet).
func (h *Handle) FireEvent(ch int, name string, arg float64) error {
	if ch < 0 || ch >= channel.Count {
		return kqerr.Argumentf("channel %d out of range [0,%d)", ch, channel.Count)
	}
	if !h.validated || h.seq == nil {
		return kqerr.Argumentf("handle is not valid: call Validate before FireEvent")
	}
	ev := eventFor(name, arg)
	event.Dispatch(h.seq, ch, ev)
	return nil
}

func eventFor(name string, arg float64) event.Event {
	switch name {
	case "note_on":
		return event.Event{Kind: event.KindNoteOn, Arg: arg}
	case "note_off":
		return event.Event{Kind: event.KindNoteOff, Arg: arg}
	case "hit":
		return event.Event{Kind: event.KindHit, Arg: arg}
	}
	if len(name) > 7 && name[:7] == "stream:" {
		return event.Event{Kind: event.KindStreamSet, Name: name[7:], Arg: arg}
	}
	return event.Event{Kind: event.KindParamSet, Name: name, Arg: arg}
}
