package proc

import (
	"math"

	"github.com/cbegin/kunquat-go/internal/workbuf"
)

// LooperMode is the Looper's current transport state.
type LooperMode int

const (
	LooperStop LooperMode = iota
	LooperRecord
	LooperPlay
)

// Looper records into a ring buffer and replays it with markers and a
// read/write lag, modes {record, play, stop} (spec.md §4.5 Looper).
type Looper struct {
	mode         LooperMode
	history      []float32
	writePos     int
	readPos      float64
	preDelay     int
	markerStart  float64
	markerStop   float64
	speed        float64
	audioRate    int32
}

// NewLooper allocates a Looper processor with a history buffer sized
// for maxSeconds of audio.
func NewLooper(maxSeconds float64) *Looper {
	l := &Looper{speed: 1, preDelay: 0, audioRate: 44100}
	l.resize(maxSeconds)
	return l
}

func (l *Looper) Name() string         { return "looper" }
func (l *Looper) NumSendPorts() int    { return 1 }
func (l *Looper) NumReceivePorts() int { return 1 }
func (l *Looper) VoiceProducing() bool { return false }
func (l *Looper) VoiceStateSize() int  { return 0 }
func (l *Looper) SetAudioRate(rate int32) {
	l.audioRate = rate
}
func (l *Looper) SetBufferSize(int)  {}
func (l *Looper) InitVoiceState(int) {}
func (l *Looper) RenderVoice(int, []*workbuf.Buffer, []*workbuf.Buffer, int, float64) {}

func (l *Looper) resize(maxSeconds float64) {
	n := int(maxSeconds * float64(l.audioRate))
	if n < 1 {
		n = 1
	}
	l.history = make([]float32, n)
	l.markerStop = float64(n)
}

func (l *Looper) Reset() {
	clearF32(l.history)
	l.writePos = 0
	l.readPos = 0
	l.mode = LooperStop
}

// FireEvent handles the Looper's named transport events: record,
// mark_start, mark_stop, play, stop.
func (l *Looper) FireEvent(name string, arg float64) {
	switch name {
	case "record":
		l.mode = LooperRecord
	case "mark_start":
		l.markerStart = float64(l.writePos)
		l.markerStop = float64(len(l.history))
	case "mark_stop":
		l.markerStop = float64(l.writePos)
	case "play":
		l.mode = LooperPlay
		l.readPos = l.markerStart
	case "stop":
		l.mode = LooperStop
	case "speed":
		l.speed = arg
	case "pre_delay":
		l.preDelay = int(arg)
	}
}

func (l *Looper) RenderMixed(recv, send []*workbuf.Buffer, frames int, tempo float64) {
	if len(send) == 0 {
		return
	}
	out := send[0]
	var in *workbuf.Buffer
	if len(recv) > 0 {
		in = recv[0]
	}
	n := len(l.history)

	for i := 0; i < frames; i++ {
		var x float32
		if in != nil {
			x = in.Data[i]
		}

		if l.mode == LooperRecord {
			l.history[l.writePos] = x
			l.writePos = (l.writePos + 1) % n
		}

		var outSample float32
		switch l.mode {
		case LooperRecord:
			readIdx := l.writePos - l.preDelay
			for readIdx < 0 {
				readIdx += n
			}
			outSample = l.history[readIdx%n]
		case LooperPlay:
			loopLen := l.markerStop - l.markerStart
			if loopLen <= 0 {
				loopLen = float64(n)
			}
			i0 := int(l.readPos) % n
			if i0 < 0 {
				i0 += n
			}
			i1 := (i0 + 1) % n
			frac := float32(l.readPos - math.Floor(l.readPos))
			outSample = l.history[i0] + frac*(l.history[i1]-l.history[i0])

			l.readPos += l.speed
			for l.readPos >= l.markerStart+loopLen {
				l.readPos -= loopLen
			}
			for l.readPos < l.markerStart {
				l.readPos += loopLen
			}
		}
		out.Data[i] = outSample
	}
	out.Valid = true
	out.ConstStart = frames
	out.Final = false
}
