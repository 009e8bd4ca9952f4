// Package tstamp implements Kunquat's musical-time arithmetic: an exact
// rational position measured in beats plus a fixed-denominator remainder.
package tstamp

import "fmt"

// Beat is the subdivision denominator for the remainder part of a Tstamp.
// It is highly composite (divisible by 2, 3, 4, 5, 6, 7, 8, 9, ...) so that
// common musical subdivisions land on exact integers.
const Beat int64 = 882161280

// Tstamp is a musical-time position: whole beats plus a remainder in
// units of 1/Beat of a beat. The remainder is always kept in [0, Beat).
type Tstamp struct {
	Beats int64
	Rem   int64
}

// Zero is the origin of musical time.
var Zero = Tstamp{}

// New builds a normalised Tstamp from beats and a remainder that may be
// out of [0, Beat) or negative; it is folded into canonical form.
func New(beats int64, rem int64) Tstamp {
	t := Tstamp{Beats: beats, Rem: rem}
	t.normalize()
	return t
}

// FromBeats builds a Tstamp from a (possibly fractional) beat count.
func FromBeats(beats float64) Tstamp {
	whole := int64(beats)
	frac := beats - float64(whole)
	return New(whole, int64(frac*float64(Beat)))
}

func (t *Tstamp) normalize() {
	if t.Rem >= Beat {
		t.Beats += t.Rem / Beat
		t.Rem %= Beat
	} else if t.Rem < 0 {
		borrow := (-t.Rem + Beat - 1) / Beat
		t.Beats -= borrow
		t.Rem += borrow * Beat
	}
}

// Add returns t + o.
func (t Tstamp) Add(o Tstamp) Tstamp {
	return New(t.Beats+o.Beats, t.Rem+o.Rem)
}

// Sub returns t - o.
func (t Tstamp) Sub(o Tstamp) Tstamp {
	return New(t.Beats-o.Beats, t.Rem-o.Rem)
}

// Cmp returns -1, 0, or 1 as t is less than, equal to, or greater than o.
func (t Tstamp) Cmp(o Tstamp) int {
	switch {
	case t.Beats < o.Beats:
		return -1
	case t.Beats > o.Beats:
		return 1
	case t.Rem < o.Rem:
		return -1
	case t.Rem > o.Rem:
		return 1
	default:
		return 0
	}
}

func (t Tstamp) Less(o Tstamp) bool    { return t.Cmp(o) < 0 }
func (t Tstamp) LessEq(o Tstamp) bool  { return t.Cmp(o) <= 0 }
func (t Tstamp) Greater(o Tstamp) bool { return t.Cmp(o) > 0 }
func (t Tstamp) IsZero() bool          { return t.Beats == 0 && t.Rem == 0 }

// ToFloatBeats converts to a floating-point beat count (for display/debug).
func (t Tstamp) ToFloatBeats() float64 {
	return float64(t.Beats) + float64(t.Rem)/float64(Beat)
}

// ToFrames converts a duration to an audio-frame count given a tempo (BPM)
// and an audio rate (frames/sec). beats_per_sec = tempo/60.
func (t Tstamp) ToFrames(tempo float64, audioRate int32) int64 {
	if tempo <= 0 {
		tempo = 120
	}
	beatsPerSec := tempo / 60.0
	return int64(t.ToFloatBeats() / beatsPerSec * float64(audioRate))
}

// FromFrames converts an audio-frame count back to a Tstamp duration.
func FromFrames(frames int64, tempo float64, audioRate int32) Tstamp {
	if tempo <= 0 {
		tempo = 120
	}
	if audioRate <= 0 {
		audioRate = 1
	}
	beatsPerSec := tempo / 60.0
	beats := float64(frames) / float64(audioRate) * beatsPerSec
	return FromBeats(beats)
}

func (t Tstamp) String() string {
	return fmt.Sprintf("%d+%d/%d", t.Beats, t.Rem, Beat)
}
