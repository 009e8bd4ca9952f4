// Package workbuf implements Kunquat's Work Buffer: a contiguous float
// block carrying validity and constant-region metadata alongside its
// samples, so downstream processors can skip per-sample work across
// stretches of silence or settled envelopes.
package workbuf

// Margin is extra trailing storage reserved past the requested size for
// readers that interpolate a frame or two ahead (sample playback,
// chorus/delay taps).
const Margin = 4

// Buffer is an aligned float block of size S+Margin plus the metadata
// described in spec.md §4.1.
//
// Invariants: callers may only read [0, S). If Valid is false, contents
// are undefined. If i >= ConstStart, Data[i] == Data[ConstStart]. If
// Final is true, the constant tail also holds for future renders (e.g.
// permanent silence after a finished envelope).
type Buffer struct {
	Data       []float32
	size       int
	Valid      bool
	ConstStart int
	Final      bool
}

// New allocates a Buffer able to hold size usable frames.
func New(size int) *Buffer {
	b := &Buffer{}
	b.Resize(size)
	return b
}

// Resize recreates the buffer's storage for a new usable size, and
// invalidates its contents (matching the §4.1 contract: resize is a
// re-allocation, not a reinterpretation of existing data).
func (b *Buffer) Resize(size int) {
	if size < 0 {
		size = 0
	}
	b.size = size
	b.Data = make([]float32, size+Margin)
	b.Valid = false
	b.ConstStart = size
	b.Final = false
}

// Size returns the usable (non-margin) length.
func (b *Buffer) Size() int { return b.size }

// Clear zeroes [from,to) and marks the result valid, permanently
// constant from `from` onward.
func (b *Buffer) Clear(from, to int) {
	if to > b.size {
		to = b.size
	}
	for i := from; i < to; i++ {
		b.Data[i] = 0
	}
	b.Valid = true
	b.ConstStart = from
	b.Final = true
}

// Copy copies src[from,to) into dest[from,to) and propagates the
// const-region / finality metadata from src.
func Copy(dest, src *Buffer, from, to int) {
	if to > dest.size {
		to = dest.size
	}
	if to > src.size {
		to = src.size
	}
	copy(dest.Data[from:to], src.Data[from:to])
	dest.Valid = src.Valid
	dest.ConstStart = src.ConstStart
	dest.Final = src.Final
}

// negInf models the "silence in dB" terminal value used by §4.1's mix
// propagation exception.
const negInf = float32(-1e18)

// IsNegInf reports whether v should be treated as the dB "silence"
// sentinel for the purposes of Mix's finality propagation.
func IsNegInf(v float32) bool { return v <= negInf }

// NegInf is the sentinel value processors should write to mean "silence,
// permanently" in a dB-valued buffer.
func NegInf() float32 { return negInf }

// Mix adds src into dest element-wise over [from,to) and recombines
// validity/const-region/finality per spec.md §4.1:
//
//	valid      = dest.valid || src.valid
//	const_start = max(dest.const_start, src.const_start), unless either
//	              side holds a final -inf tail, which forces the tail
//	              permanently to -inf from that side's start (the earlier
//	              of the two starts when both sides hold one)
//	final      = dest.final && src.final, with the same -inf exception
func Mix(dest, src *Buffer, from, to int) {
	if to > dest.size {
		to = dest.size
	}
	if to > src.size {
		to = src.size
	}
	for i := from; i < to; i++ {
		dest.Data[i] += src.Data[i]
	}

	destSilentTail := dest.Final && dest.ConstStart <= to && IsNegInf(dest.Data[min(dest.ConstStart, to-1)])
	srcSilentTail := src.Final && src.ConstStart <= to && IsNegInf(src.Data[min(src.ConstStart, to-1)])

	switch {
	case destSilentTail && srcSilentTail:
		dest.ConstStart = min(dest.ConstStart, src.ConstStart)
		dest.Final = true
	case destSilentTail:
		dest.ConstStart = dest.ConstStart
		dest.Final = true
	case srcSilentTail:
		dest.ConstStart = src.ConstStart
		dest.Final = true
	default:
		if src.ConstStart > dest.ConstStart {
			dest.ConstStart = src.ConstStart
		}
		dest.Final = dest.Final && src.Final
	}
	dest.Valid = dest.Valid || src.Valid
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
