// Package param holds the immutable, typed parameter containers the
// loader hands the engine: envelopes, samples, number lists and maps
// (spec.md §3, §6.1). The engine never mutates these after they are
// attached to a Module; it only reads them.
package param

import "fmt"

// Interp selects how Envelope.Value interpolates between nodes.
type Interp int

const (
	InterpNearest Interp = iota
	InterpLinear
)

// Point is one envelope node.
type Point struct {
	X, Y float64
}

// Envelope is an ordered sequence of (x, y) nodes with monotonic x, an
// optional loop region, and lock flags on whether the endpoints may move.
type Envelope struct {
	Nodes      []Point
	LoopStart  int // -1 = no loop
	LoopEnd    int
	FirstLockX bool
	FirstLockY bool
	LastLockX  bool
	LastLockY  bool
	Interp     Interp
}

// NewEnvelope validates and returns an Envelope. It enforces spec.md
// §3's invariant: x non-decreasing (equal x values are accepted), n>=2 if used, and
// loop_start <= loop_end when both are set.
func NewEnvelope(nodes []Point, loopStart, loopEnd int, interp Interp) (*Envelope, error) {
	if len(nodes) > 0 && len(nodes) < 2 {
		return nil, fmt.Errorf("envelope: need at least 2 nodes, got %d", len(nodes))
	}
	for i := 1; i < len(nodes); i++ {
		if nodes[i].X < nodes[i-1].X {
			return nil, fmt.Errorf("envelope: x not monotonic at node %d", i)
		}
	}
	if loopStart >= 0 && loopEnd >= 0 && loopStart > loopEnd {
		return nil, fmt.Errorf("envelope: loop_start %d > loop_end %d", loopStart, loopEnd)
	}
	return &Envelope{Nodes: nodes, LoopStart: loopStart, LoopEnd: loopEnd, Interp: interp}, nil
}

// Value evaluates the envelope at x. For x outside [x0, xn-1] the nearest
// endpoint value is held (clamped), matching a typical ADSR-style shape.
func (e *Envelope) Value(x float64) float64 {
	n := len(e.Nodes)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return e.Nodes[0].Y
	}
	if x <= e.Nodes[0].X {
		return e.Nodes[0].Y
	}
	if x >= e.Nodes[n-1].X {
		return e.Nodes[n-1].Y
	}
	// binary search for the segment containing x
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if e.Nodes[mid].X <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	a, b := e.Nodes[lo], e.Nodes[hi]
	if e.Interp == InterpNearest {
		if x-a.X <= b.X-x {
			return a.Y
		}
		return b.Y
	}
	if b.X == a.X {
		return a.Y
	}
	t := (x - a.X) / (b.X - a.X)
	return a.Y + t*(b.Y-a.Y)
}

// HasLoop reports whether a valid loop region is configured.
func (e *Envelope) HasLoop() bool {
	return e.LoopStart >= 0 && e.LoopEnd >= 0 && e.LoopStart <= e.LoopEnd && e.LoopEnd < len(e.Nodes)
}

// XMax returns the x-coordinate of the last node (0 for an empty envelope).
func (e *Envelope) XMax() float64 {
	if len(e.Nodes) == 0 {
		return 0
	}
	return e.Nodes[len(e.Nodes)-1].X
}
