// Package devicegraph implements the processor connection graph of
// spec.md §4.3: ports, edges between them, a cached topological render
// order, and the per-chunk render loop that drives each processor's
// voice and mixed rendering and forwards its send-port buffers to
// downstream receive ports.
//
// This generalizes the teacher's Sequencer.Process loop shape (advance
// time -> dispatch -> render -> emit) from a single fixed-function
// engine into a data-driven graph of many processors.
package devicegraph

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cbegin/kunquat-go/internal/workbuf"
)

// Port identifies one named buffer slot on a processor (send or receive).
type Port struct {
	Proc  int // processor index
	Index int // port number within the processor
	Send  bool
}

// Edge connects a send port to a receive port. Multiple edges may feed
// the same receive port; their contributions are mixed (§4.1 Mix).
type Edge struct {
	From Port
	To   Port
}

// Processor is anything the graph can render: it may render per-voice,
// mixed, both, or neither (a pure pass-through/bypass device).
type Processor interface {
	Name() string
	NumSendPorts() int
	NumReceivePorts() int
	// RenderMixed renders this processor's mixed (non-voice) signal
	// path, reading its receive buffers and writing its send buffers.
	RenderMixed(recv, send []*workbuf.Buffer, frames int, tempo float64)
	// RenderVoice renders one active voice's contribution for this
	// processor, if it produces a voice signal. slot identifies the
	// voice (for buffer addressing); implementations that don't
	// produce voice signals may no-op.
	RenderVoice(slot int, recv, send []*workbuf.Buffer, frames int, tempo float64)
	// VoiceProducing reports whether this processor emits a per-voice
	// signal at all (so the graph knows whether to sum per-voice sends
	// into the downstream mixed receive buffer).
	VoiceProducing() bool
}

// Graph is a directed acyclic graph of Processors connected by Edges,
// with a cached topological order that is only recomputed when the
// edge set changes.
type Graph struct {
	procs      []Processor
	edges      []Edge
	order      []int   // processor indices in topological order
	stages     [][]int // order grouped into dependency levels (spec.md §5 parallelism)
	orderValid bool

	// mixed buffers: mixedSend[proc][port], mixedRecv[proc][port]
	mixedSend [][]*workbuf.Buffer
	mixedRecv [][]*workbuf.Buffer

	// voice buffers: voiceSend[proc][slot][port], voiceRecv[proc][slot][port]
	voiceSend [][][]*workbuf.Buffer
	voiceRecv [][][]*workbuf.Buffer

	maxVoices  int
	bufferSize int
}

// New creates an empty graph sized for maxVoices simultaneous voices
// and bufferSize frames per work buffer.
func New(maxVoices, bufferSize int) *Graph {
	return &Graph{maxVoices: maxVoices, bufferSize: bufferSize}
}

// AddProcessor appends a processor and allocates its buffers, returning
// its index.
func (g *Graph) AddProcessor(p Processor) int {
	idx := len(g.procs)
	g.procs = append(g.procs, p)

	send := make([]*workbuf.Buffer, p.NumSendPorts())
	for i := range send {
		send[i] = workbuf.New(g.bufferSize)
	}
	recv := make([]*workbuf.Buffer, p.NumReceivePorts())
	for i := range recv {
		recv[i] = workbuf.New(g.bufferSize)
	}
	g.mixedSend = append(g.mixedSend, send)
	g.mixedRecv = append(g.mixedRecv, recv)

	vsend := make([][]*workbuf.Buffer, g.maxVoices)
	vrecv := make([][]*workbuf.Buffer, g.maxVoices)
	for v := 0; v < g.maxVoices; v++ {
		vs := make([]*workbuf.Buffer, p.NumSendPorts())
		for i := range vs {
			vs[i] = workbuf.New(g.bufferSize)
		}
		vr := make([]*workbuf.Buffer, p.NumReceivePorts())
		for i := range vr {
			vr[i] = workbuf.New(g.bufferSize)
		}
		vsend[v] = vs
		vrecv[v] = vr
	}
	g.voiceSend = append(g.voiceSend, vsend)
	g.voiceRecv = append(g.voiceRecv, vrecv)

	g.orderValid = false
	return idx
}

// Connect adds an edge from a send port to a receive port and
// invalidates the cached topological order.
func (g *Graph) Connect(fromProc, fromPort, toProc, toPort int) {
	g.edges = append(g.edges, Edge{
		From: Port{Proc: fromProc, Index: fromPort, Send: true},
		To:   Port{Proc: toProc, Index: toPort, Send: false},
	})
	g.orderValid = false
}

// ensureOrder recomputes and caches the topological order via Kahn's
// algorithm, returning an error if the graph has a cycle. It also
// groups that order into dependency levels (stages): every processor
// in stage k has all of its upstream producers in stages [0,k), and no
// edge runs between two processors of the same stage. This is the
// partition the optional parallel render path (spec.md §5) walks: all
// producers of a port complete (the whole previous stage finishes)
// before any consumer (the next stage) begins, while same-stage
// processors have no ordering constraint between them and may run
// concurrently.
func (g *Graph) ensureOrder() error {
	if g.orderValid {
		return nil
	}
	n := len(g.procs)
	indeg := make([]int, n)
	adj := make([][]int, n)
	seen := make(map[[2]int]bool)
	for _, e := range g.edges {
		key := [2]int{e.From.Proc, e.To.Proc}
		if e.From.Proc == e.To.Proc || seen[key] {
			continue
		}
		seen[key] = true
		adj[e.From.Proc] = append(adj[e.From.Proc], e.To.Proc)
		indeg[e.To.Proc]++
	}
	level := make([]int, n)
	var queue []int
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			queue = append(queue, i)
		}
	}
	order := make([]int, 0, n)
	maxLevel := 0
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, i)
		for _, j := range adj[i] {
			if level[i]+1 > level[j] {
				level[j] = level[i] + 1
			}
			if level[j] > maxLevel {
				maxLevel = level[j]
			}
			indeg[j]--
			if indeg[j] == 0 {
				queue = append(queue, j)
			}
		}
	}
	if len(order) != n {
		return fmt.Errorf("devicegraph: cycle detected among %d processors", n)
	}
	g.order = order
	stages := make([][]int, maxLevel+1)
	for _, i := range order {
		stages[level[i]] = append(stages[level[i]], i)
	}
	g.stages = stages
	g.orderValid = true
	return nil
}

// ActiveVoices reports which voice slots are currently live, indexed by
// slot; callers pass this so the graph knows which per-voice buffers to
// render and sum this chunk.
type ActiveVoices func(proc int) []int

// Render walks the processors in topological order for one chunk of
// frames, rendering voice and mixed paths and forwarding send buffers
// to downstream receive buffers via Mix (§4.1), honoring constant-region
// forwarding: a receive port stays constant/final only if every
// contributing send port is.
func (g *Graph) Render(frames int, tempo float64, active ActiveVoices) error {
	if err := g.ensureOrder(); err != nil {
		return err
	}

	// Clear every processor's receive buffers before any processor runs:
	// an edge writes into its destination's receive buffer during the
	// source processor's turn, which (by topological order) precedes the
	// destination's own turn, so clearing per-idx inside the walk below
	// would erase upstream's writes before the destination ever reads them.
	for _, idx := range g.order {
		for _, b := range g.mixedRecv[idx] {
			b.Valid = false
			b.ConstStart = 0
			b.Final = false
		}
		for _, perSlot := range g.voiceRecv[idx] {
			for _, b := range perSlot {
				b.Valid = false
				b.ConstStart = 0
				b.Final = false
			}
		}
	}

	for _, stage := range g.stages {
		if len(stage) > 1 {
			// No edge runs within a stage (that's what makes it a stage),
			// so every processor here reads only buffers already settled
			// by earlier stages and writes only its own send buffers:
			// safe to fan out across goroutines per spec.md §5's optional
			// thread-pool render path. eg.Go's functions never return an
			// error (processor rendering has no fallible signature), so
			// Wait only provides the completion barrier.
			var eg errgroup.Group
			for _, idx := range stage {
				idx := idx
				eg.Go(func() error {
					g.renderProcessor(idx, frames, tempo, active)
					return nil
				})
			}
			_ = eg.Wait()
		} else {
			for _, idx := range stage {
				g.renderProcessor(idx, frames, tempo, active)
			}
		}
		// Edge propagation runs after the whole stage's compute has
		// completed (the errgroup.Wait barrier above), so a downstream
		// processor in the next stage never observes a partially written
		// send buffer. Kept sequential: it is plain buffer arithmetic,
		// and several edges may target the same destination port, which
		// Mix must apply one at a time.
		for _, idx := range stage {
			g.propagateEdges(idx, frames, active)
		}
	}
	return nil
}

// renderProcessor runs one processor's voice and mixed render stages
// for this chunk, without touching any other processor's buffers.
func (g *Graph) renderProcessor(idx, frames int, tempo float64, active ActiveVoices) {
	p := g.procs[idx]
	if p.VoiceProducing() {
		var liveSlots []int
		if active != nil {
			liveSlots = active(idx)
		}
		for _, slot := range liveSlots {
			p.RenderVoice(slot, g.voiceRecv[idx][slot], g.voiceSend[idx][slot], frames, tempo)
		}
	}
	p.RenderMixed(g.mixedRecv[idx], g.mixedSend[idx], frames, tempo)
}

// propagateEdges forwards processor idx's just-rendered send buffers
// to every downstream receive port it feeds, mixing (§4.1) when a
// receive port already has a contribution from another edge.
func (g *Graph) propagateEdges(idx, frames int, active ActiveVoices) {
	p := g.procs[idx]
	var liveSlots []int
	if active != nil {
		liveSlots = active(idx)
	}
	for _, e := range g.edges {
		if e.From.Proc != idx {
			continue
		}
		dstRecv := g.mixedRecv[e.To.Proc][e.To.Index]
		srcSend := g.mixedSend[idx][e.From.Index]
		if !dstRecv.Valid {
			workbuf.Copy(dstRecv, srcSend, 0, frames)
		} else {
			workbuf.Mix(dstRecv, srcSend, 0, frames)
		}
		if p.VoiceProducing() {
			for _, slot := range liveSlots {
				voiceSrc := g.voiceSend[idx][slot][e.From.Index]

				// Per-voice chain routing: a downstream voice-producing
				// processor (e.g. an oscillator reading pitch, or a
				// combiner reading another processor's per-voice
				// output) must see each voice's own contribution in
				// isolation, not the cross-voice sum below.
				dstRecvVoice := g.voiceRecv[e.To.Proc][slot][e.To.Index]
				if !dstRecvVoice.Valid {
					workbuf.Copy(dstRecvVoice, voiceSrc, 0, frames)
				} else {
					workbuf.Mix(dstRecvVoice, voiceSrc, 0, frames)
				}

				// Cross-voice sum for a downstream mixed-only consumer
				// (e.g. an effects bus that has no per-voice state).
				if !dstRecv.Valid {
					workbuf.Copy(dstRecv, voiceSrc, 0, frames)
				} else {
					workbuf.Mix(dstRecv, voiceSrc, 0, frames)
				}
			}
		}
	}
}

// MixedSendBuffer returns a processor's mixed send buffer, e.g. for the
// master mixer to pull the final output from the terminal processor.
func (g *Graph) MixedSendBuffer(proc, port int) *workbuf.Buffer {
	return g.mixedSend[proc][port]
}

// VoiceSendBuffer returns one voice slot's send buffer for a processor/port.
func (g *Graph) VoiceSendBuffer(proc, slot, port int) *workbuf.Buffer {
	return g.voiceSend[proc][slot][port]
}

// VoiceRecvBuffer returns one voice slot's receive buffer for a processor/port.
func (g *Graph) VoiceRecvBuffer(proc, slot, port int) *workbuf.Buffer {
	return g.voiceRecv[proc][slot][port]
}

// MixedRecvBuffer returns a processor's mixed receive buffer.
func (g *Graph) MixedRecvBuffer(proc, port int) *workbuf.Buffer {
	return g.mixedRecv[proc][port]
}

// Resize recreates every buffer in the graph for a new chunk size.
func (g *Graph) Resize(size int) {
	g.bufferSize = size
	for _, bufs := range g.mixedSend {
		for _, b := range bufs {
			b.Resize(size)
		}
	}
	for _, bufs := range g.mixedRecv {
		for _, b := range bufs {
			b.Resize(size)
		}
	}
	for _, perVoice := range g.voiceSend {
		for _, bufs := range perVoice {
			for _, b := range bufs {
				b.Resize(size)
			}
		}
	}
	for _, perVoice := range g.voiceRecv {
		for _, bufs := range perVoice {
			for _, b := range bufs {
				b.Resize(size)
			}
		}
	}
}
