package devicegraph

import (
	"testing"

	"github.com/cbegin/kunquat-go/internal/workbuf"
)

// constSource is a mixed-only processor that emits a fixed value on its
// single send port, for exercising topological order and edge mixing.
type constSource struct {
	name string
	val  float32
}

func (c *constSource) Name() string            { return c.name }
func (c *constSource) NumSendPorts() int       { return 1 }
func (c *constSource) NumReceivePorts() int    { return 0 }
func (c *constSource) VoiceProducing() bool    { return false }
func (c *constSource) RenderVoice(int, []*workbuf.Buffer, []*workbuf.Buffer, int, float64) {}
func (c *constSource) RenderMixed(recv, send []*workbuf.Buffer, frames int, tempo float64) {
	for i := 0; i < frames; i++ {
		send[0].Data[i] = c.val
	}
	send[0].Valid = true
	send[0].ConstStart = 0
	send[0].Final = true
}

// summer has two receive ports and copies their sum to its one send port.
type summer struct{}

func (s *summer) Name() string            { return "summer" }
func (s *summer) NumSendPorts() int       { return 1 }
func (s *summer) NumReceivePorts() int    { return 2 }
func (s *summer) VoiceProducing() bool    { return false }
func (s *summer) RenderVoice(int, []*workbuf.Buffer, []*workbuf.Buffer, int, float64) {}
func (s *summer) RenderMixed(recv, send []*workbuf.Buffer, frames int, tempo float64) {
	for i := 0; i < frames; i++ {
		send[0].Data[i] = recv[0].Data[i] + recv[1].Data[i]
	}
	send[0].Valid = true
}

func TestRenderOrdersAndMixesEdges(t *testing.T) {
	g := New(0, 16)
	a := g.AddProcessor(&constSource{name: "a", val: 1})
	b := g.AddProcessor(&constSource{name: "b", val: 2})
	s := g.AddProcessor(&summer{})
	g.Connect(a, 0, s, 0)
	g.Connect(b, 0, s, 1)

	if err := g.Render(8, 120, nil); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := g.MixedSendBuffer(s, 0)
	for i := 0; i < 8; i++ {
		if out.Data[i] != 3 {
			t.Fatalf("Data[%d] = %v, want 3", i, out.Data[i])
		}
	}
}

func TestCycleDetection(t *testing.T) {
	g := New(0, 4)
	a := g.AddProcessor(&constSource{name: "a"})
	b := g.AddProcessor(&constSource{name: "b"})
	g.Connect(a, 0, b, 0)
	g.Connect(b, 0, a, 0)
	if err := g.Render(4, 120, nil); err == nil {
		t.Error("expected a cycle error")
	}
}
