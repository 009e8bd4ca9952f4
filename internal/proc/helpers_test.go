package proc

import "github.com/cbegin/kunquat-go/internal/workbuf"

// wbuf is a tiny test helper wrapping a single workbuf.Buffer so
// processor tests can build recv/send port slices tersely.
type wbuf struct {
	buf *workbuf.Buffer
}

func newWBuf(size int) *wbuf {
	return &wbuf{buf: workbuf.New(size)}
}

func (w *wbuf) bufs() []*workbuf.Buffer {
	return []*workbuf.Buffer{w.buf}
}
