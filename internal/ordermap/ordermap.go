// Package ordermap implements the Ordered Event Map of spec.md §3: a
// keyed container mapping a Tstamp to an ordered list of values
// (events), supporting insert, get-at-least-key (cursor seek), step to
// next, and remove, with iteration in ascending key order and
// insertion order within a key.
//
// Per the Redesign Flags in spec.md §9 ("balanced trees with parent
// links -> arena + stable indices"), this is an AA-tree (a simplified
// red-black tree using a single integer "level" per node) over a flat
// node arena addressed by index rather than pointer, eliminating the
// parent-link pointer graph the reference implementation's AAtree.c
// relies on. A cursor holds the tree and the stack of node indices from
// the root to its current node; it is never stored on the tree itself.
package ordermap

import "github.com/cbegin/kunquat-go/internal/tstamp"

const nilIdx = -1

type node[V any] struct {
	key                tstamp.Tstamp
	values             []V
	level              int
	left, right        int
}

// Map is an AA-tree keyed by Tstamp, with an ordered-list payload per key.
type Map[V any] struct {
	nodes []node[V]
	root  int
}

// New creates an empty ordered map.
func New[V any]() *Map[V] {
	return &Map[V]{root: nilIdx}
}

// Len returns the number of distinct keys.
func (m *Map[V]) Len() int {
	n := 0
	m.walk(m.root, func(int) { n++ })
	return n
}

func (m *Map[V]) walk(i int, fn func(int)) {
	if i == nilIdx {
		return
	}
	m.walk(m.nodes[i].left, fn)
	fn(i)
	m.walk(m.nodes[i].right, fn)
}

// Insert appends value to the ordered list at key, creating the key's
// node if absent. Order within a key is insertion order.
func (m *Map[V]) Insert(key tstamp.Tstamp, value V) {
	m.root = m.insert(m.root, key, value)
}

func (m *Map[V]) newNode(key tstamp.Tstamp, value V) int {
	m.nodes = append(m.nodes, node[V]{key: key, values: []V{value}, level: 1, left: nilIdx, right: nilIdx})
	return len(m.nodes) - 1
}

func (m *Map[V]) insert(i int, key tstamp.Tstamp, value V) int {
	if i == nilIdx {
		return m.newNode(key, value)
	}
	switch key.Cmp(m.nodes[i].key) {
	case -1:
		m.nodes[i].left = m.insert(m.nodes[i].left, key, value)
	case 1:
		m.nodes[i].right = m.insert(m.nodes[i].right, key, value)
	default:
		m.nodes[i].values = append(m.nodes[i].values, value)
		return i
	}
	i = m.skew(i)
	i = m.split(i)
	return i
}

func (m *Map[V]) levelOf(i int) int {
	if i == nilIdx {
		return 0
	}
	return m.nodes[i].level
}

// skew rotates right to remove a left-left horizontal link.
func (m *Map[V]) skew(i int) int {
	if i == nilIdx {
		return nilIdx
	}
	l := m.nodes[i].left
	if l != nilIdx && m.levelOf(l) == m.levelOf(i) {
		m.nodes[i].left = m.nodes[l].right
		m.nodes[l].right = i
		return l
	}
	return i
}

// split rotates left to remove a consecutive pair of right horizontal links.
func (m *Map[V]) split(i int) int {
	if i == nilIdx {
		return nilIdx
	}
	r := m.nodes[i].right
	if r != nilIdx && m.nodes[r].right != nilIdx && m.levelOf(m.nodes[r].right) == m.levelOf(i) {
		m.nodes[i].right = m.nodes[r].left
		m.nodes[r].left = i
		m.nodes[r].level++
		return r
	}
	return i
}

// Get returns the ordered values stored at key, if present.
func (m *Map[V]) Get(key tstamp.Tstamp) ([]V, bool) {
	i := m.find(m.root, key)
	if i == nilIdx {
		return nil, false
	}
	return m.nodes[i].values, true
}

func (m *Map[V]) find(i int, key tstamp.Tstamp) int {
	for i != nilIdx {
		switch key.Cmp(m.nodes[i].key) {
		case -1:
			i = m.nodes[i].left
		case 1:
			i = m.nodes[i].right
		default:
			return i
		}
	}
	return nilIdx
}

// Cursor walks the map in ascending key order starting at-or-after a key.
type Cursor[V any] struct {
	m    *Map[V]
	path []int // ancestor stack for in-order stepping
}

// Seek returns a cursor positioned at the first key >= key ("get at
// least key"), or an exhausted cursor if no such key exists.
func (m *Map[V]) Seek(key tstamp.Tstamp) *Cursor[V] {
	c := &Cursor[V]{m: m}
	i := m.root
	var best = nilIdx
	var bestPath []int
	var path []int
	for i != nilIdx {
		path = append(path, i)
		switch {
		case m.nodes[i].key.Less(key):
			i = m.nodes[i].right
		default: // >= key
			best = i
			bestPath = append([]int(nil), path...)
			i = m.nodes[i].left
		}
	}
	c.path = bestPath
	if best == nilIdx {
		c.path = nil
	}
	return c
}

// SeekFirst returns a cursor at the smallest key in the map.
func (m *Map[V]) SeekFirst() *Cursor[V] {
	var path []int
	i := m.root
	for i != nilIdx {
		path = append(path, i)
		i = m.nodes[i].left
	}
	return &Cursor[V]{m: m, path: path}
}

// Done reports whether the cursor has been exhausted.
func (c *Cursor[V]) Done() bool { return len(c.path) == 0 }

// Key returns the current key. Only valid when !Done().
func (c *Cursor[V]) Key() tstamp.Tstamp { return c.m.nodes[c.path[len(c.path)-1]].key }

// Values returns the ordered value list at the current key.
func (c *Cursor[V]) Values() []V { return c.m.nodes[c.path[len(c.path)-1]].values }

// Step advances the cursor to the next key in ascending order.
func (c *Cursor[V]) Step() {
	if c.Done() {
		return
	}
	top := c.path[len(c.path)-1]
	i := c.m.nodes[top].right
	if i != nilIdx {
		c.path = append(c.path, i)
		for c.m.nodes[i].left != nilIdx {
			i = c.m.nodes[i].left
			c.path = append(c.path, i)
		}
		return
	}
	// climb until we ascend from a left child
	for len(c.path) > 1 {
		child := c.path[len(c.path)-1]
		c.path = c.path[:len(c.path)-1]
		parent := c.path[len(c.path)-1]
		if c.m.nodes[parent].left == child {
			return
		}
	}
	c.path = nil
}

// Remove deletes every value stored at key, if any.
func (m *Map[V]) Remove(key tstamp.Tstamp) {
	m.root = m.remove(m.root, key)
}

func (m *Map[V]) remove(i int, key tstamp.Tstamp) int {
	if i == nilIdx {
		return nilIdx
	}
	switch key.Cmp(m.nodes[i].key) {
	case -1:
		m.nodes[i].left = m.remove(m.nodes[i].left, key)
	case 1:
		m.nodes[i].right = m.remove(m.nodes[i].right, key)
	default:
		if m.nodes[i].left == nilIdx && m.nodes[i].right == nilIdx {
			return nilIdx
		}
		if m.nodes[i].left == nilIdx {
			succ := m.successor(i)
			m.nodes[i].key = m.nodes[succ].key
			m.nodes[i].values = m.nodes[succ].values
			m.nodes[i].right = m.remove(m.nodes[i].right, m.nodes[succ].key)
		} else {
			pred := m.predecessor(i)
			m.nodes[i].key = m.nodes[pred].key
			m.nodes[i].values = m.nodes[pred].values
			m.nodes[i].left = m.remove(m.nodes[i].left, m.nodes[pred].key)
		}
	}
	return m.rebalanceAfterDelete(i)
}

func (m *Map[V]) successor(i int) int {
	j := m.nodes[i].right
	for m.nodes[j].left != nilIdx {
		j = m.nodes[j].left
	}
	return j
}

func (m *Map[V]) predecessor(i int) int {
	j := m.nodes[i].left
	for m.nodes[j].right != nilIdx {
		j = m.nodes[j].right
	}
	return j
}

func (m *Map[V]) rebalanceAfterDelete(i int) int {
	if i == nilIdx {
		return nilIdx
	}
	leftLevel := m.levelOf(m.nodes[i].left)
	rightLevel := m.levelOf(m.nodes[i].right)
	shouldBe := min(leftLevel, rightLevel) + 1
	if shouldBe < m.nodes[i].level {
		m.nodes[i].level = shouldBe
		if shouldBe < rightLevel {
			m.nodes[m.nodes[i].right].level = shouldBe
		}
	}
	i = m.skew(i)
	m.nodes[i].right = m.skew(m.nodes[i].right)
	if m.nodes[i].right != nilIdx {
		m.nodes[m.nodes[i].right].right = m.skew(m.nodes[m.nodes[i].right].right)
	}
	i = m.split(i)
	m.nodes[i].right = m.split(m.nodes[i].right)
	return i
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
