package search

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/chewxy/math32"

	"github.com/MortenLohne/tiltak/tak"
)

const (
	chunkSize = 4096
	maxChunks = 4096

	// Exploration constant schedule: cPuct grows logarithmically with the
	// parent's visit count.
	cPuctInit float32 = 0.57
	cPuctBase float32 = 10000

	// Mean value assumed for edges that have never been visited.
	fpuMean = 0.1
)

// edge is one move out of an expanded node. visits and total are updated by
// many workers; total holds the float64 bit pattern of the value sum from
// the child's perspective, where 1 is a win for the child's side to move.
// Concurrent readers may see visits and total from different instants; the
// selection heuristic tolerates that.
type edge struct {
	mv     tak.Move
	prior  float32
	child  atomic.Uint32 // arena index + 1; 0 while unmaterialized
	visits atomic.Int64
	total  atomic.Uint64 // float64 bits
}

func (e *edge) addValue(delta float64) {
	for {
		old := e.total.Load()
		upd := math.Float64bits(math.Float64frombits(old) + delta)
		if e.total.CompareAndSwap(old, upd) {
			return
		}
	}
}

// mean is the average value of the edge from the child's perspective.
func (e *edge) mean() float32 {
	v := e.visits.Load()
	if v == 0 {
		return fpuMean
	}
	return float32(math.Float64frombits(e.total.Load()) / float64(v))
}

// node is a tree node in the arena. visits counts entries during descent.
// terminal, value and edges are written once under mu before the expanded
// flag is published; readers that observe expanded may read them freely.
type node struct {
	visits   atomic.Int64
	expanded atomic.Bool
	mu       sync.Mutex
	edges    []edge
	terminal bool
	value    float32 // terminal value for the side to move, in [0, 1]
}

// selectEdge picks the PUCT-maximal edge. Strict comparison keeps the first
// maximal edge, so ties break in move-generation order.
func (v *node) selectEdge() *edge {
	parentVisits := float32(v.visits.Load())
	cPuct := cPuctInit + math32.Log((1+parentVisits+cPuctBase)/cPuctBase)
	sqrtN := math32.Sqrt(parentVisits)

	var best *edge
	bestScore := math32.Inf(-1)
	for i := range v.edges {
		e := &v.edges[i]
		exploitation := 1 - e.mean()
		exploration := cPuct * e.prior * sqrtN / float32(1+e.visits.Load())
		if score := exploitation + exploration; score > bestScore {
			bestScore = score
			best = e
		}
	}
	return best
}

// bestEdge is the move-selection rule at the root: most visits, then best
// value for the parent, then move-generation order.
func (v *node) bestEdge() *edge {
	var best *edge
	for i := range v.edges {
		e := &v.edges[i]
		if best == nil {
			best = e
			continue
		}
		ev, bv := e.visits.Load(), best.visits.Load()
		if ev > bv || (ev == bv && e.mean() < best.mean()) {
			best = e
		}
	}
	return best
}

// arena stores nodes in fixed-size chunks behind a fixed chunk table, so a
// node's address never changes after allocation and readers need no lock.
type arena struct {
	mu     sync.Mutex
	chunks [maxChunks][]node
	count  uint32
}

func (a *arena) at(i uint32) *node {
	return &a.chunks[i/chunkSize][i%chunkSize]
}

func (a *arena) size() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

// alloc reserves one node, growing by a chunk when needed. ok is false when
// the arena is full.
func (a *arena) alloc() (idx uint32, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.count == maxChunks*chunkSize {
		return 0, false
	}
	idx = a.count
	c := idx / chunkSize
	if a.chunks[c] == nil {
		a.chunks[c] = make([]node, chunkSize)
	}
	a.count++
	return idx, true
}

// copySubtree deep-copies the subtree rooted at from into dst, returning
// the new root index. Only called between searches, with no workers live.
func copySubtree(src *arena, from uint32, dst *arena) uint32 {
	to, _ := dst.alloc()
	s, d := src.at(from), dst.at(to)
	d.visits.Store(s.visits.Load())
	d.terminal = s.terminal
	d.value = s.value
	if s.expanded.Load() {
		d.edges = make([]edge, len(s.edges))
		for i := range s.edges {
			se, de := &s.edges[i], &d.edges[i]
			de.mv = se.mv
			de.prior = se.prior
			de.visits.Store(se.visits.Load())
			de.total.Store(se.total.Load())
			if ci := se.child.Load(); ci != 0 {
				de.child.Store(copySubtree(src, ci-1, dst) + 1)
			}
		}
		d.expanded.Store(true)
	}
	return to
}
