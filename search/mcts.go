package search

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/MortenLohne/tiltak/eval"
	"github.com/MortenLohne/tiltak/tak"
)

// evalScale squashes evaluator output into a win probability.
const evalScale = 0.4

// maxPVLength bounds the principal variation extracted after a search.
const maxPVLength = 30

// MCTS is a Monte Carlo tree searcher guided by the policy and value parts
// of the evaluator. Workers share one lock-free node arena; positions are
// replayed per worker with do/undo. The tree is retained between calls so a
// follow-up search of a successor position can reuse its subtree.
//
// An MCTS value is not safe for concurrent Search calls; workers inside one
// call share freely.
type MCTS struct {
	tree *tree
}

func NewMCTS() *MCTS { return &MCTS{} }

type tree struct {
	arena *arena
	root  uint32
	pos   *tak.Position
}

func (m *MCTS) Search(ctx context.Context, pos *tak.Position, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if pos.Status().Over() {
		return Result{}, errors.Wrap(ErrIllegalState, "searching a terminal position")
	}

	stats := newStatsCollector()
	t, reused := m.reuseOrNewTree(pos)
	m.tree = t
	if reused {
		stats.reusedTree()
	}

	threads := cfg.Threads
	if threads < 1 {
		threads = 1
	}
	stop := &atomic.Bool{}
	workers := make([]*mctsWorker, threads)
	for i := range workers {
		workers[i] = newMCTSWorker(t, cfg, uint64(i), stats, stop)
	}

	root := t.arena.at(t.root)
	if !root.expanded.Load() {
		root.mu.Lock()
		if !root.expanded.Load() {
			workers[0].expandLocked(root)
		}
		root.mu.Unlock()
		root.visits.CompareAndSwap(0, 1)
	}

	if cfg.FixedNodes > 0 {
		m.runFixed(ctx, workers, cfg.FixedNodes)
	} else {
		m.runCountdown(ctx, workers, cfg, stop)
	}

	result, err := m.pickResult(root, stats)
	log.Debug().
		Int64("simulations", result.Stats.Simulations).
		Uint32("nodes", t.arena.size()).
		Bool("tree_reused", reused).
		Dur("elapsed", result.Stats.Elapsed).
		Msg("mcts search complete")
	return result, err
}

// runFixed runs exactly n simulations split across the workers.
func (m *MCTS) runFixed(ctx context.Context, workers []*mctsWorker, n int64) {
	tasks := make(chan struct{}, n)
	for i := int64(0); i < n; i++ {
		tasks <- struct{}{}
	}
	close(tasks)

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *mctsWorker) {
			defer wg.Done()
			for range tasks {
				if ctx.Err() != nil || w.stop.Load() {
					return
				}
				w.simulate()
				w.stats.addSimulation()
			}
		}(w)
	}
	wg.Wait()
}

// runCountdown runs until the time budget, node budget, or ctx stops it.
func (m *MCTS) runCountdown(ctx context.Context, workers []*mctsWorker, cfg Config, stop *atomic.Bool) {
	var timer *time.Timer
	if cfg.TimeBudget > 0 {
		timer = time.AfterFunc(cfg.TimeBudget, func() { stop.Store(true) })
		defer timer.Stop()
	}

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *mctsWorker) {
			defer wg.Done()
			for !stop.Load() {
				if ctx.Err() != nil {
					stop.Store(true)
					return
				}
				w.simulate()
				if done := w.stats.addSimulation(); cfg.NodeBudget > 0 && done >= cfg.NodeBudget {
					stop.Store(true)
				}
			}
		}(w)
	}
	wg.Wait()
}

func (m *MCTS) pickResult(root *node, stats *statsCollector) (Result, error) {
	best := root.bestEdge()
	if best == nil {
		return Result{Stats: stats.snapshot()}, errors.Wrap(ErrIllegalState, "root has no moves")
	}
	if best.visits.Load() == 0 {
		// Nothing was searched; fall back to the raw policy priors.
		fallback := best
		for i := range root.edges {
			if root.edges[i].prior > fallback.prior {
				fallback = &root.edges[i]
			}
		}
		return Result{Move: fallback.mv, Stats: stats.snapshot()}, ErrBudgetExceeded
	}
	return Result{
		Move:  best.mv,
		Score: guardScore(2*(1-best.mean()) - 1),
		PV:    m.principalVariation(),
		Stats: stats.snapshot(),
	}, nil
}

func (m *MCTS) principalVariation() []tak.Move {
	var pv []tak.Move
	n := m.tree.arena.at(m.tree.root)
	for len(pv) < maxPVLength {
		if !n.expanded.Load() || n.terminal {
			break
		}
		best := n.bestEdge()
		if best == nil || best.visits.Load() == 0 {
			break
		}
		pv = append(pv, best.mv)
		ci := best.child.Load()
		if ci == 0 {
			break
		}
		n = m.tree.arena.at(ci - 1)
	}
	return pv
}

// reuseOrNewTree promotes the subtree matching pos when pos extends the
// previously searched position's history, compacting it into a fresh arena.
func (m *MCTS) reuseOrNewTree(pos *tak.Position) (*tree, bool) {
	fresh := func() (*tree, bool) {
		a := &arena{}
		root, _ := a.alloc()
		return &tree{arena: a, root: root, pos: pos.Clone()}, false
	}

	prev := m.tree
	if prev == nil {
		return fresh()
	}
	newHist, oldHist := pos.History(), prev.pos.History()
	if len(newHist) <= len(oldHist) {
		return fresh()
	}
	for i, mv := range oldHist {
		if newHist[i] != mv {
			return fresh()
		}
	}

	check := prev.pos.Clone()
	idx := prev.root
	for _, mv := range newHist[len(oldHist):] {
		n := prev.arena.at(idx)
		if !n.expanded.Load() || n.terminal {
			return fresh()
		}
		next := uint32(0)
		for i := range n.edges {
			if n.edges[i].mv == mv {
				next = n.edges[i].child.Load()
				break
			}
		}
		if next == 0 || check.Validate(mv) != nil {
			return fresh()
		}
		check.DoMove(mv)
		idx = next - 1
	}
	if check.TPS() != pos.TPS() {
		log.Warn().Msg("mcts tree history matches but positions differ, rebuilding")
		return fresh()
	}

	a := &arena{}
	root := copySubtree(prev.arena, idx, a)
	return &tree{arena: a, root: root, pos: pos.Clone()}, true
}

// mctsWorker owns everything one search goroutine mutates privately: a
// replayable position, an RNG, noise samplers and scratch buffers.
type mctsWorker struct {
	t     *tree
	cfg   Config
	stats *statsCollector
	stop  *atomic.Bool
	pos   *tak.Position
	rng   *rand.Rand

	policyNoise  distuv.Normal
	rolloutNoise distuv.Normal

	path   []*edge
	revs   []tak.Reverse
	moves  []tak.Move
	scores []float32
}

func newMCTSWorker(t *tree, cfg Config, id uint64, stats *statsCollector, stop *atomic.Bool) *mctsWorker {
	seed := cfg.Seed + 0x9e3779b97f4a7c15*(id+1)
	w := &mctsWorker{
		t:     t,
		cfg:   cfg,
		stats: stats,
		stop:  stop,
		pos:   t.pos.Clone(),
		rng:   rand.New(rand.NewSource(seed)),
	}
	if sigma := cfg.PolicyNoise.sigma(); sigma > 0 {
		w.policyNoise = distuv.Normal{Mu: 0, Sigma: sigma, Src: rand.NewSource(seed + 1)}
	}
	if sigma := cfg.RolloutNoise.sigma(); sigma > 0 {
		w.rolloutNoise = distuv.Normal{Mu: 0, Sigma: sigma, Src: rand.NewSource(seed + 2)}
	}
	return w
}

// simulate runs one playout: descend by PUCT applying virtual loss, expand
// a leaf, evaluate it, then fold the virtual losses into the real backup.
func (w *mctsWorker) simulate() {
	t := w.t
	w.path = w.path[:0]
	w.revs = w.revs[:0]

	n := t.arena.at(t.root)
	n.visits.Add(1)

	var value float32
descent:
	for {
		if !n.expanded.Load() {
			n.mu.Lock()
			if !n.expanded.Load() {
				w.expandLocked(n)
				n.mu.Unlock()
				if n.terminal {
					value = n.value
				} else {
					value = w.leafValue()
				}
				break descent
			}
			n.mu.Unlock()
		}
		if n.terminal {
			value = n.value
			break descent
		}

		e := n.selectEdge()
		// Virtual loss: a full win for the child until the backup
		// replaces it with the real value.
		e.visits.Add(1)
		e.addValue(1)
		w.path = append(w.path, e)
		w.revs = append(w.revs, w.pos.DoMove(e.mv))

		ci := e.child.Load()
		if ci == 0 {
			idx, ok := t.arena.alloc()
			if !ok {
				w.stop.Store(true)
				value = w.leafValue()
				break descent
			}
			if e.child.CompareAndSwap(0, idx+1) {
				ci = idx + 1
			} else {
				ci = e.child.Load()
			}
			n = t.arena.at(ci - 1)
			n.visits.Add(1)
			continue
		}
		n = t.arena.at(ci - 1)
		n.visits.Add(1)
	}

	// value is from the perspective of the last node's side to move, which
	// is the child perspective of the deepest edge. Flip it once per level
	// on the way up; the -1 removes the virtual loss.
	for i := len(w.path) - 1; i >= 0; i-- {
		w.path[i].addValue(float64(value) - 1)
		value = 1 - value
	}
	for i := len(w.revs) - 1; i >= 0; i-- {
		w.pos.UndoMove(w.revs[i])
	}
}

// expandLocked fills in a node from the worker's current position. Caller
// holds n.mu and has verified n is not yet expanded.
func (w *mctsWorker) expandLocked(n *node) {
	if status := w.pos.Status(); status.Over() {
		n.terminal = true
		n.value = terminalValue(status, w.pos.SideToMove())
		n.expanded.Store(true)
		return
	}

	w.moves = w.pos.AppendLegalMoves(w.moves[:0])
	w.scores = eval.PolicyScores(w.pos, w.moves, w.cfg.Weights.Policy, w.scores)
	if w.cfg.PolicyNoise != NoiseNone {
		w.perturbPriors(w.scores)
	}
	n.edges = make([]edge, len(w.moves))
	for i := range w.moves {
		n.edges[i].mv = w.moves[i]
		n.edges[i].prior = w.scores[i]
	}
	n.expanded.Store(true)
}

// perturbPriors adds Gaussian noise to the priors and renormalizes.
func (w *mctsWorker) perturbPriors(priors []float32) {
	var sum float32
	for i := range priors {
		priors[i] += float32(w.policyNoise.Rand()) * priors[i]
		if priors[i] < 1e-6 {
			priors[i] = 1e-6
		}
		sum += priors[i]
	}
	for i := range priors {
		priors[i] /= sum
	}
}

// leafValue scores the worker's current position for its side to move,
// either statically or by a short rollout.
func (w *mctsWorker) leafValue() float32 {
	if w.cfg.RolloutDepth > 0 {
		return w.rollout()
	}
	return winProbability(guardScore(eval.Value(w.pos, w.cfg.Weights.Value)))
}

// rollout plays up to RolloutDepth plies of greedy policy moves, optionally
// noisy, then scores the end position. The returned value is from the
// perspective of the side to move at the rollout's start.
func (w *mctsWorker) rollout() float32 {
	mark := len(w.revs)
	plies := 0
	var value float32
	for {
		if status := w.pos.Status(); status.Over() {
			value = terminalValue(status, w.pos.SideToMove())
			break
		}
		if plies == w.cfg.RolloutDepth {
			value = winProbability(guardScore(eval.Value(w.pos, w.cfg.Weights.Value)))
			break
		}
		w.moves = w.pos.AppendLegalMoves(w.moves[:0])
		w.scores = eval.PolicyScores(w.pos, w.moves, w.cfg.Weights.Policy, w.scores)
		best := 0
		bestScore := float32(math32.Inf(-1))
		for i, s := range w.scores {
			if w.cfg.RolloutNoise != NoiseNone {
				s += float32(w.rolloutNoise.Rand())
			}
			if s > bestScore {
				bestScore = s
				best = i
			}
		}
		w.revs = append(w.revs, w.pos.DoMove(w.moves[best]))
		plies++
	}
	for i := len(w.revs) - 1; i >= mark; i-- {
		w.pos.UndoMove(w.revs[i])
	}
	w.revs = w.revs[:mark]
	if plies%2 == 1 {
		value = 1 - value
	}
	return value
}

func winProbability(v float32) float32 {
	return 1 / (1 + math32.Exp(-v*evalScale))
}

func terminalValue(status tak.Status, sideToMove tak.Color) float32 {
	switch {
	case status.Kind == tak.Draw:
		return 0.5
	case status.Winner == sideToMove:
		return 1
	default:
		return 0
	}
}
