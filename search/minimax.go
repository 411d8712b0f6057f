package search

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/MortenLohne/tiltak/eval"
	"github.com/MortenLohne/tiltak/tak"
)

const (
	// winScore is the value of a win at the root. Wins found deeper score
	// lower by one per ply, so the search prefers the shortest win.
	winScore float32 = 100_000
	// maxDepth bounds iterative deepening.
	maxDepth = 64
	// budgetCheckInterval is how many nodes pass between budget checks.
	budgetCheckInterval = 1024
)

// Minimax is an iterative-deepening negamax searcher with alpha-beta
// pruning. Moves are ordered by policy score, with the previous iteration's
// best move tried first. It is single-threaded; Config.Threads is ignored.
type Minimax struct{}

func NewMinimax() *Minimax { return &Minimax{} }

var errBudgetExpired = errors.New("search budget expired")

func (m *Minimax) Search(ctx context.Context, pos *tak.Position, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if pos.Status().Over() {
		return Result{}, errors.Wrap(ErrIllegalState, "searching a terminal position")
	}

	stats := newStatsCollector()
	run := &minimaxRun{
		ctx:     ctx,
		cfg:     cfg,
		weights: cfg.Weights,
	}
	if cfg.TimeBudget > 0 {
		run.deadline = stats.start.Add(cfg.TimeBudget)
		run.hasDeadline = true
	}

	root := pos.Clone()
	moves := root.LegalMoves()
	priors := eval.PolicyScores(root, moves, cfg.Weights.Policy, nil)
	orderByScore(moves, priors)

	// The degraded fallback if not even a depth-1 iteration completes.
	best := Result{Move: moves[0]}
	completed := false

	for depth := 1; depth <= maxDepth; depth++ {
		score, line, err := run.negamax(root, depth, 0, -winScore*2, winScore*2)
		if err != nil {
			break
		}
		completed = true
		best.Move, best.Score, best.PV = line[0], score, line
		stats.setDepth(depth)
		run.rootBest = best.Move
		run.haveRootBest = true
		log.Debug().
			Int("depth", depth).
			Str("move", best.Move.String()).
			Float32("score", score).
			Msg("minimax iteration complete")
		if score >= winScore-maxDepth {
			// A proven win; deeper iterations cannot find a faster one.
			break
		}
	}

	stats.addNodes(run.nodes)
	best.Stats = stats.snapshot()
	if !completed {
		return best, ErrBudgetExceeded
	}
	return best, nil
}

type minimaxRun struct {
	ctx          context.Context
	cfg          Config
	weights      *eval.Weights
	deadline     time.Time
	hasDeadline  bool
	nodes        int64
	rootBest     tak.Move
	haveRootBest bool
}

func (r *minimaxRun) negamax(pos *tak.Position, depth, ply int, alpha, beta float32) (float32, []tak.Move, error) {
	r.nodes++
	if r.nodes%budgetCheckInterval == 0 {
		if err := r.checkBudget(); err != nil {
			return 0, nil, err
		}
	}

	if status := pos.Status(); status.Over() {
		switch {
		case status.Kind == tak.Draw:
			return 0, nil, nil
		case status.Winner == pos.SideToMove():
			return winScore - float32(ply), nil, nil
		default:
			return -(winScore - float32(ply)), nil, nil
		}
	}
	if depth == 0 {
		return guardScore(eval.Value(pos, r.weights.Value)), nil, nil
	}

	moves := pos.LegalMoves()
	priors := eval.PolicyScores(pos, moves, r.weights.Policy, nil)
	orderByScore(moves, priors)
	if ply == 0 && r.haveRootBest {
		promote(moves, r.rootBest)
	}

	var line []tak.Move
	bestScore := -winScore * 2
	for _, mv := range moves {
		rev := pos.DoMove(mv)
		score, childLine, err := r.negamax(pos, depth-1, ply+1, -beta, -alpha)
		pos.UndoMove(rev)
		if err != nil {
			return 0, nil, err
		}
		score = -score
		if score > bestScore {
			bestScore = score
			line = append(append(line[:0], mv), childLine...)
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}
	return bestScore, line, nil
}

func (r *minimaxRun) checkBudget() error {
	if err := r.ctx.Err(); err != nil {
		return errBudgetExpired
	}
	if r.hasDeadline && time.Now().After(r.deadline) {
		return errBudgetExpired
	}
	if r.cfg.NodeBudget > 0 && r.nodes >= r.cfg.NodeBudget {
		return errBudgetExpired
	}
	return nil
}

// orderByScore sorts moves by descending score, keeping the two slices
// aligned. The sort is stable so equal-scored moves keep generation order.
func orderByScore(moves []tak.Move, scores []float32) {
	sort.Stable(&pairedSort{moves, scores})
}

type pairedSort struct {
	moves  []tak.Move
	scores []float32
}

func (p *pairedSort) Len() int           { return len(p.moves) }
func (p *pairedSort) Less(i, j int) bool { return p.scores[i] > p.scores[j] }
func (p *pairedSort) Swap(i, j int) {
	p.moves[i], p.moves[j] = p.moves[j], p.moves[i]
	p.scores[i], p.scores[j] = p.scores[j], p.scores[i]
}

// promote moves mv to the front, shifting the prefix right.
func promote(moves []tak.Move, mv tak.Move) {
	for i, m := range moves {
		if m == mv {
			copy(moves[1:i+1], moves[:i])
			moves[0] = mv
			return
		}
	}
}
