// Package search provides two engines over the same contract: a classical
// iterative-deepening alpha-beta searcher and a multi-threaded Monte Carlo
// tree searcher guided by the linear evaluator. Both take a position and a
// Config and return the best move found within the configured budgets.
package search

import (
	"context"
	"time"

	"github.com/chewxy/math32"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/MortenLohne/tiltak/eval"
	"github.com/MortenLohne/tiltak/tak"
)

// Algorithm selects which engine a factory-constructed Searcher runs.
type Algorithm int

const (
	AlgMinimax Algorithm = iota
	AlgMCTS
)

func (a Algorithm) String() string {
	switch a {
	case AlgMinimax:
		return "minimax"
	case AlgMCTS:
		return "mcts"
	default:
		return "unknown"
	}
}

// ParseAlgorithm parses an algorithm name as given on a command line.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "minimax":
		return AlgMinimax, nil
	case "mcts":
		return AlgMCTS, nil
	default:
		return 0, errors.Errorf("unknown algorithm %q", s)
	}
}

// NoiseLevel grades how much Gaussian perturbation is mixed into policy
// scores. Noise diversifies play between otherwise identical searchers.
type NoiseLevel int

const (
	NoiseNone NoiseLevel = iota
	NoiseLow
	NoiseMedium
	NoiseHigh
)

func (n NoiseLevel) sigma() float64 {
	switch n {
	case NoiseLow:
		return 0.1
	case NoiseMedium:
		return 0.25
	case NoiseHigh:
		return 0.5
	default:
		return 0
	}
}

// Config carries every knob a search run reads. The zero value is not
// usable: a budget and weights are required, which Validate enforces.
type Config struct {
	// TimeBudget caps wall-clock time. Zero means no time limit.
	TimeBudget time.Duration
	// NodeBudget caps minimax nodes or MCTS simulations. Zero means no
	// node limit.
	NodeBudget int64
	// FixedNodes makes MCTS run exactly this many simulations, for
	// reproducible strength. Overrides TimeBudget and NodeBudget.
	FixedNodes int64
	// PolicyNoise perturbs move priors at expansion time.
	PolicyNoise NoiseLevel
	// RolloutDepth switches MCTS leaf evaluation from static eval to a
	// rollout of this many plies. Zero disables rollouts.
	RolloutDepth int
	// RolloutNoise perturbs move choice inside rollouts.
	RolloutNoise NoiseLevel
	// Threads is the MCTS worker count. Zero means one.
	Threads int
	// Seed makes single-threaded MCTS reproducible.
	Seed uint64
	// Weights must match the size of the searched position.
	Weights *eval.Weights
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var result *multierror.Error
	if c.Weights == nil {
		result = multierror.Append(result, errors.New("no weights"))
	} else if err := c.Weights.Check(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.TimeBudget < 0 {
		result = multierror.Append(result, errors.New("negative time budget"))
	}
	if c.NodeBudget < 0 {
		result = multierror.Append(result, errors.New("negative node budget"))
	}
	if c.FixedNodes < 0 {
		result = multierror.Append(result, errors.New("negative fixed node count"))
	}
	if c.TimeBudget == 0 && c.NodeBudget == 0 && c.FixedNodes == 0 {
		result = multierror.Append(result, errors.New("no budget: set a time, node or fixed-node budget"))
	}
	if c.Threads < 0 {
		result = multierror.Append(result, errors.New("negative thread count"))
	}
	if c.RolloutDepth < 0 {
		result = multierror.Append(result, errors.New("negative rollout depth"))
	}
	return result.ErrorOrNil()
}

// Stats summarizes the work one Search call performed.
type Stats struct {
	// Nodes is the number of positions minimax visited.
	Nodes int64
	// Depth is the deepest fully completed minimax iteration.
	Depth int
	// Simulations is the number of MCTS playouts.
	Simulations int64
	// TreeReused reports whether MCTS promoted a subtree from the
	// previous search instead of starting cold.
	TreeReused bool
	Elapsed    time.Duration
}

// Result is the outcome of a search. Score is relative to the side to move
// in the searched position: minimax reports evaluation units, MCTS a value
// in [-1, 1].
type Result struct {
	Move  tak.Move
	Score float32
	PV    []tak.Move
	Stats Stats
}

// Searcher is implemented by Minimax and MCTS. Cancelling ctx stops the
// search early and returns the best result so far.
type Searcher interface {
	Search(ctx context.Context, pos *tak.Position, cfg Config) (Result, error)
}

// NewSearcher constructs the engine for the given algorithm.
func NewSearcher(alg Algorithm) (Searcher, error) {
	switch alg {
	case AlgMinimax:
		return NewMinimax(), nil
	case AlgMCTS:
		return NewMCTS(), nil
	default:
		return nil, errors.Errorf("unknown algorithm %d", alg)
	}
}

var (
	// ErrIllegalState is returned when the searched position is terminal.
	ErrIllegalState = errors.New("illegal state")
	// ErrBudgetExceeded is returned alongside a degraded policy-only
	// result when the budget expired before any iteration completed.
	ErrBudgetExceeded = errors.New("budget exceeded before any result")
)

// guardScore panics on non-finite scores. A NaN reaching a comparator
// poisons move selection silently, so it is treated as a broken invariant.
func guardScore(v float32) float32 {
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		panic(errors.Errorf("non-finite score %v in search", v))
	}
	return v
}
