package search

import (
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/require"

	"github.com/MortenLohne/tiltak/eval"
)

func testWeights(t *testing.T, size int) *eval.Weights {
	t.Helper()
	w, err := eval.DefaultWeights(size)
	require.NoError(t, err)
	return w
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		cfg := Config{
			TimeBudget: time.Second,
			Threads:    4,
			Weights:    testWeights(t, 5),
		}
		require.NoError(t, cfg.Validate())
	})

	t.Run("all problems are reported at once", func(t *testing.T) {
		cfg := Config{
			TimeBudget:   -time.Second,
			NodeBudget:   -1,
			Threads:      -2,
			RolloutDepth: -3,
		}
		err := cfg.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "no weights")
		require.Contains(t, err.Error(), "negative time budget")
		require.Contains(t, err.Error(), "negative node budget")
		require.Contains(t, err.Error(), "negative thread count")
		require.Contains(t, err.Error(), "negative rollout depth")
	})

	t.Run("some budget is required", func(t *testing.T) {
		cfg := Config{Weights: testWeights(t, 5)}
		err := cfg.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "no budget")
	})

	t.Run("weights must pass their own check", func(t *testing.T) {
		w := testWeights(t, 5)
		w.Value = w.Value[:3]
		cfg := Config{TimeBudget: time.Second, Weights: w}
		require.Error(t, cfg.Validate())
	})
}

func TestAlgorithmParsing(t *testing.T) {
	for _, name := range []string{"minimax", "mcts"} {
		alg, err := ParseAlgorithm(name)
		require.NoError(t, err)
		require.Equal(t, name, alg.String())

		s, err := NewSearcher(alg)
		require.NoError(t, err)
		require.NotNil(t, s)
	}

	_, err := ParseAlgorithm("tablebase")
	require.Error(t, err)
}

func TestGuardScore(t *testing.T) {
	require.NotPanics(t, func() { guardScore(0.5) })
	require.Panics(t, func() { guardScore(math32.NaN()) })
	require.Panics(t, func() { guardScore(math32.Inf(1)) })
}
