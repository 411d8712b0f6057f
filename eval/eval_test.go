package eval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MortenLohne/tiltak/tak"
)

func position(t *testing.T, tps string) *tak.Position {
	t.Helper()
	p, err := tak.ParseTPS(tps)
	require.NoError(t, err)
	return p
}

func TestValueIsDeterministic(t *testing.T) {
	w, err := DefaultWeights(5)
	require.NoError(t, err)
	p := position(t, "x2,12S,x2/x5/2,x4/x5/1,x3,2C 2 7")
	require.Equal(t, Value(p, w.Value), Value(p, w.Value))
}

func TestValueFavorsMaterial(t *testing.T) {
	w, err := DefaultWeights(5)
	require.NoError(t, err)

	t.Run("an extra flat helps its owner", func(t *testing.T) {
		forWhite := position(t, "x5/x5/x2,1,x2/2,x4/1,x4 1 5")
		even := position(t, "x5/x5/x5/2,x4/1,x4 1 5")
		require.Greater(t, Value(forWhite, w.Value), Value(even, w.Value))
	})

	t.Run("score is relative to the side to move", func(t *testing.T) {
		whiteToMove := position(t, "x5/x5/x,1,1,x2/x5/2,x4 1 5")
		blackToMove := position(t, "x5/x5/x,1,1,x2/x5/2,x4 2 5")
		require.Positive(t, Value(whiteToMove, w.Value))
		require.Negative(t, Value(blackToMove, w.Value))
	})
}

func TestValueCoefficientsMatchLayout(t *testing.T) {
	p := position(t, "x5/x5/x2,1,x2/x5/2,x4 2 2")
	coeffs := make([]float32, NumValueFeatures(5))
	ValueCoefficients(p, coeffs)

	l := valueLayoutFor(5)
	require.Equal(t, float32(1), coeffs[l.flatPSQT+squareClass(tak.SquareAt(2, 2), 5)],
		"the white center flat")
	require.Equal(t, float32(-1), coeffs[l.flatPSQT+squareClass(tak.SquareAt(0, 0), 5)],
		"the black corner flat")
	require.Equal(t, float32(0), coeffs[l.flatLead], "flat counts are even")
}

func TestPolicyScores(t *testing.T) {
	w, err := DefaultWeights(5)
	require.NoError(t, err)

	t.Run("probabilities are positive and sum to one", func(t *testing.T) {
		p := position(t, "x5/x5/x2,1,x2/x5/2,x4 2 2")
		moves := p.LegalMoves()
		probs := PolicyScores(p, moves, w.Policy, nil)
		require.Len(t, probs, len(moves))
		var sum float32
		for _, prob := range probs {
			require.Positive(t, prob)
			sum += prob
		}
		require.InDelta(t, 1.0, sum, 1e-4)
	})

	t.Run("opening plies are uniform", func(t *testing.T) {
		p, err := tak.NewPosition(5)
		require.NoError(t, err)
		moves := p.LegalMoves()
		probs := PolicyScores(p, moves, w.Policy, nil)
		for _, prob := range probs {
			require.InDelta(t, 1.0/float64(len(moves)), float64(prob), 1e-6)
		}
	})

	t.Run("winning placement scores highest", func(t *testing.T) {
		p := position(t, "x5/x5/x5/x5/1,1,1,1,x 1 5")
		moves := p.LegalMoves()
		probs := PolicyScores(p, moves, w.Policy, nil)

		win, err := tak.ParseMove(5, "e1")
		require.NoError(t, err)
		winIdx := indexOf(t, moves, win)
		for i, prob := range probs {
			if i != winIdx {
				require.Greater(t, probs[winIdx], prob,
					"completing the road should outscore %s", moves[i])
			}
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		p := position(t, "x2,12S,x2/x5/2,x4/x5/1,x3,2C 2 7")
		moves := p.LegalMoves()
		a := PolicyScores(p, moves, w.Policy, nil)
		b := PolicyScores(p, moves, w.Policy, nil)
		require.Equal(t, a, b)
	})
}

func indexOf(t *testing.T, moves []tak.Move, mv tak.Move) int {
	t.Helper()
	for i, m := range moves {
		if m == mv {
			return i
		}
	}
	t.Fatalf("move %s not generated", mv)
	return -1
}
