package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MortenLohne/tiltak/tak"
)

func testPosition(t *testing.T, tps string) *tak.Position {
	t.Helper()
	p, err := tak.ParseTPS(tps)
	require.NoError(t, err)
	return p
}

func TestMinimaxFindsImmediateWin(t *testing.T) {
	p := testPosition(t, "x5/x5/x5/x5/1,1,1,1,x 1 5")
	cfg := Config{NodeBudget: 200_000, Weights: testWeights(t, 5)}

	result, err := NewMinimax().Search(context.Background(), p, cfg)
	require.NoError(t, err)
	require.Equal(t, tak.SquareAt(4, 0), result.Move.Square(), "e1 completes the road")
	require.NotEqual(t, tak.Wall, result.Move.Role(), "a wall does not complete a road")
	require.GreaterOrEqual(t, result.Score, winScore-maxDepth)
	require.GreaterOrEqual(t, result.Stats.Depth, 1)
	require.NotEmpty(t, result.PV)
	require.Equal(t, result.Move, result.PV[0])
}

func TestMinimaxBlocksOpponentRoad(t *testing.T) {
	// Black threatens e1; with two plies of lookahead white must deal with
	// the threat.
	p := testPosition(t, "x5/x5/x5/x5/2,2,2,2,x 1 5")
	cfg := Config{NodeBudget: 500_000, Weights: testWeights(t, 5)}

	result, err := NewMinimax().Search(context.Background(), p, cfg)
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.Stats.Depth, 2)
	require.Equal(t, tak.SquareAt(4, 0), result.Move.Square(),
		"occupying e1 is the only way to stop 0-R")
}

func TestMinimaxRejectsTerminalPosition(t *testing.T) {
	p := testPosition(t, "x5/x5/x5/x5/1,1,1,1,1 2 6")
	cfg := Config{NodeBudget: 1000, Weights: testWeights(t, 5)}

	_, err := NewMinimax().Search(context.Background(), p, cfg)
	require.ErrorIs(t, err, ErrIllegalState)
}

func TestMinimaxRejectsBadConfig(t *testing.T) {
	p := testPosition(t, "x5/x5/x2,1,x2/x5/2,x4 1 3")
	_, err := NewMinimax().Search(context.Background(), p, Config{})
	require.Error(t, err)
}

func TestMinimaxHonorsCancellation(t *testing.T) {
	p := testPosition(t, "x5/x5/x2,1,x2/x5/2,x4 1 3")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := Config{TimeBudget: time.Hour, Weights: testWeights(t, 5)}

	start := time.Now()
	result, err := NewMinimax().Search(ctx, p, cfg)
	require.Less(t, time.Since(start), 30*time.Second, "cancellation should cut the search short")
	if err == nil {
		require.NotEmpty(t, result.PV, "a completed iteration must produce a line")
	}
}

func TestMinimaxDeepeningReportsDepth(t *testing.T) {
	p := testPosition(t, "x5/x5/x2,1,x2/x5/2,x4 1 3")
	cfg := Config{NodeBudget: 50_000, Weights: testWeights(t, 5)}

	result, err := NewMinimax().Search(context.Background(), p, cfg)
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.Stats.Depth, 1)
	require.LessOrEqual(t, len(result.PV), result.Stats.Depth)
	require.Positive(t, result.Stats.Nodes)
}

func TestPromote(t *testing.T) {
	a, _ := tak.ParseMove(5, "a1")
	b, _ := tak.ParseMove(5, "b1")
	c, _ := tak.ParseMove(5, "c1")
	moves := []tak.Move{a, b, c}
	promote(moves, c)
	require.Equal(t, []tak.Move{c, a, b}, moves)
	promote(moves, c)
	require.Equal(t, []tak.Move{c, a, b}, moves)
}
