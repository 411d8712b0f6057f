package tak

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusRoadWin(t *testing.T) {
	t.Run("vertical road wins", func(t *testing.T) {
		p, err := ParseTPS("2,x4/2,x4/2,x4/2,x4/2,x4 1 6")
		require.NoError(t, err)
		require.Equal(t, Status{Kind: RoadWin, Winner: Black}, p.Status())
		require.Equal(t, "0-R", p.Status().String())
	})

	t.Run("horizontal road wins", func(t *testing.T) {
		p, err := ParseTPS("x5/x5/x5/x5/1,1,1,1,1 2 6")
		require.NoError(t, err)
		require.Equal(t, Status{Kind: RoadWin, Winner: White}, p.Status())
		require.Equal(t, "R-0", p.Status().String())
	})

	t.Run("capstones count towards roads, walls do not", func(t *testing.T) {
		withCap, err := ParseTPS("x5/x5/x5/x5/1,1,1C,1,1 2 6")
		require.NoError(t, err)
		require.Equal(t, RoadWin, withCap.Status().Kind)

		withWall, err := ParseTPS("x5/x5/x5/x5/1,1,1S,1,1 2 6")
		require.NoError(t, err)
		require.Equal(t, Ongoing, withWall.Status().Kind)
	})

	t.Run("bent road wins", func(t *testing.T) {
		// a3-b3-c3-c2-c1-d1-e1 connects the west and east edges.
		p, err := ParseTPS("x5/x5/1,1,1,x2/x2,1,x2/x2,1,1,1 2 9")
		require.NoError(t, err)
		require.Equal(t, Status{Kind: RoadWin, Winner: White}, p.Status())
	})

	t.Run("both roads at once go to the mover", func(t *testing.T) {
		p, err := ParseTPS("1,1,1,1,1/x5/x5/x5/2,2,2,2,2 1 9")
		require.NoError(t, err)
		require.Equal(t, Status{Kind: RoadWin, Winner: Black}, p.Status(),
			"black moved last, so black takes a double road")

		q, err := ParseTPS("1,1,1,1,1/x5/x5/x5/2,2,2,2,2 2 9")
		require.NoError(t, err)
		require.Equal(t, Status{Kind: RoadWin, Winner: White}, q.Status())
	})

	t.Run("road built by a spread is detected", func(t *testing.T) {
		// Spreading the b2 stack eastward drops white flats on c2 and d2,
		// closing the second rank.
		p, err := ParseTPS("x5/x5/x5/1,111,x2,1/x5 1 7")
		require.NoError(t, err)
		require.Equal(t, Ongoing, p.Status().Kind)

		mv, err := ParseMove(5, "2b2>11")
		require.NoError(t, err)
		next, err := p.Apply(mv)
		require.NoError(t, err)
		require.Equal(t, Status{Kind: RoadWin, Winner: White}, next.Status())
	})
}

func TestStatusFlatCount(t *testing.T) {
	t.Run("full board counts tops, capstone included", func(t *testing.T) {
		p, err := ParseTPS("1,2,1,2,1/2,1,2,1,2/1,2,1,2,1/2,1,2,1,2/1C,2,1,2,1 2 14")
		require.NoError(t, err)
		require.Equal(t, Status{Kind: FlatWin, Winner: White}, p.Status())
		require.Equal(t, "F-0", p.Status().String())
	})

	t.Run("reserve exhaustion ends the game", func(t *testing.T) {
		p, err := ParseTPS("1111111111,2,x/x3/x3 2 11")
		require.NoError(t, err)
		flats, caps := p.Reserves(White)
		require.Zero(t, flats)
		require.Zero(t, caps)
		require.Equal(t, Status{Kind: Draw}, p.Status(), "one top each is a tie")
	})

	t.Run("walls do not count", func(t *testing.T) {
		p, err := ParseTPS("111111111,2,1S/x3/x3 2 11")
		require.NoError(t, err)
		require.Equal(t, Status{Kind: Draw}, p.Status(),
			"the white wall top should not count, leaving one flat each")
	})
}

func TestStatusOngoing(t *testing.T) {
	p, err := NewPosition(5)
	require.NoError(t, err)
	require.Equal(t, Status{Kind: Ongoing}, p.Status())
	require.False(t, p.Status().Over())
}

func TestStatusAfterPlayedRoad(t *testing.T) {
	p, err := NewPosition(5)
	require.NoError(t, err)
	for _, text := range []string{"e5", "a1", "b1", "b4", "c1", "c4", "d1", "d4", "e1"} {
		require.Equal(t, Ongoing, p.Status().Kind)
		mv, err := ParseMove(5, text)
		require.NoError(t, err)
		next, err := p.Apply(mv)
		require.NoError(t, err)
		p = next
	}
	require.Equal(t, Status{Kind: RoadWin, Winner: White}, p.Status())
}
