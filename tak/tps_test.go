package tak

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTPSRoundTrip(t *testing.T) {
	cases := []string{
		"x5/x5/x5/x5/x5 1 1",
		"x3/x3/x3 2 1",
		"x5/x5/x2,1,x2/x5/x5 2 1",
		"x2,12S,x2/x5/2,x4/x5/1,x3,2C 2 7",
		"1,2,1,2,1/2,1,2,1,2/1,2,1,2,1/2,1,2,1,2/1C,2,1,2,1 2 14",
		"x4,2/x3,121,x/x2,1,x2/x,212C,x3/1S,x4 1 12",
	}
	for _, tps := range cases {
		t.Run(tps, func(t *testing.T) {
			p, err := ParseTPS(tps)
			require.NoError(t, err)
			require.Equal(t, tps, p.TPS())
		})
	}
}

func TestTPSFreshPositionMatches(t *testing.T) {
	p, err := NewPosition(5)
	require.NoError(t, err)
	require.Equal(t, "x5/x5/x5/x5/x5 1 1", p.TPS())
}

func TestParseTPSReserves(t *testing.T) {
	p, err := ParseTPS("x2,12S,x2/x5/2,x4/x5/1,x3,2C 2 7")
	require.NoError(t, err)

	flats, caps := p.Reserves(White)
	require.Equal(t, 19, flats, "two white stones are on the board")
	require.Equal(t, 1, caps)
	flats, caps = p.Reserves(Black)
	require.Equal(t, 19, flats, "a flat and a wall are on the board")
	require.Equal(t, 0, caps, "the black capstone is on the board")
}

func TestParseTPSSideAndPly(t *testing.T) {
	p, err := ParseTPS("x5/x5/x2,1,x2/x5/x5 2 3")
	require.NoError(t, err)
	require.Equal(t, Black, p.SideToMove())
	require.Equal(t, 5, p.Ply())
}

func TestParseTPSErrors(t *testing.T) {
	cases := map[string]string{
		"too few fields":        "x5/x5/x5/x5/x5 1",
		"unsupported size":      "x2/x2 1 1",
		"row too long":          "x6/x5/x5/x5/x5 1 1",
		"row too short":         "x4/x5/x5/x5/x5 1 1",
		"bad side":              "x5/x5/x5/x5/x5 3 1",
		"bad move number":       "x5/x5/x5/x5/x5 1 zero",
		"bad stack":             "q,x4/x5/x5/x5/x5 1 1",
		"role letter mid-stack": "1S2,x4/x5/x5/x5/x5 1 1",
		"too many stones":       "2222222222,22,x/x3/x3 1 1",
	}
	for name, tps := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTPS(tps)
			require.Error(t, err)
		})
	}
}
