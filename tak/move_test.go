package tak

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMoveRoundTrip(t *testing.T) {
	cases := []string{
		"a1",
		"e5",
		"Sc3",
		"Cc3",
		"c3-",
		"c3>",
		"2b2<",
		"3c3>12",
		"5a1+14",
		"4d4-211",
	}
	for _, text := range cases {
		t.Run(text, func(t *testing.T) {
			mv, err := ParseMove(5, text)
			require.NoError(t, err)
			require.Equal(t, text, mv.String(), "parsing then printing should reproduce the text")
		})
	}
}

func TestParseMoveAbbreviations(t *testing.T) {
	t.Run("bare square is a flat placement", func(t *testing.T) {
		mv, err := ParseMove(5, "c3")
		require.NoError(t, err)
		require.True(t, mv.IsPlace())
		require.Equal(t, Flat, mv.Role())
	})

	t.Run("spread without drop digits drops everything at once", func(t *testing.T) {
		mv, err := ParseMove(5, "3c3>")
		require.NoError(t, err)
		require.False(t, mv.IsPlace())
		require.Equal(t, 1, mv.Drops().Len())
		require.Equal(t, 3, mv.Drops().Get(0))
	})

	t.Run("spread without carry count carries one stone", func(t *testing.T) {
		mv, err := ParseMove(5, "c3+")
		require.NoError(t, err)
		require.Equal(t, 1, mv.Drops().Total())
	})
}

func TestParseMoveErrors(t *testing.T) {
	cases := map[string]string{
		"square off the board":        "f1",
		"rank off the board":          "a6",
		"carry over the limit":        "6a1>",
		"drop counts exceed carry":    "2a1>111",
		"carry count but no spread":   "3c3",
		"role letter on a spread":     "Sa1>",
		"bad direction":               "a1?",
		"empty string":                "",
		"lone letter":                 "a",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseMove(5, text)
			require.Error(t, err)
		})
	}
}

func TestDropSequencePacking(t *testing.T) {
	d := MakeDrops(3, 1, 2)
	require.Equal(t, 3, d.Len())
	require.Equal(t, 3, d.Get(0))
	require.Equal(t, 1, d.Get(1))
	require.Equal(t, 2, d.Get(2))
	require.Equal(t, 6, d.Total())
}
