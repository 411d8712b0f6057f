package eval

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MortenLohne/tiltak/tak"
)

func TestSquareClasses(t *testing.T) {
	t.Run("class counts per size", func(t *testing.T) {
		require.Equal(t, 3, NumSquareClasses(3))
		require.Equal(t, 3, NumSquareClasses(4))
		require.Equal(t, 6, NumSquareClasses(5))
		require.Equal(t, 6, NumSquareClasses(6))
		require.Equal(t, 10, NumSquareClasses(7))
		require.Equal(t, 10, NumSquareClasses(8))
	})

	t.Run("symmetric squares share a class", func(t *testing.T) {
		corners := []tak.Square{
			tak.SquareAt(0, 0), tak.SquareAt(4, 0), tak.SquareAt(0, 4), tak.SquareAt(4, 4),
		}
		for _, sq := range corners {
			require.Equal(t, 0, squareClass(sq, 5), "corner %s", sq.Name())
		}
		require.Equal(t, squareClass(tak.SquareAt(1, 0), 5), squareClass(tak.SquareAt(0, 3), 5),
			"b1 and a4 are mirror images")
	})

	t.Run("center has the highest class", func(t *testing.T) {
		require.Equal(t, NumSquareClasses(5)-1, squareClass(tak.SquareAt(2, 2), 5))
	})
}

func TestDefaultWeights(t *testing.T) {
	for size := 3; size <= 8; size++ {
		w, err := DefaultWeights(size)
		require.NoError(t, err, "size %d", size)
		require.NoError(t, w.Check(), "size %d", size)
		require.Len(t, w.Value, NumValueFeatures(size))
		require.Len(t, w.Policy, NumPolicyFeatures(size))
	}

	_, err := DefaultWeights(9)
	require.Error(t, err)
}

func TestWeightsYAMLRoundTrip(t *testing.T) {
	w, err := DefaultWeights(5)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, w.Save(&buf))

	loaded, err := LoadWeights(&buf)
	require.NoError(t, err)
	require.Equal(t, w.Size, loaded.Size)
	require.Len(t, loaded.Value, len(w.Value))
	require.Len(t, loaded.Policy, len(w.Policy))
	for i := range w.Value {
		require.InDelta(t, w.Value[i], loaded.Value[i], 1e-6)
	}
	for i := range w.Policy {
		require.InDelta(t, w.Policy[i], loaded.Policy[i], 1e-6)
	}
}

func TestLoadWeightsRejectsBadVectors(t *testing.T) {
	t.Run("wrong vector length", func(t *testing.T) {
		_, err := LoadWeights(bytes.NewBufferString("size: 5\nvalue: [1.0]\npolicy: [1.0]\n"))
		require.Error(t, err)
	})

	t.Run("unsupported size", func(t *testing.T) {
		_, err := LoadWeights(bytes.NewBufferString("size: 17\nvalue: []\npolicy: []\n"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadWeights(bytes.NewBufferString("::not yaml"))
		require.Error(t, err)
	})
}
