// Package eval scores Tak positions and moves as linear combinations of
// hand-designed features with externally tuned weight vectors. Both entry
// points are pure functions of their inputs: search workers call them from
// many goroutines with no synchronization, and the offline tuning pipeline
// owns the weight read-modify-write cycle.
package eval

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/MortenLohne/tiltak/tak"
)

// Weights is an immutable snapshot of the tunable parameter vectors for one
// board size. Searches hold it by reference and never mutate it.
type Weights struct {
	Size   int       `yaml:"size"`
	Value  []float32 `yaml:"value"`
	Policy []float32 `yaml:"policy"`
}

// NumSquareClasses returns the number of symmetry classes of squares on a
// size-sized board: squares are classed by their sorted pair of distances
// to the nearest file and rank edge, so e.g. a 5x5 board has 6 classes from
// corner to center.
func NumSquareClasses(size int) int {
	h := (size + 1) / 2
	return h * (h + 1) / 2
}

// squareClass maps a square to its symmetry class, with class 0 at the
// corners and the highest class in the center.
func squareClass(sq tak.Square, size int) int {
	a := min(sq.File(), size-1-sq.File())
	b := min(sq.Rank(), size-1-sq.Rank())
	if a > b {
		a, b = b, a
	}
	h := (size + 1) / 2
	// Index of the sorted pair (a, b) among all pairs with a <= b < h.
	return a*h - a*(a-1)/2 + (b - a)
}

func NumValueFeatures(size int) int {
	return valueLayoutFor(size).n
}

func NumPolicyFeatures(size int) int {
	return policyLayoutFor(size).n
}

// DefaultWeights returns a usable built-in parameter set for the given
// size. The numbers are hand-calibrated starting points; serious play uses
// vectors produced by the tuning pipeline and loaded with LoadWeights.
func DefaultWeights(size int) (*Weights, error) {
	if _, err := tak.NewPosition(size); err != nil {
		return nil, err
	}
	c := NumSquareClasses(size)
	w := &Weights{
		Size:   size,
		Value:  make([]float32, NumValueFeatures(size)),
		Policy: make([]float32, NumPolicyFeatures(size)),
	}

	vl := valueLayoutFor(size)
	for i := 0; i < c; i++ {
		centrality := float32(i) / float32(c)
		w.Value[vl.flatPSQT+i] = 1.0 + 0.35*centrality
		w.Value[vl.wallPSQT+i] = 0.75 + 0.15*centrality
		w.Value[vl.capPSQT+i] = 1.2 + 0.45*centrality
		w.Value[vl.ourStack+i] = 0.6 + 0.1*centrality
		w.Value[vl.theirStack+i] = 0.8 + 0.1*centrality
	}
	for phase := 0; phase < 3; phase++ {
		w.Value[vl.sideToMove+phase] = 0.5
		w.Value[vl.flatLead+phase] = []float32{0.6, 0.8, 1.3}[phase]
		w.Value[vl.groups+phase] = 0.3
	}
	w.Value[vl.criticalUs] = 1.5
	w.Value[vl.criticalThem] = 1.1

	pl := policyLayoutFor(size)
	w.Policy[pl.bias] = 1.0
	for i := 0; i < c; i++ {
		centrality := float32(i) / float32(c)
		w.Policy[pl.flatPSQT+i] = 0.6 + 0.5*centrality
		w.Policy[pl.wallPSQT+i] = -0.8 + 0.3*centrality
		w.Policy[pl.capPSQT+i] = 0.2 + 0.5*centrality
	}
	w.Policy[pl.nextToOurLast] = 0.4
	w.Policy[pl.nextToTheirLast] = 0.5
	w.Policy[pl.flatNextToTwoOwn] = 0.6
	for i := 0; i < 4; i++ {
		w.Policy[pl.extendRankFile+i] = 0.3 * float32(i+1)
		w.Policy[pl.spreadGivesTops+i] = 0.25 * float32(i+1)
	}
	for i := 0; i < 3; i++ {
		w.Policy[pl.attackFlat+i] = 0.3 + 0.2*float32(i)
	}
	w.Policy[pl.blockerNextToTwoTheirFlats] = 0.7
	w.Policy[pl.blockerBlocksExtension] = 0.5
	w.Policy[pl.spreadBase] = -0.4
	w.Policy[pl.spreadCapture] = 0.15
	w.Policy[pl.placeCritical] = 4.0
	return w, nil
}

// LoadWeights reads a YAML weight snapshot, as written by Save or by the
// tuning pipeline.
func LoadWeights(r io.Reader) (*Weights, error) {
	var w Weights
	if err := yaml.NewDecoder(r).Decode(&w); err != nil {
		return nil, errors.Wrap(err, "decoding weights")
	}
	if err := w.Check(); err != nil {
		return nil, err
	}
	return &w, nil
}

// Save writes the weights as YAML.
func (w *Weights) Save(out io.Writer) error {
	enc := yaml.NewEncoder(out)
	if err := enc.Encode(w); err != nil {
		return errors.Wrap(err, "encoding weights")
	}
	return enc.Close()
}

// Check verifies the vector lengths match the declared board size.
func (w *Weights) Check() error {
	if _, err := tak.NewPosition(w.Size); err != nil {
		return errors.Errorf("weights for unsupported size %d", w.Size)
	}
	if len(w.Value) != NumValueFeatures(w.Size) {
		return errors.Errorf("size-%d weights: %d value weights, want %d",
			w.Size, len(w.Value), NumValueFeatures(w.Size))
	}
	if len(w.Policy) != NumPolicyFeatures(w.Size) {
		return errors.Errorf("size-%d weights: %d policy weights, want %d",
			w.Size, len(w.Policy), NumPolicyFeatures(w.Size))
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
