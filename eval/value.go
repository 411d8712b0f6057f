package eval

import (
	"math/bits"

	"github.com/MortenLohne/tiltak/tak"
)

// valueLayout fixes the offsets of each value-feature family for one board
// size. The feature vector, white-positive throughout:
//
//	flatPSQT..+C    top-stone flats by symmetry class
//	wallPSQT..+C    top-stone walls
//	capPSQT..+C     top-stone capstones
//	ourStack..+C    friendly stones buried under a friendly top
//	theirStack..+C  enemy stones buried under a friendly top (negated)
//	sideToMove..+3  tempo, phased over opening/middlegame/endgame
//	flatLead..+3    flat-count lead, phased
//	groups..+3      road-group count difference, phased
//	criticalUs      critical squares for the side to move
//	criticalThem    critical squares for the opponent
type valueLayout struct {
	flatPSQT, wallPSQT, capPSQT, ourStack, theirStack int
	sideToMove, flatLead, groups                      int
	criticalUs, criticalThem                          int
	n                                                 int
}

func valueLayoutFor(size int) valueLayout {
	c := NumSquareClasses(size)
	l := valueLayout{
		flatPSQT:   0,
		wallPSQT:   c,
		capPSQT:    2 * c,
		ourStack:   3 * c,
		theirStack: 4 * c,
		sideToMove: 5 * c,
	}
	l.flatLead = l.sideToMove + 3
	l.groups = l.flatLead + 3
	l.criticalUs = l.groups + 3
	l.criticalThem = l.criticalUs + 1
	l.n = l.criticalThem + 1
	return l
}

func colorSign(c tak.Color) float32 {
	if c == tak.White {
		return 1
	}
	return -1
}

// Value statically evaluates the position as the dot product of the
// feature vector with the value weights. The result is side-to-move
// relative: positive favors the player about to move. Both search
// algorithms rely on that convention.
func Value(p *tak.Position, weights []float32) float32 {
	coeffs := make([]float32, len(weights))
	ValueCoefficients(p, coeffs)
	var sum float32
	for i, c := range coeffs {
		sum += c * weights[i]
	}
	return sum * colorSign(p.SideToMove())
}

// ValueCoefficients fills coeffs with the white-positive feature vector.
// The tuning pipeline consumes this directly; Value dots it with weights.
func ValueCoefficients(p *tak.Position, coeffs []float32) {
	size := p.Size()
	l := valueLayoutFor(size)
	info := p.Groups()

	var flatCount [2]int
	for rank := 0; rank < size; rank++ {
		for file := 0; file < size; file++ {
			sq := tak.SquareAt(file, rank)
			stack := p.At(sq)
			top := stack.Top()
			if top == tak.NoPiece {
				continue
			}
			class := squareClass(sq, size)
			sign := colorSign(top.Color())
			switch top.Role() {
			case tak.Flat:
				coeffs[l.flatPSQT+class] += sign
				flatCount[top.Color()]++
			case tak.Wall:
				coeffs[l.wallPSQT+class] += sign
			case tak.Cap:
				coeffs[l.capPSQT+class] += sign
			}
			for _, piece := range stack[:len(stack)-1] {
				if piece.Color() == top.Color() {
					coeffs[l.ourStack+class] += sign
				} else {
					coeffs[l.theirStack+class] -= sign
				}
			}
		}
	}

	opening, middle, endgame := phaseScales(p.Ply())
	tempo := colorSign(p.SideToMove())
	flatLead := float32(flatCount[tak.White] - flatCount[tak.Black])
	groupDiff := float32(info.GroupCount[tak.White] - info.GroupCount[tak.Black])
	for i, scale := range [3]float32{opening, middle, endgame} {
		coeffs[l.sideToMove+i] = tempo * scale
		coeffs[l.flatLead+i] = flatLead * scale
		coeffs[l.groups+i] = groupDiff * scale
	}

	us, them := p.SideToMove(), p.SideToMove().Other()
	coeffs[l.criticalUs] = tempo * float32(bits.OnesCount64(info.Critical[us]))
	coeffs[l.criticalThem] = -tempo * float32(bits.OnesCount64(info.Critical[them]))
}

// phaseScales splits the game into opening, middlegame and endgame by ply,
// blending linearly at the boundaries.
func phaseScales(ply int) (opening, middle, endgame float32) {
	opening = clamp01((24 - float32(ply)) / 12)
	endgame = clamp01((float32(ply) - 24) / 24)
	middle = 1 - opening - endgame
	return opening, middle, endgame
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
