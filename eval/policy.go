package eval

import (
	"github.com/chewxy/math32"

	"github.com/MortenLohne/tiltak/tak"
)

// policyLayout fixes the offsets of the move-scoring features for one board
// size. Placement features use the same square symmetry classes as the
// value side; spread features describe the stacks the move touches.
type policyLayout struct {
	bias                       int
	flatPSQT, wallPSQT, capPSQT int
	nextToOurLast              int
	nextToTheirLast            int
	flatNextToTwoOwn           int
	extendRankFile             int // 4 buckets by resulting line span
	attackFlat                 int // 3 buckets by target stack height
	blockerNextToTwoTheirFlats int
	blockerBlocksExtension     int
	spreadBase                 int
	spreadGivesTops            int // 4 buckets by tops gained
	spreadCapture              int
	placeCritical              int
	n                          int
}

func policyLayoutFor(size int) policyLayout {
	c := NumSquareClasses(size)
	l := policyLayout{
		bias:     0,
		flatPSQT: 1,
		wallPSQT: 1 + c,
		capPSQT:  1 + 2*c,
	}
	l.nextToOurLast = 1 + 3*c
	l.nextToTheirLast = l.nextToOurLast + 1
	l.flatNextToTwoOwn = l.nextToTheirLast + 1
	l.extendRankFile = l.flatNextToTwoOwn + 1
	l.attackFlat = l.extendRankFile + 4
	l.blockerNextToTwoTheirFlats = l.attackFlat + 3
	l.blockerBlocksExtension = l.blockerNextToTwoTheirFlats + 1
	l.spreadBase = l.blockerBlocksExtension + 1
	l.spreadGivesTops = l.spreadBase + 1
	l.spreadCapture = l.spreadGivesTops + 4
	l.placeCritical = l.spreadCapture + 1
	l.n = l.placeCritical + 1
	return l
}

func sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}

func inverseSigmoid(x float32) float32 {
	return math32.Log(x / (1 - x))
}

// PolicyScores fills dst with a probability for each of moves, summing to 1.
// Each move's raw score is squashed through a sigmoid and the results are
// normalized, so a single dominant feature cannot starve the rest of the
// move list. moves must all be legal in p. During the opening swap plies the
// distribution is uniform.
func PolicyScores(p *tak.Position, moves []tak.Move, weights []float32, dst []float32) []float32 {
	dst = dst[:0]
	if len(moves) == 0 {
		return dst
	}
	if p.Ply() < 2 {
		uniform := 1 / float32(len(moves))
		for range moves {
			dst = append(dst, uniform)
		}
		return dst
	}

	size := p.Size()
	l := policyLayoutFor(size)
	info := p.Groups()
	spans := groupSpans(p, info)
	us := p.SideToMove()
	them := us.Other()
	ourLast, theirLast, haveLasts := lastMoveSquares(p)

	denom := len(moves)
	if denom < 2 {
		denom = 2
	}
	bias := weights[l.bias] * inverseSigmoid(1/float32(denom))

	var sum float32
	for _, m := range moves {
		score := bias
		if m.IsPlace() {
			score += placeScore(p, m, l, info, spans, weights, us, them)
		} else {
			score += spreadScore(p, m, l, weights, us)
		}
		if haveLasts {
			if adjacent(m.Square(), ourLast, size) {
				score += weights[l.nextToOurLast]
			}
			if adjacent(m.Square(), theirLast, size) {
				score += weights[l.nextToTheirLast]
			}
		}
		prob := sigmoid(score)
		dst = append(dst, prob)
		sum += prob
	}
	for i := range dst {
		dst[i] /= sum
	}
	return dst
}

func placeScore(p *tak.Position, m tak.Move, l policyLayout, info *tak.GroupInfo,
	spans []groupSpan, weights []float32, us, them tak.Color) float32 {
	size := p.Size()
	sq := m.Square()
	class := squareClass(sq, size)

	var score float32
	switch m.Role() {
	case tak.Flat:
		score += weights[l.flatPSQT+class]
	case tak.Wall:
		score += weights[l.wallPSQT+class]
	case tak.Cap:
		score += weights[l.capPSQT+class]
	}

	var ownNeighbors int
	bestSpan := 0
	var buf [4]tak.Square
	for _, nb := range sq.Neighbors(size, buf[:0]) {
		top := p.At(nb).Top()
		if top == tak.NoPiece {
			continue
		}
		if top.Color() == us && top.IsRoad() {
			ownNeighbors++
			if id := info.Groups[nb.Rank()*size+nb.File()]; id != 0 {
				if span := spans[id].extendedBy(sq); span > bestSpan {
					bestSpan = span
				}
			}
		}
		if m.Role() != tak.Flat && top.Color() == them {
			if top.Role() == tak.Flat {
				h := p.At(nb).Height()
				bucket := h - 1
				if bucket > 2 {
					bucket = 2
				}
				score += weights[l.attackFlat+bucket]
			}
		}
	}

	if m.Role() == tak.Flat {
		if ownNeighbors >= 2 {
			score += weights[l.flatNextToTwoOwn]
		}
		if bestSpan >= 2 {
			bucket := bestSpan - 2
			if bucket > 3 {
				bucket = 3
			}
			score += weights[l.extendRankFile+bucket]
		}
	} else {
		var enemyFlats int
		for _, nb := range sq.Neighbors(size, buf[:0]) {
			top := p.At(nb).Top()
			if top != tak.NoPiece && top.Color() == them && top.Role() == tak.Flat {
				enemyFlats++
			}
		}
		if enemyFlats >= 2 {
			score += weights[l.blockerNextToTwoTheirFlats]
		}
		if info.IsCritical(sq, them, size) {
			score += weights[l.blockerBlocksExtension]
		}
	}

	if m.Role() != tak.Wall && info.IsCritical(sq, us, size) {
		score += weights[l.placeCritical]
	}
	return score
}

func spreadScore(p *tak.Position, m tak.Move, l policyLayout, weights []float32, us tak.Color) float32 {
	score := weights[l.spreadBase]
	gained, captures := spreadOutcome(p, m, us)
	if gained > 0 {
		bucket := gained - 1
		if bucket > 3 {
			bucket = 3
		}
		score += weights[l.spreadGivesTops+bucket]
	}
	score += weights[l.spreadCapture] * float32(captures)
	return score
}

// spreadOutcome walks the drop sequence without mutating p, reporting how
// many squares change to our color on top and how many enemy tops the drops
// bury.
func spreadOutcome(p *tak.Position, m tak.Move, us tak.Color) (gained, captures int) {
	size := p.Size()
	origin := m.Square()
	stack := p.At(origin)
	total := m.Drops().Total()
	carried := stack[len(stack)-total:]

	// The origin always starts under our control. It stays ours only if a
	// friendly stone remains below the carried portion.
	if len(stack) == total {
		gained--
	} else if stack[len(stack)-total-1].Color() != us {
		gained--
	}

	idx := 0
	cur := origin
	for i := 0; i < m.Drops().Len(); i++ {
		cur, _ = cur.Shift(m.Dir(), size)
		count := m.Drops().Get(i)
		prevTop := p.At(cur).Top()
		newTop := carried[idx+count-1]
		if prevTop != tak.NoPiece && prevTop.Color() != us {
			captures++
			if newTop.Color() == us {
				gained++
			}
		} else if prevTop == tak.NoPiece && newTop.Color() == us {
			gained++
		} else if prevTop != tak.NoPiece && prevTop.Color() == us && newTop.Color() != us {
			gained--
		}
		idx += count
	}
	return gained, captures
}

// groupSpan is the bounding box of one road group.
type groupSpan struct {
	minFile, maxFile, minRank, maxRank int
}

// extendedBy returns the larger of the group's file and rank extents after
// adding sq to the box.
func (g groupSpan) extendedBy(sq tak.Square) int {
	minF, maxF := min(g.minFile, sq.File()), max(g.maxFile, sq.File())
	minR, maxR := min(g.minRank, sq.Rank()), max(g.maxRank, sq.Rank())
	return max(maxF-minF+1, maxR-minR+1)
}

func groupSpans(p *tak.Position, info *tak.GroupInfo) []groupSpan {
	size := p.Size()
	spans := make([]groupSpan, len(info.Groups)/2+2)
	for i := range spans {
		spans[i] = groupSpan{minFile: size, minRank: size, maxFile: -1, maxRank: -1}
	}
	for i, id := range info.Groups {
		if id == 0 {
			continue
		}
		if int(id) >= len(spans) {
			grown := make([]groupSpan, int(id)+1)
			copy(grown, spans)
			for j := len(spans); j < len(grown); j++ {
				grown[j] = groupSpan{minFile: size, minRank: size, maxFile: -1, maxRank: -1}
			}
			spans = grown
		}
		file, rank := i%size, i/size
		s := &spans[id]
		s.minFile = min(s.minFile, file)
		s.maxFile = max(s.maxFile, file)
		s.minRank = min(s.minRank, rank)
		s.maxRank = max(s.maxRank, rank)
	}
	return spans
}

// lastMoveSquares returns the destination squares of our and the opponent's
// most recent moves, when both exist.
func lastMoveSquares(p *tak.Position) (ours, theirs tak.Square, ok bool) {
	hist := p.History()
	if len(hist) < 2 {
		return 0, 0, false
	}
	return destination(p, hist[len(hist)-2]), destination(p, hist[len(hist)-1]), true
}

func destination(p *tak.Position, m tak.Move) tak.Square {
	if m.IsPlace() {
		return m.Square()
	}
	sq := m.Square()
	for i := 0; i < m.Drops().Len(); i++ {
		sq, _ = sq.Shift(m.Dir(), p.Size())
	}
	return sq
}

func adjacent(a, b tak.Square, size int) bool {
	var buf [4]tak.Square
	for _, nb := range a.Neighbors(size, buf[:0]) {
		if nb == b {
			return true
		}
	}
	return false
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
