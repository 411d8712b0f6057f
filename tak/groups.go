package tak

// GroupInfo is a full snapshot of road connectivity, computed by flood
// fill. The evaluator consumes it for group counts and critical squares;
// the incremental structure behind Status only answers the win question.
type GroupInfo struct {
	// Groups holds a component id per square index, 0 for squares whose
	// top is not a road piece.
	Groups []uint8
	// GroupCount is the number of road-piece components per color.
	GroupCount [2]int
	// Critical marks squares (as a square-index bitmask) where a road
	// piece of the given color would complete a road, given the groups
	// already adjacent. Occupancy of the square itself is not considered;
	// callers check whether the square can actually be taken.
	Critical [2]uint64

	edges  []uint8 // per component id, edge-contact bits
	colors []Color // per component id
}

// Groups computes a fresh GroupInfo for the position.
func (p *Position) Groups() *GroupInfo {
	n := len(p.stacks)
	info := &GroupInfo{
		Groups: make([]uint8, n),
		edges:  make([]uint8, 1, n/2+1),
		colors: make([]Color, 1, n/2+1),
	}

	var stack []int
	for i := range p.stacks {
		top := p.stacks[i].Top()
		if !top.IsRoad() || info.Groups[i] != 0 {
			continue
		}
		id := uint8(len(info.edges))
		color := top.Color()
		info.edges = append(info.edges, 0)
		info.colors = append(info.colors, color)
		info.GroupCount[color]++

		stack = append(stack[:0], i)
		info.Groups[i] = id
		for len(stack) > 0 {
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			sq := p.squareAtIndex(j)
			info.edges[id] |= edgeBits(sq, p.size)
			var buf [4]Square
			for _, nb := range sq.Neighbors(p.size, buf[:0]) {
				k := p.index(nb)
				nbTop := p.stacks[k].Top()
				if info.Groups[k] == 0 && nbTop.IsRoad() && nbTop.Color() == color {
					info.Groups[k] = id
					stack = append(stack, k)
				}
			}
		}
	}

	for i := range p.stacks {
		sq := p.squareAtIndex(i)
		for color := White; color <= Black; color++ {
			if info.completesRoad(p, sq, color) {
				info.Critical[color] |= 1 << uint(i)
			}
		}
	}
	return info
}

// completesRoad reports whether a road piece of the given color on sq would
// join adjacent groups (plus sq's own edge contacts) into a spanning road.
func (info *GroupInfo) completesRoad(p *Position, sq Square, color Color) bool {
	bits := edgeBits(sq, p.size)
	var buf [4]Square
	for _, nb := range sq.Neighbors(p.size, buf[:0]) {
		id := info.Groups[p.index(nb)]
		if id != 0 && info.colors[id] == color {
			bits |= info.edges[id]
		}
	}
	return spanning(bits)
}

// IsCritical reports whether sq is a critical square for color.
func (info *GroupInfo) IsCritical(sq Square, color Color, size int) bool {
	return info.Critical[color]&(1<<uint(sq.Rank()*size+sq.File())) != 0
}
