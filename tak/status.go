package tak

// StatusKind classifies a position as ongoing or one of the three ways a
// game ends.
type StatusKind uint8

const (
	Ongoing StatusKind = iota
	RoadWin
	FlatWin
	Draw
)

// Status is the terminal state of a position. Winner is meaningful only for
// RoadWin and FlatWin.
type Status struct {
	Kind   StatusKind
	Winner Color
}

func (s Status) Over() bool {
	return s.Kind != Ongoing
}

func (s Status) String() string {
	switch s.Kind {
	case Ongoing:
		return "ongoing"
	case Draw:
		return "draw"
	case RoadWin:
		if s.Winner == White {
			return "R-0"
		}
		return "0-R"
	default:
		if s.Winner == White {
			return "F-0"
		}
		return "0-F"
	}
}

// Edge-contact bits for a connected group of road pieces.
const (
	touchNorth = 1 << iota
	touchSouth
	touchEast
	touchWest
)

func edgeBits(sq Square, size int) uint8 {
	var bits uint8
	if sq.Rank() == size-1 {
		bits |= touchNorth
	}
	if sq.Rank() == 0 {
		bits |= touchSouth
	}
	if sq.File() == size-1 {
		bits |= touchEast
	}
	if sq.File() == 0 {
		bits |= touchWest
	}
	return bits
}

func spanning(bits uint8) bool {
	return bits&(touchNorth|touchSouth) == touchNorth|touchSouth ||
		bits&(touchEast|touchWest) == touchEast|touchWest
}

// connectivity tracks road-piece connected components with a union-find
// forest so the road check after a move costs near-constant time.
// Placements join the new stone to its same-colored neighbours in place;
// spreads and undos can split groups, which a union-find cannot express, so
// they invalidate the structure and the next query rebuilds it from the
// board. The per-move cost stays proportional to the touched squares for
// the common case instead of a full board rescan on every node expansion.
type connectivity struct {
	valid  bool
	parent []int16 // per square index; -1 = not a road piece
	edges  []uint8 // edge-contact bits, meaningful at roots
	won    [2]bool // per color: a spanning group exists
}

func (c *connectivity) reset(size int) {
	n := size * size
	if len(c.parent) != n {
		c.parent = make([]int16, n)
		c.edges = make([]uint8, n)
	}
	for i := range c.parent {
		c.parent[i] = -1
		c.edges[i] = 0
	}
	c.valid = true
	c.won = [2]bool{}
}

func (c *connectivity) clone() connectivity {
	q := *c
	q.parent = append([]int16(nil), c.parent...)
	q.edges = append([]uint8(nil), c.edges...)
	return q
}

func (c *connectivity) invalidate() {
	c.valid = false
}

func (c *connectivity) find(i int) int {
	for c.parent[i] != int16(i) {
		c.parent[i] = c.parent[c.parent[i]] // path halving
		i = int(c.parent[i])
	}
	return i
}

func (c *connectivity) union(a, b int, color Color) {
	ra, rb := c.find(a), c.find(b)
	if ra == rb {
		return
	}
	c.parent[ra] = int16(rb)
	c.edges[rb] |= c.edges[ra]
	if spanning(c.edges[rb]) {
		c.won[color] = true
	}
}

// place registers the road piece now on top of sq, unioning it with
// adjacent groups of the same color. Walls block without connecting and
// never enter the forest.
func (c *connectivity) place(sq Square, piece Piece, p *Position) {
	if !c.valid || !piece.IsRoad() {
		return
	}
	i := p.index(sq)
	c.parent[i] = int16(i)
	c.edges[i] = edgeBits(sq, p.size)
	if spanning(c.edges[i]) {
		c.won[piece.Color()] = true
	}
	var buf [4]Square
	for _, n := range sq.Neighbors(p.size, buf[:0]) {
		j := p.index(n)
		if c.parent[j] >= 0 && p.stacks[j].Top().Color() == piece.Color() {
			c.union(i, j, piece.Color())
		}
	}
}

// rebuildRoads reconstructs the forest from the board after an invalidating
// move. Each road top is re-placed; unions with earlier squares cover every
// adjacency by the time the scan finishes.
func (p *Position) rebuildRoads() {
	p.roads.reset(p.size)
	for i, stack := range p.stacks {
		if top := stack.Top(); top.IsRoad() {
			p.roads.place(p.squareAtIndex(i), top, p)
		}
	}
}

// Status reports whether the game is over and who won: a road win for a
// player whose road pieces span opposite edges, otherwise a flat-count
// decision once either side's reserves run out or the board fills up. When
// a single spread completes roads for both players, the player who moved
// wins.
func (p *Position) Status() Status {
	if !p.roads.valid {
		p.rebuildRoads()
	}
	if p.roads.won[White] || p.roads.won[Black] {
		mover := p.toMove.Other()
		if p.roads.won[mover] {
			return Status{Kind: RoadWin, Winner: mover}
		}
		return Status{Kind: RoadWin, Winner: p.toMove}
	}

	exhausted := (p.flats[White] == 0 && p.caps[White] == 0) ||
		(p.flats[Black] == 0 && p.caps[Black] == 0)
	if !exhausted && !p.boardFull() {
		return Status{Kind: Ongoing}
	}

	// Capstones count as flats for the final tally.
	var counts [2]int
	for _, stack := range p.stacks {
		if top := stack.Top(); top.IsRoad() {
			counts[top.Color()]++
		}
	}
	switch {
	case counts[White] > counts[Black]:
		return Status{Kind: FlatWin, Winner: White}
	case counts[Black] > counts[White]:
		return Status{Kind: FlatWin, Winner: Black}
	default:
		return Status{Kind: Draw}
	}
}

func (p *Position) boardFull() bool {
	for _, stack := range p.stacks {
		if len(stack) == 0 {
			return false
		}
	}
	return true
}
