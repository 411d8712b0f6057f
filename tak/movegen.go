package tak

// LegalMoves enumerates every legal move for the side to move. On the first
// two plies only flat placements (of the opponent's stone) are legal.
func (p *Position) LegalMoves() []Move {
	return p.AppendLegalMoves(make([]Move, 0, 4*len(p.stacks)))
}

// AppendLegalMoves appends all legal moves to dst and returns it, reusing
// dst's backing array. Search inner loops call this with a scratch buffer.
func (p *Position) AppendLegalMoves(dst []Move) []Move {
	if p.opening() {
		for i, stack := range p.stacks {
			if len(stack) == 0 {
				dst = append(dst, PlaceMove(Flat, p.squareAtIndex(i)))
			}
		}
		return dst
	}

	flats, caps := p.Reserves(p.toMove)
	for i, stack := range p.stacks {
		sq := p.squareAtIndex(i)
		top := stack.Top()
		switch {
		case top == NoPiece:
			if flats > 0 {
				dst = append(dst, PlaceMove(Flat, sq), PlaceMove(Wall, sq))
			}
			if caps > 0 {
				dst = append(dst, PlaceMove(Cap, sq))
			}
		case top.Color() == p.toMove:
			dst = p.appendSpreads(sq, stack, dst)
		}
	}
	return dst
}

func (p *Position) appendSpreads(sq Square, stack Stack, dst []Move) []Move {
	maxCarry := stack.Height()
	if maxCarry > p.size {
		maxCarry = p.size
	}
	isCap := stack.Top().Role() == Cap
	for _, dir := range directions {
		for carry := 1; carry <= maxCarry; carry++ {
			dst = p.genSpread(sq, dir, carry, isCap, 0, sq, dst)
		}
	}
	return dst
}

// genSpread extends a partial spread that still holds remaining stones past
// cur, appending every completion to dst.
func (p *Position) genSpread(origin Square, dir Direction, remaining int, isCap bool,
	drops DropSequence, cur Square, dst []Move) []Move {
	next, ok := cur.Shift(dir, p.size)
	if !ok {
		return dst
	}
	switch top := p.At(next).Top(); {
	case top == NoPiece || top.Role() == Flat:
	case top.Role() == Cap:
		return dst
	default: // Wall: passable only by a lone capstone, which flattens it.
		if isCap && remaining == 1 {
			dst = append(dst, SpreadMove(origin, dir, drops.Push(1)))
		}
		return dst
	}
	for n := 1; n <= remaining; n++ {
		if n == remaining {
			dst = append(dst, SpreadMove(origin, dir, drops.Push(n)))
		} else {
			dst = p.genSpread(origin, dir, remaining-n, isCap, drops.Push(n), next, dst)
		}
	}
	return dst
}
