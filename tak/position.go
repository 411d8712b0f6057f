package tak

import (
	"github.com/pkg/errors"
)

// ErrIllegalMove is returned when a move fails a rule check. It is never
// silently corrected; callers feeding moves from untrusted sources must
// handle it.
var ErrIllegalMove = errors.New("illegal move")

// ErrIllegalState is returned when an operation is invoked on a terminal or
// malformed position.
var ErrIllegalState = errors.New("illegal state")

// reserveCounts holds the fixed per-size stone allotment.
var reserveCounts = map[int]struct{ flats, caps int }{
	3: {10, 0},
	4: {16, 0},
	5: {21, 1},
	6: {30, 1},
	7: {40, 2},
	8: {50, 2},
}

// Position is the complete state of a game of Tak. It is mutable through
// DoMove/UndoMove and must not be shared across goroutines; search workers
// each own a clone.
type Position struct {
	size    int
	stacks  []Stack // indexed rank*size + file
	toMove  Color
	ply     int
	flats   [2]int // reserve flats left, indexed by Color
	caps    [2]int // reserve capstones left
	history []Move

	roads connectivity
}

// NewPosition returns the empty starting position for a board of side
// size, which must be between 3 and 8.
func NewPosition(size int) (*Position, error) {
	reserves, ok := reserveCounts[size]
	if !ok {
		return nil, errors.Wrapf(ErrIllegalState, "unsupported board size %d", size)
	}
	p := &Position{
		size:   size,
		stacks: make([]Stack, size*size),
		toMove: White,
	}
	p.flats[White] = reserves.flats
	p.flats[Black] = reserves.flats
	p.caps[White] = reserves.caps
	p.caps[Black] = reserves.caps
	p.roads.reset(size)
	return p, nil
}

func (p *Position) Size() int         { return p.size }
func (p *Position) SideToMove() Color { return p.toMove }
func (p *Position) Ply() int          { return p.ply }

// Reserves returns the number of flats and capstones c has left to place.
func (p *Position) Reserves(c Color) (flats, caps int) {
	return p.flats[c], p.caps[c]
}

// At returns the stack on sq. The returned slice aliases the position and
// must not be modified.
func (p *Position) At(sq Square) Stack {
	return p.stacks[p.index(sq)]
}

// History returns the moves played from the position's starting state. The
// slice aliases the position.
func (p *Position) History() []Move {
	return p.history
}

func (p *Position) index(sq Square) int {
	return sq.Rank()*p.size + sq.File()
}

func (p *Position) squareAtIndex(i int) Square {
	return SquareAt(i%p.size, i/p.size)
}

// Clone returns a deep copy sharing no mutable state with p.
func (p *Position) Clone() *Position {
	q := *p
	q.stacks = make([]Stack, len(p.stacks))
	for i, s := range p.stacks {
		if len(s) > 0 {
			q.stacks[i] = append(Stack(nil), s...)
		}
	}
	q.history = append([]Move(nil), p.history...)
	q.roads = p.roads.clone()
	return &q
}

// opening reports whether the next placement puts down the opponent's
// stone: on each player's first move they place a flat of the other color.
func (p *Position) opening() bool {
	return p.ply < 2
}

// Reverse undoes the move it was produced from. It is only valid on the
// position that produced it, before any other mutation.
type Reverse struct {
	mv        Move
	flattened bool
}

// DoMove applies a move without legality checking. Moves must come from
// LegalMoves or have been validated with Validate; see Apply for the
// checked variant.
func (p *Position) DoMove(m Move) Reverse {
	rev := Reverse{mv: m}
	if m.IsPlace() {
		color := p.toMove
		if p.opening() {
			color = color.Other()
		}
		piece := MakePiece(color, m.Role())
		i := p.index(m.Square())
		p.stacks[i] = append(p.stacks[i], piece)
		if m.Role() == Cap {
			p.caps[color]--
		} else {
			p.flats[color]--
		}
		p.roads.place(m.Square(), piece, p)
	} else {
		p.spread(m, &rev)
		p.roads.invalidate()
	}
	p.history = append(p.history, m)
	p.ply++
	p.toMove = p.toMove.Other()
	return rev
}

func (p *Position) spread(m Move, rev *Reverse) {
	drops := m.Drops()
	carried := drops.Total()
	from := p.index(m.Square())
	lifted := append([]Piece(nil), p.stacks[from][len(p.stacks[from])-carried:]...)
	p.stacks[from] = p.stacks[from][:len(p.stacks[from])-carried]

	sq := m.Square()
	off := 0
	for i := 0; i < drops.Len(); i++ {
		sq, _ = sq.Shift(m.Dir(), p.size)
		n := drops.Get(i)
		ti := p.index(sq)
		if top := p.stacks[ti].Top(); top != NoPiece && top.Role() == Wall {
			// Only a lone capstone may land here; the wall is flattened.
			p.stacks[ti][len(p.stacks[ti])-1] = MakePiece(top.Color(), Flat)
			rev.flattened = true
		}
		p.stacks[ti] = append(p.stacks[ti], lifted[off:off+n]...)
		off += n
	}
}

// UndoMove reverses the position's most recent DoMove.
func (p *Position) UndoMove(rev Reverse) {
	m := rev.mv
	p.toMove = p.toMove.Other()
	p.ply--
	p.history = p.history[:len(p.history)-1]

	if m.IsPlace() {
		i := p.index(m.Square())
		piece := p.stacks[i].Top()
		p.stacks[i] = p.stacks[i][:len(p.stacks[i])-1]
		if piece.Role() == Cap {
			p.caps[piece.Color()]++
		} else {
			p.flats[piece.Color()]++
		}
	} else {
		drops := m.Drops()
		lifted := make([]Piece, 0, drops.Total())
		sq := m.Square()
		last := drops.Len() - 1
		for i := 0; i <= last; i++ {
			sq, _ = sq.Shift(m.Dir(), p.size)
			n := drops.Get(i)
			ti := p.index(sq)
			lifted = append(lifted, p.stacks[ti][len(p.stacks[ti])-n:]...)
			p.stacks[ti] = p.stacks[ti][:len(p.stacks[ti])-n]
			if i == last && rev.flattened {
				top := p.stacks[ti].Top()
				p.stacks[ti][len(p.stacks[ti])-1] = MakePiece(top.Color(), Wall)
			}
		}
		from := p.index(m.Square())
		p.stacks[from] = append(p.stacks[from], lifted...)
	}
	p.roads.invalidate()
}

// Apply validates m against p and returns the resulting position, leaving p
// untouched. It fails with ErrIllegalMove for any move that violates
// stacking, carry or ownership rules.
func (p *Position) Apply(m Move) (*Position, error) {
	if err := p.Validate(m); err != nil {
		return nil, err
	}
	q := p.Clone()
	q.DoMove(m)
	return q, nil
}

// Validate checks m against the rules without applying it.
func (p *Position) Validate(m Move) error {
	if m.IsPlace() {
		return p.validatePlace(m)
	}
	return p.validateSpread(m)
}

func (p *Position) validatePlace(m Move) error {
	if !p.onBoard(m.Square()) {
		return errors.Wrapf(ErrIllegalMove, "placement off the board: %s", m)
	}
	if p.At(m.Square()).Height() > 0 {
		return errors.Wrapf(ErrIllegalMove, "placement on occupied square: %s", m)
	}
	color := p.toMove
	if p.opening() {
		if m.Role() != Flat {
			return errors.Wrapf(ErrIllegalMove, "only flats may be placed on the first two plies: %s", m)
		}
		color = color.Other()
	}
	if m.Role() == Cap {
		if p.caps[color] == 0 {
			return errors.Wrapf(ErrIllegalMove, "no capstones left: %s", m)
		}
	} else if p.flats[color] == 0 {
		return errors.Wrapf(ErrIllegalMove, "no flats left: %s", m)
	}
	return nil
}

func (p *Position) validateSpread(m Move) error {
	if p.opening() {
		return errors.Wrapf(ErrIllegalMove, "spreads are not legal on the first two plies: %s", m)
	}
	if !p.onBoard(m.Square()) {
		return errors.Wrapf(ErrIllegalMove, "spread from off the board: %s", m)
	}
	stack := p.At(m.Square())
	if !stack.ControlledBy(p.toMove) {
		return errors.Wrapf(ErrIllegalMove, "spread from a square the mover does not control: %s", m)
	}
	drops := m.Drops()
	carried := drops.Total()
	if carried < 1 || carried > p.size || carried > stack.Height() {
		return errors.Wrapf(ErrIllegalMove, "spread carries %d stones from a stack of %d (carry limit %d): %s",
			carried, stack.Height(), p.size, m)
	}
	mover := stack.Top()
	left := carried
	sq := m.Square()
	for i := 0; i < drops.Len(); i++ {
		n := drops.Get(i)
		if n < 1 {
			return errors.Wrapf(ErrIllegalMove, "zero drop count: %s", m)
		}
		var ok bool
		sq, ok = sq.Shift(m.Dir(), p.size)
		if !ok {
			return errors.Wrapf(ErrIllegalMove, "spread runs off the board: %s", m)
		}
		left -= n
		switch top := p.At(sq).Top(); {
		case top == NoPiece || top.Role() == Flat:
		case top.Role() == Cap:
			return errors.Wrapf(ErrIllegalMove, "spread onto a capstone: %s", m)
		default: // Wall
			if mover.Role() != Cap || left != 0 || n != 1 {
				return errors.Wrapf(ErrIllegalMove, "only a lone capstone may flatten a wall: %s", m)
			}
		}
	}
	return nil
}

func (p *Position) onBoard(sq Square) bool {
	return sq.File() < p.size && sq.Rank() < p.size
}
