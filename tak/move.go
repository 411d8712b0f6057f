package tak

import (
	"github.com/pkg/errors"
)

// DropSequence packs the per-step drop counts of a spread into a single
// word: four bits per count, with the number of steps in the top four bits.
// Counts are 1..8, so every legal spread on boards up to 8x8 fits.
type DropSequence uint32

func (d DropSequence) Len() int {
	return int(d >> 28)
}

func (d DropSequence) Get(i int) int {
	return int(d >> (4 * i) & 0xf)
}

// Total is the number of stones carried by the whole spread.
func (d DropSequence) Total() int {
	sum := 0
	for i := 0; i < d.Len(); i++ {
		sum += d.Get(i)
	}
	return sum
}

func (d DropSequence) Push(count int) DropSequence {
	n := d.Len()
	d |= DropSequence(count) << (4 * n)
	return d&^(0xf<<28) | DropSequence(n+1)<<28
}

// MakeDrops builds a DropSequence from explicit per-step counts.
func MakeDrops(counts ...int) DropSequence {
	var d DropSequence
	for _, c := range counts {
		d = d.Push(c)
	}
	return d
}

// Move is either a placement or a spread, in one comparable value small
// enough to store by the thousands in search trees.
type Move struct {
	sq    Square
	role  Role
	dir   Direction
	drops DropSequence // zero for placements
}

// PlaceMove is a placement of a single stone on an empty square.
func PlaceMove(role Role, sq Square) Move {
	return Move{sq: sq, role: role}
}

// SpreadMove picks up drops.Total() stones from sq and drops them along dir
// as described by drops.
func SpreadMove(sq Square, dir Direction, drops DropSequence) Move {
	return Move{sq: sq, dir: dir, drops: drops}
}

func (m Move) IsPlace() bool {
	return m.drops == 0
}

func (m Move) Square() Square { return m.sq }

// Role is only meaningful for placements.
func (m Move) Role() Role { return m.role }

// Dir and Drops are only meaningful for spreads.
func (m Move) Dir() Direction      { return m.dir }
func (m Move) Drops() DropSequence { return m.drops }

// String renders the move in canonical PTN: the square with an optional
// role letter for placements ("a1", "Sc3", "Cc3"), and the carried count,
// square, direction and drop digits for spreads ("3c3>12"). The count is
// omitted for single-stone spreads and the drop digits when everything is
// dropped on one square.
func (m Move) String() string {
	name := m.sq.Name()
	if m.IsPlace() {
		switch m.role {
		case Wall:
			return "S" + name
		case Cap:
			return "C" + name
		default:
			return name
		}
	}
	buf := make([]byte, 0, 12)
	total := m.drops.Total()
	if total > 1 {
		buf = append(buf, byte('0'+total))
	}
	buf = append(buf, name...)
	buf = append(buf, byte(m.dir.rune()))
	if m.drops.Len() > 1 {
		for i := 0; i < m.drops.Len(); i++ {
			buf = append(buf, byte('0'+m.drops.Get(i)))
		}
	}
	return string(buf)
}

// ParseMove parses canonical PTN move text for a board of the given size.
// It accepts the abbreviations String may omit: a bare square is a flat
// placement, a spread without drop digits drops its whole carry on the
// first square.
func ParseMove(size int, s string) (Move, error) {
	if len(s) < 2 {
		return Move{}, errors.Errorf("move %q too short", s)
	}
	role := Flat
	rest := s
	carried := 0
	switch {
	case s[0] == 'S':
		role = Wall
		rest = s[1:]
	case s[0] == 'C':
		role = Cap
		rest = s[1:]
	case s[0] >= '1' && s[0] <= '8':
		carried = int(s[0] - '0')
		rest = s[1:]
	}
	if len(rest) < 2 {
		return Move{}, errors.Errorf("move %q too short", s)
	}
	sq, err := ParseSquare(size, rest[:2])
	if err != nil {
		return Move{}, errors.Wrapf(err, "move %q", s)
	}
	rest = rest[2:]

	if len(rest) == 0 {
		if carried != 0 {
			return Move{}, errors.Errorf("move %q has a carry count but no direction", s)
		}
		return PlaceMove(role, sq), nil
	}

	dir, ok := parseDirection(rest[0])
	if !ok {
		return Move{}, errors.Errorf("move %q: bad direction %q", s, rest[0])
	}
	if role != Flat {
		return Move{}, errors.Errorf("move %q: role letter on a spread", s)
	}
	if carried == 0 {
		carried = 1
	}
	if carried > size {
		return Move{}, errors.Errorf("move %q: carries %d stones, limit is %d", s, carried, size)
	}
	rest = rest[1:]

	var drops DropSequence
	if len(rest) == 0 {
		drops = drops.Push(carried)
	} else {
		sum := 0
		for i := 0; i < len(rest); i++ {
			c := int(rest[i] - '0')
			if c < 1 || c > 8 {
				return Move{}, errors.Errorf("move %q: bad drop count %q", s, rest[i])
			}
			sum += c
			drops = drops.Push(c)
		}
		if sum != carried {
			return Move{}, errors.Errorf("move %q: drop counts sum to %d, carried %d", s, sum, carried)
		}
	}
	return SpreadMove(sq, dir, drops), nil
}
