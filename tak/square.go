package tak

import "fmt"

// Square identifies a board square, with the file in the low nibble and the
// rank in the high nibble. a1 is file 0, rank 0. The encoding is independent
// of the board size, so square and move names never need the size to print.
type Square uint8

func SquareAt(file, rank int) Square {
	return Square(rank<<4 | file)
}

func (sq Square) File() int {
	return int(sq & 0xf)
}

func (sq Square) Rank() int {
	return int(sq >> 4)
}

// Name returns the PTN name of the square, e.g. "a1" or "c4".
func (sq Square) Name() string {
	return fmt.Sprintf("%c%d", 'a'+sq.File(), sq.Rank()+1)
}

// ParseSquare parses a PTN square name like "c3".
func ParseSquare(size int, s string) (Square, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("bad square %q", s)
	}
	file := int(s[0] - 'a')
	rank := int(s[1] - '1')
	if file < 0 || file >= size || rank < 0 || rank >= size {
		return 0, fmt.Errorf("square %q out of bounds for size %d", s, size)
	}
	return SquareAt(file, rank), nil
}

// Direction is one of the four cardinal directions. North is towards the
// higher-numbered ranks, matching PTN's '+'.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

var directions = [4]Direction{North, East, South, West}

func (d Direction) String() string {
	return string(d.rune())
}

func (d Direction) rune() rune {
	switch d {
	case North:
		return '+'
	case East:
		return '>'
	case South:
		return '-'
	default:
		return '<'
	}
}

func parseDirection(ch byte) (Direction, bool) {
	switch ch {
	case '+':
		return North, true
	case '>':
		return East, true
	case '-':
		return South, true
	case '<':
		return West, true
	}
	return 0, false
}

// Shift returns the neighbouring square in direction d, or false when that
// would leave a size-sized board.
func (sq Square) Shift(d Direction, size int) (Square, bool) {
	file, rank := sq.File(), sq.Rank()
	switch d {
	case North:
		rank++
	case South:
		rank--
	case East:
		file++
	case West:
		file--
	}
	if file < 0 || file >= size || rank < 0 || rank >= size {
		return 0, false
	}
	return SquareAt(file, rank), true
}

// Neighbors appends sq's orthogonal neighbours to buf and returns it.
func (sq Square) Neighbors(size int, buf []Square) []Square {
	for _, d := range directions {
		if n, ok := sq.Shift(d, size); ok {
			buf = append(buf, n)
		}
	}
	return buf
}
