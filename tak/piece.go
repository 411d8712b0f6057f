// Package tak implements the rules of the board game Tak: positions,
// move generation, move application and terminal-state detection, plus the
// PTN move notation and TPS position notation used to talk to the outside
// world.
package tak

// Color identifies one of the two players.
type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Other() Color {
	return 1 - c
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Role is a piece type without its color.
type Role uint8

const (
	Flat Role = iota
	Wall
	Cap
)

func (r Role) String() string {
	switch r {
	case Flat:
		return "flat"
	case Wall:
		return "wall"
	default:
		return "cap"
	}
}

// Piece is a colored stone, or NoPiece for an empty slot.
type Piece uint8

const (
	NoPiece Piece = iota
	WhiteFlat
	BlackFlat
	WhiteWall
	BlackWall
	WhiteCap
	BlackCap
)

func MakePiece(c Color, r Role) Piece {
	return Piece(1 + uint8(r)*2 + uint8(c))
}

func (p Piece) Color() Color {
	return Color((uint8(p) - 1) & 1)
}

func (p Piece) Role() Role {
	return Role((uint8(p) - 1) / 2)
}

// IsRoad reports whether the piece counts towards a road: flats and
// capstones do, walls do not.
func (p Piece) IsRoad() bool {
	return p != NoPiece && p.Role() != Wall
}

// Stack is the contents of one square, bottom to top.
type Stack []Piece

func (s Stack) Top() Piece {
	if len(s) == 0 {
		return NoPiece
	}
	return s[len(s)-1]
}

func (s Stack) Height() int {
	return len(s)
}

// ControlledBy reports whether the stack's top stone belongs to c.
func (s Stack) ControlledBy(c Color) bool {
	top := s.Top()
	return top != NoPiece && top.Color() == c
}
