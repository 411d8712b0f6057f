package tak

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// TPS renders the position in Tak Positional System notation: board rows
// from the top rank down, then the side to move and the full-move number.
func (p *Position) TPS() string {
	rows := make([]string, 0, p.size)
	for rank := p.size - 1; rank >= 0; rank-- {
		items := make([]string, 0, p.size)
		empty := 0
		for file := 0; file <= p.size; file++ {
			if file < p.size && len(p.At(SquareAt(file, rank))) == 0 {
				empty++
				continue
			}
			switch {
			case empty == 1:
				items = append(items, "x")
			case empty > 1:
				items = append(items, "x"+strconv.Itoa(empty))
			}
			empty = 0
			if file < p.size {
				items = append(items, tpsStack(p.At(SquareAt(file, rank))))
			}
		}
		rows = append(rows, strings.Join(items, ","))
	}
	side := "1"
	if p.toMove == Black {
		side = "2"
	}
	return strings.Join(rows, "/") + " " + side + " " + strconv.Itoa(p.ply/2+1)
}

func tpsStack(stack Stack) string {
	var sb strings.Builder
	for _, piece := range stack {
		if piece.Color() == White {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('2')
		}
	}
	switch stack.Top().Role() {
	case Wall:
		sb.WriteByte('S')
	case Cap:
		sb.WriteByte('C')
	}
	return sb.String()
}

// ParseTPS parses a TPS string, inferring the board size from the number of
// rows. Malformed input is rejected here, before any position reaches the
// search.
func ParseTPS(s string) (*Position, error) {
	words := strings.Fields(s)
	if len(words) != 3 {
		return nil, errors.Errorf("TPS %q: want 3 fields, got %d", s, len(words))
	}
	rows := strings.Split(words[0], "/")
	size := len(rows)
	p, err := NewPosition(size)
	if err != nil {
		return nil, errors.Wrapf(err, "TPS %q", s)
	}

	for r, row := range rows {
		rank := size - 1 - r
		file := 0
		for _, item := range strings.Split(row, ",") {
			if file >= size {
				return nil, errors.Errorf("TPS %q: row %q too long", s, row)
			}
			if strings.HasPrefix(item, "x") {
				n := 1
				if len(item) > 1 {
					if n, err = strconv.Atoi(item[1:]); err != nil {
						return nil, errors.Errorf("TPS %q: bad empty run %q", s, item)
					}
				}
				file += n
				continue
			}
			stack, err := parseTPSStack(item)
			if err != nil {
				return nil, errors.Wrapf(err, "TPS %q", s)
			}
			for _, piece := range stack {
				color := piece.Color()
				if piece.Role() == Cap {
					p.caps[color]--
				} else {
					p.flats[color]--
				}
			}
			p.stacks[rank*size+file] = stack
			file++
		}
		if file != size {
			return nil, errors.Errorf("TPS %q: row %q covers %d of %d files", s, row, file, size)
		}
	}
	for c := White; c <= Black; c++ {
		if p.flats[c] < 0 || p.caps[c] < 0 {
			return nil, errors.Wrapf(ErrIllegalState, "TPS %q: more %s stones than the size-%d allotment", s, c, size)
		}
	}

	switch words[1] {
	case "1":
		p.toMove = White
	case "2":
		p.toMove = Black
	default:
		return nil, errors.Errorf("TPS %q: bad side to move %q", s, words[1])
	}
	moveNum, err := strconv.Atoi(words[2])
	if err != nil || moveNum < 1 {
		return nil, errors.Errorf("TPS %q: bad move number %q", s, words[2])
	}
	p.ply = (moveNum - 1) * 2
	if p.toMove == Black {
		p.ply++
	}
	p.roads.invalidate()
	return p, nil
}

func parseTPSStack(item string) (Stack, error) {
	stack := make(Stack, 0, len(item))
	role := Flat
	for i := 0; i < len(item); i++ {
		switch item[i] {
		case '1':
			stack = append(stack, WhiteFlat)
		case '2':
			stack = append(stack, BlackFlat)
		case 'S':
			role = Wall
		case 'C':
			role = Cap
		default:
			return nil, errors.Errorf("bad stack %q", item)
		}
		if role != Flat && i != len(item)-1 {
			return nil, errors.Errorf("bad stack %q: role letter before the top", item)
		}
	}
	if len(stack) == 0 {
		return nil, errors.Errorf("bad stack %q", item)
	}
	if role != Flat {
		top := stack[len(stack)-1]
		stack[len(stack)-1] = MakePiece(top.Color(), role)
	}
	return stack, nil
}
