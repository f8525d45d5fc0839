package xo

// BoardSize is the number of cells on the 3x3 grid.
const BoardSize = 9

// Board is a 3x3 grid stored row by row. It is a value type: ApplyMove returns a copy.
type Board [BoardSize]Symbol

// winLines lists the eight triples in row, column, diagonal order.
var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// InRange reports whether pos addresses a cell.
func InRange(pos int) bool { return pos >= 0 && pos < BoardSize }

// ApplyMove places sym at pos and returns the new board.
func (b Board) ApplyMove(pos int, sym Symbol) (Board, error) {
	if !InRange(pos) {
		return b, ErrOutOfRange
	}
	if b[pos] != Empty {
		return b, ErrCellOccupied
	}
	b[pos] = sym
	return b, nil
}

// Winner returns the symbol filling a complete line. When several lines
// match, the first one in row, column, diagonal order wins.
func (b Board) Winner() (Symbol, bool) {
	for _, l := range winLines {
		if s := b[l[0]]; s != Empty && s == b[l[1]] && s == b[l[2]] {
			return s, true
		}
	}
	return Empty, false
}

// WinningLine returns the cells of the line reported by Winner.
func (b Board) WinningLine() ([3]int, bool) {
	for _, l := range winLines {
		if s := b[l[0]]; s != Empty && s == b[l[1]] && s == b[l[2]] {
			return l, true
		}
	}
	return [3]int{}, false
}

func (b Board) IsFull() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// Filled counts non-empty cells.
func (b Board) Filled() int {
	n := 0
	for _, c := range b {
		if c != Empty {
			n++
		}
	}
	return n
}
