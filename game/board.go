package game

// Board dimensions are fixed at compile time.
const (
	Rows = 32
	Cols = 16
)

// Cell is a single board square: Empty, or the PieceType that settled there.
// The non-empty value doubles as a color index for renderers.
type Cell int8

const Empty Cell = -1

// Location is a (row, col) pair measured from the top-left of the board.
// It is signed so it can also carry relative offsets from a piece anchor.
type Location struct {
	Row int16
	Col int16
}

// Add returns l translated by off.
func (l Location) Add(off Location) Location {
	return Location{Row: l.Row + off.Row, Col: l.Col + off.Col}
}

// Board is a fixed-size grid stored inline so it copies by value.
//
// HighestOccupiedRow is a hint for renderers and debug output: rows above it
// are expected to be empty. Nothing in the move or clear logic relies on it.
// An empty board reports Rows-1.
type Board struct {
	Cells              [Rows][Cols]Cell
	HighestOccupiedRow int16
}

// NewBoard returns a board with every cell Empty.
func NewBoard() Board {
	var b Board
	for r := range b.Cells {
		for c := range b.Cells[r] {
			b.Cells[r][c] = Empty
		}
	}
	b.HighestOccupiedRow = Rows - 1
	return b
}

// InBounds reports whether loc lies within [0,Rows) x [0,Cols).
func InBounds(loc Location) bool {
	return loc.Row >= 0 && loc.Row < Rows && loc.Col >= 0 && loc.Col < Cols
}

// At returns the cell at loc. Out-of-range locations read as Empty with ok=false.
func (b *Board) At(loc Location) (Cell, bool) {
	if !InBounds(loc) {
		return Empty, false
	}
	return b.Cells[loc.Row][loc.Col], true
}

// Occupied counts the non-empty cells on the board.
func (b *Board) Occupied() int {
	n := 0
	for r := range b.Cells {
		for _, c := range b.Cells[r] {
			if c != Empty {
				n++
			}
		}
	}
	return n
}
