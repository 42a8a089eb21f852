package game

import "fmt"

const (
	NumPieceTypes   = 7
	NumOrientations = 4
	CellsPerPiece   = 4
)

// PieceType identifies one of the seven tetrominoes. Its numeric value is
// also the Cell value written when the piece settles.
type PieceType uint8

const (
	S PieceType = iota
	Z
	T
	L
	J
	Square
	I
)

var pieceNames = [NumPieceTypes]string{"S", "Z", "T", "L", "J", "SQUARE", "I"}

func (t PieceType) String() string {
	if t.Valid() {
		return pieceNames[t]
	}
	return fmt.Sprintf("PieceType(%d)", uint8(t))
}

func (t PieceType) Valid() bool {
	return t < NumPieceTypes
}

// Shapes holds the relative cell offsets for every piece type and
// orientation, indexed [type][orientation][cell]. Offsets are measured from
// the piece anchor; some orientations reach above or left of it.
var Shapes = [NumPieceTypes][NumOrientations][CellsPerPiece]Location{
	S: {
		{{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {1, 1}, {0, 1}, {0, 2}},
		{{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {1, 1}, {0, 1}, {0, 2}},
	},
	Z: {
		{{0, 1}, {1, 0}, {1, 1}, {2, 0}},
		{{0, 0}, {0, 1}, {1, 1}, {1, 2}},
		{{0, 1}, {1, 0}, {1, 1}, {2, 0}},
		{{0, 0}, {0, 1}, {1, 1}, {1, 2}},
	},
	T: {
		{{0, 0}, {0, 1}, {0, 2}, {1, 1}},
		{{0, 0}, {0, 1}, {1, 1}, {-1, 1}},
		{{1, 0}, {1, 1}, {0, 1}, {1, 2}},
		{{0, 1}, {1, 1}, {-1, 1}, {0, 2}},
	},
	L: {
		{{0, 0}, {1, 0}, {2, 0}, {2, 1}},
		{{0, 1}, {1, -1}, {1, 0}, {1, 1}},
		{{0, 0}, {0, 1}, {1, 0}, {2, 0}},
		{{0, 0}, {1, 0}, {1, 1}, {1, 2}},
	},
	J: {
		{{0, 1}, {1, 1}, {2, 0}, {2, 1}},
		{{0, -1}, {0, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {0, 1}, {1, 0}, {2, 0}},
		{{0, 0}, {1, 0}, {1, 1}, {1, 2}},
	},
	Square: {
		{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
	},
	I: {
		{{0, 0}, {0, 1}, {0, 2}, {0, 3}},
		{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
		{{0, 0}, {0, 1}, {0, 2}, {0, 3}},
		{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
	},
}

// ShapeOf returns the relative offsets for a piece type in an orientation.
func ShapeOf(t PieceType, orientation uint8) [CellsPerPiece]Location {
	return Shapes[t][orientation%NumOrientations]
}

// Piece is the active tetromino. Falling is cleared once gravity can no
// longer move it down; the engine then merges it into the stack.
type Piece struct {
	Type        PieceType
	Loc         Location
	Orientation uint8
	Falling     bool
}

// NewPiece returns a falling piece anchored at (row, col).
// It panics on an invalid type or orientation.
func NewPiece(t PieceType, row, col int16, orientation uint8) Piece {
	if !t.Valid() {
		panic(fmt.Sprintf("game: invalid piece type %d", t))
	}
	if orientation >= NumOrientations {
		panic(fmt.Sprintf("game: orientation %d out of range", orientation))
	}
	return Piece{
		Type:        t,
		Loc:         Location{Row: row, Col: col},
		Orientation: orientation,
		Falling:     true,
	}
}

// Cells returns the absolute board locations the piece covers.
func (p Piece) Cells() [CellsPerPiece]Location {
	return p.CellsAt(p.Orientation)
}

// CellsAt returns the absolute locations the piece would cover in the given
// orientation without moving its anchor.
func (p Piece) CellsAt(orientation uint8) [CellsPerPiece]Location {
	cells := ShapeOf(p.Type, orientation)
	for i := range cells {
		cells[i] = cells[i].Add(p.Loc)
	}
	return cells
}

// NextOrientation is the orientation a single rotation moves to.
func (p Piece) NextOrientation() uint8 {
	return (p.Orientation + 1) % NumOrientations
}
