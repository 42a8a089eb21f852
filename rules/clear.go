package rules

import (
	"fmt"
	"slices"

	"github.com/kamstrup/intmap"

	"github.com/brensch/tetris/game"
)

// MaxClearRows is the most rows a single tetromino can complete at once.
const MaxClearRows = 4

// CheckFilledRow reports whether every cell in row is occupied.
func CheckFilledRow(b *game.Board, row int16) bool {
	if row < 0 || row >= game.Rows {
		return false
	}
	for _, c := range b.Cells[row] {
		if c == game.Empty {
			return false
		}
	}
	return true
}

// ClearRows removes numRows contiguous rows starting at topRow and shifts
// everything above them down by numRows. Rows whose source would lie above
// row 0 are filled with Empty. HighestOccupiedRow moves down by numRows,
// clamped to the last row.
//
// It panics if numRows exceeds MaxClearRows or the block does not fit on the
// board.
func ClearRows(b *game.Board, topRow int16, numRows int) {
	if numRows < 0 || numRows > MaxClearRows {
		panic(fmt.Sprintf("rules: ClearRows numRows=%d, want 0..%d", numRows, MaxClearRows))
	}
	if topRow < 0 || int(topRow)+numRows > game.Rows {
		panic(fmt.Sprintf("rules: ClearRows block [%d,+%d) outside board", topRow, numRows))
	}
	if numRows == 0 {
		return
	}

	bottom := int(topRow) + numRows - 1
	n := numRows
	for col := 0; col < game.Cols; col++ {
		for row := bottom; row >= 0; row-- {
			src := row - n
			if src < 0 {
				b.Cells[row][col] = game.Empty
				continue
			}
			b.Cells[row][col] = b.Cells[src][col]
		}
	}

	b.HighestOccupiedRow = min(b.HighestOccupiedRow+int16(numRows), game.Rows-1)
}

// CheckAndClearRows inspects the rows touched by a landed piece, clears the
// full ones and returns how many were removed.
//
// Full rows need not be contiguous: a piece can complete two rows with an
// unfinished row between them. Each contiguous run is cleared separately,
// topmost first, so rows below a run keep their indices for the next one.
func CheckAndClearRows(b *game.Board, landed [game.CellsPerPiece]game.Location) int {
	touched := intmap.New[int16, struct{}](game.CellsPerPiece)
	for _, loc := range landed {
		touched.Put(loc.Row, struct{}{})
	}

	full := make([]int16, 0, game.CellsPerPiece)
	touched.ForEach(func(row int16, _ struct{}) bool {
		if CheckFilledRow(b, row) {
			full = append(full, row)
		}
		return true
	})
	if len(full) == 0 {
		return 0
	}
	slices.Sort(full)

	start := 0
	for i := 1; i <= len(full); i++ {
		if i < len(full) && full[i] == full[i-1]+1 {
			continue
		}
		ClearRows(b, full[start], i-start)
		start = i
	}
	return len(full)
}
