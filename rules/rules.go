// Package rules implements Tetris move legality, row clearing, scoring and
// gravity timing on top of the game types.
//
// Every function here is a deterministic function of its inputs. Rejected
// moves are ordinary false returns; passing an argument the caller should
// never produce (a rotation to the translation check, an oversized clear)
// panics.
package rules

import (
	"fmt"

	"github.com/brensch/tetris/game"
)

var (
	offsetDown  = game.Location{Row: 1, Col: 0}
	offsetLeft  = game.Location{Row: 0, Col: -1}
	offsetRight = game.Location{Row: 0, Col: 1}
)

// IsCellFree reports whether loc is on the board and empty.
func IsCellFree(b *game.Board, loc game.Location) bool {
	cell, ok := b.At(loc)
	return ok && cell == game.Empty
}

// translation maps a movement intent to its unit offset.
func translation(intent game.Intent) (game.Location, bool) {
	switch intent {
	case game.IntentDown:
		return offsetDown, true
	case game.IntentLeft:
		return offsetLeft, true
	case game.IntentRight:
		return offsetRight, true
	}
	return game.Location{}, false
}

// CheckValidMove reports whether the active piece can be translated one cell
// in the direction of intent. IntentNone is always valid. Any intent that is
// not a translation panics: rotation has its own check.
func CheckValidMove(s *game.State, intent game.Intent) bool {
	if intent == game.IntentNone {
		return true
	}
	off, ok := translation(intent)
	if !ok {
		panic(fmt.Sprintf("rules: CheckValidMove called with %s; only NONE, DOWN, LEFT and RIGHT are translations", intent))
	}
	for _, cell := range s.ActivePiece.Cells() {
		if !IsCellFree(&s.Board, cell.Add(off)) {
			return false
		}
	}
	return true
}

// CheckValidRotate reports whether p can turn to its next orientation in
// place. There are no wall kicks: one blocked cell rejects the rotation.
func CheckValidRotate(b *game.Board, p game.Piece) bool {
	for _, cell := range p.CellsAt(p.NextOrientation()) {
		if !IsCellFree(b, cell) {
			return false
		}
	}
	return true
}

// CanPlace reports whether every cell of p is free on b.
func CanPlace(b *game.Board, p game.Piece) bool {
	for _, cell := range p.Cells() {
		if !IsCellFree(b, cell) {
			return false
		}
	}
	return true
}

// MergePiece writes p into the stack and returns the cells it covered.
// The highest occupied row moves up to the piece's top row if that is higher.
func MergePiece(b *game.Board, p game.Piece) [game.CellsPerPiece]game.Location {
	cells := p.Cells()
	top := b.HighestOccupiedRow
	for _, c := range cells {
		if !game.InBounds(c) {
			panic(fmt.Sprintf("rules: merging %s with cell %v off the board", p.Type, c))
		}
		b.Cells[c.Row][c.Col] = game.Cell(p.Type)
		top = min(top, c.Row)
	}
	b.HighestOccupiedRow = top
	return cells
}

// RenderActiveBoard overlays the active piece onto a copy of the stack,
// stores the result in s.ActiveBoard and returns it. Cells outside the board
// are clipped.
func RenderActiveBoard(s *game.State) game.Board {
	out := s.Board
	for _, c := range s.ActivePiece.Cells() {
		if !game.InBounds(c) {
			continue
		}
		out.Cells[c.Row][c.Col] = game.Cell(s.ActivePiece.Type)
		out.HighestOccupiedRow = min(out.HighestOccupiedRow, c.Row)
	}
	s.ActiveBoard = out
	return out
}
