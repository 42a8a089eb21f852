package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dumpShape renders one orientation of a piece in a 6x6 window with the
// anchor at (1,1), so offsets of -1 stay visible.
func dumpShape(t PieceType, orientation uint8) string {
	var grid [6][6]byte
	for r := range grid {
		for c := range grid[r] {
			grid[r][c] = '.'
		}
	}
	for _, off := range ShapeOf(t, orientation) {
		grid[off.Row+1][off.Col+1] = 'X'
	}
	out := make([]byte, 0, 42)
	for r := range grid {
		out = append(out, grid[r][:]...)
		out = append(out, '\n')
	}
	return string(out)
}

func distinctLayouts(t PieceType) int {
	seen := map[[CellsPerPiece]Location]bool{}
	for o := uint8(0); o < NumOrientations; o++ {
		seen[ShapeOf(t, o)] = true
	}
	return len(seen)
}

func TestShapes_FourDistinctConnectedCells(t *testing.T) {
	for pt := PieceType(0); pt < NumPieceTypes; pt++ {
		for o := uint8(0); o < NumOrientations; o++ {
			t.Logf("%s orientation %d:\n%s", pt, o, dumpShape(pt, o))
			cells := ShapeOf(pt, o)

			seen := map[Location]bool{}
			for _, c := range cells {
				assert.False(t, seen[c], "%s/%d repeats cell %v", pt, o, c)
				seen[c] = true
			}

			// every cell must touch another one edge-on
			for _, c := range cells {
				touching := false
				for _, d := range []Location{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
					if seen[c.Add(d)] {
						touching = true
						break
					}
				}
				assert.True(t, touching, "%s/%d cell %v is detached", pt, o, c)
			}
		}
	}
}

func TestShapes_RotationCycles(t *testing.T) {
	assert.Equal(t, 1, distinctLayouts(Square))
	for _, pt := range []PieceType{I, S, Z} {
		assert.Equal(t, 2, distinctLayouts(pt), "%s", pt)
		assert.Equal(t, ShapeOf(pt, 0), ShapeOf(pt, 2), "%s", pt)
		assert.Equal(t, ShapeOf(pt, 1), ShapeOf(pt, 3), "%s", pt)
	}
	assert.Equal(t, 4, distinctLayouts(T))
}

func TestShapes_ExactOffsets(t *testing.T) {
	// Spot checks against the canonical table; collision logic depends on
	// these coordinates exactly.
	assert.Equal(t, [CellsPerPiece]Location{{0, 0}, {0, 1}, {0, 2}, {1, 1}}, ShapeOf(T, 0))
	assert.Equal(t, [CellsPerPiece]Location{{0, 1}, {1, 1}, {-1, 1}, {0, 2}}, ShapeOf(T, 3))
	assert.Equal(t, [CellsPerPiece]Location{{0, 1}, {1, -1}, {1, 0}, {1, 1}}, ShapeOf(L, 1))
	assert.Equal(t, [CellsPerPiece]Location{{0, -1}, {0, 0}, {0, 1}, {1, 1}}, ShapeOf(J, 1))
	assert.Equal(t, [CellsPerPiece]Location{{0, 0}, {1, 0}, {2, 0}, {3, 0}}, ShapeOf(I, 1))
}

func TestNewPiece(t *testing.T) {
	p := NewPiece(T, 14, 1, 0)
	assert.True(t, p.Falling)
	assert.Equal(t, [CellsPerPiece]Location{{14, 1}, {14, 2}, {14, 3}, {15, 2}}, p.Cells())
	assert.Equal(t, uint8(1), p.NextOrientation())
	assert.Equal(t, [CellsPerPiece]Location{{14, 1}, {14, 2}, {15, 2}, {13, 2}}, p.CellsAt(1))

	p.Orientation = 3
	assert.Equal(t, uint8(0), p.NextOrientation())
}

func TestNewPiece_PanicsOnBadInput(t *testing.T) {
	require.Panics(t, func() { NewPiece(T, 0, 0, 4) })
	require.Panics(t, func() { NewPiece(PieceType(7), 0, 0, 0) })
}

func TestPieceTypeString(t *testing.T) {
	assert.Equal(t, "SQUARE", Square.String())
	assert.Equal(t, "PieceType(9)", PieceType(9).String())
	assert.Equal(t, "ROTATE", IntentRotate.String())
	assert.Equal(t, "Intent(42)", Intent(42).String())
}
