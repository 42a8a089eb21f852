package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brensch/tetris/engine"
	"github.com/brensch/tetris/game"
)

func TestRecorder_RecordsLandingsOnly(t *testing.T) {
	r := NewRecorder("")
	_, err := uuid.Parse(r.SessionID())
	require.NoError(t, err)

	s := game.NewState(800_000)
	assert.False(t, r.Record(engine.TickResult{Gravity: true}, s))
	assert.False(t, r.Record(engine.TickResult{Landed: true}, nil))

	s.Score = 300
	s.LinesSinceLevel = 2
	s.Board.HighestOccupiedRow = 29
	res := engine.TickResult{
		At:          game.Timestamp{Sec: 10, Usec: 250},
		Landed:      true,
		LandedPiece: game.NewPiece(game.Square, 30, 0, 0),
		RowsCleared: 2,
		Spawned:     true,
	}
	require.True(t, r.Record(res, s))

	require.Equal(t, 1, r.Len())
	assert.Equal(t, LandingRow{
		SessionID:          r.SessionID(),
		Seq:                0,
		Piece:              "SQUARE",
		Row:                30,
		Col:                0,
		Orientation:        0,
		RowsCleared:        2,
		Score:              300,
		Level:              1,
		LinesSinceLevel:    2,
		HighestOccupiedRow: 29,
		AtUsec:             10_000_250,
	}, r.Rows()[0])
}

func TestWriteSessionParquet_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	r := NewRecorder("sess-1")
	s := game.NewState(800_000)
	for i, pt := range []game.PieceType{game.T, game.I, game.S} {
		s.Score += 100
		r.Record(engine.TickResult{
			At:          game.Timestamp{Sec: int64(i)},
			Landed:      true,
			LandedPiece: game.NewPiece(pt, int16(20+i), 4, uint8(i)),
			RowsCleared: i % 2,
			GameOver:    i == 2,
		}, s)
	}

	path, err := r.Flush(dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "session_sess-1_"))
	assert.Equal(t, ".parquet", filepath.Ext(path))

	tmpEntries, err := os.ReadDir(filepath.Join(dir, "tmp"))
	require.NoError(t, err)
	assert.Empty(t, tmpEntries)

	rows, err := ReadSessionParquet(path)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(r.Rows(), rows))
	assert.Equal(t, []int32{0, 1, 2}, []int32{rows[0].Seq, rows[1].Seq, rows[2].Seq})
	assert.True(t, rows[2].GameOver)
}

func TestWriteSessionParquet_NoRows(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteSessionParquet(dir, "empty", nil)
	require.NoError(t, err)
	assert.Empty(t, path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = WriteSessionParquet("", "x", []LandingRow{{}})
	assert.Error(t, err)
}
