package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/tetris/engine"
	"github.com/brensch/tetris/game"
)

// ArchiveSchema is stored in the parquet key/value metadata of every session file.
const ArchiveSchema = "tetris_landing_v1"

// LandingRow is one piece settling into the stack, with the session totals
// as they stood after any rows it completed were scored.
type LandingRow struct {
	SessionID string `parquet:"session_id,dict"`
	Seq       int32  `parquet:"seq"`

	Piece       string `parquet:"piece,dict"`
	Row         int32  `parquet:"row"`
	Col         int32  `parquet:"col"`
	Orientation int32  `parquet:"orientation"`

	RowsCleared        int32 `parquet:"rows_cleared"`
	Score              int64 `parquet:"score"`
	Level              int32 `parquet:"level"`
	LinesSinceLevel    int32 `parquet:"lines_since_level"`
	HighestOccupiedRow int32 `parquet:"highest_occupied_row"`

	AtUsec   int64 `parquet:"at_usec"`
	GameOver bool  `parquet:"game_over"`
}

// Recorder collects the landings of one session.
type Recorder struct {
	sessionID string
	rows      []LandingRow
}

// NewRecorder starts a session. An empty id gets a random UUID.
func NewRecorder(sessionID string) *Recorder {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &Recorder{sessionID: sessionID}
}

func (r *Recorder) SessionID() string  { return r.sessionID }
func (r *Recorder) Rows() []LandingRow { return r.rows }
func (r *Recorder) Len() int           { return len(r.rows) }

// Record appends a row if res reports a landing. s is the state after the
// tick. It returns whether a row was added.
func (r *Recorder) Record(res engine.TickResult, s *game.State) bool {
	if !res.Landed || s == nil {
		return false
	}
	p := res.LandedPiece
	r.rows = append(r.rows, LandingRow{
		SessionID:          r.sessionID,
		Seq:                int32(len(r.rows)),
		Piece:              p.Type.String(),
		Row:                int32(p.Loc.Row),
		Col:                int32(p.Loc.Col),
		Orientation:        int32(p.Orientation),
		RowsCleared:        int32(res.RowsCleared),
		Score:              int64(s.Score),
		Level:              int32(s.Level),
		LinesSinceLevel:    int32(s.LinesSinceLevel),
		HighestOccupiedRow: int32(s.Board.HighestOccupiedRow),
		AtUsec:             res.At.Sec*game.UsecPerSecond + res.At.Usec,
		GameOver:           res.GameOver,
	})
	return true
}

// Flush writes the recorded rows to outDir. See WriteSessionParquet.
func (r *Recorder) Flush(outDir string) (string, error) {
	return WriteSessionParquet(outDir, r.sessionID, r.rows)
}

// WriteSessionParquet writes rows to outDir/session_<id>_<ns>.parquet. The
// file is built under outDir/tmp and renamed into place. With no rows
// nothing is written and the returned path is empty.
func WriteSessionParquet(outDir, sessionID string, rows []LandingRow) (string, error) {
	if outDir == "" {
		return "", fmt.Errorf("outDir is required")
	}
	if len(rows) == 0 {
		return "", nil
	}

	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("session_%s_%d.parquet", sessionID, time.Now().UnixNano())
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", ArchiveSchema),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}

// ReadSessionParquet loads every row of a session file.
func ReadSessionParquet(path string) ([]LandingRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	if schema, ok := pf.Lookup("schema"); ok && schema != ArchiveSchema {
		return nil, fmt.Errorf("unexpected schema %q in %s", schema, path)
	}

	reader := parquet.NewGenericReader[LandingRow](pf)
	defer reader.Close()

	out := make([]LandingRow, 0, reader.NumRows())
	buf := make([]LandingRow, 64)
	for {
		n, err := reader.Read(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return out, nil
}
