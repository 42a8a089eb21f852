package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brensch/tetris/game"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), "line %q", line)
		out = append(out, m)
	}
	return out
}

func TestLineJSONHandler_OneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewLineJSONHandler(&buf, nil))

	log.Info("piece landed", "piece", "T", "row", 30)
	log.Debug("filtered out")
	log.Warn("odd", "err", errors.New("boom"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "piece landed", lines[0]["msg"])
	assert.Equal(t, "T", lines[0]["piece"])
	assert.Equal(t, float64(30), lines[0]["row"])
	assert.NotEmpty(t, lines[0]["time"])

	assert.Equal(t, "boom", lines[1]["err"])
}

func TestLineJSONHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewLineJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.WithGroup("tick").With("session", "abc").Debug("gravity", "row", 3, slog.Group("piece", "type", "I"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	tick, ok := lines[0]["tick"].(map[string]any)
	require.True(t, ok, "tick group missing: %v", lines[0])
	assert.Equal(t, float64(3), tick["row"])
	assert.Equal(t, map[string]any{"type": "I"}, tick["piece"])
	assert.Equal(t, "abc", tick["session"])
}

func TestLineJSONHandler_AttrsBeforeGroupStayAtRoot(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewLineJSONHandler(&buf, nil))

	base := log.With("session", "abc")
	base.WithGroup("tick").Info("landed", "rows", 2)
	base.Info("plain")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "abc", lines[0]["session"])
	assert.Equal(t, map[string]any{"rows": float64(2)}, lines[0]["tick"])
	assert.Equal(t, "abc", lines[1]["session"])
	assert.NotContains(t, lines[1], "tick", "groups must not leak into the parent logger")
}

func TestLineJSONHandler_RendersPieces(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewLineJSONHandler(&buf, nil))

	p := game.NewPiece(game.T, 29, 7, 1)
	p.Falling = false
	log.Info("piece landed", "piece", p, "cell", game.Location{Row: 31, Col: 0})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, map[string]any{
		"type":        "T",
		"at":          map[string]any{"row": float64(29), "col": float64(7)},
		"orientation": float64(1),
		"falling":     false,
	}, lines[0]["piece"])
	assert.Equal(t, map[string]any{"row": float64(31), "col": float64(0)}, lines[0]["cell"])
	assert.Contains(t, buf.String(), `"piece":{"at":{"col":7,"row":29},"falling":false,"orientation":1,"type":"T"}`)
}

func TestLineJSONHandler_Source(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewLineJSONHandler(&buf, &slog.HandlerOptions{AddSource: true})).Info("with source")
	slog.New(NewLineJSONHandler(&buf, nil)).Info("without source")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	src, ok := lines[0]["source"].(string)
	require.True(t, ok, "source missing: %v", lines[0])
	assert.True(t, strings.HasPrefix(src, "handler_test.go:"), "source %q", src)
	assert.NotContains(t, lines[1], "source")
}

func TestOpenSessionLog_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.log")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

	log, closer, err := OpenSessionLog(path, &slog.HandlerOptions{Level: slog.LevelInfo})
	require.NoError(t, err)
	log.Info("game created")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "stale")
	assert.Contains(t, string(b), `"msg":"game created"`)

	_, _, err = OpenSessionLog(filepath.Join(t.TempDir(), "missing", "game.log"), nil)
	assert.Error(t, err)
}
