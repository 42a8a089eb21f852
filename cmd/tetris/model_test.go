package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brensch/tetris/engine"
	"github.com/brensch/tetris/game"
	"github.com/brensch/tetris/store"
)

func testModel(t *testing.T, savePath string) model {
	t.Helper()
	cfg := engine.DefaultConfig
	cfg.Seed = 1
	eng, err := engine.New(engine.WithConfig(cfg))
	require.NoError(t, err)
	return newModel(eng, store.NewRecorder("test"), slog.New(slog.DiscardHandler), 25*time.Millisecond, savePath)
}

func press(m model, key string) model {
	var msg tea.KeyMsg
	switch key {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(model)
}

func tick(m model) model {
	next, _ := m.Update(tickMsg(time.Now()))
	return next.(model)
}

func TestIntentForKey(t *testing.T) {
	cases := map[string]game.Intent{
		"up":     game.IntentRotate,
		"down":   game.IntentDown,
		"left":   game.IntentLeft,
		"right":  game.IntentRight,
		" ":      game.IntentPause,
		"q":      game.IntentQuit,
		"ctrl+c": game.IntentQuit,
	}
	for key, want := range cases {
		got, ok := intentForKey(key)
		assert.True(t, ok, "%q", key)
		assert.Equal(t, want, got, "%q", key)
	}
	_, ok := intentForKey("x")
	assert.False(t, ok)
}

func TestModel_OneIntentPerTick(t *testing.T) {
	m := testModel(t, "")
	col := m.eng.ActivePiece().Loc.Col

	m = press(m, "left")
	m = press(m, "right")
	assert.Equal(t, col, m.eng.ActivePiece().Loc.Col, "keys only queue until the next tick")

	m = tick(m)
	assert.Equal(t, col+1, m.eng.ActivePiece().Loc.Col, "latest key wins")
	assert.Equal(t, game.IntentNone, m.pending)

	m = tick(m)
	assert.Equal(t, col+1, m.eng.ActivePiece().Loc.Col)
}

func TestModel_PauseStopsTicking(t *testing.T) {
	m := testModel(t, "")
	col := m.eng.ActivePiece().Loc.Col

	m = press(m, " ")
	require.True(t, m.paused)
	m = press(m, "left")
	m = tick(m)
	assert.Equal(t, col, m.eng.ActivePiece().Loc.Col)
	assert.Contains(t, m.View(), "PAUSED")

	m = press(m, " ")
	m = press(m, "left")
	m = tick(m)
	assert.Equal(t, col-1, m.eng.ActivePiece().Loc.Col)
}

func TestModel_QuitAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gamestate.ini")
	m := testModel(t, path)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m = press(m, "s")
	assert.True(t, strings.HasPrefix(m.status, "game state saved"), m.status)

	s, err := store.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.eng.ActivePiece(), s.ActivePiece)
}
