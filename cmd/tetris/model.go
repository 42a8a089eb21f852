package main

import (
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/tetris/engine"
	"github.com/brensch/tetris/game"
	"github.com/brensch/tetris/store"
)

type tickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// intentForKey maps a key press to a player intent. ok is false for keys the
// game ignores.
func intentForKey(key string) (intent game.Intent, ok bool) {
	switch key {
	case "up":
		return game.IntentRotate, true
	case "down":
		return game.IntentDown, true
	case "left":
		return game.IntentLeft, true
	case "right":
		return game.IntentRight, true
	case " ":
		return game.IntentPause, true
	case "q", "ctrl+c":
		return game.IntentQuit, true
	}
	return game.IntentNone, false
}

type model struct {
	eng      *engine.Engine
	rec      *store.Recorder
	log      *slog.Logger
	tick     time.Duration
	savePath string

	// pending is the latest movement key since the last tick; only one
	// intent is consumed per tick.
	pending game.Intent
	paused  bool
	status  string
}

func newModel(eng *engine.Engine, rec *store.Recorder, logger *slog.Logger, tick time.Duration, savePath string) model {
	return model{
		eng:      eng,
		rec:      rec,
		log:      logger,
		tick:     tick,
		savePath: savePath,
	}
}

func (m model) Init() tea.Cmd {
	return tickCmd(m.tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "s" {
			m.status = m.save()
			return m, nil
		}
		intent, ok := intentForKey(msg.String())
		if !ok {
			return m, nil
		}
		switch intent {
		case game.IntentQuit:
			return m, tea.Quit
		case game.IntentPause:
			if !m.eng.GameOver() {
				m.paused = !m.paused
				m.pending = game.IntentNone
				m.log.Info("pause toggled", "paused", m.paused)
			}
		default:
			if !m.paused {
				m.pending = intent
			}
		}
		return m, nil

	case tickMsg:
		if m.paused || m.eng.GameOver() {
			return m, tickCmd(m.tick)
		}
		res := m.eng.Tick(m.pending)
		m.pending = game.IntentNone
		if res.Landed {
			m.rec.Record(res, m.eng.State())
		}
		return m, tickCmd(m.tick)
	}
	return m, nil
}

func (m model) save() string {
	if m.savePath == "" {
		return "no save path configured"
	}
	if err := store.SaveFile(m.savePath, m.eng.State()); err != nil {
		m.log.Error("save failed", "path", m.savePath, "err", err)
		return fmt.Sprintf("save failed: %v", err)
	}
	m.log.Info("game state saved", "path", m.savePath)
	return "game state saved to " + m.savePath
}
