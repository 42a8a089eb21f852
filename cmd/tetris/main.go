package main

import (
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/tetris/engine"
	"github.com/brensch/tetris/internal/envflag"
	"github.com/brensch/tetris/logging"
	"github.com/brensch/tetris/store"
)

func main() {
	env := envflag.New(flag.CommandLine, os.LookupEnv)
	tick := env.Duration("tick", "TETRIS_TICK", 25*time.Millisecond, "Driver poll interval; gravity runs on its own timer")
	savePath := env.String("save", "TETRIS_SAVE", "gamestate.ini", "Save file written by the s key")
	restore := env.Bool("restore", "TETRIS_RESTORE", false, "Load the save file before starting")
	logPath := env.String("log", "TETRIS_LOG", "game.log", "Session log file (line JSON); empty disables")
	debug := env.Bool("debug", "TETRIS_DEBUG", false, "Log per-tick detail with source locations")
	archiveDir := env.String("archive-dir", "TETRIS_ARCHIVE_DIR", "", "Directory for per-session landing parquet files; empty disables")
	seed := env.Int("seed", "TETRIS_SEED", 0, "Piece randomizer seed (0 = time)")
	randomizer := env.String("randomizer", "TETRIS_RANDOMIZER", string(engine.RandomizerUniform), "Piece randomizer: uniform or bag")
	if err := env.Parse(os.Args[1:]); err != nil {
		log.Fatalf("Bad configuration: %v", err)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.DiscardHandler)
	var logCloser io.Closer
	if *logPath != "" {
		l, c, err := logging.OpenSessionLog(*logPath, &slog.HandlerOptions{Level: level, AddSource: *debug})
		if err != nil {
			log.Fatalf("Failed to open session log: %v", err)
		}
		logger, logCloser = l, c
	}

	rec := store.NewRecorder("")
	logger = logger.With("session", rec.SessionID())

	cfg := engine.DefaultConfig
	cfg.Seed = int64(*seed)
	cfg.Randomizer = engine.Randomizer(*randomizer)
	eng, err := engine.New(engine.WithConfig(cfg), engine.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create game: %v", err)
	}

	if *restore {
		s, err := store.LoadFile(*savePath)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", *savePath, err)
		}
		if err := eng.Restore(s); err != nil {
			log.Fatalf("Failed to restore %s: %v", *savePath, err)
		}
	}

	p := tea.NewProgram(newModel(eng, rec, logger, *tick, *savePath), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Printf("Program error: %v", err)
	}
	_ = eng.Close()

	if *archiveDir != "" {
		archive(*archiveDir, rec, eng.Score())
	}
	if logCloser != nil {
		_ = logCloser.Close()
	}

	log.Printf("Final score %d, level %d (session %s)", eng.Score(), eng.Level(), rec.SessionID())
}

// archive writes the session's landings and notes the session in the log.
func archive(dir string, rec *store.Recorder, score uint32) {
	path, err := rec.Flush(dir)
	if err != nil {
		log.Printf("Failed to write session archive: %v", err)
		return
	}
	if path == "" {
		return
	}

	sessions, err := store.OpenSessionLog(filepath.Join(dir, "sessions.log"))
	if err != nil {
		log.Printf("Failed to open session log: %v", err)
		return
	}
	defer sessions.Close()
	if err := sessions.Add(rec.SessionID(), score); err != nil {
		log.Printf("Failed to record session: %v", err)
		return
	}
	if id, best, ok := sessions.Best(); ok {
		log.Printf("Archived %s (%d sessions, best %d by %s)", path, sessions.Count(), best, id)
	}
}
