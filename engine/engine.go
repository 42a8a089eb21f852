// Package engine runs one Tetris session: it owns the game state and advances
// it one polling tick at a time.
//
// The engine never blocks and never starts goroutines. A driver calls Tick at
// a short fixed interval with the latest player intent; gravity is
// time-gated against the injected Clock, so the driver's poll rate and the
// fall speed are independent.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/brensch/tetris/game"
	"github.com/brensch/tetris/rules"
)

// TickResult reports what one Tick changed.
type TickResult struct {
	At game.Timestamp

	// Gravity is set when the timer fired and moved the piece down.
	Gravity bool
	// Landed is set when the active piece was merged into the stack.
	// LandedPiece is the piece as it was merged.
	Landed      bool
	LandedPiece game.Piece
	RowsCleared int
	LeveledUp   bool
	Spawned     bool
	// Applied is set when the intent changed the active piece.
	Applied  bool
	GameOver bool
}

type Option func(*Engine)

func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithLogger sets the diagnostics logger. nil discards.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithPieceSource overrides the source built from Config.Randomizer.
func WithPieceSource(p PieceSource) Option {
	return func(e *Engine) { e.pieces = p }
}

type Engine struct {
	cfg    Config
	curve  rules.SpeedCurve
	log    *slog.Logger
	clock  Clock
	pieces PieceSource

	state  *game.State
	closed bool
}

// New builds an engine with an empty board and the first piece spawned.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{cfg: DefaultConfig}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	if e.pieces == nil {
		src, err := NewPieceSource(e.cfg)
		if err != nil {
			return nil, err
		}
		e.pieces = src
	}
	e.curve = e.cfg.SpeedCurve()

	e.state = game.NewState(e.cfg.GravityIntervalUsec)
	now := game.TimestampOf(e.clock.Now())
	e.spawn(now)
	rules.RenderActiveBoard(e.state)

	e.log.Info("game created",
		"rows", game.Rows,
		"cols", game.Cols,
		"gravity_usec", e.cfg.GravityIntervalUsec,
		"randomizer", e.cfg.Randomizer,
	)
	return e, nil
}

// Tick advances the session by one poll: gravity, landing, then the intent.
// It panics on an intent outside the known set. Once the game is over, or
// after Close, Tick changes nothing.
func (e *Engine) Tick(intent game.Intent) TickResult {
	if intent > game.IntentQuit {
		panic(fmt.Sprintf("engine: Tick with unknown intent %d", uint8(intent)))
	}
	if e.closed {
		return TickResult{}
	}
	s := e.state
	now := game.TimestampOf(e.clock.Now())
	res := TickResult{At: now}
	if s.GameOver {
		res.GameOver = true
		return res
	}

	if rules.GravityDue(s, now) {
		if rules.CheckValidMove(s, game.IntentDown) {
			s.ActivePiece.Loc.Row++
			s.LastGravityTick = now
			res.Gravity = true
			e.log.Debug("gravity", "at", s.ActivePiece.Loc)
		} else {
			s.ActivePiece.Falling = false
		}
	}

	if !s.ActivePiece.Falling {
		e.land(now, &res)
	}

	if !s.GameOver {
		res.Applied = e.apply(intent)
	}
	res.GameOver = s.GameOver

	rules.RenderActiveBoard(s)
	return res
}

// land merges the stopped piece, clears rows, scores and spawns the next one.
func (e *Engine) land(now game.Timestamp, res *TickResult) {
	s := e.state
	p := s.ActivePiece
	cells := rules.MergePiece(&s.Board, p)
	res.Landed = true
	res.LandedPiece = p

	n := rules.CheckAndClearRows(&s.Board, cells)
	res.RowsCleared = n
	res.LeveledUp = rules.UpdateScore(s, n, e.curve)

	e.log.Info("piece landed",
		"piece", p,
		"cells", cells[:],
		"highest_occupied_row", s.Board.HighestOccupiedRow,
	)
	if n > 0 {
		e.log.Info("rows cleared", "rows", n, "score", s.Score, "level", s.Level, "lines_since_level", s.LinesSinceLevel)
	}
	if res.LeveledUp {
		e.log.Info("level up", "level", s.Level, "gravity_usec", s.GravityIntervalUsec)
	}

	e.spawn(now)
	res.Spawned = true
}

// spawn places a fresh piece at the spawn anchor and restarts the gravity
// timer. If the anchor cells are taken the game is over; the blocked piece
// stays active so renderers can show the collision.
func (e *Engine) spawn(now game.Timestamp) {
	s := e.state
	p := game.NewPiece(e.pieces.Next(), e.cfg.SpawnRow, e.cfg.SpawnCol, 0)
	s.ActivePiece = p
	s.LastGravityTick = now
	if !rules.CanPlace(&s.Board, p) {
		s.GameOver = true
		e.log.Info("game over", "score", s.Score, "level", s.Level, "piece", p)
		return
	}
	e.log.Debug("spawned", "piece", p)
}

func (e *Engine) apply(intent game.Intent) bool {
	s := e.state
	switch intent {
	case game.IntentRotate:
		if !rules.CheckValidRotate(&s.Board, s.ActivePiece) {
			e.log.Debug("rotate rejected", "piece", s.ActivePiece)
			return false
		}
		s.ActivePiece.Orientation = s.ActivePiece.NextOrientation()
		return true
	case game.IntentDown, game.IntentLeft, game.IntentRight:
		if !rules.CheckValidMove(s, intent) {
			e.log.Debug("move rejected", "intent", intent.String(), "piece", s.ActivePiece)
			return false
		}
		switch intent {
		case game.IntentDown:
			s.ActivePiece.Loc.Row++
		case game.IntentLeft:
			s.ActivePiece.Loc.Col--
		case game.IntentRight:
			s.ActivePiece.Loc.Col++
		}
		return true
	}
	// None, Pause and Quit belong to the driver.
	return false
}

// State returns a copy of the current game state.
func (e *Engine) State() *game.State { return e.state.Clone() }

// Snapshot returns the composite board: the stack with the active piece drawn in.
func (e *Engine) Snapshot() game.Board { return e.state.ActiveBoard }

func (e *Engine) Score() uint32          { return e.state.Score }
func (e *Engine) Level() uint32          { return e.state.Level }
func (e *Engine) LinesSinceLevel() uint8 { return e.state.LinesSinceLevel }
func (e *Engine) GameOver() bool         { return e.state.GameOver }
func (e *Engine) ActivePiece() game.Piece {
	return e.state.ActivePiece
}

// Restore replaces the session state with s after validating it. On error
// the current state is left untouched. The engine keeps its own copy of s.
func (e *Engine) Restore(s *game.State) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if !s.GameOver && !rules.CanPlace(&s.Board, s.ActivePiece) {
		return fmt.Errorf("restore: %w: active piece overlaps the stack or leaves the board", game.ErrInvalidState)
	}
	next := s.Clone()
	rules.RenderActiveBoard(next)
	e.state = next
	e.log.Info("state restored", "score", next.Score, "level", next.Level, "game_over", next.GameOver)
	return nil
}

// Close ends the session. Later Ticks are no-ops.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.log.Info("game ended", "score", e.state.Score, "level", e.state.Level, "game_over", e.state.GameOver)
	return nil
}
