// Package game defines the core state types for the Tetris engine.
//
// These types carry no behavior beyond construction, copying and validation;
// move legality, row clearing and scoring live in the rules package, and the
// tick state machine in engine. Boards are stored inline so a State copies by
// value, which keeps Clone cheap for save/restore and tests.
package game

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidState is returned when a State holds values the engine cannot run.
var ErrInvalidState = errors.New("invalid game state")

// UsecPerSecond is the rollover period of Timestamp.Usec.
const UsecPerSecond = 1_000_000

// Timestamp is a wall-clock sample split into seconds and microseconds,
// the representation gravity timing is computed from.
type Timestamp struct {
	Sec  int64
	Usec int64
}

// TimestampOf converts a time.Time into a Timestamp.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Sec: t.Unix(), Usec: int64(t.Nanosecond() / 1000)}
}

// Intent is the player input handed to one engine tick.
type Intent uint8

const (
	IntentNone Intent = iota
	IntentRotate
	IntentDown
	IntentLeft
	IntentRight
	IntentPause
	IntentQuit
)

var intentNames = [...]string{"NONE", "ROTATE", "DOWN", "LEFT", "RIGHT", "PAUSE", "QUIT"}

func (i Intent) String() string {
	if int(i) < len(intentNames) {
		return intentNames[i]
	}
	return fmt.Sprintf("Intent(%d)", uint8(i))
}

// State is everything one game session owns.
type State struct {
	// Board is the stack of settled cells.
	Board Board
	// ActiveBoard is Board with the active piece overlaid. It is derived and
	// recomputed for rendering; nothing reads it back as a source of truth.
	ActiveBoard Board

	ActivePiece Piece
	GameOver    bool

	Score uint32
	Level uint32

	GravityIntervalUsec uint32
	LastGravityTick     Timestamp

	// LinesSinceLevel counts cleared rows since the last level-up.
	LinesSinceLevel uint8
}

// NewState returns a level 1 state with empty boards and no active piece.
func NewState(gravityIntervalUsec uint32) *State {
	return &State{
		Board:               NewBoard(),
		ActiveBoard:         NewBoard(),
		Level:               1,
		GravityIntervalUsec: gravityIntervalUsec,
	}
}

// Clone returns an independent copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}

// Validate checks that every field is within the range the engine expects.
// Errors wrap ErrInvalidState.
func (s *State) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil state", ErrInvalidState)
	}
	if s.Level < 1 {
		return fmt.Errorf("%w: level %d", ErrInvalidState, s.Level)
	}
	if s.GravityIntervalUsec == 0 {
		return fmt.Errorf("%w: zero gravity interval", ErrInvalidState)
	}
	if s.LinesSinceLevel >= 10 {
		return fmt.Errorf("%w: %d lines since last level", ErrInvalidState, s.LinesSinceLevel)
	}
	if s.LastGravityTick.Usec < 0 || s.LastGravityTick.Usec >= UsecPerSecond {
		return fmt.Errorf("%w: gravity tick usec %d", ErrInvalidState, s.LastGravityTick.Usec)
	}
	if !s.ActivePiece.Type.Valid() {
		return fmt.Errorf("%w: piece type %d", ErrInvalidState, s.ActivePiece.Type)
	}
	if s.ActivePiece.Orientation >= NumOrientations {
		return fmt.Errorf("%w: orientation %d", ErrInvalidState, s.ActivePiece.Orientation)
	}
	if err := validateBoard("board", &s.Board); err != nil {
		return err
	}
	return validateBoard("active_board", &s.ActiveBoard)
}

func validateBoard(name string, b *Board) error {
	if b.HighestOccupiedRow < 0 || b.HighestOccupiedRow >= Rows {
		return fmt.Errorf("%w: %s highest occupied row %d", ErrInvalidState, name, b.HighestOccupiedRow)
	}
	for r := range b.Cells {
		for c, cell := range b.Cells[r] {
			if cell != Empty && (cell < 0 || cell >= NumPieceTypes) {
				return fmt.Errorf("%w: %s cell (%d,%d) = %d", ErrInvalidState, name, r, c, cell)
			}
		}
	}
	return nil
}
