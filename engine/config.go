package engine

import (
	"fmt"

	"github.com/brensch/tetris/game"
	"github.com/brensch/tetris/rules"
)

// Randomizer names a piece selection strategy.
type Randomizer string

const (
	// RandomizerUniform draws each piece independently.
	RandomizerUniform Randomizer = "uniform"
	// RandomizerBag deals all seven pieces in a shuffled order before repeating.
	RandomizerBag Randomizer = "bag"
)

// Config holds the tunables of one session. Gravity values are microseconds.
//
// Seed 0 means "seed from the clock".
type Config struct {
	GravityIntervalUsec uint32
	GravityStepUsec     uint32
	GravityFloorUsec    uint32

	SpawnRow int16
	SpawnCol int16

	Randomizer Randomizer
	Seed       int64
}

var DefaultConfig = Config{
	GravityIntervalUsec: 800_000,
	GravityStepUsec:     rules.DefaultSpeedCurve.StepUsec,
	GravityFloorUsec:    rules.DefaultSpeedCurve.FloorUsec,
	SpawnRow:            1,
	SpawnCol:            game.Cols / 2,
	Randomizer:          RandomizerUniform,
}

// Validate reports the first inconsistent value in c.
func (c Config) Validate() error {
	if c.GravityIntervalUsec == 0 {
		return fmt.Errorf("gravity interval must be positive")
	}
	if c.GravityFloorUsec == 0 {
		return fmt.Errorf("gravity floor must be positive")
	}
	if c.GravityFloorUsec > c.GravityIntervalUsec {
		return fmt.Errorf("gravity floor %dus above initial interval %dus", c.GravityFloorUsec, c.GravityIntervalUsec)
	}
	empty := game.NewBoard()
	for t := game.PieceType(0); t < game.NumPieceTypes; t++ {
		if !rules.CanPlace(&empty, game.NewPiece(t, c.SpawnRow, c.SpawnCol, 0)) {
			return fmt.Errorf("spawn anchor (%d,%d) does not fit %s on a %dx%d board", c.SpawnRow, c.SpawnCol, t, game.Rows, game.Cols)
		}
	}
	switch c.Randomizer {
	case RandomizerUniform, RandomizerBag:
	default:
		return fmt.Errorf("unknown randomizer %q", c.Randomizer)
	}
	return nil
}

// SpeedCurve is the level-up schedule described by c.
func (c Config) SpeedCurve() rules.SpeedCurve {
	return rules.SpeedCurve{StepUsec: c.GravityStepUsec, FloorUsec: c.GravityFloorUsec}
}
