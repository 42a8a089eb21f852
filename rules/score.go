package rules

import "github.com/brensch/tetris/game"

// PointsPerLines is the base award for clearing N rows with one piece,
// multiplied by the current level.
var PointsPerLines = [MaxClearRows + 1]uint32{0, 100, 300, 500, 800}

// LinesPerLevel is how many cleared rows advance the level by one.
const LinesPerLevel = 10

// SpeedCurve controls how the gravity interval shrinks on level-up.
type SpeedCurve struct {
	StepUsec  uint32
	FloorUsec uint32
}

// DefaultSpeedCurve removes 100ms per level down to a 200ms floor.
var DefaultSpeedCurve = SpeedCurve{StepUsec: 100_000, FloorUsec: 200_000}

// Next returns the interval that follows current after one level-up.
func (c SpeedCurve) Next(current uint32) uint32 {
	if current <= c.FloorUsec {
		return current
	}
	if current-c.FloorUsec < c.StepUsec {
		return c.FloorUsec
	}
	return current - c.StepUsec
}

// UpdateScore applies the award for lines rows cleared in one landing and
// reports whether the level advanced. The board is not touched.
func UpdateScore(s *game.State, lines int, curve SpeedCurve) bool {
	if lines <= 0 {
		return false
	}
	lines = min(lines, MaxClearRows)
	s.Score += s.Level * PointsPerLines[lines]

	total := int(s.LinesSinceLevel) + lines
	if total < LinesPerLevel {
		s.LinesSinceLevel = uint8(total)
		return false
	}
	s.Level++
	s.LinesSinceLevel = uint8(total % LinesPerLevel)
	s.GravityIntervalUsec = curve.Next(s.GravityIntervalUsec)
	return true
}
