package rules

import "github.com/brensch/tetris/game"

// ElapsedMicros returns the microseconds from before to after. A negative
// intermediate result is treated as a rollover of the microsecond field and
// corrected by one full period; anything still negative reads as zero.
func ElapsedMicros(before, after game.Timestamp) int64 {
	d := (after.Sec-before.Sec)*game.UsecPerSecond + (after.Usec - before.Usec)
	if d < 0 {
		d += game.UsecPerSecond
	}
	return max(d, 0)
}

// GravityDue reports whether the gravity interval has elapsed at now.
func GravityDue(s *game.State, now game.Timestamp) bool {
	return ElapsedMicros(s.LastGravityTick, now) >= int64(s.GravityIntervalUsec)
}
