package engine

import "time"

// Clock supplies wall-clock samples for gravity timing.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
