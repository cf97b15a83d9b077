package core

import "time"

// Clock is the millisecond time source used for task timestamps.
// The default implementation reads the system clock; tests can substitute
// a fake to make duration assertions deterministic.
type Clock interface {
	// NowMillis returns the current time in milliseconds.
	NowMillis() int64
}

type systemClock struct{}

func (systemClock) NowMillis() int64 {
	return time.Now().UnixMilli()
}

// SystemClock returns the process clock.
func SystemClock() Clock {
	return systemClock{}
}
