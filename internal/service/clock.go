package service

import "time"

// Clock is the time source for same-day checks, sweeper cutoffs and
// timestamps. Injectable so tests can pin it.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// NewClock returns a Clock backed by the system time
func NewClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}
