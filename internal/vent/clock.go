package vent

import "time"

// Timer is a pending callback.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so the delayed prompts and the warning expiry can be
// driven by tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
