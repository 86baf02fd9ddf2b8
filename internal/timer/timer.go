package timer

import "time"

// Timer is a scheduled task that can be cancelled before it fires
type Timer interface {
	// Stop prevents the task from firing. It returns false if the task
	// already fired or was stopped.
	Stop() bool
}

// Scheduler runs functions after a delay on their own goroutine
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Real schedules tasks on the runtime clock
type Real struct{}

// AfterFunc wraps time.AfterFunc
func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
