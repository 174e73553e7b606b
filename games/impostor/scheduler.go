/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import "time"

// Scheduler runs fn once after d has elapsed. Implementations must not run
// fn on the caller's goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

// TimerScheduler schedules with the runtime's timers.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}
