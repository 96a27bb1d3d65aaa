package monitor

import (
	"context"
	"time"

	"golang.org/x/sys/unix"
)

// wallClockGraceMS is added to max_cpu_time before sleeping. The child's
// RLIMIT_CPU is set separately by the child initializer to
// (max_cpu_time+1000)/1000 whole seconds, so for most budgets this monitor
// fires before the kernel's CPU limit does.
const wallClockGraceMS = 100

// WallClock spawns a goroutine that delivers SIGSTOP to pid once
// max_cpu_time plus the wall-clock grace period has elapsed, so the
// supervisor's reap observes WIFSTOPPED and classifies the run as
// TIME_LIMIT_EXCEEDED. If ctx is cancelled before the timer fires — the
// goroutine equivalent of the original monitor's nanosleep being
// interrupted — it sends SIGKILL instead.
func WallClock(ctx context.Context, pid, maxCPUTimeMS int) {
	go func() {
		h := &Handle{PID: pid, Limit: maxCPUTimeMS}
		budget := time.Duration(h.Limit+wallClockGraceMS) * time.Millisecond
		timer := time.NewTimer(budget)
		defer timer.Stop()

		select {
		case <-timer.C:
			if alive(h.PID) {
				signal(ctx, h.PID, unix.SIGSTOP, "wallclock")
			}
		case <-ctx.Done():
			signal(ctx, h.PID, unix.SIGKILL, "wallclock")
		}
	}()
}
