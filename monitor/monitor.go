// Package monitor implements the supervisor's three detached background
// killers: wall-clock, resident-memory and thread-count. Each runs as a
// goroutine — the idiomatic stand-in for the original runtime's detached
// pthreads — polling a ceiling the kernel does not enforce precisely and
// sending a signal when it is breached. Monitors never reap the child and
// never touch the supervisor's result record.
package monitor

import (
	"context"
	"time"

	"golang.org/x/sys/unix"

	"sandbox-go/logging"
)

// Handle is the heap-allocated state a monitor goroutine owns for its own
// lifetime; nothing outside the goroutine that created it dereferences it
// after spawn.
type Handle struct {
	PID   int
	Limit int
}

// alive reports whether pid is still a live process, the same
// kill(pid, 0) == ESRCH check every monitor uses to decide when to stop
// polling.
func alive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}

// signal delivers sig to pid, logging any failure other than ESRCH (the
// child already exited) through the context's scoped logger — tagged with
// the monitor's operation name and pid, as attached by the supervisor
// before spawning the monitor goroutines.
func signal(ctx context.Context, pid int, sig unix.Signal, monitorName string) {
	if err := unix.Kill(pid, sig); err != nil && err != unix.ESRCH {
		logger := logging.WithPID(logging.WithOperation(logging.FromContext(ctx), monitorName), pid)
		logger.Warn("monitor signal delivery failed", "signal", sig, "error", err)
	}
}

// pageSizeKiB caches the host page size in KiB for the memory monitor's
// statm-to-KiB conversion.
var pageSizeKiB = unix.Getpagesize() / 1024

const pollInterval = time.Microsecond
