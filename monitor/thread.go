package monitor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// Thread spawns a goroutine that polls /proc/<pid>/status for its
// Threads: line and delivers SIGKILL once the count exceeds limit. Same
// termination rule as Memory: exits when status is unreadable and the
// pid is gone, or when ctx is cancelled.
func Thread(ctx context.Context, pid, limit int) {
	go func() {
		h := &Handle{PID: pid, Limit: limit}
		path := fmt.Sprintf("/proc/%d/status", h.PID)
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				count, ok := readThreadCount(path)
				if !ok {
					if !alive(h.PID) {
						return
					}
					continue
				}
				if count > h.Limit {
					signal(ctx, h.PID, unix.SIGKILL, "thread")
					return
				}
			}
		}
	}()
}

func readThreadCount(path string) (int, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "Threads:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, false
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
