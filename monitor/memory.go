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

// Memory spawns a goroutine that polls /proc/<pid>/statm and delivers
// SIGSEGV once resident memory exceeds maxMemoryKiB, so the verdict
// classifier's rule 6 can map it to MEMORY_LIMIT_EXCEEDED. It exits once
// statm can no longer be opened and the pid is gone, or when ctx is
// cancelled.
func Memory(ctx context.Context, pid, maxMemoryKiB int) {
	go func() {
		h := &Handle{PID: pid, Limit: maxMemoryKiB}
		path := fmt.Sprintf("/proc/%d/statm", h.PID)
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rssKiB, ok := readResidentKiB(path)
				if !ok {
					if !alive(h.PID) {
						return
					}
					continue
				}
				if rssKiB > h.Limit {
					signal(ctx, h.PID, unix.SIGSEGV, "memory")
					return
				}
			}
		}
	}()
}

// readResidentKiB reads the resident-page count (statm field index 1)
// and converts it to KiB using the host page size.
func readResidentKiB(path string) (int, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return 0, false
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) < 2 {
		return 0, false
	}
	pages, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, false
	}
	return pages * pageSizeKiB, true
}
