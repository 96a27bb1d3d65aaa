package monitor

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestAlive_CurrentProcess(t *testing.T) {
	if !alive(os.Getpid()) {
		t.Error("alive(self) = false, want true")
	}
}

func TestAlive_DeadPID(t *testing.T) {
	cmd := exec.Command("/bin/true")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start /bin/true: %v", err)
	}
	pid := cmd.Process.Pid
	cmd.Wait()
	if alive(pid) {
		t.Error("alive(reaped pid) = true, want false")
	}
}

func TestReadResidentKiB_ParsesStatmFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statm")
	if err := os.WriteFile(path, []byte("1000 250 100 1 0 200 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	kib, ok := readResidentKiB(path)
	if !ok {
		t.Fatal("readResidentKiB() ok = false")
	}
	want := 250 * pageSizeKiB
	if kib != want {
		t.Errorf("readResidentKiB() = %d, want %d", kib, want)
	}
}

func TestReadResidentKiB_MissingFile(t *testing.T) {
	if _, ok := readResidentKiB("/nonexistent/statm"); ok {
		t.Error("readResidentKiB() ok = true for missing file")
	}
}

func TestReadThreadCount_ParsesStatusFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "status")
	content := "Name:\ttest\nState:\tR\nThreads:\t4\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	n, ok := readThreadCount(path)
	if !ok {
		t.Fatal("readThreadCount() ok = false")
	}
	if n != 4 {
		t.Errorf("readThreadCount() = %d, want 4", n)
	}
}

func TestReadThreadCount_MissingLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "status")
	if err := os.WriteFile(path, []byte("Name:\ttest\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok := readThreadCount(path); ok {
		t.Error("readThreadCount() ok = true with no Threads: line")
	}
}

func TestWallClock_FiresSigstopAfterBudget(t *testing.T) {
	cmd := exec.Command("/bin/sleep", "5")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start sleep: %v", err)
	}
	pid := cmd.Process.Pid
	defer cmd.Process.Kill()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	WallClock(ctx, pid, 50)

	// A stopped (not terminated) child is only observable via WUNTRACED,
	// which os.Process.Wait does not request — use wait4 directly, the
	// same call the supervisor's reap step makes.
	var ws unix.WaitStatus
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_, err := unix.Wait4(pid, &ws, unix.WUNTRACED, nil)
		if err != nil {
			t.Fatalf("wait4: %v", err)
		}
		if ws.Stopped() {
			return
		}
	}
	t.Errorf("wait status = %v, want stopped (SIGSTOP)", ws)
}

func TestMemory_FiresSigsegvOverLimit(t *testing.T) {
	cmd := exec.Command("/bin/sleep", "5")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start sleep: %v", err)
	}
	defer cmd.Process.Kill()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Any running process has some resident memory, so a zero-KiB
	// ceiling is guaranteed to trip on the very first poll.
	Memory(ctx, cmd.Process.Pid, 0)

	done := make(chan *os.ProcessState, 1)
	go func() {
		state, _ := cmd.Process.Wait()
		done <- state
	}()

	select {
	case state := <-done:
		ws, ok := state.Sys().(syscall.WaitStatus)
		if !ok {
			t.Skip("WaitStatus not available on this platform")
		}
		if ws.Signal() != unix.SIGSEGV {
			t.Errorf("signal = %v, want SIGSEGV", ws.Signal())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for memory monitor to fire")
	}
}
