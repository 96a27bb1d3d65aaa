// Package supervisor implements the sandbox's single synchronous entry
// point: validate configuration, fork the child (realized as a re-exec of
// the running binary with a hidden child-initializer argument), spawn
// monitor goroutines, reap the child with resource usage, and classify
// the outcome into a verdict.
package supervisor

import (
	"context"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sys/unix"

	"sandbox-go/config"
	sberrors "sandbox-go/errors"
	"sandbox-go/ipc"
	"sandbox-go/logging"
	"sandbox-go/monitor"
	"sandbox-go/result"
)

// ChildInitArg is the hidden argument the supervisor re-execs itself
// with; cmd.Execute dispatches this argument to the child initializer
// instead of the normal CLI parse.
const ChildInitArg = "__child_init"

// Run validates cfg, forks the child, spawns monitors, reaps the child
// and returns a classified Result. It is not re-entrant per process: a
// second concurrent call from the same process would race on fds 0/1/2
// inherited by the child.
func Run(ctx context.Context, cfg config.RuntimeConfig) (result.Result, error) {
	logger := logging.WithOperation(logging.FromContext(ctx), "run")

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return result.SystemErrorResult(), err
	}

	if cfg.RequiresPrivilegeChange() && os.Getuid() != 0 {
		logger.Error("uid/gid change requested without root")
		return result.SystemErrorResult(), sberrors.ErrNotRoot
	}

	configPipe, err := ipc.NewSyncPipe()
	if err != nil {
		return result.SystemErrorResult(), sberrors.Wrap(err, sberrors.ErrFork, "create config pipe")
	}
	defer configPipe.Close()

	// The error pipe runs in the opposite direction from configPipe: the
	// child writes a failure reason, the parent reads it. ParentFile (the
	// pipe's write end) is handed to the child process here; ChildFile
	// (the read end) stays with us, for diagnostics only — classification
	// never depends on it.
	errPipe, err := ipc.NewSyncPipe()
	if err != nil {
		return result.SystemErrorResult(), sberrors.Wrap(err, sberrors.ErrFork, "create error pipe")
	}
	defer errPipe.Close()

	if err := ctx.Err(); err != nil {
		return result.SystemErrorResult(), err
	}

	exePath, err := os.Executable()
	if err != nil {
		return result.SystemErrorResult(), sberrors.Wrap(err, sberrors.ErrFork, "resolve self path")
	}

	cmd := exec.Command(exePath, ChildInitArg)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{configPipe.ChildFile(), errPipe.ParentFile()}

	if err := cmd.Start(); err != nil {
		return result.SystemErrorResult(), sberrors.Wrap(err, sberrors.ErrFork, "start child")
	}
	startAt := time.Now()
	pid := cmd.Process.Pid

	// These ends now live only in the child; drop our copies so the
	// parent side of each pipe observes EOF/closed-writer correctly.
	configPipe.CloseChild()
	errPipe.CloseParent()

	logger = logging.WithPID(logger, pid)
	ctx = logging.ContextWithLogger(ctx, logger)

	if err := ipc.SendConfig(configPipe.ParentFile(), cfg); err != nil {
		unix.Kill(pid, unix.SIGKILL)
		reapAndDiscard(pid)
		return result.SystemErrorResult(), sberrors.Wrap(err, sberrors.ErrFork, "send config")
	}
	configPipe.CloseParent()

	monCtx, cancelMonitors := context.WithCancel(ctx)
	defer cancelMonitors()

	if cfg.MaxCPUTime != config.Unset {
		monitor.WallClock(monCtx, pid, cfg.MaxCPUTime)
	}
	if cfg.MaxMemory != config.Unset && !cfg.UseRlimitToLimitMemory {
		monitor.Memory(monCtx, pid, cfg.MaxMemory)
	}
	monitor.Thread(monCtx, pid, cfg.ThreadLimit())

	var ws unix.WaitStatus
	var ru unix.Rusage
	if _, err := unix.Wait4(pid, &ws, unix.WUNTRACED, &ru); err != nil {
		unix.Kill(pid, unix.SIGKILL)
		return result.SystemErrorResult(), sberrors.Wrap(err, sberrors.ErrWait, "wait4")
	}
	endAt := time.Now()

	status := int(ws)
	if ws.Stopped() {
		// The wall-clock monitor parked the child with SIGSTOP; finish it
		// off and reap for real so no zombie remains. Classification
		// still looks at the stopped status captured above, not the
		// final kill's status.
		unix.Kill(pid, unix.SIGKILL)
		var finalWS unix.WaitStatus
		var finalRU unix.Rusage
		unix.Wait4(pid, &finalWS, 0, &finalRU)
		ru = finalRU
	}

	if diag := readChildDiagnostic(errPipe.ChildFile()); diag != "" {
		logger.Debug("child reported setup diagnostic", "detail", diag)
	}

	r := result.Result{
		CPUTime:   cpuTimeMS(ru),
		ClockTime: endAt.Sub(startAt).Milliseconds(),
		MemoryUse: int64(ru.Maxrss),
		Status:    status,
	}
	if ws.Signaled() {
		r.Signal = int(ws.Signal())
	}
	if ws.Exited() {
		r.ExitCode = ws.ExitStatus()
	}
	r.Result = result.Classify(r, cfg)

	logger.Info("run complete", "verdict", r.Result.String(), "cpu_time_ms", r.CPUTime, "clock_time_ms", r.ClockTime, "memory_kib", r.MemoryUse)
	return r, nil
}

func cpuTimeMS(ru unix.Rusage) int64 {
	user := ru.Utime.Sec*1000 + ru.Utime.Usec/1000
	sys := ru.Stime.Sec*1000 + ru.Stime.Usec/1000
	return user + sys
}

// reapAndDiscard blocks for a child whose result is no longer wanted,
// used on the send-config failure path to avoid leaving a zombie.
func reapAndDiscard(pid int) {
	var ws unix.WaitStatus
	unix.Wait4(pid, &ws, 0, nil)
}

// readChildDiagnostic does a short, non-blocking-in-spirit read of the
// error pipe for a human-readable setup failure reason. It never
// influences classification — only the process exit code and signal do.
func readChildDiagnostic(r *os.File) string {
	err := ipc.WaitWithError(r)
	if err == nil {
		return ""
	}
	return err.Error()
}
