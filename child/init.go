// Package child implements the sandboxed child's initializer: the 11
// ordered setup steps that run between fork and execve, adapted from the
// teacher runtime's container-setup path and the original judge's
// child.cpp. Everything here executes inside the forked, not-yet-exec'd
// child process; any failure logs a reason and exits without returning to
// the caller.
package child

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"

	"sandbox-go/config"
	"sandbox-go/errors"
	"sandbox-go/ipc"
	"sandbox-go/logging"
	"sandbox-go/seccomp"
)

// childFailExitCode is the single process exit code used for every setup
// failure (rlimit rejected, redirect open failed, privilege drop failed,
// seccomp install failed, exec failed). The parent distinguishes the
// specific cause only through the logged reason, never the exit code.
const childFailExitCode = 255

// openFiles tracks redirect files the child has opened, so a failure exit
// can close them without ever touching fds 0/1/2 directly.
type openFiles struct {
	in, out, err *os.File
}

func (f *openFiles) closeAll() {
	for _, fp := range []*os.File{f.in, f.out, f.err} {
		if fp != nil {
			fp.Close()
		}
	}
}

// Run executes the 11 ordered initializer steps and, on success, replaces
// the process image via execve. It never returns: every failure path,
// including a failed exec, ends in os.Exit with childFailExitCode.
// errPipe, when non-nil, receives a last-gasp description of the failure
// for the supervisor to log; it never affects the supervisor's verdict,
// which is driven only by the child's exit code and signal. Logging goes
// through a logger scoped to this process's pid and the "child_init"
// operation, carried on ctx so every step's log line is tagged the same
// way without threading a *slog.Logger through every function signature.
func Run(ctx context.Context, cfg config.RuntimeConfig, errPipe *os.File) {
	// The seccomp filter is installed on the calling OS thread only, so the
	// install and the final execve must run on the same thread.
	runtime.LockOSThread()

	logger := logging.WithPID(logging.WithOperation(logging.FromContext(ctx), "child_init"), os.Getpid())
	files := &openFiles{}

	if err := applyRlimits(cfg); err != nil {
		fail(logger, files, errPipe, err)
	}
	if err := redirectStreams(logger, cfg, files); err != nil {
		fail(logger, files, errPipe, err)
	}
	if err := dropPrivileges(cfg); err != nil {
		fail(logger, files, errPipe, err)
	}

	argv := cfg.Argv()
	envp := cfg.Envp()

	pathPtr, err := unix.BytePtrFromString(cfg.ExecPath)
	if err != nil {
		fail(logger, files, errPipe, errors.Wrap(err, errors.ErrExec, "encode exec_path"))
	}

	if cfg.SeccompName != config.ProfileNone {
		logger.Debug("loading seccomp profile", "profile", string(cfg.SeccompName))
		if err := seccomp.Install(string(cfg.SeccompName), uintptr(unsafe.Pointer(pathPtr))); err != nil {
			fail(logger, files, errPipe, errors.Wrap(err, errors.ErrSeccomp, "install"))
		}
	}

	err = rawExecve(pathPtr, argv, envp)
	fail(logger, files, errPipe, errors.Wrap(err, errors.ErrExec, "execve"))
}

func fail(logger *slog.Logger, files *openFiles, errPipe *os.File, err error) {
	if err != nil {
		logger.Error("child setup failed", "reason", err.Error())
		if errPipe != nil {
			ipc.SignalError(errPipe, err)
			errPipe.Close()
		}
	}
	files.closeAll()
	os.Exit(childFailExitCode)
}

// applyRlimits performs initializer steps 1-5: CPU, address-space, stack,
// file-size and open-file-count ceilings.
func applyRlimits(cfg config.RuntimeConfig) error {
	if cfg.MaxCPUTime != config.Unset {
		seconds := uint64((cfg.MaxCPUTime + 1000) / 1000)
		if err := setRlimit(unix.RLIMIT_CPU, seconds, seconds); err != nil {
			return errors.Wrap(err, errors.ErrRlimit, "RLIMIT_CPU")
		}
	}

	if cfg.UseRlimitToLimitMemory && cfg.MaxMemory != config.Unset {
		bytes := uint64(cfg.MaxMemory) * 1024
		if err := setRlimit(unix.RLIMIT_AS, bytes, bytes); err != nil {
			return errors.Wrap(err, errors.ErrRlimit, "RLIMIT_AS")
		}
	}

	if cfg.MaxStack != config.Unset {
		bytes := uint64(cfg.MaxStack) * 1024
		if err := setRlimit(unix.RLIMIT_STACK, bytes, bytes); err != nil {
			return errors.Wrap(err, errors.ErrRlimit, "RLIMIT_STACK")
		}
	}

	if cfg.MaxOutputSize != config.Unset {
		bytes := uint64(cfg.MaxOutputSize)
		if err := setRlimit(unix.RLIMIT_FSIZE, bytes, bytes); err != nil {
			return errors.Wrap(err, errors.ErrRlimit, "RLIMIT_FSIZE")
		}
	}

	if cfg.MaxOpenFileNumber != config.Unset {
		count := uint64(cfg.MaxOpenFileNumber)
		if err := setRlimit(unix.RLIMIT_NOFILE, count, count); err != nil {
			return errors.Wrap(err, errors.ErrRlimit, "RLIMIT_NOFILE")
		}
	}

	return nil
}

func setRlimit(resource int, cur, max uint64) error {
	return unix.Setrlimit(resource, &unix.Rlimit{Cur: cur, Max: max})
}

// redirectStreams performs initializer step 6: stdin/stdout/stderr are
// reopened and dup2'd onto fds 0/1/2 only when their configured path
// differs from the corresponding /dev/std* sentinel. Each successful
// redirect is logged at debug level tagged with the path it opened, for
// anyone reading the log to see which streams were actually remapped.
func redirectStreams(logger *slog.Logger, cfg config.RuntimeConfig, files *openFiles) error {
	if cfg.InputPath != config.DevStdin {
		f, err := os.Open(cfg.InputPath)
		if err != nil {
			return errors.Wrap(err, errors.ErrRedirect, "open input")
		}
		files.in = f
		if err := dup2(int(f.Fd()), int(os.Stdin.Fd())); err != nil {
			return errors.Wrap(err, errors.ErrRedirect, "mount input")
		}
		logging.WithPath(logger, cfg.InputPath).Debug("redirected stdin")
	}

	if cfg.OutputPath != config.DevStdout {
		f, err := os.OpenFile(cfg.OutputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return errors.Wrap(err, errors.ErrRedirect, "open output")
		}
		files.out = f
		if err := dup2(int(f.Fd()), int(os.Stdout.Fd())); err != nil {
			return errors.Wrap(err, errors.ErrRedirect, "mount output")
		}
		logging.WithPath(logger, cfg.OutputPath).Debug("redirected stdout")
	}

	if cfg.ErrorPath != config.DevStderr {
		f, err := os.OpenFile(cfg.ErrorPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return errors.Wrap(err, errors.ErrRedirect, "open error")
		}
		files.err = f
		if err := dup2(int(f.Fd()), int(os.Stderr.Fd())); err != nil {
			return errors.Wrap(err, errors.ErrRedirect, "mount error")
		}
		logging.WithPath(logger, cfg.ErrorPath).Debug("redirected stderr")
	}

	return nil
}

func dup2(oldfd, newfd int) error {
	return unix.Dup2(oldfd, newfd)
}

// dropPrivileges performs initializer step 7: setgid before setuid, and a
// tightened RLIMIT_NPROC once either identity changed.
func dropPrivileges(cfg config.RuntimeConfig) error {
	if cfg.GID != config.Unset {
		if err := setGid(cfg.GID); err != nil {
			return errors.Wrap(err, errors.ErrPrivilege, "setgid")
		}
	}
	if cfg.UID != config.Unset {
		if err := setUid(cfg.UID); err != nil {
			return errors.Wrap(err, errors.ErrPrivilege, "setuid")
		}
	}
	if cfg.RequiresPrivilegeChange() {
		if err := setRlimit(unix.RLIMIT_NPROC, 512, 768); err != nil {
			return errors.Wrap(err, errors.ErrRlimit, "RLIMIT_NPROC")
		}
	}
	return nil
}

// ptrSliceFromStrings returns a nil-terminated array of C-string pointers,
// as execve's argv/envp expect.
func ptrSliceFromStrings(strs []string) ([]*byte, error) {
	out := make([]*byte, 0, len(strs)+1)
	for _, s := range strs {
		p, err := unix.BytePtrFromString(s)
		if err != nil {
			return nil, fmt.Errorf("child: encode %q: %w", s, err)
		}
		out = append(out, p)
	}
	out = append(out, nil)
	return out, nil
}

// rawExecve performs the execve syscall directly, reusing pathPtr — the
// exact pointer value the seccomp filter's path-equality check (when
// installed) was built against. Calling syscall.Exec a second time here
// would allocate a fresh, differently-addressed copy of the path and
// break that check; this is the one place the child must bypass the
// standard library's exec wrapper.
func rawExecve(pathPtr *byte, argv, envp []string) error {
	argvPtrs, err := ptrSliceFromStrings(argv)
	if err != nil {
		return err
	}

	var envPtrs []*byte
	if envp != nil {
		envPtrs, err = ptrSliceFromStrings(envp)
		if err != nil {
			return err
		}
	} else {
		envPtrs, err = ptrSliceFromStrings(os.Environ())
		if err != nil {
			return err
		}
	}

	_, _, errno := unix.Syscall(unix.SYS_EXECVE,
		uintptr(unsafe.Pointer(pathPtr)),
		uintptr(unsafe.Pointer(&argvPtrs[0])),
		uintptr(unsafe.Pointer(&envPtrs[0])))
	if errno != 0 {
		return errno
	}
	return nil
}
