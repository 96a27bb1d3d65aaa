// Package errors provides predefined sentinel errors for common failure cases.
package errors

// Configuration errors.
var (
	// ErrMissingExecPath indicates exec_path was not supplied.
	ErrMissingExecPath = &SandboxError{
		Kind:   ErrConfig,
		Detail: "exec_path is required",
	}

	// ErrExecPathNotFound indicates exec_path does not resolve to an
	// executable file.
	ErrExecPathNotFound = &SandboxError{
		Kind:   ErrConfig,
		Detail: "exec_path not found or not executable",
	}

	// ErrInvalidSeccompName indicates scmp_name is not one of the
	// recognized profile names.
	ErrInvalidSeccompName = &SandboxError{
		Kind:   ErrConfig,
		Detail: "scmp_name must be one of: \"\", compile, gentle, strict",
	}

	// ErrTooManyArgs indicates exec_args or exec_env split into more than
	// the maximum number of accepted argv/envp entries.
	ErrTooManyArgs = &SandboxError{
		Kind:   ErrConfig,
		Detail: "exec_args or exec_env exceeds maximum entry count",
	}
)

// Privilege errors.
var (
	// ErrNotRoot indicates the supervisor must run as root to change
	// identity.
	ErrNotRoot = &SandboxError{
		Kind:   ErrPrivilege,
		Detail: "must run as root to set uid/gid",
	}

	// ErrSetGidFailed indicates setgid() failed in the child.
	ErrSetGidFailed = &SandboxError{
		Kind:   ErrPrivilege,
		Detail: "setgid failed",
	}

	// ErrSetUidFailed indicates setuid() failed in the child.
	ErrSetUidFailed = &SandboxError{
		Kind:   ErrPrivilege,
		Detail: "setuid failed",
	}

	// ErrSetGroupsFailed indicates setgroups() failed in the child.
	ErrSetGroupsFailed = &SandboxError{
		Kind:   ErrPrivilege,
		Detail: "setgroups failed",
	}
)

// Resource-limit errors.
var (
	// ErrRlimitCPU indicates RLIMIT_CPU could not be set.
	ErrRlimitCPU = &SandboxError{
		Kind:   ErrRlimit,
		Detail: "failed to set RLIMIT_CPU",
	}

	// ErrRlimitAS indicates RLIMIT_AS could not be set.
	ErrRlimitAS = &SandboxError{
		Kind:   ErrRlimit,
		Detail: "failed to set RLIMIT_AS",
	}

	// ErrRlimitStack indicates RLIMIT_STACK could not be set.
	ErrRlimitStack = &SandboxError{
		Kind:   ErrRlimit,
		Detail: "failed to set RLIMIT_STACK",
	}

	// ErrRlimitFsize indicates RLIMIT_FSIZE could not be set.
	ErrRlimitFsize = &SandboxError{
		Kind:   ErrRlimit,
		Detail: "failed to set RLIMIT_FSIZE",
	}

	// ErrRlimitNofile indicates RLIMIT_NOFILE could not be set.
	ErrRlimitNofile = &SandboxError{
		Kind:   ErrRlimit,
		Detail: "failed to set RLIMIT_NOFILE",
	}

	// ErrRlimitNproc indicates RLIMIT_NPROC could not be set.
	ErrRlimitNproc = &SandboxError{
		Kind:   ErrRlimit,
		Detail: "failed to set RLIMIT_NPROC",
	}
)

// Stream redirection errors.
var (
	// ErrOpenInput indicates input_path could not be opened for reading.
	ErrOpenInput = &SandboxError{
		Kind:   ErrRedirect,
		Detail: "failed to open input_path",
	}

	// ErrOpenOutput indicates output_path could not be opened for writing.
	ErrOpenOutput = &SandboxError{
		Kind:   ErrRedirect,
		Detail: "failed to open output_path",
	}

	// ErrOpenError indicates error_path could not be opened for writing.
	ErrOpenError = &SandboxError{
		Kind:   ErrRedirect,
		Detail: "failed to open error_path",
	}

	// ErrDup2Failed indicates dup2 onto a standard stream fd failed.
	ErrDup2Failed = &SandboxError{
		Kind:   ErrRedirect,
		Detail: "failed to redirect standard stream",
	}
)

// Seccomp errors.
var (
	// ErrSeccompBuild indicates the BPF program could not be assembled.
	ErrSeccompBuild = &SandboxError{
		Kind:   ErrSeccomp,
		Detail: "failed to build seccomp filter",
	}

	// ErrSeccompInstall indicates prctl(PR_SET_SECCOMP, ...) failed.
	ErrSeccompInstall = &SandboxError{
		Kind:   ErrSeccomp,
		Detail: "failed to install seccomp filter",
	}

	// ErrUnknownSyscall indicates a profile referenced a syscall name
	// with no known number on this architecture.
	ErrUnknownSyscall = &SandboxError{
		Kind:   ErrSeccomp,
		Detail: "unknown syscall name in profile",
	}
)

// Fork/exec errors.
var (
	// ErrForkFailed indicates the re-exec of the child could not start.
	ErrForkFailed = &SandboxError{
		Kind:   ErrFork,
		Detail: "failed to start child process",
	}

	// ErrPipeFailed indicates the parent/child config pipe could not be
	// created or used.
	ErrPipeFailed = &SandboxError{
		Kind:   ErrFork,
		Detail: "failed to set up parent/child pipe",
	}

	// ErrExecFailed indicates execve of the target program failed.
	ErrExecFailed = &SandboxError{
		Kind:   ErrExec,
		Detail: "execve failed",
	}
)

// Monitor errors.
var (
	// ErrMonitorStatm indicates /proc/<pid>/statm could not be read.
	ErrMonitorStatm = &SandboxError{
		Kind:   ErrMonitor,
		Detail: "failed to read /proc/<pid>/statm",
	}

	// ErrMonitorStatus indicates /proc/<pid>/status could not be read.
	ErrMonitorStatus = &SandboxError{
		Kind:   ErrMonitor,
		Detail: "failed to read /proc/<pid>/status",
	}
)

// Wait/reap errors.
var (
	// ErrWait4Failed indicates wait4() returned an error other than
	// ECHILD/EINTR.
	ErrWait4Failed = &SandboxError{
		Kind:   ErrWait,
		Detail: "wait4 failed",
	}
)
