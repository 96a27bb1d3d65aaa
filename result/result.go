// Package result defines the sandbox's RuntimeResult and the verdict
// classification rules applied to a reaped child.
package result

import (
	"golang.org/x/sys/unix"

	"sandbox-go/config"
)

// Verdict is the categorical outcome of a sandboxed run.
type Verdict int

const (
	SuccessExit Verdict = iota
	TimeLimitExceeded
	MemoryLimitExceeded
	OutputLimitExceeded
	RuntimeError
	RuntimeErrorBadSyscall
	SystemError
)

// String returns the human-readable verdict name used in the JSON result
// surface's RESULT field.
func (v Verdict) String() string {
	switch v {
	case SuccessExit:
		return "SUCCESS_EXIT"
	case TimeLimitExceeded:
		return "TIME_LIMIT_EXCEEDED"
	case MemoryLimitExceeded:
		return "MEMORY_LIMIT_EXCEEDED"
	case OutputLimitExceeded:
		return "OUTPUT_LIMIT_EXCEEDED"
	case RuntimeError:
		return "RUNTIME_ERROR"
	case RuntimeErrorBadSyscall:
		return "RUNTIME_ERROR_BAD_SYSCALL"
	case SystemError:
		return "SYSTEM_ERROR"
	default:
		return "UNKNOWN"
	}
}

// StoppedStatusSentinel is the wait status produced when the wall-clock
// monitor stops the child with SIGSTOP: (SIGSTOP << 8) | 0x7F. Equivalent
// to checking WIFSTOPPED(status).
const StoppedStatusSentinel = int(unix.SIGSTOP)<<8 | 0x7F

// Result is the supervisor-owned record describing how a run ended.
// Written only by the supervisor; monitors never touch it.
type Result struct {
	CPUTime   int64 // ms, user+system from rusage
	ClockTime int64 // ms, wall time around fork/reap
	MemoryUse int64 // KiB, ru_maxrss
	ExitCode  int
	Signal    int
	Status    int
	Result    Verdict
}

// Classify applies the ordered verdict rules from the supervisor's exit
// classification: later rules override earlier ones. cfg supplies the
// configured max_cpu_time/max_memory ceilings that gate rules 4 and 6.
func Classify(r Result, cfg config.RuntimeConfig) Verdict {
	verdict := SuccessExit

	if r.ExitCode != 0 || r.Signal != 0 || r.Status != 0 {
		verdict = RuntimeError
	}

	if r.Signal == int(unix.SIGSYS) {
		verdict = RuntimeErrorBadSyscall
	}

	if cfg.MaxCPUTime != config.Unset {
		if r.Status == StoppedStatusSentinel ||
			r.ClockTime > int64(cfg.MaxCPUTime) ||
			r.CPUTime > int64(cfg.MaxCPUTime) {
			verdict = TimeLimitExceeded
		}
	}

	if r.Signal == int(unix.SIGXFSZ) {
		verdict = OutputLimitExceeded
	}

	if r.Signal == int(unix.SIGSEGV) && cfg.MaxMemory != config.Unset && r.MemoryUse > int64(cfg.MaxMemory) {
		verdict = MemoryLimitExceeded
	}

	if r.Signal == int(unix.SIGUSR2) {
		verdict = SystemError
	}

	return verdict
}

// JSON is the exact shape of the result surface printed on stdout:
// a single JSON object with fields CPU_TIME, CLOCK_TIME, MEMORY, STATUS,
// SIGNAL, EXIT_CODE, RESULT_CODE, RESULT.
type JSON struct {
	CPUTime    int64  `json:"CPU_TIME"`
	ClockTime  int64  `json:"CLOCK_TIME"`
	Memory     int64  `json:"MEMORY"`
	Status     int    `json:"STATUS"`
	Signal     int    `json:"SIGNAL"`
	ExitCode   int    `json:"EXIT_CODE"`
	ResultCode int    `json:"RESULT_CODE"`
	Result     string `json:"RESULT"`
}

// ToJSON converts a Result into its wire representation.
func (r Result) ToJSON() JSON {
	return JSON{
		CPUTime:    r.CPUTime,
		ClockTime:  r.ClockTime,
		Memory:     r.MemoryUse,
		Status:     r.Status,
		Signal:     r.Signal,
		ExitCode:   r.ExitCode,
		ResultCode: int(r.Result),
		Result:     r.Result.String(),
	}
}

// SystemErrorResult builds a Result for a caller/supervisor error that
// occurred before or without a usable child exit status.
func SystemErrorResult() Result {
	return Result{Result: SystemError}
}
