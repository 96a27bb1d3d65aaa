package result

import (
	"testing"

	"golang.org/x/sys/unix"

	"sandbox-go/config"
)

func TestVerdict_String(t *testing.T) {
	tests := []struct {
		v    Verdict
		want string
	}{
		{SuccessExit, "SUCCESS_EXIT"},
		{TimeLimitExceeded, "TIME_LIMIT_EXCEEDED"},
		{MemoryLimitExceeded, "MEMORY_LIMIT_EXCEEDED"},
		{OutputLimitExceeded, "OUTPUT_LIMIT_EXCEEDED"},
		{RuntimeError, "RUNTIME_ERROR"},
		{RuntimeErrorBadSyscall, "RUNTIME_ERROR_BAD_SYSCALL"},
		{SystemError, "SYSTEM_ERROR"},
		{Verdict(999), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("Verdict(%d).String() = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestClassify_Scenario1_SuccessExit(t *testing.T) {
	cfg := config.New()
	cfg.ExecPath = "/bin/true"
	r := Result{ExitCode: 0, Signal: 0, Status: 0}

	if got := Classify(r, cfg); got != SuccessExit {
		t.Errorf("Classify() = %v, want SuccessExit", got)
	}
}

func TestClassify_Scenario2_TimeLimitExceeded(t *testing.T) {
	cfg := config.New()
	cfg.ExecPath = "/bin/loop"
	cfg.MaxCPUTime = 1000
	r := Result{Status: StoppedStatusSentinel, ClockTime: 1100, CPUTime: 1050}

	if got := Classify(r, cfg); got != TimeLimitExceeded {
		t.Errorf("Classify() = %v, want TimeLimitExceeded", got)
	}
}

func TestClassify_Scenario3_MemoryLimitExceeded(t *testing.T) {
	cfg := config.New()
	cfg.ExecPath = "/bin/hog"
	cfg.MaxMemory = 65536
	r := Result{Signal: int(unix.SIGSEGV), Status: 1, MemoryUse: 300000}

	if got := Classify(r, cfg); got != MemoryLimitExceeded {
		t.Errorf("Classify() = %v, want MemoryLimitExceeded", got)
	}
}

func TestClassify_Scenario4_OutputLimitExceeded(t *testing.T) {
	cfg := config.New()
	cfg.ExecPath = "/bin/writer"
	cfg.MaxOutputSize = 1048576
	r := Result{Signal: int(unix.SIGXFSZ), Status: 1}

	if got := Classify(r, cfg); got != OutputLimitExceeded {
		t.Errorf("Classify() = %v, want OutputLimitExceeded", got)
	}
}

func TestClassify_Scenario5_BadSyscall(t *testing.T) {
	cfg := config.New()
	cfg.ExecPath = "/bin/socketuser"
	cfg.SeccompName = config.ProfileStrict
	r := Result{Signal: int(unix.SIGSYS), Status: 1}

	if got := Classify(r, cfg); got != RuntimeErrorBadSyscall {
		t.Errorf("Classify() = %v, want RuntimeErrorBadSyscall", got)
	}
}

func TestClassify_Scenario6_ThreadBomb(t *testing.T) {
	cfg := config.New()
	cfg.ExecPath = "/bin/forkbomb"
	cfg.MaxThread = 8
	r := Result{Signal: int(unix.SIGKILL), Status: 1}

	if got := Classify(r, cfg); got != RuntimeError {
		t.Errorf("Classify() = %v, want RuntimeError", got)
	}
}

func TestClassify_SystemErrorOverridesAll(t *testing.T) {
	cfg := config.New()
	cfg.ExecPath = "/bin/true"
	cfg.MaxCPUTime = 1000
	r := Result{Signal: int(unix.SIGUSR2), Status: 1, ClockTime: 2000, CPUTime: 2000}

	if got := Classify(r, cfg); got != SystemError {
		t.Errorf("Classify() = %v, want SystemError (must override TLE)", got)
	}
}

func TestClassify_PlainNonzeroExit(t *testing.T) {
	cfg := config.New()
	cfg.ExecPath = "/bin/false"
	r := Result{ExitCode: 1, Status: 256}

	if got := Classify(r, cfg); got != RuntimeError {
		t.Errorf("Classify() = %v, want RuntimeError", got)
	}
}

func TestToJSON(t *testing.T) {
	r := Result{
		CPUTime:   123,
		ClockTime: 456,
		MemoryUse: 789,
		ExitCode:  0,
		Signal:    0,
		Status:    0,
		Result:    SuccessExit,
	}
	j := r.ToJSON()
	if j.CPUTime != 123 || j.ClockTime != 456 || j.Memory != 789 {
		t.Errorf("ToJSON() = %+v, unexpected fields", j)
	}
	if j.Result != "SUCCESS_EXIT" || j.ResultCode != int(SuccessExit) {
		t.Errorf("ToJSON() = %+v, unexpected verdict fields", j)
	}
}
