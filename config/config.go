// Package config defines the sandbox's RuntimeConfig: the single,
// caller-owned, read-only record that drives everything the supervisor
// and child initializer do.
package config

import (
	"strings"

	sberrors "sandbox-go/errors"
)

// Unset is the sentinel value for "this numeric limit is not configured".
const Unset = -1

// Default standard-stream sentinels: these paths mean "do not redirect".
const (
	DevStdin  = "/dev/stdin"
	DevStdout = "/dev/stdout"
	DevStderr = "/dev/stderr"
)

// DefaultThreadLimit is used for the thread monitor whenever max_thread is
// unset (≤ 0).
const DefaultThreadLimit = 8

// MaxArgs bounds the number of argv/envp entries built from exec_args and
// exec_env: space-separation only, no quoting, capped at 128 entries
// total, matching the original judge's fixed-size argument buffer.
const MaxArgs = 128

// SeccompProfile names one of the three predefined filter profiles.
type SeccompProfile string

const (
	ProfileNone    SeccompProfile = ""
	ProfileCompile SeccompProfile = "compile"
	ProfileGentle  SeccompProfile = "gentle"
	ProfileStrict  SeccompProfile = "strict"
)

// legacySeccompSynonyms maps historical profile names, accepted for
// backward compatibility with older judge CLIs, onto the three current
// profiles.
var legacySeccompSynonyms = map[string]SeccompProfile{
	"low":  ProfileGentle,
	"mid":  ProfileGentle,
	"high": ProfileStrict,
}

// NormalizeSeccompName resolves legacy synonyms ("low"/"mid"/"high") to
// their modern profile name, and passes everything else through unchanged.
func NormalizeSeccompName(name string) SeccompProfile {
	if p, ok := legacySeccompSynonyms[name]; ok {
		return p
	}
	return SeccompProfile(name)
}

// RuntimeConfig is the full set of parameters that govern a single
// sandboxed run. All numeric limits use Unset (-1) to mean "no limit".
// Once constructed, a RuntimeConfig is never mutated — the supervisor and
// every monitor goroutine only ever read a copy captured at spawn time.
type RuntimeConfig struct {
	// Resource ceilings.
	MaxCPUTime        int // ms
	MaxStack          int // KiB
	MaxMemory         int // KiB
	MaxOutputSize     int // bytes
	MaxOpenFileNumber int // count
	MaxThread         int // count

	// Target program.
	ExecPath string
	ExecArgs string // space-separated, excludes argv[0]
	ExecEnv  string // space-separated KEY=VALUE, empty => inherit

	// Stream redirection.
	InputPath  string
	OutputPath string
	ErrorPath  string

	// Identity.
	UID int // -1 = do not change
	GID int // -1 = do not change

	// Security policy.
	SeccompName             SeccompProfile
	UseRlimitToLimitMemory  bool

	// Logging.
	LogPath string
	Verbose bool
}

// New returns a RuntimeConfig with every limit unset and the standard
// stream sentinels in place, matching the original CLI's flag defaults.
func New() RuntimeConfig {
	return RuntimeConfig{
		MaxCPUTime:        Unset,
		MaxStack:          Unset,
		MaxMemory:         Unset,
		MaxOutputSize:     Unset,
		MaxOpenFileNumber: Unset,
		MaxThread:         Unset,
		InputPath:         DevStdin,
		OutputPath:        DevStdout,
		ErrorPath:         DevStderr,
		UID:               Unset,
		GID:               Unset,
	}
}

// Validate checks the invariants the supervisor requires before forking:
// any set numeric limit must be >= 1, uid/gid if set must be >= 0,
// exec_path must be non-empty, and scmp_name must name a known profile.
func (c RuntimeConfig) Validate() error {
	if c.ExecPath == "" {
		return sberrors.ErrMissingExecPath
	}

	limits := map[string]int{
		"max_cpu_time":         c.MaxCPUTime,
		"max_stack":            c.MaxStack,
		"max_memory":           c.MaxMemory,
		"max_output_size":      c.MaxOutputSize,
		"max_open_file_number": c.MaxOpenFileNumber,
		"max_thread":           c.MaxThread,
	}
	for name, v := range limits {
		if v != Unset && v < 1 {
			return sberrors.New(sberrors.ErrConfig, "validate", name+" must be -1 or >= 1")
		}
	}

	if c.UID != Unset && c.UID < 0 {
		return sberrors.New(sberrors.ErrConfig, "validate", "uid must be -1 or >= 0")
	}
	if c.GID != Unset && c.GID < 0 {
		return sberrors.New(sberrors.ErrConfig, "validate", "gid must be -1 or >= 0")
	}

	switch c.SeccompName {
	case ProfileNone, ProfileCompile, ProfileGentle, ProfileStrict:
	default:
		return sberrors.ErrInvalidSeccompName
	}

	if len(SplitArgs(c.ExecArgs)) > MaxArgs-1 {
		return sberrors.ErrTooManyArgs
	}
	if len(SplitArgs(c.ExecEnv)) > MaxArgs {
		return sberrors.ErrTooManyArgs
	}

	return nil
}

// RequiresPrivilegeChange reports whether the child must call setuid/setgid.
func (c RuntimeConfig) RequiresPrivilegeChange() bool {
	return c.UID != Unset || c.GID != Unset
}

// ThreadLimit returns the effective thread-count ceiling for the thread
// monitor: MaxThread when configured, else DefaultThreadLimit.
func (c RuntimeConfig) ThreadLimit() int {
	if c.MaxThread >= 1 {
		return c.MaxThread
	}
	return DefaultThreadLimit
}

// SplitArgs splits a space-separated argument string the way the child
// initializer's argv/envp builder does: no quoting, empty fields from
// repeated spaces are dropped, capped by the caller against MaxArgs.
func SplitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Fields(s)
}

// Argv builds the full argv slice for execve: argv[0] is exec_path,
// followed by the space-split exec_args, capped at MaxArgs entries total.
func (c RuntimeConfig) Argv() []string {
	argv := append([]string{c.ExecPath}, SplitArgs(c.ExecArgs)...)
	if len(argv) > MaxArgs {
		argv = argv[:MaxArgs]
	}
	return argv
}

// Envp builds the envp slice for execve. Returns nil when exec_env is
// empty, signaling "inherit the parent's environment" to the caller.
func (c RuntimeConfig) Envp() []string {
	env := SplitArgs(c.ExecEnv)
	if len(env) == 0 {
		return nil
	}
	if len(env) > MaxArgs {
		env = env[:MaxArgs]
	}
	return env
}
