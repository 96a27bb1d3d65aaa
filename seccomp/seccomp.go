// Package seccomp builds and installs the sandbox's three predefined
// classic-BPF syscall filters (compile, gentle, strict). It intentionally
// assembles raw BPF rather than linking libseccomp: the latter requires
// cgo and a system libseccomp install, which conflicts with shipping a
// single static binary to exam machines. The assembler here is adapted
// from the teacher runtime's OCI-seccomp BPF builder, generalized from
// arbitrary OCI syscall rules down to the three fixed profiles this
// sandbox actually needs.
package seccomp

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	sberrors "sandbox-go/errors"
)

// Seccomp/prctl constants (linux/seccomp.h, linux/prctl.h).
const (
	modeFilter      = 2
	retKillProcess  = 0x80000000
	retKillThread   = 0x00000000
	retAllow        = 0x7fff0000
	prSetNoNewPrivs = 38
	prSetSeccomp    = 22
)

// Classic BPF opcode fragments (linux/filter.h / linux/bpf_common.h).
const (
	ldW  = 0x00 | 0x20 // BPF_LD | BPF_ABS, width added at use site
	ldAbsW = 0x00 | 0x20 | 0x00
	jmp  = 0x05
	ret  = 0x06
	alu  = 0x04
	jeq  = 0x10
	k    = 0x00
	and  = 0x50
)

// Pre-combined op codes used throughout the assembler.
const (
	opLoadAbsW = 0x00 | 0x00 | 0x20 // BPF_LD | BPF_W | BPF_ABS
	opJeqK     = jmp | jeq | k      // BPF_JMP | BPF_JEQ | BPF_K
	opRetK     = ret | k            // BPF_RET | BPF_K
	opAndK     = alu | and | k      // BPF_ALU | BPF_AND | BPF_K
)

// seccomp_data field offsets (x86_64 ABI: 4-byte nr, 4-byte arch, 8-byte
// instruction_pointer, then six 8-byte args).
const (
	offsetNR   = 0
	offsetArch = 4
)

func offsetArgLo(n int) uint32 { return uint32(16 + 8*n) }
func offsetArgHi(n int) uint32 { return uint32(16 + 8*n + 4) }

const auditArchX8664 = 0xc000003e

// O_WRONLY/O_RDWR as seen by open/openat's flags argument.
const (
	oWronly = 0x0001
	oRdwr   = 0x0002
)

// sockFilter is a single classic-BPF instruction.
type sockFilter struct {
	Code uint16
	Jt   uint8
	Jf   uint8
	K    uint32
}

// sockFprog is the BPF program descriptor passed to prctl(PR_SET_SECCOMP, ...).
type sockFprog struct {
	Len    uint16
	Filter *sockFilter
}

func stmt(code uint16, k uint32) sockFilter {
	return sockFilter{Code: code, K: k}
}

func jump(code uint16, k uint32, jt, jf uint8) sockFilter {
	return sockFilter{Code: code, Jt: jt, Jf: jf, K: k}
}

// Program builds the complete BPF instruction list for profile, given the
// raw pointer value the running process will pass as execve's pathname
// argument (arg0). The pointer is supplied by the caller (the child
// initializer), which must reuse the exact same pointer when it later
// calls execve — a freshly allocated copy of the path string would not
// compare equal.
func Program(profile string, execPathPtr uintptr) ([]sockFilter, error) {
	switch profile {
	case "compile":
		return compileProgram(), nil
	case "gentle":
		return gentleProgram(execPathPtr), nil
	case "strict":
		return strictProgram(execPathPtr), nil
	default:
		return nil, sberrors.New(sberrors.ErrSeccomp, "build", fmt.Sprintf("unknown profile %q", profile))
	}
}

// archCheck is prepended to every profile: kill the whole process unless
// running under the single supported architecture.
func archCheck() []sockFilter {
	return []sockFilter{
		stmt(opLoadAbsW, offsetArch),
		jump(opJeqK, auditArchX8664, 1, 0),
		stmt(opRetK, retKillProcess),
	}
}

// loadNR loads the syscall number into the accumulator; every rule below
// assumes this has already run.
func loadNR() sockFilter {
	return stmt(opLoadAbsW, offsetNR)
}

// simpleRule appends a syscall-number dispatch followed by an
// unconditional return of ret when the syscall matches; otherwise falls
// through to the next rule.
func simpleRule(nr int, action uint32) []sockFilter {
	return []sockFilter{
		jump(opJeqK, uint32(nr), 0, 1),
		stmt(opRetK, action),
	}
}

// pathEqualityBlock returns ALLOW only when the syscall's first argument
// (a pointer) equals target exactly, otherwise falls through.
func pathEqualityBlock(target uintptr) []sockFilter {
	lo := uint32(target)
	hi := uint32(uint64(target) >> 32)
	return []sockFilter{
		stmt(opLoadAbsW, offsetArgLo(0)),
		jump(opJeqK, lo, 0, 3),
		stmt(opLoadAbsW, offsetArgHi(0)),
		jump(opJeqK, hi, 0, 1),
		stmt(opRetK, retAllow),
	}
}

// execveRule dispatches on the execve syscall number, then runs the
// path-equality block; on any mismatch (wrong syscall or wrong path) it
// falls through to whatever default/later rule applies.
func execveRule(execPathPtr uintptr) []sockFilter {
	body := pathEqualityBlock(execPathPtr)
	dispatch := jump(opJeqK, uint32(nrExecve), 0, uint8(len(body)))
	return append([]sockFilter{dispatch}, body...)
}

// writeFlagsKillBlock kills the process if the flags argument at argIndex
// has O_WRONLY or O_RDWR set (used by gentle's open/openat rules).
func writeFlagsKillBlock(argIndex int, killAction uint32) []sockFilter {
	return []sockFilter{
		stmt(opLoadAbsW, offsetArgLo(argIndex)),
		stmt(opAndK, oWronly|oRdwr),
		jump(opJeqK, 0, 1, 0),
		stmt(opRetK, killAction),
	}
}

// writeFlagsAllowBlock allows the process only if the flags argument at
// argIndex has neither O_WRONLY nor O_RDWR set (used by strict's
// open/openat rules, under a default-KILL policy).
func writeFlagsAllowBlock(argIndex int) []sockFilter {
	return []sockFilter{
		stmt(opLoadAbsW, offsetArgLo(argIndex)),
		stmt(opAndK, oWronly|oRdwr),
		jump(opJeqK, 0, 0, 1),
		stmt(opRetK, retAllow),
	}
}

func dispatchedRule(nr int, body []sockFilter) []sockFilter {
	dispatch := jump(opJeqK, uint32(nr), 0, uint8(len(body)))
	return append([]sockFilter{dispatch}, body...)
}

// Install assembles profile's BPF program and installs it via
// prctl(PR_SET_NO_NEW_PRIVS) + prctl(PR_SET_SECCOMP, ...). It must be
// called from the thread that is about to execve — the filter applies
// only to the calling thread and its descendants via exec.
func Install(profile string, execPathPtr uintptr) error {
	if profile == "" {
		return nil
	}

	if _, _, errno := unix.Syscall(unix.SYS_PRCTL, prSetNoNewPrivs, 1, 0); errno != 0 {
		return sberrors.Wrap(errno, sberrors.ErrSeccomp, "prctl(PR_SET_NO_NEW_PRIVS)")
	}

	instrs, err := Program(profile, execPathPtr)
	if err != nil {
		return err
	}
	if len(instrs) == 0 {
		return nil
	}

	prog := sockFprog{
		Len:    uint16(len(instrs)),
		Filter: &instrs[0],
	}

	if _, _, errno := unix.Syscall(unix.SYS_PRCTL, prSetSeccomp, modeFilter, uintptr(unsafe.Pointer(&prog))); errno != 0 {
		return sberrors.Wrap(errno, sberrors.ErrSeccomp, "prctl(PR_SET_SECCOMP)")
	}
	return nil
}
