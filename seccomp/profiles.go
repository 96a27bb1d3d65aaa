package seccomp

// compileProgram is the lenient profile for compilers: default ALLOW,
// kill the handful of syscalls a compiler has no legitimate reason to use.
func compileProgram() []sockFilter {
	blacklist := []int{
		nrSocket, nrSetuid, nrSetgid, nrSetpgid, nrSetsid,
		nrSetreuid, nrSetregid, nrSetgroups, nrSetrlimit, nrSeccomp,
	}

	var prog []sockFilter
	prog = append(prog, archCheck()...)
	prog = append(prog, loadNR())
	for _, nr := range blacklist {
		prog = append(prog, simpleRule(nr, retKillProcess)...)
	}
	prog = append(prog, stmt(opRetK, retAllow))
	return prog
}

// gentleProgram is for interpreters and compiled user code that may fork
// or open files: default ALLOW, extends compile's blacklist, and adds
// argument-checked rules for execve (only the configured exec_path may be
// re-exec'd) and open/openat (no write-mode opens).
func gentleProgram(execPathPtr uintptr) []sockFilter {
	blacklist := []int{
		nrSocket, nrSetuid, nrSetgid, nrSetpgid, nrSetsid,
		nrSetreuid, nrSetregid, nrSetgroups, nrSetrlimit, nrSeccomp,
		nrVfork, nrFork, nrChmod, nrFchmod,
		nrChown, nrFchown, nrFchownat,
		nrLink, nrShutdown, nrRmdir, nrRename,
	}

	var prog []sockFilter
	prog = append(prog, archCheck()...)
	prog = append(prog, loadNR())
	for _, nr := range blacklist {
		prog = append(prog, simpleRule(nr, retKillProcess)...)
	}

	// execve is killed unless its first argument is exactly exec_path.
	prog = append(prog, dispatchedRule(nrExecve, append(pathEqualityBlock(execPathPtr), stmt(opRetK, retKillProcess)))...)

	// open/openat are killed when opened for writing.
	prog = append(prog, dispatchedRule(nrOpen, writeFlagsKillBlock(1, retKillProcess))...)
	prog = append(prog, dispatchedRule(nrOpenat, writeFlagsKillBlock(2, retKillProcess))...)

	prog = append(prog, stmt(opRetK, retAllow))
	return prog
}

// strictProgram is for compiled user code under an online judge: default
// KILL, an explicit whitelist, with execve and open/openat gated by
// argument checks the same way as gentle but inverted (ALLOW only on
// match, since the default is now KILL).
func strictProgram(execPathPtr uintptr) []sockFilter {
	whitelist := []int{
		// I/O
		nrRead, nrWrite, nrReadv, nrWritev, nrClose, nrReadlink,
		nrFlock, nrFcntl, nrFstat, nrLstat, nrAccess, nrLseek,
		nrFsync, nrGetdents,
		// system info
		nrUname, nrGetrusage, nrSysinfo, nrGetrlimit, nrTime,
		nrGetcwd, nrClockGettime,
		// memory
		nrMmap, nrMunmap, nrMremap, nrBrk, nrMprotect, nrMadvise,
		// process control
		nrPrctl, nrArchPrctl, nrExitGroup, nrExit,
		nrRtSigprocmask, nrRtSigaction, nrPrlimit64, nrGetpid,
		// misc
		nrPoll, nrStat, nrGetrandom,
	}

	var prog []sockFilter
	prog = append(prog, archCheck()...)
	prog = append(prog, loadNR())
	for _, nr := range whitelist {
		prog = append(prog, simpleRule(nr, retAllow)...)
	}

	// execve is allowed only for exec_path.
	prog = append(prog, execveRule(execPathPtr)...)

	// open/openat are allowed only when not opened for writing.
	prog = append(prog, dispatchedRule(nrOpen, writeFlagsAllowBlock(1))...)
	prog = append(prog, dispatchedRule(nrOpenat, writeFlagsAllowBlock(2))...)

	prog = append(prog, stmt(opRetK, retKillProcess))
	return prog
}
