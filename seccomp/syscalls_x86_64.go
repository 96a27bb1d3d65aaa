package seccomp

// x86_64 syscall numbers referenced by the three profiles. This is a
// deliberately partial table (unlike a general-purpose seccomp library,
// this sandbox only ever filters a fixed, known syscall set), adapted
// from the teacher runtime's own syscallMap.
const (
	nrRead             = 0
	nrWrite            = 1
	nrOpen             = 2
	nrClose            = 3
	nrStat             = 4
	nrFstat            = 5
	nrLstat            = 6
	nrPoll             = 7
	nrLseek            = 8
	nrMmap             = 9
	nrMprotect         = 10
	nrMunmap           = 11
	nrBrk              = 12
	nrRtSigaction      = 13
	nrRtSigprocmask    = 14
	nrAccess           = 21
	nrMadvise          = 28
	nrGetpid           = 39
	nrUname            = 63
	nrSocket           = 41
	nrShutdown         = 48
	nrFork             = 57
	nrVfork            = 58
	nrExecve           = 59
	nrExit             = 60
	nrFcntl            = 72
	nrFlock            = 73
	nrFsync            = 74
	nrGetdents         = 78
	nrGetcwd           = 79
	nrRename           = 82
	nrRmdir            = 84
	nrLink             = 86
	nrReadlink         = 89
	nrChmod            = 90
	nrFchmod           = 91
	nrChown            = 92
	nrFchown           = 93
	nrGetrlimit        = 97
	nrGetrusage        = 98
	nrSysinfo          = 99
	nrSetrlimit        = 160
	nrGetrandom        = 318
	nrReadv            = 19
	nrWritev           = 20
	nrMremap           = 25
	nrSetuid           = 105
	nrSetgid           = 106
	nrSetpgid          = 109
	nrSetsid           = 112
	nrSetreuid         = 113
	nrSetregid         = 114
	nrSetgroups        = 116
	nrTime             = 201
	nrPrctl            = 157
	nrArchPrctl        = 158
	nrExitGroup        = 231
	nrClockGettime     = 228
	nrOpenat           = 257
	nrFchownat         = 260
	nrSeccomp          = 317
	nrPrlimit64        = 302
)
