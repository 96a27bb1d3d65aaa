package cmd

import (
	"context"
	"log/slog"
	"os"

	"sandbox-go/child"
	"sandbox-go/ipc"
	"sandbox-go/logging"
)

// configFD and errFD are the fixed file descriptors the supervisor's
// re-exec wires up via os/exec's ExtraFiles: index 0 becomes fd 3, index
// 1 becomes fd 4, immediately after the inherited stdin/stdout/stderr.
const (
	configFD = 3
	errFD    = 4
)

// runChildInit is reached only when the process was re-exec'd by
// supervisor.Run with ChildInitArg as its sole argument. It never
// returns: it either execve's into the target program or exits non-zero
// (1 when the config pipe is missing or unreadable, otherwise the child
// initializer's fixed failure code).
func runChildInit() {
	cfgFile := os.NewFile(configFD, "config-pipe")
	errFile := os.NewFile(errFD, "error-pipe")

	if cfgFile == nil {
		os.Exit(1)
	}

	cfg, err := ipc.ReceiveConfig(cfgFile)
	if err != nil {
		if errFile != nil {
			ipc.SignalError(errFile, err)
		}
		os.Exit(1)
	}
	cfgFile.Close()

	ctx := context.Background()
	if sink, err := logging.Init(cfg.LogPath, cfg.Verbose); err == nil {
		logger := slog.New(sink)
		slog.SetDefault(logger)
		logging.SetDefault(logger)
		ctx = logging.ContextWithLogger(ctx, logger)
	}

	child.Run(ctx, cfg, errFile)
}
