// Package cmd implements the sandbox's command-line surface: a single
// root command carrying every resource-limit, target, redirection,
// identity, policy and logging flag from the invocation surface. Execute
// also recognizes the hidden argument used only for the supervisor's
// re-exec of the child initializer, before any flag parsing.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sandbox-go/config"
	"sandbox-go/logging"
	"sandbox-go/supervisor"
)

const nobodyID = 65534

var flags struct {
	maxCPUTime        int
	maxStack          int
	maxMemory         int
	maxOutputSize     int
	maxOpenFileNumber int
	maxThread         int

	execPath string
	execArgs string
	execEnv  string

	inputPath  string
	outputPath string
	errorPath  string

	uid              int
	gid              int
	noChangeChildID  bool

	scmpName               string
	useRlimitToLimitMemory bool

	logPath string
	verbose bool
}

var rootCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Run a program under resource limits and report a verdict",
	Long: `sandbox executes an untrusted program under CPU, memory, stack,
output, open-file and thread ceilings, optionally redirecting its standard
streams and dropping privileges, optionally installing a predefined
system-call filter, and reports a single JSON verdict on standard output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runSandbox,
}

// Execute runs the root command, dispatching to the hidden child
// initializer first when the process was re-exec'd for that purpose.
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == supervisor.ChildInitArg {
		runChildInit()
		// runChildInit never returns: the child either execve's into the
		// target program or os.Exit's with a failure code.
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	f := rootCmd.Flags()

	f.IntVarP(&flags.maxCPUTime, "max_cpu_time", "t", config.Unset, "CPU time limit in milliseconds")
	f.IntVarP(&flags.maxStack, "max_stack", "s", config.Unset, "stack size limit in KiB")
	f.IntVarP(&flags.maxMemory, "max_memory", "m", config.Unset, "memory limit in KiB")
	f.IntVarP(&flags.maxOutputSize, "max_output_size", "q", config.Unset, "output size limit in bytes")
	f.IntVarP(&flags.maxOpenFileNumber, "max_open_file_number", "f", config.Unset, "open file count limit")
	f.IntVar(&flags.maxThread, "max_thread", config.Unset, "thread count limit")

	f.StringVarP(&flags.execPath, "exec_path", "c", "", "absolute path to the target program (required)")
	f.StringVarP(&flags.execArgs, "exec_args", "a", "", "space-separated arguments, excluding argv[0]")
	f.StringVarP(&flags.execEnv, "exec_env", "n", "", "space-separated KEY=VALUE environment entries")

	f.StringVarP(&flags.inputPath, "input_path", "i", config.DevStdin, "path to redirect onto stdin")
	f.StringVarP(&flags.outputPath, "output_path", "o", config.DevStdout, "path to redirect onto stdout")
	f.StringVarP(&flags.errorPath, "error_path", "e", config.DevStderr, "path to redirect onto stderr")

	f.IntVarP(&flags.uid, "uid", "u", config.Unset, "user ID to run the target as")
	f.IntVarP(&flags.gid, "gid", "g", config.Unset, "group ID to run the target as")
	f.BoolVar(&flags.noChangeChildID, "no_change_child_id", false, "do not default to the nobody identity when run as root")

	f.StringVarP(&flags.scmpName, "scmp_name", "p", "", `syscall filter profile: "", compile, gentle, or strict`)
	f.BoolVar(&flags.useRlimitToLimitMemory, "use_rlimit_to_limit_memory", false, "enforce memory via RLIMIT_AS instead of /proc polling")

	f.StringVarP(&flags.logPath, "log_path", "l", "", `log file path ("" or "stderr" for standard error)`)
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug-level logging")
}

func buildConfig() config.RuntimeConfig {
	cfg := config.New()
	cfg.MaxCPUTime = flags.maxCPUTime
	cfg.MaxStack = flags.maxStack
	cfg.MaxMemory = flags.maxMemory
	cfg.MaxOutputSize = flags.maxOutputSize
	cfg.MaxOpenFileNumber = flags.maxOpenFileNumber
	cfg.MaxThread = flags.maxThread

	cfg.ExecPath = flags.execPath
	cfg.ExecArgs = flags.execArgs
	cfg.ExecEnv = flags.execEnv

	cfg.InputPath = flags.inputPath
	cfg.OutputPath = flags.outputPath
	cfg.ErrorPath = flags.errorPath

	cfg.UID = flags.uid
	cfg.GID = flags.gid
	if os.Getuid() == 0 && !flags.noChangeChildID && cfg.UID == config.Unset && cfg.GID == config.Unset {
		cfg.UID = nobodyID
		cfg.GID = nobodyID
	}

	cfg.SeccompName = config.NormalizeSeccompName(flags.scmpName)
	cfg.UseRlimitToLimitMemory = flags.useRlimitToLimitMemory

	cfg.LogPath = flags.logPath
	cfg.Verbose = flags.verbose
	return cfg
}

func runSandbox(_ *cobra.Command, _ []string) error {
	sink, err := logging.Init(flags.logPath, flags.verbose)
	if err != nil {
		return err
	}
	logger := slog.New(sink)
	slog.SetDefault(logger)
	logging.SetDefault(logger)

	cfg := buildConfig()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r, runErr := supervisor.Run(ctx, cfg)

	enc := json.NewEncoder(os.Stdout)
	if encErr := enc.Encode(r.ToJSON()); encErr != nil {
		return encErr
	}

	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
	return nil
}
