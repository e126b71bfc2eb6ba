package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jacoelho/afa"
)

// Exit codes.
const (
	exitOK       = 0
	exitNegative = 1
	exitError    = 2
)

// exitCode carries a non-zero exit status out of a command.
type exitCode int

func (c exitCode) Error() string { return fmt.Sprintf("exit status %d", int(c)) }

type globalFlags struct {
	configPath     string
	semantics      string
	logLevel       string
	cpuProfilePath string
	memProfilePath string
	timeout        time.Duration
	workers        int
}

// app is the state shared by every subcommand once flags are resolved.
type app struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	stop   func()
	config afa.Config
}

func (a *app) close() {
	if a.stop != nil {
		a.stop()
		a.stop = nil
	}
}

func (a *app) options() []afa.Option {
	return []afa.Option{afa.WithConfig(a.config), afa.WithLogger(a.logger)}
}

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdout, os.Stderr)
}

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	state := &app{stdout: stdout, stderr: stderr}
	defer state.close()
	root := newRootCommand(state)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	if err == nil {
		return exitOK
	}
	var code exitCode
	if errors.As(err, &code) {
		return int(code)
	}
	if writeErr := writef(stderr, "error: %v\n", err); writeErr != nil {
		return exitError
	}
	return exitError
}

func newRootCommand(state *app) *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "afa",
		Short:         "Match, compare and check regexes with lookaheads",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			logger, err := newLogger(state.stderr, flags.logLevel)
			if err != nil {
				return err
			}
			state.config = cfg
			state.logger = logger
			stop, err := startProfiles(flags, logger, state.stderr)
			if err != nil {
				return err
			}
			state.stop = stop
			return nil
		},
	}
	root.SetOut(state.stdout)
	root.SetErr(state.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to YAML config file")
	pf.StringVar(&flags.semantics, "semantics", afa.FirstMatch.String(), "match semantics: first-match or any-match")
	pf.DurationVar(&flags.timeout, "timeout", afa.DefaultConfig().Timeout, "per query timeout (0 disables)")
	pf.IntVar(&flags.workers, "workers", afa.DefaultConfig().Workers, "concurrent batch queries")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.StringVar(&flags.cpuProfilePath, "cpuprofile", "", "write CPU profile to file")
	pf.StringVar(&flags.memProfilePath, "memprofile", "", "write memory profile to file")

	root.AddCommand(
		newMatchCommand(state),
		newEquivCommand(state),
		newEmptyCommand(state),
		newBatchCommand(state),
	)
	return root
}

// resolveConfig layers defaults, the config file and explicitly set flags.
func resolveConfig(cmd *cobra.Command, flags globalFlags) (afa.Config, error) {
	cfg := afa.DefaultConfig()
	if flags.configPath != "" {
		loaded, err := afa.LoadConfig(flags.configPath)
		if err != nil {
			return afa.Config{}, err
		}
		cfg = loaded
	}
	fs := cmd.Flags()
	if fs.Changed("semantics") {
		cfg.Semantics = flags.semantics
	}
	if fs.Changed("timeout") {
		cfg.Timeout = flags.timeout
	}
	if fs.Changed("workers") {
		cfg.Workers = flags.workers
	}
	if err := cfg.Validate(); err != nil {
		return afa.Config{}, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func newMatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "match PATTERN INPUT...",
		Short: "Report which inputs the pattern accepts",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			re, err := afa.Compile(cmd.Context(), args[0], a.options()...)
			if err != nil {
				return err
			}
			status := exitOK
			for _, input := range args[1:] {
				verdict := "match"
				if !re.Match(input) {
					verdict = "no match"
					status = exitNegative
				}
				if err := writef(a.stdout, "%q: %s\n", input, verdict); err != nil {
					return err
				}
			}
			return statusError(status)
		},
	}
}

func newEquivCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "equiv PATTERN1 PATTERN2",
		Short: "Decide whether two patterns accept the same inputs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := afa.Compile(cmd.Context(), args[0], a.options()...)
			if err != nil {
				return err
			}
			right, err := afa.Compile(cmd.Context(), args[1], a.options()...)
			if err != nil {
				return err
			}
			v, err := afa.Equivalent(cmd.Context(), left, right, a.options()...)
			if err != nil {
				return err
			}
			if v.Equivalent {
				return writeln(a.stdout, "equivalent")
			}
			if err := writef(a.stdout, "not equivalent, witness %q\n", v.Witness); err != nil {
				return err
			}
			return exitCode(exitNegative)
		},
	}
}

func newEmptyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "empty PATTERN",
		Short: "Decide whether a pattern accepts no input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			re, err := afa.Compile(cmd.Context(), args[0], a.options()...)
			if err != nil {
				return err
			}
			v, err := afa.IsEmpty(cmd.Context(), re, a.options()...)
			if err != nil {
				return err
			}
			if v.Equivalent {
				return writeln(a.stdout, "empty")
			}
			if err := writef(a.stdout, "not empty, witness %q\n", v.Witness); err != nil {
				return err
			}
			return exitCode(exitNegative)
		},
	}
}

func statusError(status int) error {
	if status == exitOK {
		return nil
	}
	return exitCode(status)
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
