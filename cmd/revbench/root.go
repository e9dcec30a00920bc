package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spachava753/revbench/internal/config"
	"github.com/spachava753/revbench/internal/executor"
	"github.com/spachava753/revbench/internal/planner"
	"github.com/spachava753/revbench/internal/tooling/git"
	"github.com/spachava753/revbench/internal/tooling/hyperfine"
	"github.com/spachava753/revbench/internal/tooling/npm"
	"github.com/spachava753/revbench/internal/tooling/process"
)

// errRunFailed is returned when a run completes with revision failures.
// The failures were already reported, so only the exit code matters.
var errRunFailed = errors.New("benchmark run completed with failures")

// errorMessage renders err for the terminal.
func errorMessage(err error) string {
	if errors.Is(err, executor.ErrDirtyRepository) {
		return "Repository has uncommitted changes. Please commit or stash your changes before running benchmarks."
	}
	return err.Error()
}

var settingFlags = []struct {
	key, flag, usage string
}{
	{"repository", "repository", "path of the CLI repository whose revisions are benchmarked"},
	{"cli_path", "cli-path", "path of the CLI entry point, relative to the repository"},
	{"cli_runner", "cli-runner", "interpreter used to start the CLI"},
	{"cli_name", "cli-name", "name of the CLI shown in summaries"},
	{"hyperfine", "hyperfine", "hyperfine executable"},
	{"npm", "npm", "npm executable"},
	{"git", "git", "git executable"},
	{"log_level", "log-level", "log level (debug, info, warn, error)"},
	{"log_format", "log-format", "log format (auto, text, json)"},
	{"result_prefix", "result-prefix", "file name prefix of raw hyperfine results"},
	{"report_dir", "report-dir", "directory reports are written to (default: each project directory)"},
}

func newRootCmd() *cobra.Command {
	v := config.NewViper()
	var envFile string

	root := &cobra.Command{
		Use:           "revbench",
		Short:         "Benchmark a CLI across git revisions with hyperfine",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				return config.LoadDotEnv(envFile)
			}
			return config.LoadDotEnv()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&envFile, "env-file", "", "dotenv file to load (default: .env if present)")
	for _, f := range settingFlags {
		flags.String(f.flag, "", f.usage)
		if err := v.BindPFlag(f.key, flags.Lookup(f.flag)); err != nil {
			panic(err)
		}
	}
	flags.StringSlice("reports", nil, "report formats (markdown, json, benchfmt, metrics)")
	if err := v.BindPFlag("reports", flags.Lookup("reports")); err != nil {
		panic(err)
	}

	root.AddCommand(newRunCmd(v), newPlanCmd(v))
	return root
}

func newRunCmd(v *viper.Viper) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "run <config> [project-dir...]",
		Short: "Run the configured benchmarks and write reports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Keep stdout parseable when it carries the JSON result.
			progress := cmd.OutOrStdout()
			if jsonOut {
				progress = cmd.ErrOrStderr()
			}
			runner, err := setup(cmd, v, progress)
			if err != nil {
				return err
			}
			result, err := runner.Run(cmd.Context(), executor.RunOptions{
				ConfigPath:  args[0],
				ProjectDirs: args[1:],
			})
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return fmt.Errorf("encoding run result: %w", err)
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Duration: %.2fs\n", result.TotalDurationSec)
			if !result.Success {
				return errRunFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the run result as JSON")
	return cmd
}

func newPlanCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <config>",
		Short: "Resolve revisions and print the execution plan without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := setup(cmd, v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			plan, err := runner.PlanOnly(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), planner.Summary(plan, v.GetString("cli_name")))
			return nil
		},
	}
}

// setup loads settings, installs the logger and wires the runner to the
// real external tools. Progress output and hyperfine's own output go to
// progress.
func setup(cmd *cobra.Command, v *viper.Viper, progress io.Writer) (*executor.Runner, error) {
	settings, err := config.LoadSettings(v)
	if err != nil {
		return nil, err
	}
	level, err := parseLevel(settings.LogLevel)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(newLogger(os.Stderr, level, settings.LogFormat))

	runner := process.NewLocal()
	timing := hyperfine.New(runner, settings.HyperfineBinary)
	timing.Stdout = progress
	timing.Stderr = cmd.ErrOrStderr()

	return executor.NewRunner(
		settings,
		git.NewClient(runner, settings.GitBinary),
		npm.NewClient(runner, settings.NPMBinary),
		timing,
		executor.WithOutput(progress),
	), nil
}
