// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/digitalhand/ros2-setup/internal/logging"
	"github.com/digitalhand/ros2-setup/internal/provision"
)

// logger is replaced in PersistentPreRunE and again once the run's log file
// is open.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:           "ros2-setup",
	Short:         "Install ROS 2 on Ubuntu",
	Long:          "ros2-setup - ROS 2 installer for Ubuntu (" + resolvedVersion() + ")",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger = logging.NewLogger(nil, cmd.ErrOrStderr(), verbose)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runInstall,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: false,
	},
}

func init() {
	addSettingsFlags(rootCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print info-level log records to stderr")

	rootCmd.Flags().Bool("dry-run", false, "print commands without executing")
	rootCmd.Flags().String("log-file", "", "log file path (default ~/Desktop/ros2_<distro>_install_<time>.log)")

	// Override help for root only; subcommands get cobra defaults.
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd == rootCmd {
			printStyledHelp(cmd.OutOrStdout())
		} else {
			cmd.InitDefaultHelpFlag()
			cobra.CheckErr(cmd.UsageFunc()(cmd))
		}
	})
}

// Execute runs the CLI and is the only place that exits non-zero.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func reportError(w io.Writer, err error) {
	logFailure(logger, err)
	_ = logger.Sync()

	fmt.Fprintln(w, colorize(ansiRed, "error: ")+err.Error())
}

// logFailure records the error that ends a run, with its kind and step.
func logFailure(l *zap.Logger, err error) {
	fields := []zap.Field{zap.Error(err)}
	var pe *provision.Error
	if errors.As(err, &pe) {
		fields = append(fields, zap.Stringer("kind", pe.Kind), zap.String("step", pe.Step))
	}
	l.Error("run failed", fields...)
}

func printStyledHelp(w io.Writer) {
	groups := []helpGroup{
		{
			title: "Install",
			commands: []helpEntry{
				{"(no command)", "Run the full installation (--dry-run to preview)"},
				{"steps", "List the installation steps"},
			},
		},
		{
			title: "Checks",
			commands: []helpEntry{
				{"doctor", "Pre-flight check (OS, tools, disk, network)"},
				{"verify", "Confirm packages, rosdep and shell setup"},
			},
		},
		{
			title: "Shell",
			commands: []helpEntry{
				{"shell apply", "Add the ROS 2 source line to your shell rc"},
				{"shell remove", "Remove the ROS 2 source line"},
			},
		},
		{
			title: "Configuration",
			commands: []helpEntry{
				{"config show", "Print resolved settings and where they came from"},
				{"config init", "Write a commented config file"},
			},
		},
		{
			title: "Other",
			commands: []helpEntry{
				{"version", "Print CLI version and build metadata"},
				{"completion", "Generate shell completions"},
			},
		},
	}

	fmt.Fprintf(w, "ros2-setup - ROS 2 installer for Ubuntu (%s)\n", resolvedVersion())
	printGroupedHelp(w, groups)

	fmt.Fprintln(w, headerText("Flags"))
	fmt.Fprint(w, rootCmd.LocalFlags().FlagUsages())
	fmt.Fprintln(w)

	fmt.Fprintln(w, headerText("Quick Start"))
	fmt.Fprintln(w, "  ros2-setup doctor")
	fmt.Fprintln(w, "  ros2-setup --dry-run")
	fmt.Fprintln(w, "  ros2-setup")
	fmt.Fprintln(w)
}
