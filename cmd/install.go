// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/digitalhand/ros2-setup/internal/config"
	"github.com/digitalhand/ros2-setup/internal/logging"
	"github.com/digitalhand/ros2-setup/internal/provision"
	"github.com/digitalhand/ros2-setup/internal/release"
	"github.com/digitalhand/ros2-setup/internal/runner"
)

// hostGate checks the machine before an install. Tests replace it.
var hostGate provision.Gate

func userAgent() string {
	return "ros2-setup/" + Version
}

func runInstall(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd, nil)
	if err != nil {
		return err
	}
	cfg := s.cfg

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")
	logPath, _ := cmd.Flags().GetString("log-file")

	user, err := provision.CurrentUser()
	if err != nil {
		return provision.Preconditionf("%w", err)
	}

	// The gate runs before anything touches the filesystem, the log included.
	gate := hostGate
	id, err := gate.Check(cfg.Distro)
	if err != nil {
		return err
	}

	if logPath == "" && !dryRun {
		logPath = logging.DefaultPath(user.Home, cfg.Distro.Name, time.Now())
	}

	session, err := logging.Open(logging.Options{
		Path:    logPath,
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
		Verbose: verbose,
	})
	if err != nil {
		return provision.Preconditionf("%w", err)
	}
	defer session.Close()
	console := logger
	logger = session.Logger
	defer func() { logger = console }()

	out := session.Stdout
	printPlan(out, cfg, s.configFile, logPath, dryRun)

	var r runner.Runner
	if dryRun {
		r = &runner.Recorder{}
	} else {
		er := runner.NewExecRunner()
		er.Stdout = session.Stdout
		er.Stderr = session.Stderr
		r = er
	}

	client := release.NewClient(userAgent())
	pipeline := provision.New(cfg, provision.Deps{
		Runner:     r,
		Releases:   client,
		Downloader: client,
		User:       user,
		Gate:       &gate,
		Reporter:   progressPrinter{w: out, dryRun: dryRun},
		Logger:     logger,
		DryRun:     dryRun,
	})

	start := time.Now()
	res, err := pipeline.RunChecked(cmd.Context(), id)
	if err != nil {
		logFailure(logger, err)
		session.Note("error: " + err.Error() + "\n")
		return err
	}
	logger.Info("install finished", zap.Duration("elapsed", time.Since(start)))

	printFinished(out, cfg, res, logPath, dryRun, time.Since(start))
	return nil
}

func printPlan(w io.Writer, cfg config.InstallConfig, configFile, logPath string, dryRun bool) {
	printHeader(w, fmt.Sprintf("ROS 2 %s on Ubuntu %s", cfg.Distro.Title, cfg.Distro.Codename))
	fmt.Fprintf(w, "variant:      %s\n", cfg.Variant)
	fmt.Fprintf(w, "dev_tools:    %v\n", cfg.DevTools)
	fmt.Fprintf(w, "skip_upgrade: %v\n", cfg.SkipUpgrade)
	fmt.Fprintf(w, "dry_run:      %v\n", dryRun)
	if configFile != "" {
		fmt.Fprintf(w, "config:       %s\n", configFile)
	}
	if logPath != "" {
		fmt.Fprintf(w, "log:          %s\n", logPath)
	}
	fmt.Fprintln(w)
}

func printFinished(w io.Writer, cfg config.InstallConfig, res provision.Result, logPath string, dryRun bool, elapsed time.Duration) {
	fmt.Fprintln(w)
	if dryRun {
		printStatus(w, markInfo(), "dry_run", "no changes made")
		return
	}

	printStatus(w, markSuccess(), "install", fmt.Sprintf("ROS 2 %s ready (%s)", cfg.Distro.Title, formatDuration(elapsed)))
	printStatus(w, markSuccess(), "apt_source", "ros2-apt-source "+res.Tag)
	printStatus(w, markSuccess(), "shell_file", res.ShellFile+" ("+res.ShellAction.String()+")")
	if logPath != "" {
		printStatus(w, markInfo(), "log_file", logPath)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "next:")
	fmt.Fprintf(w, "  %s\n", res.ShellLine)
	fmt.Fprintln(w, "  ros2 doctor")
	fmt.Fprintln(w, "  ros2-setup verify")
}
