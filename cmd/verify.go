// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/digitalhand/ros2-setup/internal/apt"
	"github.com/digitalhand/ros2-setup/internal/config"
	"github.com/digitalhand/ros2-setup/internal/provision"
	"github.com/digitalhand/ros2-setup/internal/rosdep"
	"github.com/digitalhand/ros2-setup/internal/runner"
	"github.com/digitalhand/ros2-setup/internal/shellrc"
)

func init() {
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Confirm packages, rosdep and shell setup after an install",
	Args:  cobra.NoArgs,
	RunE:  runVerify,
}

type verifyEnv struct {
	cfg          config.InstallConfig
	user         provision.TargetUser
	querier      apt.Querier
	setupScript  string
	rosdepMarker string
}

type depCheck struct {
	id    string
	check func(ctx context.Context) (ok bool, detail string)
}

func runVerify(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd, nil)
	if err != nil {
		return err
	}
	user, err := provision.CurrentUser()
	if err != nil {
		return provision.Preconditionf("%w", err)
	}

	return verify(cmd.Context(), cmd.OutOrStdout(), verifyEnv{
		cfg:     s.cfg,
		user:    user,
		querier: runner.NewExecRunner(),
	})
}

func (env verifyEnv) checks() []depCheck {
	var checks []depCheck
	for _, pkg := range env.cfg.Metapackages() {
		checks = append(checks, depCheck{
			id: "pkg:" + pkg,
			check: func(ctx context.Context) (bool, string) {
				ok, err := apt.Installed(ctx, env.querier, pkg)
				switch {
				case err != nil:
					return false, err.Error()
				case ok:
					return true, "installed"
				default:
					return false, "not installed"
				}
			},
		})
	}

	script := env.setupScript
	if script == "" {
		script = env.cfg.Distro.SetupScript("bash")
	}
	checks = append(checks, depCheck{"setup_script", func(context.Context) (bool, string) {
		if st, err := os.Stat(script); err != nil || st.IsDir() {
			return false, "missing " + script
		}
		return true, script
	}})

	marker := env.rosdepMarker
	if marker == "" {
		marker = rosdep.DefaultMarker
	}
	checks = append(checks, depCheck{"rosdep", func(context.Context) (bool, string) {
		st, err := rosdep.Check(marker)
		if err != nil {
			return false, err.Error()
		}
		if st != rosdep.AlreadyDone {
			return false, "not initialized (missing " + marker + ")"
		}
		return true, "initialized"
	}})

	file, shell := shellrc.File(env.user.Home, env.user.Shell)
	line := shellrc.SourceLine(env.cfg.Distro.SetupScript(shell))
	checks = append(checks, depCheck{"shell_file", func(context.Context) (bool, string) {
		present, err := shellrc.Present(file, line)
		switch {
		case err != nil:
			return false, err.Error()
		case !present:
			return false, "missing " + line + " in " + file
		}
		return true, file
	}})

	return checks
}

func verify(ctx context.Context, w io.Writer, env verifyEnv) error {
	printHeader(w, "ROS 2 "+env.cfg.Distro.Title+" install status")
	fmt.Fprintln(w)

	checks := env.checks()
	passed := 0
	for _, dc := range checks {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, detail := dc.check(ctx)
		if ok {
			printStatus(w, markSuccess(), dc.id, detail)
			passed++
		} else {
			printStatus(w, markFailure(), dc.id, detail)
		}
	}

	total := len(checks)
	fmt.Fprintf(w, "\n%s %d/%d checks passed\n", markInfo(), passed, total)
	logger.Info("verify finished", zap.Int("passed", passed), zap.Int("total", total))

	if passed < total {
		fmt.Fprintln(w, "next:")
		fmt.Fprintln(w, "  ros2-setup doctor")
		fmt.Fprintln(w, "  ros2-setup")
		return fmt.Errorf("%d/%d checks failed", total-passed, total)
	}
	return nil
}
