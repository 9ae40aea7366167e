// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/digitalhand/ros2-setup/internal/config"
	"github.com/digitalhand/ros2-setup/internal/provision"
	"github.com/digitalhand/ros2-setup/internal/shellrc"
)

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.AddCommand(shellApplyCmd)
	shellCmd.AddCommand(shellRemoveCmd)

	shellCmd.PersistentFlags().String("shell-file", "", "shell rc file to update (default: ~/.bashrc or ~/.zshrc from $SHELL)")
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Manage the ROS 2 source line in your shell rc file",
}

var shellApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Add the ROS 2 source line to your shell rc file",
	Args:  cobra.NoArgs,
	RunE:  runShellApply,
}

var shellRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the ROS 2 source line from your shell rc file",
	Args:  cobra.NoArgs,
	RunE:  runShellRemove,
}

// shellTarget picks the rc file and the source line for distro d. An
// explicit file selects the setup script by its name.
func shellTarget(u provision.TargetUser, d config.Distro, override string) (file, line string) {
	file, shell := shellrc.File(u.Home, u.Shell)
	if override != "" {
		file = override
		shell = "bash"
		if strings.Contains(filepath.Base(override), "zsh") {
			shell = "zsh"
		}
	}
	return file, shellrc.SourceLine(d.SetupScript(shell))
}

func shellSettings(cmd *cobra.Command) (file, line string, err error) {
	s, err := resolveSettings(cmd, nil)
	if err != nil {
		return "", "", err
	}
	u, err := provision.CurrentUser()
	if err != nil {
		return "", "", err
	}
	override, _ := cmd.Flags().GetString("shell-file")
	file, line = shellTarget(u, s.cfg.Distro, override)
	return file, line, nil
}

func runShellApply(cmd *cobra.Command, args []string) error {
	file, line, err := shellSettings(cmd)
	if err != nil {
		return err
	}

	action, err := shellrc.Apply(file, line, shellrc.DefaultComment)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", file, err)
	}
	logger.Info("shell rc applied", zap.String("file", file), zap.Stringer("action", action))

	w := cmd.OutOrStdout()
	if action.Changed() {
		printStatus(w, markSuccess(), "shell_file", action.String()+" "+file)
	} else {
		printStatus(w, markSuccess(), "shell_file", "already contains "+line)
	}
	fmt.Fprintln(w, "next:")
	fmt.Fprintf(w, "  source %s\n", file)
	return nil
}

func runShellRemove(cmd *cobra.Command, args []string) error {
	file, line, err := shellSettings(cmd)
	if err != nil {
		return err
	}

	removed, err := shellrc.Remove(file, line, shellrc.DefaultComment)
	if err != nil {
		return fmt.Errorf("failed to clean %s: %w", file, err)
	}
	logger.Info("shell rc cleaned", zap.String("file", file), zap.Bool("removed", removed))

	w := cmd.OutOrStdout()
	if removed {
		printStatus(w, markSuccess(), "shell_file", "removed "+line)
		fmt.Fprintln(w, "open a new shell to drop the ROS 2 environment")
	} else {
		printStatus(w, markInfo(), "shell_file", "no ROS 2 source line in "+file)
	}
	return nil
}
