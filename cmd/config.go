// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/digitalhand/ros2-setup/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and create the installer configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print resolved settings and where each one came from",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented config file to " + defaultConfigPathHint,
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite config if it already exists")
	configInitCmd.Flags().String("path", "", "write to this path instead of the default")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd, nil)
	if err != nil {
		return err
	}
	printSettings(cmd.OutOrStdout(), s, os.Getenv)
	return nil
}

func printSettings(w io.Writer, s settings, getenv func(string) string) {
	cfg := s.cfg
	printHeader(w, "Settings")
	printStatus(w, markInfo(), "distro", fmt.Sprintf("%s (%s)", cfg.Distro.Name, s.sources.Distro))
	printStatus(w, markInfo(), "variant", fmt.Sprintf("%s (%s)", cfg.Variant, s.sources.Variant))
	printStatus(w, markInfo(), "dev_tools", fmt.Sprintf("%v (%s)", cfg.DevTools, s.sources.DevTools))
	printStatus(w, markInfo(), "skip_upgrade", fmt.Sprintf("%v (%s)", cfg.SkipUpgrade, s.sources.SkipUpgrade))

	file := s.configFile
	if file == "" {
		file = "none"
	}
	printStatus(w, markInfo(), "config_file", file)
	printStatus(w, markInfo(), "ubuntu", cfg.Distro.Codename)
	printStatus(w, markInfo(), "packages", strings.Join(cfg.Metapackages(), " "))

	fmt.Fprintln(w)
	printHeader(w, "Environment")
	for _, v := range allEnvVars() {
		val := getenv(v.name)
		if val == "" {
			val = dimText("unset")
		}
		fmt.Fprintf(w, "  %-20s %-12s %s\n", v.name, val, dimText(v.desc))
	}
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	dest, _ := cmd.Flags().GetString("path")
	if dest == "" {
		dest = defaultConfigPath()
		if dest == "" {
			return fmt.Errorf("cannot determine config directory; use --path")
		}
	}

	force, _ := cmd.Flags().GetBool("force")
	if !force && pathExists(dest) {
		return fmt.Errorf("config already exists: %s (use --force to overwrite)", dest)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(dest, []byte(config.SampleYAML()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printStatus(cmd.OutOrStdout(), markSuccess(), "config", dest)
	return nil
}
