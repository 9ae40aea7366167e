// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/digitalhand/ros2-setup/internal/config"
	"github.com/digitalhand/ros2-setup/internal/provision"
)

const defaultConfigPathHint = "~/.config/ros2-setup/config.yaml"

// settings is the resolved configuration for a command.
type settings struct {
	cfg        config.InstallConfig
	sources    config.Sources
	configFile string
}

// addSettingsFlags registers the flags read by flagLayer and configFileFor.
func addSettingsFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.String("config", "", "YAML or TOML config file (default "+defaultConfigPathHint+")")
	pf.String("distro", "", "ROS 2 distribution: "+strings.Join(distroNames(), ", "))
	pf.String("variant", "", "metapackage bundle: desktop or ros-base")
	pf.Bool("dev-tools", true, "also install ros-dev-tools")
	pf.Bool("skip-upgrade", false, "do not run apt-get upgrade")
}

func distroNames() []string {
	var names []string
	for _, d := range config.Distros() {
		names = append(names, d.Name)
	}
	return names
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ros2-setup", "config.yaml")
}

// configFileFor picks the config file: --config, then $ROS2_SETUP_CONFIG,
// then the default path when it exists. explicit reports whether the user
// named the file.
func configFileFor(cmd *cobra.Command, getenv func(string) string) (path string, explicit bool) {
	if p, _ := cmd.Flags().GetString("config"); strings.TrimSpace(p) != "" {
		return p, true
	}
	if p := strings.TrimSpace(getenv(config.EnvConfigFile)); p != "" {
		return p, true
	}
	if p := defaultConfigPath(); p != "" && pathExists(p) {
		return p, false
	}
	return "", false
}

// flagLayer turns explicitly set flags into a config layer.
func flagLayer(cmd *cobra.Command) config.Layer {
	var l config.Layer
	flags := cmd.Flags()
	if flags.Changed("variant") {
		v, _ := flags.GetString("variant")
		l.Variant = &v
	}
	if flags.Changed("distro") {
		v, _ := flags.GetString("distro")
		l.Distro = &v
	}
	if flags.Changed("dev-tools") {
		v, _ := flags.GetBool("dev-tools")
		l.DevTools = &v
	}
	if flags.Changed("skip-upgrade") {
		v, _ := flags.GetBool("skip-upgrade")
		l.SkipUpgrade = &v
	}
	return l
}

// resolveSettings layers defaults, config file, environment and flags.
// Failures come back as configuration errors.
func resolveSettings(cmd *cobra.Command, getenv func(string) string) (settings, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	var layers []config.SourcedLayer
	path, _ := configFileFor(cmd, getenv)
	if path != "" {
		fileLayer, err := config.LoadFile(path)
		if err != nil {
			return settings{}, provision.Configuration(err)
		}
		layers = append(layers, config.SourcedLayer{Source: config.SourceFile, Layer: fileLayer})
	}

	envLayer, err := config.EnvLayer(getenv)
	if err != nil {
		return settings{}, provision.Configuration(err)
	}
	layers = append(layers,
		config.SourcedLayer{Source: config.SourceEnv, Layer: envLayer},
		config.SourcedLayer{Source: config.SourceFlag, Layer: flagLayer(cmd)},
	)

	cfg, sources, err := config.Resolve(layers...)
	if err != nil {
		return settings{}, provision.Configuration(err)
	}
	return settings{cfg: cfg, sources: sources, configFile: path}, nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
