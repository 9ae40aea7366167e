// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package cmd

import "github.com/digitalhand/ros2-setup/internal/config"

// envVar describes an environment variable the installer reads.
type envVar struct {
	name string
	desc string
}

// Shared environment variable lists used by config show and doctor.
var settingEnvVars = []envVar{
	{config.EnvVariant, "metapackage bundle (desktop, ros-base)"},
	{config.EnvDevTools, "install ros-dev-tools (1/0)"},
	{config.EnvSkipUpgrade, "skip apt-get upgrade (1/0)"},
	{config.EnvDistro, "ROS 2 distribution"},
}

var auxiliaryEnvVars = []envVar{
	{config.EnvConfigFile, "config file path"},
	{"NO_COLOR", "disable colored output"},
}

// allEnvVars returns setting variables first, then auxiliary ones.
func allEnvVars() []envVar {
	out := make([]envVar, 0, len(settingEnvVars)+len(auxiliaryEnvVars))
	out = append(out, settingEnvVars...)
	out = append(out, auxiliaryEnvVars...)
	return out
}
