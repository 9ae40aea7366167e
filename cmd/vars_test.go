// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package cmd

import (
	"testing"

	"github.com/digitalhand/ros2-setup/internal/config"
)

func TestSettingEnvVars_MatchConfigLayer(t *testing.T) {
	// Every setting variable must be one EnvLayer actually reads.
	for _, v := range settingEnvVars {
		env := map[string]string{v.name: "bogus"}
		l, err := config.EnvLayer(envOf(env))
		if err == nil && l == (config.Layer{}) {
			t.Errorf("%s is not read by config.EnvLayer", v.name)
		}
	}
}

func TestAllEnvVars(t *testing.T) {
	all := allEnvVars()
	expected := len(settingEnvVars) + len(auxiliaryEnvVars)
	if len(all) != expected {
		t.Errorf("allEnvVars() returned %d items, expected %d", len(all), expected)
	}

	for i, v := range settingEnvVars {
		if all[i] != v {
			t.Errorf("allEnvVars()[%d] = %q, want %q", i, all[i].name, v.name)
		}
	}

	seen := map[string]bool{}
	for _, v := range all {
		if seen[v.name] {
			t.Errorf("duplicate variable %s", v.name)
		}
		seen[v.name] = true
		if v.desc == "" {
			t.Errorf("%s has no description", v.name)
		}
	}
}
