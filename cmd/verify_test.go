// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/digitalhand/ros2-setup/internal/config"
	"github.com/digitalhand/ros2-setup/internal/provision"
	"github.com/digitalhand/ros2-setup/internal/runner"
)

// fakeQuerier answers dpkg-query for a fixed set of installed packages.
type fakeQuerier struct {
	installed map[string]bool
}

func (q fakeQuerier) Output(_ context.Context, c runner.Command) ([]byte, error) {
	pkg := c.Args[len(c.Args)-1]
	if q.installed[pkg] {
		return []byte("install ok installed"), nil
	}
	return nil, &runner.Error{Command: c, ExitCode: 1}
}

func installedVerifyEnv(t *testing.T) verifyEnv {
	t.Helper()
	dir := t.TempDir()
	script := filepath.Join(dir, "setup.bash")
	marker := filepath.Join(dir, "20-default.list")
	rc := filepath.Join(dir, ".bashrc")
	for path, content := range map[string]string{
		script: "# ros\n",
		marker: "yaml https://example.invalid/base.yaml\n",
		rc:     "source /opt/ros/jazzy/setup.bash\n",
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default()
	installed := map[string]bool{}
	for _, pkg := range cfg.Metapackages() {
		installed[pkg] = true
	}
	return verifyEnv{
		cfg:          cfg,
		user:         provision.TargetUser{Name: "ros", Home: dir, Shell: "/bin/bash"},
		querier:      fakeQuerier{installed: installed},
		setupScript:  script,
		rosdepMarker: marker,
	}
}

func TestVerify_Installed(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer

	if err := verify(context.Background(), &buf, installedVerifyEnv(t)); err != nil {
		t.Fatalf("verify: %v\n%s", err, buf.String())
	}
	if !strings.Contains(buf.String(), "6/6 checks passed") {
		t.Errorf("unexpected summary:\n%s", buf.String())
	}
}

func TestVerify_MissingPackage(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	env := installedVerifyEnv(t)
	env.querier = fakeQuerier{installed: map[string]bool{"python3-rosdep": true}}

	var buf bytes.Buffer
	err := verify(context.Background(), &buf, env)
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), "2/6") {
		t.Errorf("err = %v, want 2/6 failed", err)
	}
	if !strings.Contains(buf.String(), "✗ pkg:ros-jazzy-desktop") {
		t.Errorf("missing failure line:\n%s", buf.String())
	}
}

func TestVerify_ShellLineMissing(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	env := installedVerifyEnv(t)
	if err := os.WriteFile(filepath.Join(env.user.Home, ".bashrc"), []byte("# empty\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := verify(context.Background(), &buf, env); err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(buf.String(), "missing source /opt/ros/jazzy/setup.bash") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestVerify_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	if err := verify(ctx, &buf, installedVerifyEnv(t)); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
