// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/digitalhand/ros2-setup/internal/config"
	"github.com/digitalhand/ros2-setup/internal/provision"
	"github.com/digitalhand/ros2-setup/internal/shellrc"
)

func TestPrintPlan(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer

	printPlan(&buf, config.Default(), "/home/ros/.config/ros2-setup/config.yaml", "", true)

	out := buf.String()
	for _, want := range []string{
		"ROS 2 Jazzy Jalisco on Ubuntu noble",
		"variant:      desktop",
		"dry_run:      true",
		"config:       /home/ros/.config/ros2-setup/config.yaml",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "log:") {
		t.Errorf("no log line expected without a log path:\n%s", out)
	}
}

func TestPrintFinished(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer

	res := provision.Result{
		Tag:         "1.1.0",
		ShellFile:   "/home/ros/.bashrc",
		ShellLine:   "source /opt/ros/jazzy/setup.bash",
		ShellAction: shellrc.Appended,
	}
	printFinished(&buf, config.Default(), res, "/home/ros/Desktop/ros2.log", false, 90*time.Second)

	out := buf.String()
	for _, want := range []string{
		"ROS 2 Jazzy Jalisco ready (1m30s)",
		"ros2-apt-source 1.1.0",
		"/home/ros/.bashrc (appended)",
		"/home/ros/Desktop/ros2.log",
		"  source /opt/ros/jazzy/setup.bash",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintFinished_DryRun(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer

	printFinished(&buf, config.Default(), provision.Result{}, "", true, time.Second)
	if !strings.Contains(buf.String(), "no changes made") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestReportError(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer

	reportError(&buf, provision.Preconditionf("ROS 2 Jazzy Jalisco requires Ubuntu noble, found jammy"))
	if got := buf.String(); got != "error: preflight: ROS 2 Jazzy Jalisco requires Ubuntu noble, found jammy\n" {
		t.Errorf("got %q", got)
	}

	buf.Reset()
	reportError(&buf, errors.New("plain"))
	if got := buf.String(); got != "error: plain\n" {
		t.Errorf("got %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	if !strings.HasPrefix(userAgent(), "ros2-setup/") {
		t.Errorf("userAgent() = %q", userAgent())
	}
}

func TestStepsCommand(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	stepsCmd.SetOut(&buf)
	defer stepsCmd.SetOut(nil)

	stepsCmd.Run(stepsCmd, nil)

	out := buf.String()
	for _, want := range []string{"[1/7] Configure locale", "[7/7] Configure shell", "--dry-run"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunInstall_GateRejectionLeavesNoLog(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, v := range settingEnvVars {
		t.Setenv(v.name, "")
	}
	t.Setenv(config.EnvConfigFile, "")

	home := t.TempDir()
	desktop := filepath.Join(home, "Desktop")
	if err := os.Mkdir(desktop, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", home)

	orig := hostGate
	defer func() { hostGate = orig }()
	hostGate = provision.Gate{Geteuid: func() int { return 0 }}

	c, buf := newTestCommand(runInstall)
	c.Flags().Bool("dry-run", false, "")
	c.Flags().Bool("verbose", false, "")
	c.Flags().String("log-file", "", "")
	c.SetArgs(nil)

	err := c.Execute()
	if err == nil || !strings.Contains(err.Error(), "do not run as root") {
		t.Fatalf("err = %v, want root rejection", err)
	}
	if kind, _ := provision.KindOf(err); kind != provision.KindPrecondition {
		t.Errorf("kind = %v, want %v", kind, provision.KindPrecondition)
	}

	for _, dir := range []string{home, desktop} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			if e.Name() != "Desktop" {
				t.Errorf("gate rejection left %s in %s", e.Name(), dir)
			}
		}
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be printed before the gate passes, got %q", buf.String())
	}
}

func TestLogFailure(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	err := &provision.Error{Kind: provision.KindExternalCommand, Step: "Upgrade system packages", Err: errors.New("exit status 100")}
	logFailure(zap.New(core), err)

	entries := logs.FilterMessage("run failed").All()
	if len(entries) != 1 {
		t.Fatalf("got %d run failed records, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["step"] != "Upgrade system packages" {
		t.Errorf("step = %v", fields["step"])
	}
	if fields["kind"] != provision.KindExternalCommand.String() {
		t.Errorf("kind = %v", fields["kind"])
	}
}
