// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/digitalhand/ros2-setup/internal/config"
	"github.com/digitalhand/ros2-setup/internal/osrelease"
	"github.com/digitalhand/ros2-setup/internal/provision"
	"github.com/digitalhand/ros2-setup/internal/release"
	"github.com/digitalhand/ros2-setup/internal/rosdep"
	"github.com/digitalhand/ros2-setup/internal/shellrc"
)

type checkResult struct {
	name     string
	required bool
	ok       bool
	detail   string
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Pre-flight check (OS, tools, disk, network)",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

const networkTimeout = 10 * time.Second

// doctorEnv holds what the probes read. Zero fields fall back to the real
// system.
type doctorEnv struct {
	cfg          config.InstallConfig
	user         provision.TargetUser
	geteuid      func() int
	osRelease    string
	lookPath     func(string) (string, error)
	freeSpace    func(path string) (uint64, error)
	latestTag    func(ctx context.Context) (string, error)
	rosdepMarker string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd, nil)
	if err != nil {
		return err
	}
	user, err := provision.CurrentUser()
	if err != nil {
		return provision.Preconditionf("%w", err)
	}

	client := release.NewClient(userAgent())
	env := doctorEnv{
		cfg:       s.cfg,
		user:      user,
		latestTag: client.LatestTag,
	}
	return doctor(cmd.Context(), cmd.OutOrStdout(), env)
}

func doctor(ctx context.Context, w io.Writer, env doctorEnv) error {
	results := env.collect(ctx)

	cfg := env.cfg
	printHeader(w, "ROS 2 Doctor")
	fmt.Fprintf(w, "target: ROS 2 %s on Ubuntu %s, %s\n\n", cfg.Distro.Title, cfg.Distro.Codename, cfg.Variant)

	passed, warned, failed := 0, 0, 0
	for _, r := range results {
		status := markSuccess()
		if !r.ok && r.required {
			status = markFailure()
			failed++
		} else if !r.ok {
			status = markWarning()
			warned++
		} else {
			passed++
		}
		printStatus(w, status, r.name, r.detail)
	}

	printSummaryBox(w, passed, warned, failed)
	logger.Info("doctor finished", zap.Int("passed", passed), zap.Int("warned", warned), zap.Int("failed", failed))

	if failed > 0 {
		return fmt.Errorf("doctor found %d required issue(s)", failed)
	}

	fmt.Fprintln(w, "doctor passed")
	return nil
}

// collect runs every probe concurrently and returns the results in a fixed
// order.
func (env doctorEnv) collect(ctx context.Context) []checkResult {
	probes := []func(context.Context) []checkResult{
		env.checkHost,
		env.checkTools,
		env.checkDisk,
		env.checkNetwork,
		env.checkState,
	}

	out := make([][]checkResult, len(probes))
	g, ctx := errgroup.WithContext(ctx)
	for i, probe := range probes {
		g.Go(func() error {
			out[i] = probe(ctx)
			return nil
		})
	}
	_ = g.Wait()

	var results []checkResult
	for _, r := range out {
		results = append(results, r...)
	}
	return results
}

func (env doctorEnv) checkHost(context.Context) []checkResult {
	geteuid := env.geteuid
	if geteuid == nil {
		geteuid = unix.Geteuid
	}
	user := checkResult{name: "user:" + env.user.Name, required: true, ok: true, detail: "not root"}
	if geteuid() == 0 {
		user.ok = false
		user.detail = "running as root; run as your regular user"
	}

	path := env.osRelease
	if path == "" {
		path = osrelease.DefaultPath
	}
	host := checkResult{name: "os:release", required: true}
	id, err := osrelease.Read(path)
	switch {
	case err != nil:
		host.detail = err.Error()
	default:
		if err := provision.CheckIdentity(id, env.cfg.Distro); err != nil {
			host.detail = err.Error()
		} else {
			host.ok = true
			host.detail = id.String()
		}
	}
	return []checkResult{user, host}
}

// Tools the pipeline installs itself are optional here.
var doctorTools = []struct {
	name     string
	required bool
}{
	{"sudo", true},
	{"apt-get", true},
	{"dpkg", true},
	{"add-apt-repository", false},
	{"locale-gen", false},
}

func (env doctorEnv) checkTools(context.Context) []checkResult {
	look := env.lookPath
	if look == nil {
		look = exec.LookPath
	}

	results := make([]checkResult, 0, len(doctorTools))
	for _, tool := range doctorTools {
		r := checkResult{name: "tool:" + tool.name, required: tool.required}
		if path, err := look(tool.name); err == nil {
			r.ok = true
			r.detail = path
		} else if tool.required {
			r.detail = "not found in PATH"
		} else {
			r.detail = "not found (installed during setup)"
		}
		results = append(results, r)
	}
	return results
}

// diskNeeded is a rough footprint of the variant under /opt.
func diskNeeded(v config.Variant) uint64 {
	if v == config.VariantBase {
		return 2 << 30
	}
	return 5 << 30
}

func (env doctorEnv) checkDisk(context.Context) []checkResult {
	free := env.freeSpace
	if free == nil {
		free = freeBytes
	}

	dir := existingParent("/opt")
	need := diskNeeded(env.cfg.Variant)
	r := checkResult{name: "disk:" + dir, required: true}
	avail, err := free(dir)
	switch {
	case err != nil:
		r.detail = err.Error()
	case avail < need:
		r.detail = fmt.Sprintf("%s free, %s needed for %s", formatBytes(avail), formatBytes(need), env.cfg.Variant)
	default:
		r.ok = true
		r.detail = formatBytes(avail) + " free"
	}
	return []checkResult{r}
}

func (env doctorEnv) checkNetwork(ctx context.Context) []checkResult {
	r := checkResult{name: "network:github", required: true}
	if env.latestTag == nil {
		r.detail = "no release client"
		return []checkResult{r}
	}

	ctx, cancel := context.WithTimeout(ctx, networkTimeout)
	defer cancel()
	tag, err := env.latestTag(ctx)
	if err != nil {
		r.detail = err.Error()
		return []checkResult{r}
	}
	r.ok = true
	r.detail = "ros2-apt-source " + tag
	return []checkResult{r}
}

// checkState reports what a previous install left behind. Nothing here is
// required.
func (env doctorEnv) checkState(context.Context) []checkResult {
	marker := env.rosdepMarker
	if marker == "" {
		marker = rosdep.DefaultMarker
	}
	rd := checkResult{name: "rosdep:sources", detail: "not initialized yet"}
	if st, err := rosdep.Check(marker); err != nil {
		rd.detail = err.Error()
	} else if st == rosdep.AlreadyDone {
		rd.ok = true
		rd.detail = "initialized"
	}

	file, shell := shellrc.File(env.user.Home, env.user.Shell)
	line := shellrc.SourceLine(env.cfg.Distro.SetupScript(shell))
	rc := checkResult{name: "shell:" + filepath.Base(file), detail: "no ROS 2 source line yet"}
	if present, err := shellrc.Present(file, line); err != nil {
		rc.detail = err.Error()
	} else if present {
		rc.ok = true
		rc.detail = line
	}

	script := env.cfg.Distro.SetupScript("bash")
	setup := checkResult{name: "ros:" + env.cfg.Distro.Name, detail: "not installed yet"}
	if _, err := os.Stat(script); err == nil {
		setup.ok = true
		setup.detail = script
	} else if !errors.Is(err, fs.ErrNotExist) {
		setup.detail = err.Error()
	}

	return []checkResult{rd, rc, setup}
}

func freeBytes(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return st.Bavail * uint64(st.Bsize), nil
}

// existingParent walks up from path to the first directory that exists.
func existingParent(path string) string {
	for {
		if pathExists(path) {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}

func formatBytes(n uint64) string {
	const gib = 1 << 30
	if n >= gib {
		return fmt.Sprintf("%.1f GiB", float64(n)/gib)
	}
	return fmt.Sprintf("%d MiB", n>>20)
}
