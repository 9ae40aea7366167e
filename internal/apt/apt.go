// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

// Package apt drives apt-get, add-apt-repository and dpkg on Debian-family
// systems. Every mutating command goes through sudo with a non-interactive
// frontend.
package apt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/digitalhand/ros2-setup/internal/runner"
)

// NonInteractive keeps debconf from prompting.
const NonInteractive = "DEBIAN_FRONTEND=noninteractive"

func aptGet(args ...string) runner.Command {
	return runner.Command{
		Name: "apt-get",
		Args: args,
		Sudo: true,
		Env:  []string{NonInteractive},
	}
}

// Apt is the apt-get backed package manager.
type Apt struct {
	Runner runner.Runner
}

// RefreshIndex runs apt-get update.
func (a Apt) RefreshIndex(ctx context.Context) error {
	return a.Runner.Run(ctx, aptGet("update"))
}

// Install installs names in one transaction. An empty list is a no-op.
func (a Apt) Install(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	return a.Runner.Run(ctx, aptGet(append([]string{"install", "-y"}, names...)...))
}

// Upgrade upgrades every installed package.
func (a Apt) Upgrade(ctx context.Context) error {
	return a.Runner.Run(ctx, aptGet("upgrade", "-y"))
}

// EnableComponent enables an archive component such as universe.
func (a Apt) EnableComponent(ctx context.Context, component string) error {
	return a.Runner.Run(ctx, runner.Command{
		Name: "add-apt-repository",
		Args: []string{"-y", component},
		Sudo: true,
		Env:  []string{NonInteractive},
	})
}

// Downloader fetches a URL into a local file.
type Downloader interface {
	Download(ctx context.Context, url, dir string) (string, error)
}

// Registrar installs a repository-definition .deb from a URL.
type Registrar struct {
	Runner     runner.Runner
	Downloader Downloader
	// TempDir receives the download; os.TempDir when empty.
	TempDir string
	// DryRun skips the download and hands dpkg the path it would have used.
	DryRun bool
}

// InstallSourcePackage downloads url and installs it with dpkg -i.
func (r Registrar) InstallSourcePackage(ctx context.Context, url string) error {
	var file string
	if r.DryRun {
		dir := r.TempDir
		if dir == "" {
			dir = os.TempDir()
		}
		file = filepath.Join(dir, path.Base(url))
	} else {
		if r.Downloader == nil {
			return errors.New("no downloader configured")
		}
		downloaded, err := r.Downloader.Download(ctx, url, r.TempDir)
		if err != nil {
			return err
		}
		defer os.Remove(downloaded)
		file = downloaded
	}

	return r.Runner.Run(ctx, runner.Command{
		Name: "dpkg",
		Args: []string{"-i", file},
		Sudo: true,
		Env:  []string{NonInteractive},
	})
}

// Querier runs a read-only command and returns its stdout.
type Querier interface {
	Output(ctx context.Context, c runner.Command) ([]byte, error)
}

// StatusCommand asks dpkg for the install status of name.
func StatusCommand(name string) runner.Command {
	return runner.Command{Name: "dpkg-query", Args: []string{"-W", "-f=${Status}", name}}
}

// Installed reports whether dpkg considers name fully installed.
func Installed(ctx context.Context, q Querier, name string) (bool, error) {
	out, err := q.Output(ctx, StatusCommand(name))
	if err != nil {
		var runErr *runner.Error
		if errors.As(err, &runErr) && runErr.ExitCode == 1 {
			return false, nil
		}
		return false, fmt.Errorf("query %s: %w", name, err)
	}
	return strings.TrimSpace(string(out)) == "install ok installed", nil
}
