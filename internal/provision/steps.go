// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package provision

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/digitalhand/ros2-setup/internal/rosdep"
	"github.com/digitalhand/ros2-setup/internal/runner"
	"github.com/digitalhand/ros2-setup/internal/shellrc"
)

// Locale is generated and made the system default.
const Locale = "en_US.UTF-8"

// Step is one numbered stage of the install.
type Step struct {
	Name        string
	Description string

	run func(*Pipeline, context.Context) error
}

// Steps returns the stages in execution order.
func Steps() []Step {
	return []Step{
		{
			Name:        "Configure locale",
			Description: "Install locales and make " + Locale + " the default",
			run:         (*Pipeline).configureLocale,
		},
		{
			Name:        "Enable universe repository",
			Description: "Install software-properties-common and enable Ubuntu universe",
			run:         (*Pipeline).enableUniverse,
		},
		{
			Name:        "Install ROS 2 apt source",
			Description: "Resolve the latest ros2-apt-source release and install it with dpkg",
			run:         (*Pipeline).installAptSource,
		},
		{
			Name:        "Upgrade system packages",
			Description: "apt-get upgrade, unless skipped",
			run:         (*Pipeline).upgrade,
		},
		{
			Name:        "Install ROS 2 packages",
			Description: "Install the selected metapackage, python3-rosdep and optional ros-dev-tools",
			run:         (*Pipeline).installMetapackages,
		},
		{
			Name:        "Initialize rosdep",
			Description: "sudo rosdep init once, then rosdep update",
			run:         (*Pipeline).initRosdep,
		},
		{
			Name:        "Configure shell",
			Description: "Source the ROS 2 setup script from the shell startup file",
			run:         (*Pipeline).configureShell,
		},
	}
}

func (p *Pipeline) configureLocale(ctx context.Context) error {
	if err := p.packages.RefreshIndex(ctx); err != nil {
		return err
	}
	if err := p.packages.Install(ctx, "locales"); err != nil {
		return err
	}
	if err := p.run.Run(ctx, runner.Command{
		Name: "locale-gen",
		Args: []string{"en_US", Locale},
		Sudo: true,
	}); err != nil {
		return err
	}
	if err := p.run.Run(ctx, runner.Command{
		Name: "update-locale",
		Args: []string{"LC_ALL=" + Locale, "LANG=" + Locale},
		Sudo: true,
	}); err != nil {
		return err
	}
	if p.dryRun {
		return nil
	}
	if err := p.setenv("LANG", Locale); err != nil {
		return fmt.Errorf("set LANG: %w", err)
	}
	return nil
}

func (p *Pipeline) enableUniverse(ctx context.Context) error {
	if err := p.packages.Install(ctx, "software-properties-common"); err != nil {
		return err
	}
	if err := p.components.EnableComponent(ctx, "universe"); err != nil {
		return err
	}
	return p.packages.RefreshIndex(ctx)
}

func (p *Pipeline) installAptSource(ctx context.Context) error {
	tag, err := p.releases.LatestTag(ctx)
	if err != nil {
		return err
	}
	p.result.Tag = tag

	url := p.releases.PackageURL(tag, p.cfg.Distro.Codename)
	p.notice(fmt.Sprintf("ros2-apt-source %s for %s", tag, p.cfg.Distro.Codename), zap.String("url", url))

	if err := p.repos.InstallSourcePackage(ctx, url); err != nil {
		return err
	}
	return p.packages.RefreshIndex(ctx)
}

func (p *Pipeline) upgrade(ctx context.Context) error {
	if p.cfg.SkipUpgrade {
		p.notice("Skipping apt-get upgrade as requested")
		return nil
	}
	return p.packages.Upgrade(ctx)
}

func (p *Pipeline) installMetapackages(ctx context.Context) error {
	return p.packages.Install(ctx, p.cfg.Metapackages()...)
}

func (p *Pipeline) initRosdep(ctx context.Context) error {
	state, err := p.rosdep.Init(ctx)
	if err != nil {
		return err
	}
	p.result.Rosdep = state
	if state == rosdep.AlreadyDone {
		p.notice("rosdep already initialized, skipping rosdep init")
	}
	return p.rosdep.Update(ctx)
}

func (p *Pipeline) configureShell(ctx context.Context) error {
	file, shell := shellrc.File(p.user.Home, p.user.Shell)
	line := shellrc.SourceLine(p.cfg.Distro.SetupScript(shell))
	p.result.ShellFile = file
	p.result.ShellLine = line

	var (
		action shellrc.Action
		err    error
	)
	if p.dryRun {
		_, action, err = shellrc.Inspect(file, line, shellrc.DefaultComment)
	} else {
		action, err = shellrc.Apply(file, line, shellrc.DefaultComment)
	}
	if err != nil {
		return err
	}
	p.result.ShellAction = action

	fields := []zap.Field{zap.String("file", file), zap.Stringer("action", action)}
	switch {
	case action == shellrc.AlreadyPresent:
		p.notice(fmt.Sprintf("%s already sources %s", file, p.cfg.Distro.SetupScript(shell)), fields...)
	case p.dryRun:
		p.notice(fmt.Sprintf("Would update %s (%s): %s", file, action, line), fields...)
	default:
		p.notice(fmt.Sprintf("Updated %s (%s): %s", file, action, line), fields...)
	}
	return nil
}
