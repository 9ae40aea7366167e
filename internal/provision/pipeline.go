// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

// Package provision runs the ROS 2 installation: a precondition gate followed
// by seven sequential steps. The first failing step stops the run; nothing is
// rolled back and re-running is safe.
package provision

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/digitalhand/ros2-setup/internal/apt"
	"github.com/digitalhand/ros2-setup/internal/config"
	"github.com/digitalhand/ros2-setup/internal/osrelease"
	"github.com/digitalhand/ros2-setup/internal/rosdep"
	"github.com/digitalhand/ros2-setup/internal/runner"
	"github.com/digitalhand/ros2-setup/internal/shellrc"
)

// PackageManager installs and upgrades OS packages.
type PackageManager interface {
	RefreshIndex(ctx context.Context) error
	Install(ctx context.Context, names ...string) error
	Upgrade(ctx context.Context) error
}

// ComponentEnabler turns on an archive component of the OS repositories.
type ComponentEnabler interface {
	EnableComponent(ctx context.Context, component string) error
}

// RepositoryRegistrar installs a package that defines an apt repository.
type RepositoryRegistrar interface {
	InstallSourcePackage(ctx context.Context, url string) error
}

// ReleaseResolver finds the ros2-apt-source package to install.
type ReleaseResolver interface {
	LatestTag(ctx context.Context) (string, error)
	PackageURL(tag, codename string) string
}

// Deps are the collaborators of a Pipeline. Runner, Releases and User are
// required; the rest default to implementations over Runner.
type Deps struct {
	Runner     runner.Runner
	Releases   ReleaseResolver
	Downloader apt.Downloader
	User       TargetUser

	Gate       *Gate
	Packages   PackageManager
	Components ComponentEnabler
	Repos      RepositoryRegistrar

	Reporter Reporter
	Logger   *zap.Logger

	// RosdepMarker defaults to rosdep.DefaultMarker.
	RosdepMarker string
	// Setenv defaults to os.Setenv.
	Setenv func(key, value string) error
	DryRun bool
}

// Pipeline is one configured installation run.
type Pipeline struct {
	cfg  config.InstallConfig
	user TargetUser

	gate       Gate
	run        runner.Runner
	packages   PackageManager
	components ComponentEnabler
	repos      RepositoryRegistrar
	releases   ReleaseResolver
	rosdep     rosdep.Index
	reporter   Reporter
	log        *zap.Logger
	setenv     func(string, string) error
	dryRun     bool

	result Result
}

// Result summarizes a finished run.
type Result struct {
	Identity    osrelease.Identity
	Tag         string
	Rosdep      rosdep.State
	ShellFile   string
	ShellLine   string
	ShellAction shellrc.Action
}

// New wires a pipeline for cfg.
func New(cfg config.InstallConfig, d Deps) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		user:     d.User,
		releases: d.Releases,
		reporter: d.Reporter,
		log:      d.Logger,
		setenv:   d.Setenv,
		dryRun:   d.DryRun,
	}
	if p.reporter == nil {
		p.reporter = NopReporter{}
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	if p.setenv == nil {
		p.setenv = os.Setenv
	}
	if d.Gate != nil {
		p.gate = *d.Gate
	}

	p.run = reportingRunner{next: d.Runner, reporter: p.reporter, log: p.log}

	aptGet := apt.Apt{Runner: p.run}
	p.packages = d.Packages
	if p.packages == nil {
		p.packages = aptGet
	}
	p.components = d.Components
	if p.components == nil {
		p.components = aptGet
	}
	p.repos = d.Repos
	if p.repos == nil {
		p.repos = apt.Registrar{Runner: p.run, Downloader: d.Downloader, DryRun: d.DryRun}
	}
	p.rosdep = rosdep.Index{Runner: p.run, Marker: d.RosdepMarker}
	return p
}

// Run checks preconditions and then executes every step in order.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	id, err := p.Preflight()
	if err != nil {
		return p.result, err
	}
	return p.RunChecked(ctx, id)
}

// Preflight runs the gate alone. It has no side effects on the host.
func (p *Pipeline) Preflight() (osrelease.Identity, error) {
	id, err := p.gate.Check(p.cfg.Distro)
	if err != nil {
		p.log.Error("preflight failed", zap.Error(err))
	}
	return id, err
}

// RunChecked executes the steps on a host whose identity id already passed
// the gate.
func (p *Pipeline) RunChecked(ctx context.Context, id osrelease.Identity) (Result, error) {
	p.result.Identity = id
	p.log.Info("preflight passed",
		zap.String("os", id.String()),
		zap.String("distro", p.cfg.Distro.Name),
		zap.String("variant", string(p.cfg.Variant)),
		zap.Bool("dev_tools", p.cfg.DevTools),
		zap.Bool("skip_upgrade", p.cfg.SkipUpgrade),
		zap.Bool("dry_run", p.dryRun))

	steps := Steps()
	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			return p.result, classify(s.Name, err)
		}

		p.reporter.Step(i+1, len(steps), s.Name)
		p.log.Info("step started", zap.Int("step", i+1), zap.String("name", s.Name))
		start := time.Now()

		if err := s.run(p, ctx); err != nil {
			err = classify(s.Name, err)
			kind, _ := KindOf(err)
			p.log.Error("step failed",
				zap.Int("step", i+1),
				zap.String("name", s.Name),
				zap.Stringer("kind", kind),
				zap.Error(err))
			return p.result, err
		}
		p.log.Info("step finished",
			zap.Int("step", i+1),
			zap.String("name", s.Name),
			zap.Duration("elapsed", time.Since(start)))
	}
	return p.result, nil
}

// notice reports a skipped or already-satisfied action.
func (p *Pipeline) notice(msg string, fields ...zap.Field) {
	p.reporter.Notice(msg)
	p.log.Info(msg, fields...)
}
