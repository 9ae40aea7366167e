// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package provision

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/digitalhand/ros2-setup/internal/runner"
)

// Reporter renders progress for a human.
type Reporter interface {
	Step(i, total int, name string)
	Command(c runner.Command)
	Done(d time.Duration)
	Failed(err error)
	Notice(msg string)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Step(int, int, string)  {}
func (NopReporter) Command(runner.Command) {}
func (NopReporter) Done(time.Duration)     {}
func (NopReporter) Failed(error)           {}
func (NopReporter) Notice(string)          {}

// reportingRunner echoes each command before running it and its duration or
// failure afterwards.
type reportingRunner struct {
	next     runner.Runner
	reporter Reporter
	log      *zap.Logger
}

func (r reportingRunner) Run(ctx context.Context, c runner.Command) error {
	r.reporter.Command(c)
	r.log.Debug("running command", zap.Stringer("command", c))

	start := time.Now()
	err := r.next.Run(ctx, c)
	elapsed := time.Since(start)

	if err != nil {
		r.reporter.Failed(err)
		r.log.Error("command failed", zap.Stringer("command", c), zap.Duration("elapsed", elapsed), zap.Error(err))
		return err
	}
	r.reporter.Done(elapsed)
	r.log.Debug("command finished", zap.Stringer("command", c), zap.Duration("elapsed", elapsed))
	return nil
}
