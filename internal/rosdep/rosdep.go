// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

// Package rosdep drives the one-time initialization and refresh of the rosdep
// dependency index.
package rosdep

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/digitalhand/ros2-setup/internal/runner"
)

// DefaultMarker is written by `rosdep init`.
const DefaultMarker = "/etc/ros/rosdep/sources.list.d/20-default.list"

// State is the result of a guard check.
type State int

const (
	NotDone State = iota
	AlreadyDone
)

func (s State) String() string {
	if s == AlreadyDone {
		return "already done"
	}
	return "not done"
}

// Check looks for the init marker.
func Check(marker string) (State, error) {
	_, err := os.Stat(marker)
	switch {
	case err == nil:
		return AlreadyDone, nil
	case errors.Is(err, fs.ErrNotExist):
		return NotDone, nil
	default:
		return NotDone, fmt.Errorf("check rosdep marker %s: %w", marker, err)
	}
}

// InitCommand writes the system-wide source list; it needs root.
func InitCommand() runner.Command {
	return runner.Command{Name: "rosdep", Args: []string{"init"}, Sudo: true}
}

// UpdateCommand refreshes the per-user cache and must not run as root.
func UpdateCommand() runner.Command {
	return runner.Command{Name: "rosdep", Args: []string{"update"}}
}

// Index runs rosdep through a Runner.
type Index struct {
	Runner runner.Runner
	// Marker defaults to DefaultMarker.
	Marker string
}

func (ix Index) marker() string {
	if ix.Marker == "" {
		return DefaultMarker
	}
	return ix.Marker
}

// Init runs `rosdep init` unless the marker already exists. It returns the
// state found before acting.
func (ix Index) Init(ctx context.Context) (State, error) {
	state, err := Check(ix.marker())
	if err != nil || state == AlreadyDone {
		return state, err
	}
	return NotDone, ix.Runner.Run(ctx, InitCommand())
}

// Update refreshes the index. It always runs.
func (ix Index) Update(ctx context.Context) error {
	return ix.Runner.Run(ctx, UpdateCommand())
}
