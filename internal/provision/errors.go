// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package provision

import (
	"errors"
	"fmt"

	"github.com/digitalhand/ros2-setup/internal/config"
	"github.com/digitalhand/ros2-setup/internal/release"
)

// Kind classifies a failure for the top-level handler.
type Kind int

const (
	KindPrecondition Kind = iota + 1
	KindConfiguration
	KindExternalCommand
	KindReleaseMetadata
)

func (k Kind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindConfiguration:
		return "configuration"
	case KindExternalCommand:
		return "external command"
	case KindReleaseMetadata:
		return "release metadata"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a failure attributed to a step.
type Error struct {
	Kind Kind
	Step string
	Err  error
}

func (e *Error) Error() string {
	if e.Step == "" {
		return e.Err.Error()
	}
	return e.Step + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Preconditionf builds a KindPrecondition error.
func Preconditionf(format string, args ...any) *Error {
	return &Error{Kind: KindPrecondition, Step: "preflight", Err: fmt.Errorf(format, args...)}
}

// Configuration wraps an invalid setting.
func Configuration(err error) *Error {
	return &Error{Kind: KindConfiguration, Step: "configuration", Err: err}
}

// KindOf returns the kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}

// classify attributes err to step, keeping an existing classification.
func classify(step string, err error) error {
	if err == nil {
		return nil
	}

	var pe *Error
	if errors.As(err, &pe) {
		return err
	}

	kind := KindExternalCommand
	var me *release.MetadataError
	var ce *config.Error
	switch {
	case errors.As(err, &me):
		kind = KindReleaseMetadata
	case errors.As(err, &ce):
		kind = KindConfiguration
	}
	return &Error{Kind: kind, Step: step, Err: err}
}
