// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package provision

import (
	"os/exec"

	"golang.org/x/sys/unix"

	"github.com/digitalhand/ros2-setup/internal/config"
	"github.com/digitalhand/ros2-setup/internal/osrelease"
)

// RequiredID is the only distribution the ROS 2 apt repository serves.
const RequiredID = "ubuntu"

// Gate checks that the host can take the install. It has no side effects.
type Gate struct {
	// Geteuid defaults to unix.Geteuid.
	Geteuid func() int
	// OSRelease defaults to osrelease.DefaultPath.
	OSRelease string
	// LookPath defaults to exec.LookPath.
	LookPath func(string) (string, error)
}

// Check returns the detected identity, or a KindPrecondition error naming the
// first problem found.
func (g Gate) Check(d config.Distro) (osrelease.Identity, error) {
	geteuid := g.Geteuid
	if geteuid == nil {
		geteuid = unix.Geteuid
	}
	if geteuid() == 0 {
		return osrelease.Identity{}, Preconditionf("do not run as root; run as your regular user and sudo will be used per command")
	}

	path := g.OSRelease
	if path == "" {
		path = osrelease.DefaultPath
	}
	id, err := osrelease.Read(path)
	if err != nil {
		return osrelease.Identity{}, Preconditionf("cannot read %s: %w", path, err)
	}
	if err := CheckIdentity(id, d); err != nil {
		return id, err
	}

	look := g.LookPath
	if look == nil {
		look = exec.LookPath
	}
	if _, err := look("sudo"); err != nil {
		return id, Preconditionf("sudo is required: %w", err)
	}
	return id, nil
}

// CheckIdentity compares the detected OS with what distro d is built for.
func CheckIdentity(id osrelease.Identity, d config.Distro) error {
	if id.ID != RequiredID {
		name := id.String()
		if name == "" {
			name = "unknown"
		}
		return Preconditionf("unsupported distribution %q (ID=%s): ROS 2 %s packages are published for Ubuntu only",
			name, id.ID, d.Title)
	}
	if id.Codename != d.Codename {
		return Preconditionf("ROS 2 %s requires Ubuntu %s, found %s (%s)",
			d.Title, d.Codename, valueOr(id.Codename, "no codename"), id.String())
	}
	return nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
