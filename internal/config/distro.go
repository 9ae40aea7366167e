// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package config

import (
	"fmt"
	"strings"
)

// Distro is a ROS 2 distribution and the single Ubuntu release it publishes
// binary packages for.
type Distro struct {
	Name     string
	Title    string
	Codename string
	LTS      bool
}

// DefaultDistro is used when nothing selects a distribution.
const DefaultDistro = "jazzy"

var distros = []Distro{
	{Name: "jazzy", Title: "Jazzy Jalisco", Codename: "noble", LTS: true},
	{Name: "kilted", Title: "Kilted Kaiju", Codename: "noble"},
	{Name: "humble", Title: "Humble Hawksbill", Codename: "jammy", LTS: true},
}

// Distros returns the supported distributions, newest LTS first.
func Distros() []Distro {
	out := make([]Distro, len(distros))
	copy(out, distros)
	return out
}

// LookupDistro finds a distribution by name, case-insensitively.
func LookupDistro(name string) (Distro, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, d := range distros {
		if d.Name == name {
			return d, true
		}
	}
	return Distro{}, false
}

func distroNames() []string {
	names := make([]string, 0, len(distros))
	for _, d := range distros {
		names = append(names, d.Name)
	}
	return names
}

// InstallPrefix is where the distribution's packages land.
func (d Distro) InstallPrefix() string {
	return "/opt/ros/" + d.Name
}

// SetupScript is the environment script for the given shell ("bash" or "zsh").
func (d Distro) SetupScript(shell string) string {
	return fmt.Sprintf("%s/setup.%s", d.InstallPrefix(), shell)
}

// PackagePrefix is prepended to every ROS package name of the distribution.
func (d Distro) PackagePrefix() string {
	return "ros-" + d.Name + "-"
}
