// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

// Package config resolves the installer's settings.
//
// Values are layered, each layer overriding the previous one:
//   - built-in defaults
//   - an optional YAML or TOML file
//   - environment variables (ROS_VARIANT, INSTALL_DEV_TOOLS, SKIP_UPGRADE, ROS_INSTALL_DISTRO)
//   - command-line flags
//
// The result is an immutable InstallConfig handed to every provisioning step.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Environment variable names.
const (
	EnvVariant     = "ROS_VARIANT"
	EnvDevTools    = "INSTALL_DEV_TOOLS"
	EnvSkipUpgrade = "SKIP_UPGRADE"
	EnvDistro      = "ROS_INSTALL_DISTRO"
	EnvConfigFile  = "ROS2_SETUP_CONFIG"
)

// Variant selects which metapackage bundle gets installed.
type Variant string

const (
	VariantDesktop Variant = "desktop"
	VariantBase    Variant = "ros-base"
)

// Variants lists the accepted values in display order.
func Variants() []Variant {
	return []Variant{VariantDesktop, VariantBase}
}

// ParseVariant accepts exactly the two known variant names.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(strings.TrimSpace(s)); v {
	case VariantDesktop, VariantBase:
		return v, nil
	}
	return "", &Error{
		Field:   "variant",
		Value:   s,
		Message: fmt.Sprintf("must be one of: %s, %s", VariantDesktop, VariantBase),
	}
}

// Metapackage is the apt package name of the variant for distro d.
func (v Variant) Metapackage(d Distro) string {
	return d.PackagePrefix() + string(v)
}

// InstallConfig is the fully resolved configuration.
type InstallConfig struct {
	Variant     Variant
	Distro      Distro
	DevTools    bool
	SkipUpgrade bool
}

// Default returns the built-in configuration.
func Default() InstallConfig {
	d, _ := LookupDistro(DefaultDistro)
	return InstallConfig{
		Variant:  VariantDesktop,
		Distro:   d,
		DevTools: true,
	}
}

// Metapackages returns the packages installed for this configuration, in
// install order: the variant bundle, fixed tooling, then optional dev tools.
func (c InstallConfig) Metapackages() []string {
	pkgs := []string{c.Variant.Metapackage(c.Distro)}
	pkgs = append(pkgs, auxiliaryPackages...)
	if c.DevTools {
		pkgs = append(pkgs, devToolsPackage)
	}
	return pkgs
}

// auxiliaryPackages are always installed next to the variant.
var auxiliaryPackages = []string{"python3-rosdep"}

const devToolsPackage = "ros-dev-tools"

// Error reports an unusable configuration value.
type Error struct {
	Field   string
	Value   string
	Source  Source
	Message string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("invalid ")
	b.WriteString(e.Field)
	if e.Value != "" {
		fmt.Fprintf(&b, " %q", e.Value)
	}
	if e.Source != "" {
		fmt.Fprintf(&b, " (from %s)", e.Source)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// ParseBool accepts the usual shell spellings of a boolean.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

// Source names where a resolved value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "file"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// Sources records the origin of each resolved field.
type Sources struct {
	Variant     Source
	Distro      Source
	DevTools    Source
	SkipUpgrade Source
}

// Layer is a partial configuration. Nil fields leave the value underneath
// untouched.
type Layer struct {
	Variant     *string `yaml:"variant" toml:"variant"`
	Distro      *string `yaml:"distro" toml:"distro"`
	DevTools    *bool   `yaml:"dev_tools" toml:"dev_tools"`
	SkipUpgrade *bool   `yaml:"skip_upgrade" toml:"skip_upgrade"`
}

// EnvLayer reads the recognized environment variables. Empty values are
// treated as unset.
func EnvLayer(getenv func(string) string) (Layer, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	var l Layer
	if v := strings.TrimSpace(getenv(EnvVariant)); v != "" {
		l.Variant = &v
	}
	if v := strings.TrimSpace(getenv(EnvDistro)); v != "" {
		l.Distro = &v
	}

	for _, b := range []struct {
		key string
		dst **bool
	}{
		{EnvDevTools, &l.DevTools},
		{EnvSkipUpgrade, &l.SkipUpgrade},
	} {
		raw := strings.TrimSpace(getenv(b.key))
		if raw == "" {
			continue
		}
		parsed, err := ParseBool(raw)
		if err != nil {
			return Layer{}, &Error{Field: b.key, Value: raw, Source: SourceEnv, Message: "expected a boolean (1/0, true/false, yes/no, on/off)"}
		}
		*b.dst = &parsed
	}
	return l, nil
}

// Resolve applies the layers in order on top of Default and validates the
// result. Each layer is paired with the source it is reported as.
func Resolve(layers ...SourcedLayer) (InstallConfig, Sources, error) {
	variant := string(VariantDesktop)
	distro := DefaultDistro
	cfg := Default()
	src := Sources{
		Variant:     SourceDefault,
		Distro:      SourceDefault,
		DevTools:    SourceDefault,
		SkipUpgrade: SourceDefault,
	}

	for _, sl := range layers {
		l := sl.Layer
		if l.Variant != nil {
			variant = *l.Variant
			src.Variant = sl.Source
		}
		if l.Distro != nil {
			distro = *l.Distro
			src.Distro = sl.Source
		}
		if l.DevTools != nil {
			cfg.DevTools = *l.DevTools
			src.DevTools = sl.Source
		}
		if l.SkipUpgrade != nil {
			cfg.SkipUpgrade = *l.SkipUpgrade
			src.SkipUpgrade = sl.Source
		}
	}

	v, err := ParseVariant(variant)
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			ce.Source = src.Variant
		}
		return InstallConfig{}, src, err
	}
	cfg.Variant = v

	d, ok := LookupDistro(distro)
	if !ok {
		return InstallConfig{}, src, &Error{
			Field:   "distro",
			Value:   distro,
			Source:  src.Distro,
			Message: "supported distributions: " + strings.Join(distroNames(), ", "),
		}
	}
	cfg.Distro = d

	return cfg, src, nil
}

// SourcedLayer tags a Layer with its origin.
type SourcedLayer struct {
	Source Source
	Layer  Layer
}
