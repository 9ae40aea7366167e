// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a Layer from a YAML (.yaml, .yml) or TOML (.toml) file.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func LoadFile(path string) (Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layer{}, fmt.Errorf("read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAML(data, path)
	case ".toml":
		return decodeTOML(data, path)
	default:
		return Layer{}, &Error{
			Field:   "config file",
			Value:   path,
			Source:  SourceFile,
			Message: "unsupported extension (use .yaml, .yml or .toml)",
		}
	}
}

func decodeYAML(data []byte, path string) (Layer, error) {
	var l Layer
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil && !errors.Is(err, io.EOF) {
		return Layer{}, &Error{Field: "config file", Value: path, Source: SourceFile, Message: err.Error()}
	}
	return l, nil
}

func decodeTOML(data []byte, path string) (Layer, error) {
	var l Layer
	md, err := toml.Decode(string(data), &l)
	if err != nil {
		return Layer{}, &Error{Field: "config file", Value: path, Source: SourceFile, Message: err.Error()}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return Layer{}, &Error{
			Field:   "config file",
			Value:   path,
			Source:  SourceFile,
			Message: "unknown keys: " + strings.Join(keys, ", "),
		}
	}
	return l, nil
}

// SampleYAML is the commented template written by `config init`.
func SampleYAML() string {
	var b strings.Builder
	b.WriteString("# ros2-setup configuration\n")
	b.WriteString("# Environment variables and command-line flags override these values.\n\n")
	b.WriteString("# ROS 2 distribution: ")
	b.WriteString(strings.Join(distroNames(), ", "))
	b.WriteString("\n")
	fmt.Fprintf(&b, "distro: %s\n\n", DefaultDistro)
	fmt.Fprintf(&b, "# Metapackage bundle: %s or %s\n", VariantDesktop, VariantBase)
	fmt.Fprintf(&b, "variant: %s\n\n", VariantDesktop)
	fmt.Fprintf(&b, "# Install %s (colcon, rosdep, vcstool, ...)\n", devToolsPackage)
	b.WriteString("dev_tools: true\n\n")
	b.WriteString("# Skip `apt-get upgrade` before installing\n")
	b.WriteString("skip_upgrade: false\n")
	return b.String()
}
