// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

// Package osrelease reads the distribution identity from os-release(5).
package osrelease

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultPath is the systemd location of the identity file.
const DefaultPath = "/etc/os-release"

// Identity is the subset of os-release fields the installer gates on.
type Identity struct {
	ID         string
	Codename   string
	VersionID  string
	PrettyName string
}

func (i Identity) String() string {
	if i.PrettyName != "" {
		return i.PrettyName
	}
	return strings.TrimSpace(i.ID + " " + i.Codename)
}

// Read parses the file at path.
func Read(path string) (Identity, error) {
	f, err := os.Open(path)
	if err != nil {
		return Identity{}, err
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads KEY=VALUE lines. VERSION_CODENAME wins over UBUNTU_CODENAME.
func Parse(r io.Reader) (Identity, error) {
	values, err := parseValues(r)
	if err != nil {
		return Identity{}, err
	}

	id := Identity{
		ID:         strings.ToLower(values["ID"]),
		Codename:   values["VERSION_CODENAME"],
		VersionID:  values["VERSION_ID"],
		PrettyName: values["PRETTY_NAME"],
	}
	if id.Codename == "" {
		id.Codename = values["UBUNTU_CODENAME"]
	}
	id.Codename = strings.ToLower(id.Codename)
	return id, nil
}

func parseValues(r io.Reader) (map[string]string, error) {
	values := map[string]string{}
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = unquote(value)
		values[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan os-release: %w", err)
	}

	return values, nil
}

func unquote(v string) string {
	if len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if (first == '"' || first == '\'') && first == last {
			v = v[1 : len(v)-1]
		}
	}
	return strings.NewReplacer(`\"`, `"`, `\$`, `$`, "\\`", "`", `\\`, `\`).Replace(v)
}
