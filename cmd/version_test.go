// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package cmd

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestResolvedVersion_Dev(t *testing.T) {
	v := resolvedVersion()
	if v == "" {
		t.Error("resolvedVersion() returned empty string")
	}
}

func TestResolvedVersion_WithLdflags(t *testing.T) {
	orig, origCommit, origDate := Version, Commit, Date
	defer func() {
		Version, Commit, Date = orig, origCommit, origDate
	}()

	Version = "v1.2.3"
	Commit = "abc123"
	Date = "2026-01-01"

	v := resolvedVersion()
	if !strings.HasPrefix(v, "v1.2.3 abc123 2026-01-01") {
		t.Errorf("resolvedVersion() = %q, want ldflags values first", v)
	}
}

func TestBuildMeta_WithBuildInfo(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
		},
	}

	got := buildMeta{version: "dev"}.withBuildInfo(info).String()
	want := "v0.4.0 0123456789ab 2026-10-01T12:00:00Z"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got = buildMeta{version: "dev"}.withBuildInfo(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}).String()
	if got != "dev" {
		t.Errorf("devel build: got %q, want %q", got, "dev")
	}
}
