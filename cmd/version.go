// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

// Set at build time, e.g.:
// go build -ldflags "-X github.com/digitalhand/ros2-setup/cmd.Version=v0.1.0"
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print CLI version and build metadata",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ros2-setup %s (%s/%s, %s)\n",
			resolvedVersion(), runtime.GOOS, runtime.GOARCH, runtime.Version())
	},
}

// buildMeta is the version triple shown by `version` and in help output.
type buildMeta struct {
	version, commit, date string
}

// withBuildInfo fills values the linker flags left unset from the module
// and VCS stamps embedded by the go command.
func (m buildMeta) withBuildInfo(info *debug.BuildInfo) buildMeta {
	if info == nil {
		return m
	}
	if (m.version == "" || m.version == "dev") && info.Main.Version != "" && info.Main.Version != "(devel)" {
		m.version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && m.commit == "":
			m.commit = s.Value
		case s.Key == "vcs.time" && m.date == "":
			m.date = s.Value
		}
	}
	return m
}

func (m buildMeta) String() string {
	if len(m.commit) > 12 {
		m.commit = m.commit[:12]
	}
	parts := []string{m.version}
	for _, p := range []string{m.commit, m.date} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func resolvedVersion() string {
	m := buildMeta{version: Version, commit: Commit, date: Date}
	if info, ok := debug.ReadBuildInfo(); ok {
		m = m.withBuildInfo(info)
	}
	return m.String()
}
