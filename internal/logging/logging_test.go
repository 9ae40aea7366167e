// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package logging

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var start = time.Date(2026, 3, 7, 9, 5, 1, 0, time.Local)

func TestFileName(t *testing.T) {
	assert.Equal(t, "ros2_jazzy_install_20260307_090501.log", FileName("jazzy", start))
}

func TestDefaultPath(t *testing.T) {
	home := t.TempDir()
	assert.Equal(t, filepath.Join(home, "ros2_jazzy_install_20260307_090501.log"), DefaultPath(home, "jazzy", start))

	require.NoError(t, os.WriteFile(filepath.Join(home, "Desktop"), nil, 0o644))
	assert.Equal(t, home, filepath.Dir(DefaultPath(home, "jazzy", start)), "a Desktop file is not a directory")

	require.NoError(t, os.Remove(filepath.Join(home, "Desktop")))
	require.NoError(t, os.Mkdir(filepath.Join(home, "Desktop"), 0o755))
	assert.Equal(t, filepath.Join(home, "Desktop", "ros2_jazzy_install_20260307_090501.log"), DefaultPath(home, "jazzy", start))
}

func TestOpen_TeesOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	var stdout, stderr bytes.Buffer

	s, err := Open(Options{Path: path, Stdout: &stdout, Stderr: &stderr, RunID: "run-1"})
	require.NoError(t, err)

	fmt.Fprintln(s.Stdout, "[1/7] Configure locale")
	fmt.Fprintln(s.Stderr, "E: something went wrong")
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.Equal(t, "[1/7] Configure locale\n", stdout.String())
	assert.Equal(t, "E: something went wrong\n", stderr.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[1/7] Configure locale\nE: something went wrong\n", string(data))
}

func TestOpen_LoggerLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	var stdout, stderr bytes.Buffer

	s, err := Open(Options{Path: path, Stdout: &stdout, Stderr: &stderr, RunID: "abc"})
	require.NoError(t, err)

	s.Logger.Debug("probe", zap.String("path", "/etc/os-release"))
	s.Logger.Info("step finished", zap.Int("step", 3))
	s.Logger.Warn("upgrade skipped")
	require.NoError(t, s.Close())

	assert.NotContains(t, stderr.String(), "step finished")
	assert.Contains(t, stderr.String(), "upgrade skipped")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)

	// Records are plain text, like the tee'd output sharing the file.
	for _, l := range lines {
		assert.False(t, strings.HasPrefix(l, "{"), "record %q is JSON", l)
	}
	assert.Contains(t, lines[0], "debug\tprobe")
	assert.Contains(t, lines[1], "info\tstep finished")
	assert.Contains(t, lines[1], `"run_id": "abc"`)
	assert.Contains(t, lines[1], `"step": 3`)
	assert.Contains(t, lines[2], "warn\tupgrade skipped")
}

func TestSession_Note(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	var stderr bytes.Buffer

	s, err := Open(Options{Path: path, Stdout: &bytes.Buffer{}, Stderr: &stderr})
	require.NoError(t, err)
	s.Note("error: boom\n")
	require.NoError(t, s.Close())
	s.Note("after close\n")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "error: boom\n", string(data))
	assert.Empty(t, stderr.String())

	var none *Session
	none.Note("ignored")
}

func TestOpen_Verbose(t *testing.T) {
	var stderr bytes.Buffer
	s, err := Open(Options{Stdout: &bytes.Buffer{}, Stderr: &stderr, Verbose: true})
	require.NoError(t, err)

	s.Logger.Info("hello")
	require.NoError(t, s.Close())

	assert.Contains(t, stderr.String(), "hello")
	assert.NotEmpty(t, s.RunID)
}

func TestOpen_NoFile(t *testing.T) {
	var stdout bytes.Buffer
	s, err := Open(Options{Stdout: &stdout, Stderr: &bytes.Buffer{}})
	require.NoError(t, err)

	fmt.Fprint(s.Stdout, "x")
	assert.Equal(t, "x", stdout.String())
	assert.NoError(t, s.Close())
}

func TestOpen_BadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := Open(Options{Path: filepath.Join(blocker, "run.log"), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	assert.Error(t, err)
}
