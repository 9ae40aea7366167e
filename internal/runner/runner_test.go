// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCommand_Argv(t *testing.T) {
	tests := map[string]struct {
		cmd  Command
		argv []string
		text string
	}{
		"plain": {
			cmd:  Command{Name: "rosdep", Args: []string{"update"}},
			argv: []string{"rosdep", "update"},
			text: "rosdep update",
		},
		"sudo": {
			cmd:  Command{Name: "rosdep", Args: []string{"init"}, Sudo: true},
			argv: []string{"sudo", "rosdep", "init"},
			text: "sudo rosdep init",
		},
		"sudo with env": {
			cmd: Command{
				Name: "apt-get",
				Args: []string{"install", "-y", "locales"},
				Sudo: true,
				Env:  []string{"DEBIAN_FRONTEND=noninteractive"},
			},
			argv: []string{"sudo", "DEBIAN_FRONTEND=noninteractive", "apt-get", "install", "-y", "locales"},
			text: "sudo DEBIAN_FRONTEND=noninteractive apt-get install -y locales",
		},
		"env without sudo": {
			cmd:  Command{Name: "locale", Env: []string{"LANG=en_US.UTF-8"}},
			argv: []string{"locale"},
			text: "LANG=en_US.UTF-8 locale",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.argv, tt.cmd.Argv())
			assert.Equal(t, tt.text, tt.cmd.String())
		})
	}
}

func TestFormatCommand(t *testing.T) {
	assert.Equal(t, "", FormatCommand(nil))
	assert.Equal(t, `bash -lc "set -e; echo hi"`, FormatCommand([]string{"bash", "-lc", "set -e; echo hi"}))
	assert.Equal(t, `echo ""`, FormatCommand([]string{"echo", ""}))
}

func TestRecorder(t *testing.T) {
	rec := &Recorder{}
	ctx := context.Background()

	require.NoError(t, rec.Run(ctx, Command{Name: "a"}))
	require.NoError(t, rec.Run(ctx, Command{Name: "b", Sudo: true}))

	assert.Equal(t, []string{"a", "sudo b"}, rec.Lines())
}

func TestRecorder_Fail(t *testing.T) {
	boom := errors.New("boom")
	rec := &Recorder{Fail: func(c Command) error {
		if c.Name == "b" {
			return boom
		}
		return nil
	}}

	require.NoError(t, rec.Run(context.Background(), Command{Name: "a"}))
	assert.ErrorIs(t, rec.Run(context.Background(), Command{Name: "b"}), boom)
	assert.Len(t, rec.Commands(), 2)
}

func TestRecorder_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &Recorder{}
	assert.ErrorIs(t, rec.Run(ctx, Command{Name: "a"}), context.Canceled)
	assert.Empty(t, rec.Commands())
}

func newTestRunner() (*ExecRunner, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &ExecRunner{Stdout: &stdout, Stderr: &stderr, WaitDelay: time.Second}, &stdout, &stderr
}

func TestExecRunner_Run(t *testing.T) {
	r, stdout, stderr := newTestRunner()

	err := r.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", `echo "out $GREETING"; echo err >&2`},
		Env:  []string{"GREETING=hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "out hello\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())
}

func TestExecRunner_ExitCode(t *testing.T) {
	r, _, _ := newTestRunner()

	err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exit 3"}})
	require.Error(t, err)

	var runErr *Error
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, 3, runErr.ExitCode)
	assert.Contains(t, err.Error(), "exit status 3")
}

func TestExecRunner_NotFound(t *testing.T) {
	r, _, _ := newTestRunner()
	r.LookPath = func(string) (string, error) { return "", exec.ErrNotFound }

	err := r.Run(context.Background(), Command{Name: "apt-get", Args: []string{"update"}, Sudo: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, exec.ErrNotFound)
	assert.Contains(t, err.Error(), "command not found: sudo")
}

func TestExecRunner_EmptyCommand(t *testing.T) {
	r, _, _ := newTestRunner()
	assert.Error(t, r.Run(context.Background(), Command{}))
}

func TestExecRunner_Canceled(t *testing.T) {
	r, _, _ := newTestRunner()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.Run(ctx, Command{Name: "sleep", Args: []string{"5"}})
	require.Error(t, err)
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
}

func TestExecRunner_Output(t *testing.T) {
	r, _, _ := newTestRunner()

	out, err := r.Output(context.Background(), Command{Name: "printf", Args: []string{"install ok installed"}})
	require.NoError(t, err)
	assert.Equal(t, "install ok installed", string(out))
}
