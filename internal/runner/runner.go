// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

// Package runner executes external commands for the provisioning steps.
//
// Steps describe what to run with Command values and hand them to a Runner.
// ExecRunner starts real processes; Recorder only remembers what it was asked
// to run and backs both tests and --dry-run.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Command is one external program invocation.
type Command struct {
	Name string
	Args []string
	// Sudo runs the program through sudo. Env is then passed as VAR=value
	// arguments to sudo so it survives env_reset.
	Sudo bool
	Env  []string
}

// Argv returns the full argument vector, including the sudo prefix.
func (c Command) Argv() []string {
	argv := make([]string, 0, len(c.Args)+len(c.Env)+2)
	if c.Sudo {
		argv = append(argv, "sudo")
		argv = append(argv, c.Env...)
	}
	argv = append(argv, c.Name)
	return append(argv, c.Args...)
}

func (c Command) String() string {
	parts := c.Argv()
	if !c.Sudo && len(c.Env) > 0 {
		parts = append(append([]string{}, c.Env...), parts...)
	}
	return FormatCommand(parts)
}

// FormatCommand renders argv for display, quoting parts that contain blanks
// or quotes.
func FormatCommand(parts []string) string {
	if len(parts) == 0 {
		return ""
	}

	quoted := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || strings.ContainsAny(p, " \t\"'") {
			quoted = append(quoted, fmt.Sprintf("%q", p))
		} else {
			quoted = append(quoted, p)
		}
	}
	return strings.Join(quoted, " ")
}

// Runner runs a command to completion.
type Runner interface {
	Run(ctx context.Context, c Command) error
}

// Error reports a command that could not be started or exited unsuccessfully.
type Error struct {
	Command  Command
	ExitCode int
	Err      error
}

func (e *Error) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("%s: exit status %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ExecRunner runs commands as child processes with stdio wired to the given
// streams.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// LookPath defaults to exec.LookPath.
	LookPath func(string) (string, error)
	// WaitDelay bounds how long to wait for output after cancellation.
	WaitDelay time.Duration
}

// NewExecRunner returns a runner attached to the process's own stdio.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		WaitDelay: 5 * time.Second,
	}
}

func (r *ExecRunner) lookPath(name string) error {
	look := r.LookPath
	if look == nil {
		look = exec.LookPath
	}
	if _, err := look(name); err != nil {
		return fmt.Errorf("command not found: %s: %w", name, exec.ErrNotFound)
	}
	return nil
}

func (r *ExecRunner) command(ctx context.Context, c Command) (*exec.Cmd, error) {
	if c.Name == "" {
		return nil, &Error{Command: c, Err: errors.New("empty command")}
	}
	if c.Sudo {
		if err := r.lookPath("sudo"); err != nil {
			return nil, &Error{Command: c, Err: err}
		}
	} else if err := r.lookPath(c.Name); err != nil {
		return nil, &Error{Command: c, Err: err}
	}

	argv := c.Argv()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.WaitDelay = r.WaitDelay
	return cmd, nil
}

// Run starts c and waits for it.
func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	cmd, err := r.command(ctx, c)
	if err != nil {
		return err
	}
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	return wrapExit(c, cmd.Run())
}

// Output runs c and returns its standard output. Stderr still goes to the
// runner's Stderr.
func (r *ExecRunner) Output(ctx context.Context, c Command) ([]byte, error) {
	cmd, err := r.command(ctx, c)
	if err != nil {
		return nil, err
	}
	cmd.Stderr = r.Stderr

	out, err := cmd.Output()
	return out, wrapExit(c, err)
}

func wrapExit(c Command, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &Error{Command: c, ExitCode: exitErr.ExitCode(), Err: err}
	}
	return &Error{Command: c, Err: err}
}

// Recorder is a Runner that records commands instead of executing them.
type Recorder struct {
	// Fail, when set, decides the result of each recorded command.
	Fail func(Command) error

	mu       sync.Mutex
	commands []Command
}

func (r *Recorder) Run(ctx context.Context, c Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	r.commands = append(r.commands, c)
	r.mu.Unlock()

	if r.Fail != nil {
		return r.Fail(c)
	}
	return nil
}

// Commands returns a copy of everything recorded so far.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.commands...)
}

// Lines returns the recorded commands rendered with String.
func (r *Recorder) Lines() []string {
	cmds := r.Commands()
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.String()
	}
	return out
}
