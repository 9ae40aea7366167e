// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

// Package logging sets up the per-run log file. Everything the user sees is
// duplicated into it, and structured zap records are written alongside.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timestampLayout = "20060102_150405"

// FileName is the log file name for a run started at now.
func FileName(distro string, now time.Time) string {
	return fmt.Sprintf("ros2_%s_install_%s.log", distro, now.Format(timestampLayout))
}

// DefaultPath puts the log on the user's Desktop when there is one, else in
// the home directory.
func DefaultPath(home, distro string, now time.Time) string {
	dir := home
	desktop := filepath.Join(home, "Desktop")
	if info, err := os.Stat(desktop); err == nil && info.IsDir() {
		dir = desktop
	}
	return filepath.Join(dir, FileName(distro, now))
}

// Options configures Open.
type Options struct {
	// Path of the log file. Empty disables the file; output then only goes
	// to the console.
	Path string

	Stdout io.Writer
	Stderr io.Writer

	// Verbose lowers the console log level from warn to info.
	Verbose bool
	// RunID tags every record; a new UUID when empty.
	RunID string
}

// Session holds the writers and logger for one run.
type Session struct {
	Path   string
	RunID  string
	Stdout io.Writer
	Stderr io.Writer
	Logger *zap.Logger

	file *os.File
}

// Open creates the log file and wires the tee and the logger.
func Open(opts Options) (*Session, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	s := &Session{
		Path:   opts.Path,
		RunID:  opts.RunID,
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	}

	var fileSink io.Writer
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		s.file = f
		fileSink = f
		s.Stdout = io.MultiWriter(opts.Stdout, f)
		s.Stderr = io.MultiWriter(opts.Stderr, f)
	}

	s.Logger = NewLogger(fileSink, opts.Stderr, opts.Verbose).With(zap.String("run_id", opts.RunID))
	return s, nil
}

// Note writes text to the log file only. Without a file it does nothing.
func (s *Session) Note(text string) {
	if s == nil || s.file == nil {
		return
	}
	_, _ = io.WriteString(s.file, text)
}

// Close flushes the logger and closes the file.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	if s.Logger != nil {
		_ = s.Logger.Sync()
	}
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// NewLogger tees a debug-level core into file (when non-nil) with a console
// core on console at warn, or info when verbose. The file core writes the
// same plain-text layout as the console, stamped with ISO8601 times, so
// records read in line with the tee'd command output around them.
func NewLogger(file, console io.Writer, verbose bool) *zap.Logger {
	consoleLevel := zapcore.WarnLevel
	if verbose {
		consoleLevel = zapcore.InfoLevel
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.TimeKey = ""
	consoleCfg.CallerKey = ""
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(zapcore.AddSync(console)), consoleLevel),
	}

	if file != nil {
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores,
			zapcore.NewCore(zapcore.NewConsoleEncoder(fileCfg), zapcore.Lock(zapcore.AddSync(file)), zapcore.DebugLevel))
	}

	return zap.New(zapcore.NewTee(cores...))
}
