// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

// Package shellrc maintains the environment line in a user's shell startup
// file. Planning is a pure function of the current file content; Apply and
// Remove do the I/O around it.
package shellrc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultComment precedes an appended line.
const DefaultComment = "ROS 2 environment"

// Action is what Plan decided to do with the file.
type Action int

const (
	Created Action = iota
	Appended
	AlreadyPresent
)

func (a Action) String() string {
	switch a {
	case Created:
		return "created"
	case Appended:
		return "appended"
	case AlreadyPresent:
		return "already present"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Changed reports whether the file content differs after the action.
func (a Action) Changed() bool { return a != AlreadyPresent }

// Contains reports whether content already runs line. Surrounding whitespace
// and an end-of-line "# ..." comment are ignored; a commented-out line does
// not count.
func Contains(content, line string) bool {
	want := normalize(line)
	for _, l := range strings.Split(content, "\n") {
		if normalize(l) == want {
			return true
		}
	}
	return false
}

// normalize trims a shell line and drops an end-of-line comment.
func normalize(l string) string {
	l = strings.TrimSpace(l)
	if strings.HasPrefix(l, "#") {
		return l
	}
	for i := 1; i < len(l); i++ {
		if l[i] == '#' && (l[i-1] == ' ' || l[i-1] == '\t') {
			l = l[:i]
			break
		}
	}
	return strings.TrimSpace(l)
}

// Plan computes the new file content.
//
// A missing file becomes exactly line plus a newline. An existing file
// without the line keeps its content, gains a newline if it lacked one, then
// a blank line, the comment and the line. An existing file with the line is
// returned unchanged.
func Plan(existing string, exists bool, line, comment string) (string, Action) {
	if !exists {
		return line + "\n", Created
	}
	if Contains(existing, line) {
		return existing, AlreadyPresent
	}

	var b strings.Builder
	b.WriteString(existing)
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n# ")
	b.WriteString(comment)
	b.WriteString("\n")
	b.WriteString(line)
	b.WriteString("\n")
	return b.String(), Appended
}

// Unplan removes every occurrence of line, along with the comment line and
// blank line directly above it. It reports whether anything was removed.
func Unplan(existing, line, comment string) (string, bool) {
	want := normalize(line)
	commentLine := "# " + comment

	lines := strings.Split(existing, "\n")
	out := make([]string, 0, len(lines))
	removed := false

	for _, l := range lines {
		if normalize(l) != want {
			out = append(out, l)
			continue
		}
		removed = true
		if n := len(out); n > 0 && strings.TrimSpace(out[n-1]) == commentLine {
			out = out[:n-1]
			if n := len(out); n > 0 && strings.TrimSpace(out[n-1]) == "" {
				out = out[:n-1]
			}
		}
	}

	if !removed {
		return existing, false
	}
	return strings.Join(out, "\n"), true
}

// SourceLine is the startup-file line that loads script.
func SourceLine(script string) string {
	return "source " + script
}

// File locates the startup file for a login shell. zsh users get ~/.zshrc;
// everything else falls back to ~/.bashrc. The returned shell name selects
// the matching setup script.
func File(home, loginShell string) (path, shell string) {
	if filepath.Base(loginShell) == "zsh" {
		return filepath.Join(home, ".zshrc"), "zsh"
	}
	return filepath.Join(home, ".bashrc"), "bash"
}

// Inspect reads path and plans the change without writing anything.
func Inspect(path, line, comment string) (string, Action, error) {
	_, existing, exists, _, err := read(path)
	if err != nil {
		return "", 0, err
	}
	content, action := Plan(existing, exists, line, comment)
	return content, action, nil
}

// Apply makes sure path contains line. Symlinks are followed so a managed
// dotfile stays a link, and an existing file keeps its mode.
func Apply(path, line, comment string) (Action, error) {
	target, existing, exists, mode, err := read(path)
	if err != nil {
		return 0, err
	}

	content, action := Plan(existing, exists, line, comment)
	if !action.Changed() {
		return action, nil
	}
	if err := writeFileAtomic(target, []byte(content), mode); err != nil {
		return 0, err
	}
	return action, nil
}

// Remove deletes line and its comment from path. A missing file is not an
// error.
func Remove(path, line, comment string) (bool, error) {
	target, existing, exists, mode, err := read(path)
	if err != nil || !exists {
		return false, err
	}

	content, removed := Unplan(existing, line, comment)
	if !removed {
		return false, nil
	}
	if err := writeFileAtomic(target, []byte(content), mode); err != nil {
		return false, err
	}
	return true, nil
}

// Present reports whether path already contains line.
func Present(path, line string) (bool, error) {
	_, existing, exists, _, err := read(path)
	if err != nil || !exists {
		return false, err
	}
	return Contains(existing, line), nil
}

func read(path string) (target, content string, exists bool, mode fs.FileMode, err error) {
	target = path
	mode = 0o644

	resolved, err := filepath.EvalSymlinks(path)
	switch {
	case err == nil:
		target = resolved
	case errors.Is(err, fs.ErrNotExist):
		// A dangling link is written through to its destination.
		if dest, linkErr := os.Readlink(path); linkErr == nil {
			if !filepath.IsAbs(dest) {
				dest = filepath.Join(filepath.Dir(path), dest)
			}
			target = dest
		}
		return target, "", false, mode, nil
	default:
		return "", "", false, 0, fmt.Errorf("resolve shell file %s: %w", path, err)
	}

	info, err := os.Stat(target)
	if err != nil {
		return "", "", false, 0, fmt.Errorf("stat shell file %s: %w", path, err)
	}
	if info.IsDir() {
		return "", "", false, 0, fmt.Errorf("shell file %s is a directory", path)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return "", "", false, 0, fmt.Errorf("read shell file %s: %w", path, err)
	}
	return target, string(data), true, info.Mode().Perm(), nil
}
