// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package provision

import (
	"fmt"
	"os"
	"os/user"
)

// TargetUser is the account the environment is set up for.
type TargetUser struct {
	Name  string
	Home  string
	Shell string
}

// CurrentUser resolves the invoking user. $HOME and $SHELL win over the
// passwd entry so the result matches the user's login session.
func CurrentUser() (TargetUser, error) {
	u, err := user.Current()
	if err != nil {
		return TargetUser{}, fmt.Errorf("resolve current user: %w", err)
	}

	home := u.HomeDir
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		home = h
	}
	if home == "" {
		return TargetUser{}, fmt.Errorf("user %s has no home directory", u.Username)
	}

	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/bash"
	}
	return TargetUser{Name: u.Username, Home: home, Shell: shell}, nil
}
