// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package provision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentUser(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SHELL", "/usr/bin/zsh")

	u, err := CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, home, u.Home)
	assert.Equal(t, "/usr/bin/zsh", u.Shell)
	assert.NotEmpty(t, u.Name)
}

func TestCurrentUser_DefaultShell(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SHELL", "")

	u, err := CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "/bin/bash", u.Shell)
}
