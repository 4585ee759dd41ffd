// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package xdg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/schoolhub/pkg/errutil"
)

func TestConfigDir(t *testing.T) {
	t.Run("env var", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		assert.Equal(t, "/custom/config/schoolhub", ConfigDir())
	})

	t.Run("home fallback", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", "/home/testuser")
		assert.Equal(t, "/home/testuser/.config/schoolhub", ConfigDir())
	})
}

func TestConfigFile(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		path, err := ConfigFile()
		require.NoError(t, err)
		assert.Empty(t, path)
	})

	t.Run("present", func(t *testing.T) {
		base := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", base)
		want := filepath.Join(base, "schoolhub", ConfigFileName)
		require.NoError(t, os.MkdirAll(filepath.Dir(want), 0o700))
		require.NoError(t, os.WriteFile(want, []byte("log:\n  level: debug\n"), 0o600))

		path, err := ConfigFile()
		require.NoError(t, err)
		assert.Equal(t, want, path)
	})

	t.Run("directory", func(t *testing.T) {
		base := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", base)
		require.NoError(t, os.MkdirAll(filepath.Join(base, "schoolhub", ConfigFileName), 0o700))

		_, err := ConfigFile()
		errutil.AssertErrorCode(t, err, "CONFIG_FILE_UNREADABLE")
	})
}
