// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package xdg locates SchoolHub files under the XDG Base Directory layout.
package xdg

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "schoolhub"

// ConfigFileName is the file ConfigFile looks for in ConfigDir.
const ConfigFileName = "config.yaml"

// ConfigDir returns the XDG config directory for schoolhub.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// ConfigFile returns the path of the user's config file, or "" when there
// is none.
func ConfigFile() (string, error) {
	path := filepath.Join(ConfigDir(), ConfigFileName)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", oops.Code("CONFIG_FILE_UNREADABLE").With("path", path).Wrap(err)
	}
	if info.IsDir() {
		return "", oops.Code("CONFIG_FILE_UNREADABLE").With("path", path).Errorf("config path is a directory")
	}
	return path, nil
}
