// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

//go:build !windows

package config

import (
	"io/fs"
	"log/slog"
	"os"
)

// WarnInsecurePermissions logs a warning when the config file is group- or
// world-readable. Best-effort: the check never fails startup, it only alerts
// the operator that API keys in the file may be visible to other users.
func WarnInsecurePermissions(path string) {
	if path == "" {
		// Defaults only, no file to check.
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		slog.Debug("could not stat config file for permission check", "path", path, "error", err)
		return
	}

	const groupRead fs.FileMode = 0o040
	const otherRead fs.FileMode = 0o004

	mode := info.Mode()
	if mode.Perm()&(groupRead|otherRead) != 0 {
		slog.Warn("config file is readable by other users",
			"path", path,
			"mode", mode,
			"recommended", "0600",
		)
	}
}
