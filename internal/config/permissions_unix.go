//go:build !windows

package config

import "os"

// ensureSecurePermissions tightens the config file to owner read/write when
// group or world bits have crept in. Best effort; a failure here must not
// block loading.
func ensureSecurePermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.Mode().Perm()&0o077 != 0 {
		_ = os.Chmod(path, 0o600)
	}
}
