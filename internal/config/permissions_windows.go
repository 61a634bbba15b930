//go:build windows

package config

// Windows ACLs do not map onto the unix permission-bit check.
func ensureSecurePermissions(path string) {}
