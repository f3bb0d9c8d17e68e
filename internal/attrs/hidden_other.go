//go:build !windows

package attrs

import (
	"os"
	"path/filepath"
	"strings"
)

// SetHidden is a no-op: dot-files are already hidden here. It still
// reports a missing path.
func SetHidden(path string, hidden bool) error {
	_, err := os.Lstat(path)
	return err
}

// IsHidden reports whether the base name starts with a dot.
func IsHidden(path string) (bool, error) {
	if _, err := os.Lstat(path); err != nil {
		return false, err
	}
	return strings.HasPrefix(filepath.Base(path), "."), nil
}
