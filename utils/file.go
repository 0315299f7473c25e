package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// SafeJoinDir performs a filepath.Join of 'parent' and 'name' but returns a configuration error
// if the resulting path points outside of 'parent'.
// See also https://github.com/cyphar/filepath-securejoin.
func SafeJoinDir(parent, name string) (string, error) {
	res := filepath.Join(parent, name)
	if !strings.HasPrefix(filepath.Clean(res), filepath.Clean(parent)+string(os.PathSeparator)) {
		return res, NewConfigurationError("path %q escapes %q", name, parent)
	}
	return res, nil
}
