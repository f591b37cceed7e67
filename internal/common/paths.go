package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateSourcePath checks that a data source path is usable and has one of
// the allowed extensions. Extensions are compared case-insensitively and must
// include the leading dot.
func ValidateSourcePath(path string, allowed ...string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)
	if len(allowed) == 0 {
		return nil
	}

	name := strings.ToLower(cleanPath)
	for _, ext := range allowed {
		if strings.HasSuffix(name, strings.ToLower(ext)) {
			return nil
		}
	}

	return fmt.Errorf("unsupported file extension for %s (want one of %s)",
		filepath.Base(cleanPath), strings.Join(allowed, ", "))
}

// ExpandPath expands a leading ~ to the user's home directory
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
