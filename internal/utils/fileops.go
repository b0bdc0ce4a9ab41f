package utils

import (
	"os"
	"path/filepath"
)

// WriteFile writes data to a file, creating directories as needed
func WriteFile(path string, data []byte, perm os.FileMode) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, perm)
}

// EnsureDir ensures a directory exists, creating it if necessary
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// MakeWorkDir creates a fresh directory below parent for a single run
func MakeWorkDir(parent, pattern string) (string, error) {
	if err := EnsureDir(parent); err != nil {
		return "", err
	}
	return os.MkdirTemp(parent, pattern)
}
