package utils

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// IsTextFile reports whether the file content looks like text
func IsTextFile(path string) (bool, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return false, err
	}

	for m := mt; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "text/") {
			return true, nil
		}
	}
	return false, nil
}
