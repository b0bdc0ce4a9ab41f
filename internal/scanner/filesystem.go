package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// FileSystemScanner implements Scanner interface for filesystem scanning
type FileSystemScanner struct{}

// NewFileSystemScanner creates a new filesystem scanner
func NewFileSystemScanner() *FileSystemScanner {
	return &FileSystemScanner{}
}

// Scan returns the single package at path, or every package below it when
// path is a directory
func (s *FileSystemScanner) Scan(ctx context.Context, path string) ([]ScannedPackage, error) {
	var packages []ScannedPackage

	err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			return nil
		}

		pkgType, err := s.DetectType(p)
		if err != nil {
			logrus.Warnf("Failed to detect type for %s: %v", p, err)
			return nil
		}

		if pkgType == TypeUnknown {
			return nil
		}

		logrus.Debugf("Found %s package: %s", pkgType, p)

		packages = append(packages, ScannedPackage{
			Path: p,
			Type: pkgType,
			Size: info.Size(),
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}

	logrus.Infof("Found %d packages in %s", len(packages), path)
	return packages, nil
}

// DetectType determines the package type of a file
func (s *FileSystemScanner) DetectType(path string) (PackageType, error) {
	return DetectPackageType(path)
}
