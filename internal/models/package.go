package models

import (
	"fmt"
	"path"
	"time"
)

// FileType classifies a file carried by a package
type FileType int

const (
	FileRegular FileType = iota
	FileDirectory
	FileSymlink
	FileSource
	FileKernelModule
	FileOther
)

// String returns the string representation of FileType
func (t FileType) String() string {
	switch t {
	case FileRegular:
		return "regular"
	case FileDirectory:
		return "directory"
	case FileSymlink:
		return "symlink"
	case FileSource:
		return "source"
	case FileKernelModule:
		return "kernel-module"
	default:
		return "other"
	}
}

// Unix file type bits as stored in RPM file modes
const (
	ModeTypeMask  = 0170000
	ModeRegular   = 0100000
	ModeDirectory = 0040000
	ModeSymlink   = 0120000
)

// ChangelogEntry is one %changelog record from a package header
type ChangelogEntry struct {
	Time time.Time
	Name string
	Text string
}

// String renders the entry the way rpm prints it
func (c ChangelogEntry) String() string {
	return fmt.Sprintf("* %s %s\n%s\n", c.Time.UTC().Format("Mon Jan 02 2006"), c.Name, c.Text)
}

// Header holds the descriptive metadata of a package.
// Empty strings mean the tag is absent.
type Header struct {
	Name        string
	Epoch       string
	Version     string
	Release     string
	Arch        string
	Vendor      string
	Summary     string
	Description string
	License     string
	BuildHost   string

	// Sources lists the basenames declared by the SourceN: tags
	Sources   []string
	Changelog []ChangelogEntry
	IsSource  bool
}

// NEVRA returns name-[epoch:]version-release.arch
func (h Header) NEVRA() string {
	arch := h.Arch
	if h.IsSource {
		arch = "src"
	}
	if h.Epoch != "" && h.Epoch != "0" {
		return fmt.Sprintf("%s-%s:%s-%s.%s", h.Name, h.Epoch, h.Version, h.Release, arch)
	}
	return fmt.Sprintf("%s-%s-%s.%s", h.Name, h.Version, h.Release, arch)
}

// EVR returns [epoch:]version-release
func (h Header) EVR() string {
	if h.Epoch != "" && h.Epoch != "0" {
		return fmt.Sprintf("%s:%s-%s", h.Epoch, h.Version, h.Release)
	}
	return fmt.Sprintf("%s-%s", h.Version, h.Release)
}

// File is a single entry of a package payload
type File struct {
	// LocalPath is the path inside the package, e.g. /usr/lib/modules/x/foo.ko
	LocalPath string
	// FullPath is where the extracted content lives on disk
	FullPath string
	Type     FileType
	Mode     int
	Size     int64
	Digest   string
}

// Basename returns the last element of the package-relative path
func (f *File) Basename() string {
	return path.Base(f.LocalPath)
}

// Package is a loaded build artifact. It is not modified after loading.
type Package struct {
	// Filename is the path of the package archive that was read
	Filename string
	Header   Header
	Files    []File
}

// IsSource reports whether this is a source package
func (p *Package) IsSource() bool {
	return p.Header.IsSource
}

// String returns the NEVRA of the package
func (p *Package) String() string {
	return p.Header.NEVRA()
}
