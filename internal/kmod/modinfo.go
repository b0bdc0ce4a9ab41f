// Package kmod reads kernel module metadata and diffs it between builds.
package kmod

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ralt/rpmaudit/internal/utils"
)

// ErrNotModule is returned for files that do not parse as kernel modules
var ErrNotModule = errors.New("not a kernel module")

// ModuleInfo is the metadata of one kernel module object
type ModuleInfo struct {
	Name         string
	Parameters   []string
	Dependencies []string
	Aliases      []string
}

// Introspector extracts module metadata from a file on disk
type Introspector interface {
	Inspect(path string) (*ModuleInfo, error)
}

// ELFIntrospector reads the .modinfo section of (possibly compressed) ELF objects
type ELFIntrospector struct{}

// NewELFIntrospector creates a new ELF introspector
func NewELFIntrospector() *ELFIntrospector {
	return &ELFIntrospector{}
}

// Inspect implements Introspector
func (ELFIntrospector) Inspect(path string) (*ModuleInfo, error) {
	data, err := utils.ReadDecompressed(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, ErrNotModule
	}
	defer f.Close()

	sec := f.Section(".modinfo")
	if sec == nil {
		return nil, ErrNotModule
	}

	raw, err := sec.Data()
	if err != nil {
		return nil, fmt.Errorf("failed to read .modinfo of %s: %w", path, err)
	}

	info := ParseModinfo(raw)
	if info.Name == "" {
		info.Name = NameFromPath(path)
	}
	return info, nil
}

// ParseModinfo decodes the NUL separated key=value records of a .modinfo section
func ParseModinfo(raw []byte) *ModuleInfo {
	info := &ModuleInfo{}
	seenParm := make(map[string]bool)
	seenDep := make(map[string]bool)
	seenAlias := make(map[string]bool)

	for _, rec := range bytes.Split(raw, []byte{0}) {
		key, value, ok := strings.Cut(string(rec), "=")
		if !ok {
			continue
		}

		switch key {
		case "name":
			info.Name = value
		case "parm", "parmtype":
			// parm=name:description, parmtype=name:type
			name, _, _ := strings.Cut(value, ":")
			name = strings.TrimSpace(name)
			if name != "" && !seenParm[name] {
				seenParm[name] = true
				info.Parameters = append(info.Parameters, name)
			}
		case "depends":
			for _, dep := range strings.Split(value, ",") {
				dep = strings.TrimSpace(dep)
				if dep != "" && !seenDep[dep] {
					seenDep[dep] = true
					info.Dependencies = append(info.Dependencies, dep)
				}
			}
		case "alias":
			if value != "" && !seenAlias[value] {
				seenAlias[value] = true
				info.Aliases = append(info.Aliases, value)
			}
		}
	}

	return info
}

// NameFromPath derives the module name the kernel would use for a file
func NameFromPath(path string) string {
	base := utils.TrimCompressionExt(filepath.Base(path))
	base = strings.TrimSuffix(base, ".ko")
	return strings.ReplaceAll(base, "-", "_")
}

const (
	modulesDir = "/lib/modules/"
	debugDir   = "/usr/lib/debug"
)

// IsModulePath reports whether a package-relative path names a kernel module
// object, compressed or not. Debuginfo trees are excluded.
func IsModulePath(path string) bool {
	if strings.HasPrefix(path, debugDir) {
		return false
	}
	if !strings.Contains(path, modulesDir) {
		return false
	}
	return strings.HasSuffix(utils.TrimCompressionExt(path), ".ko")
}
