// Package whitelist loads the per-product stat and capabilities whitelists
// from the vendor data directory.
package whitelist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	// StatDir is the vendor data subdirectory holding stat whitelists
	StatDir = "stat-whitelist"
	// CapsDir is the vendor data subdirectory holding capabilities whitelists
	CapsDir = "capabilities"
)

// StatEntry allows one path to carry a specific mode and ownership
type StatEntry struct {
	Mode  int
	Owner string
	Group string
	Path  string
}

// Rejected is a whitelist line that could not be parsed
type Rejected struct {
	Line   int
	Text   string
	Reason string
}

// StatList is a parsed stat whitelist
type StatList struct {
	Entries  []StatEntry
	Rejected []Rejected
	byPath   map[string]int
}

// Lookup returns the entry for path
func (l *StatList) Lookup(path string) (StatEntry, bool) {
	if l == nil {
		return StatEntry{}, false
	}
	i, ok := l.byPath[path]
	if !ok {
		return StatEntry{}, false
	}
	return l.Entries[i], true
}

// CapsFile is one path and the capabilities it may carry
type CapsFile struct {
	Path string
	Caps string
}

// CapsPackage groups the whitelisted files of one package
type CapsPackage struct {
	Package string
	Files   []CapsFile
}

// CapsList is a parsed capabilities whitelist, packages in first-seen order
type CapsList struct {
	Packages []CapsPackage
	Rejected []Rejected
}

// Lookup returns the capabilities allowed for path in pkg
func (l *CapsList) Lookup(pkg, path string) (string, bool) {
	if l == nil {
		return "", false
	}
	for _, p := range l.Packages {
		if p.Package != pkg {
			continue
		}
		for _, f := range p.Files {
			if f.Path == path {
				return f.Caps, true
			}
		}
	}
	return "", false
}

// Files returns the total number of whitelisted files
func (l *CapsList) Files() int {
	n := 0
	for _, p := range l.Packages {
		n += len(p.Files)
	}
	return n
}

// scanLines calls fn for every non-blank, non-comment line with its fields
func scanLines(r io.Reader, fn func(lineno int, text string, fields []string)) error {
	sc := bufio.NewScanner(r)
	lineno := 0
	for sc.Scan() {
		lineno++
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		fn(lineno, text, fields)
	}
	return sc.Err()
}

// ParseStat reads a stat whitelist: "mode owner group path" per line
func ParseStat(r io.Reader) (*StatList, error) {
	l := &StatList{byPath: make(map[string]int)}

	err := scanLines(r, func(lineno int, text string, fields []string) {
		reject := func(reason string) {
			logrus.Warnf("Invalid stat whitelist line %d (%s): %s", lineno, reason, text)
			l.Rejected = append(l.Rejected, Rejected{Line: lineno, Text: text, Reason: reason})
		}

		if len(fields) < 4 {
			reject("missing fields")
			return
		}

		mode, err := ParseMode(fields[0])
		if err != nil {
			reject(err.Error())
			return
		}

		// paths are compared against package-relative paths, which always
		// start at the first slash
		path := fields[3]
		idx := strings.IndexByte(path, '/')
		if idx < 0 {
			reject(fmt.Sprintf("invalid filename %q", path))
			return
		}

		l.byPath[path[idx:]] = len(l.Entries)
		l.Entries = append(l.Entries, StatEntry{
			Mode:  mode,
			Owner: fields[1],
			Group: fields[2],
			Path:  path[idx:],
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read stat whitelist: %w", err)
	}

	return l, nil
}

// ParseCaps reads a capabilities whitelist: "package path caps" per line
func ParseCaps(r io.Reader) (*CapsList, error) {
	l := &CapsList{}
	index := make(map[string]int)

	err := scanLines(r, func(lineno int, text string, fields []string) {
		if len(fields) < 2 {
			logrus.Warnf("Invalid capabilities whitelist line %d: %s", lineno, text)
			l.Rejected = append(l.Rejected, Rejected{Line: lineno, Text: text, Reason: "missing fields"})
			return
		}

		i, ok := index[fields[0]]
		if !ok {
			i = len(l.Packages)
			index[fields[0]] = i
			l.Packages = append(l.Packages, CapsPackage{Package: fields[0]})
		}

		f := CapsFile{Path: fields[1]}
		if len(fields) > 2 {
			f.Caps = fields[2]
		}
		l.Packages[i].Files = append(l.Packages[i].Files, f)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read capabilities whitelist: %w", err)
	}

	return l, nil
}

// LoadStat loads the stat whitelist for product. A missing file yields
// (nil, nil).
func LoadStat(vendorDataDir, product string) (*StatList, error) {
	f, err := open(filepath.Join(vendorDataDir, StatDir, product))
	if f == nil {
		return nil, err
	}
	defer f.Close()
	return ParseStat(f)
}

// LoadCaps loads the capabilities whitelist for product. A missing file
// yields (nil, nil).
func LoadCaps(vendorDataDir, product string) (*CapsList, error) {
	f, err := open(filepath.Join(vendorDataDir, CapsDir, product))
	if f == nil {
		return nil, err
	}
	defer f.Close()
	return ParseCaps(f)
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		logrus.Debugf("No whitelist at %s", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open whitelist %s: %w", path, err)
	}
	return f, nil
}
