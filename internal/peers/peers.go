// Package peers pairs the packages and files of a before build with those of
// an after build so inspections can compare them.
package peers

import (
	"fmt"
	"strings"

	rpmVer "github.com/knqyf263/go-rpm-version"
	"github.com/ralt/rpmaudit/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	noPeer = -1

	modulesDir = "/lib/modules/"
)

// Pair associates one after package with the before package believed to be
// the same logical package. Before is nil for a package new in the after build.
//
// File peers are indexes into the other package's Files slice, so a Pair never
// owns either package.
type Pair struct {
	Before *models.Package
	After  *models.Package

	afterToBefore []int
	beforeToAfter []int
}

// NewPair creates a Pair and matches its files. after must not be nil.
func NewPair(before, after *models.Package) *Pair {
	if after == nil {
		panic("peers: pair without an after package")
	}

	p := &Pair{
		Before:        before,
		After:         after,
		afterToBefore: make([]int, len(after.Files)),
	}
	for i := range p.afterToBefore {
		p.afterToBefore[i] = noPeer
	}

	if before == nil {
		return p
	}

	p.beforeToAfter = make([]int, len(before.Files))
	index := make(map[string]int, len(before.Files))
	for i := range before.Files {
		p.beforeToAfter[i] = noPeer
		key := fileKey(before, &before.Files[i])
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	for i := range after.Files {
		key := fileKey(after, &after.Files[i])
		j, ok := index[key]
		if !ok || p.beforeToAfter[j] != noPeer {
			continue
		}
		p.afterToBefore[i] = j
		p.beforeToAfter[j] = i
	}

	return p
}

// fileKey is the identity used to match files across builds. Source package
// payloads are flat, so only the basename is meaningful there.
func fileKey(pkg *models.Package, f *models.File) string {
	if pkg.IsSource() {
		return f.Basename()
	}
	return kernelNeutralPath(f.LocalPath)
}

// kernelNeutralPath replaces the kernel release directory below /lib/modules/
// so modules pair up across a kernel rebuild
func kernelNeutralPath(path string) string {
	i := strings.Index(path, modulesDir)
	if i < 0 {
		return path
	}
	start := i + len(modulesDir)
	rest := path[start:]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		return path[:start] + "*" + rest[j:]
	}
	return path[:start] + "*"
}

// HasBefore reports whether the pair compares two builds
func (p *Pair) HasBefore() bool {
	return p.Before != nil
}

// BeforePeer returns the before file matching After.Files[i], or nil when the
// file is new.
func (p *Pair) BeforePeer(i int) *models.File {
	j := p.afterToBefore[i]
	if j == noPeer {
		return nil
	}
	return &p.Before.Files[j]
}

// AfterPeer returns the after file matching Before.Files[i], or nil when the
// file was removed.
func (p *Pair) AfterPeer(i int) *models.File {
	if p.Before == nil {
		return nil
	}
	j := p.beforeToAfter[i]
	if j == noPeer {
		return nil
	}
	return &p.After.Files[j]
}

// NewFiles returns after files without a before peer
func (p *Pair) NewFiles() []*models.File {
	var out []*models.File
	for i := range p.After.Files {
		if p.afterToBefore[i] == noPeer {
			out = append(out, &p.After.Files[i])
		}
	}
	return out
}

// RemovedFiles returns before files without an after peer. A pair without a
// before package never has removed files.
func (p *Pair) RemovedFiles() []*models.File {
	if p.Before == nil {
		return nil
	}
	var out []*models.File
	for i := range p.Before.Files {
		if p.beforeToAfter[i] == noPeer {
			out = append(out, &p.Before.Files[i])
		}
	}
	return out
}

// SameNameVersion reports whether both sides carry the same name and version
func (p *Pair) SameNameVersion() bool {
	if p.Before == nil {
		return false
	}
	return p.Before.Header.Name == p.After.Header.Name &&
		p.Before.Header.Version == p.After.Header.Version
}

// Identity returns the key packages are paired by
func Identity(pkg *models.Package) string {
	if pkg.IsSource() {
		return fmt.Sprintf("%s:src", pkg.Header.Name)
	}
	return fmt.Sprintf("%s:%s", pkg.Header.Name, pkg.Header.Arch)
}

// Match pairs every after package with a before package of the same identity.
// When several before builds share an identity the newest one is used. Before
// packages with no after counterpart are not paired.
func Match(before, after []*models.Package) []*Pair {
	candidates := make(map[string]*models.Package)
	for _, b := range before {
		id := Identity(b)
		cur, ok := candidates[id]
		if !ok || newer(b, cur) {
			candidates[id] = b
		}
	}

	pairs := make([]*Pair, 0, len(after))
	used := make(map[string]bool)
	for _, a := range after {
		id := Identity(a)
		b := candidates[id]
		if b != nil && used[id] {
			logrus.Warnf("Multiple after builds for %s, comparing %s without a before build", id, a)
			b = nil
		}
		if b != nil {
			used[id] = true
			logrus.Debugf("Paired %s with %s", a, b)
		} else {
			logrus.Debugf("No before build for %s", a)
		}
		pairs = append(pairs, NewPair(b, a))
	}

	for id, b := range candidates {
		if !used[id] {
			logrus.Debugf("Package %s has no after build", b)
		}
	}

	return pairs
}

func newer(a, b *models.Package) bool {
	return rpmVer.NewVersion(b.Header.EVR()).LessThan(rpmVer.NewVersion(a.Header.EVR()))
}
