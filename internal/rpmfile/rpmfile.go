// Package rpmfile loads RPM headers and payloads into models.Package values.
package rpmfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sassoftware/go-rpmutils"
	"github.com/sirupsen/logrus"

	"github.com/ralt/rpmaudit/internal/kmod"
	"github.com/ralt/rpmaudit/internal/models"
)

// ParsePackage reads the header and file list of an RPM file
func ParsePackage(path string) (*models.Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read RPM: %w", err)
	}

	hdr := models.Header{
		Name:        getStringTag(rpm, rpmutils.NAME),
		Version:     getStringTag(rpm, rpmutils.VERSION),
		Release:     getStringTag(rpm, rpmutils.RELEASE),
		Arch:        getStringTag(rpm, rpmutils.ARCH),
		Vendor:      getStringTag(rpm, rpmutils.VENDOR),
		Summary:     getStringTag(rpm, rpmutils.SUMMARY),
		Description: getStringTag(rpm, rpmutils.DESCRIPTION),
		License:     getStringTag(rpm, rpmutils.LICENSE),
		BuildHost:   getStringTag(rpm, rpmutils.BUILDHOST),
		// binary packages record the source package they were built from
		IsSource: !hasTag(rpm, rpmutils.SOURCERPM),
	}

	if epochs := getIntsTag(rpm, rpmutils.EPOCH); len(epochs) > 0 {
		hdr.Epoch = fmt.Sprintf("%d", epochs[0])
	}

	for _, src := range getStringSliceTag(rpm, rpmutils.SOURCE) {
		hdr.Sources = append(hdr.Sources, filepath.Base(src))
	}

	hdr.Changelog = changelog(rpm)

	infos, err := rpm.Header.GetFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to read file list: %w", err)
	}

	pkg := &models.Package{
		Filename: path,
		Header:   hdr,
		Files:    make([]models.File, 0, len(infos)),
	}

	for _, fi := range infos {
		file := models.File{
			LocalPath: fi.Name(),
			Mode:      fi.Mode(),
			Size:      fi.Size(),
			Digest:    fi.Digest(),
		}
		file.Type = Classify(&file, hdr.IsSource)
		pkg.Files = append(pkg.Files, file)
	}

	logrus.Debugf("Parsed %s: %d files", pkg, len(pkg.Files))
	return pkg, nil
}

// Classify decides the FileType of a payload entry
func Classify(f *models.File, source bool) models.FileType {
	switch f.Mode & models.ModeTypeMask {
	case models.ModeDirectory:
		return models.FileDirectory
	case models.ModeSymlink:
		return models.FileSymlink
	case models.ModeRegular:
		if source {
			return models.FileSource
		}
		if kmod.IsModulePath(f.LocalPath) {
			return models.FileKernelModule
		}
		return models.FileRegular
	default:
		return models.FileOther
	}
}

// Extract expands the payload of pkg below workdir and points every regular
// file's FullPath at its extracted content
func Extract(pkg *models.Package, workdir string) error {
	dest := filepath.Join(workdir, pkg.String())
	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	f, err := os.Open(pkg.Filename)
	if err != nil {
		return err
	}
	defer f.Close()

	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return fmt.Errorf("failed to read RPM: %w", err)
	}

	if err := rpm.ExpandPayload(dest); err != nil {
		return fmt.Errorf("failed to expand payload: %w", err)
	}

	for i := range pkg.Files {
		pkg.Files[i].FullPath = filepath.Join(dest, strings.TrimPrefix(pkg.Files[i].LocalPath, "/"))
	}

	logrus.Debugf("Extracted %s to %s", pkg, dest)
	return nil
}

func changelog(rpm *rpmutils.Rpm) []models.ChangelogEntry {
	times := getIntsTag(rpm, rpmutils.CHANGELOGTIME)
	names := getStringSliceTag(rpm, rpmutils.CHANGELOGNAME)
	texts := getStringSliceTag(rpm, rpmutils.CHANGELOGTEXT)

	n := len(times)
	if len(names) < n {
		n = len(names)
	}
	if len(texts) < n {
		n = len(texts)
	}

	entries := make([]models.ChangelogEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, models.ChangelogEntry{
			Time: time.Unix(times[i], 0).UTC(),
			Name: names[i],
			Text: texts[i],
		})
	}
	return entries
}

func hasTag(rpm *rpmutils.Rpm, tag int) bool {
	_, err := rpm.Header.Get(tag)
	return err == nil
}

// getStringTag safely gets a string tag from RPM
func getStringTag(rpm *rpmutils.Rpm, tag int) string {
	val, err := rpm.Header.Get(tag)
	if err != nil {
		return ""
	}

	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	default:
		return fmt.Sprintf("%v", v)
	}

	return ""
}

// getIntsTag safely gets an integer array tag from RPM
func getIntsTag(rpm *rpmutils.Rpm, tag int) []int64 {
	val, err := rpm.Header.Get(tag)
	if err != nil {
		return nil
	}

	var out []int64
	switch v := val.(type) {
	case int:
		out = append(out, int64(v))
	case int32:
		out = append(out, int64(v))
	case int64:
		out = append(out, v)
	case []int:
		for _, i := range v {
			out = append(out, int64(i))
		}
	case []int32:
		for _, i := range v {
			out = append(out, int64(i))
		}
	case []uint8:
		for _, i := range v {
			out = append(out, int64(i))
		}
	case []uint16:
		for _, i := range v {
			out = append(out, int64(i))
		}
	case []uint32:
		for _, i := range v {
			out = append(out, int64(i))
		}
	case []int64:
		out = append(out, v...)
	case []uint64:
		for _, i := range v {
			out = append(out, int64(i))
		}
	}
	return out
}

// getStringSliceTag safely gets a string array tag from RPM. Entries are kept
// positionally, so empty strings are not filtered.
func getStringSliceTag(rpm *rpmutils.Rpm, tag int) []string {
	val, err := rpm.Header.Get(tag)
	if err != nil {
		return nil
	}
	switch v := val.(type) {
	case []string:
		return v
	case string:
		return []string{v}
	}
	return nil
}
