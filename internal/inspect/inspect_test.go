package inspect

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralt/rpmaudit/internal/config"
	"github.com/ralt/rpmaudit/internal/kmod"
	"github.com/ralt/rpmaudit/internal/models"
	"github.com/ralt/rpmaudit/internal/peers"
	"github.com/ralt/rpmaudit/internal/result"
	"github.com/ralt/rpmaudit/internal/rpmfile"
)

const licenseJSON = `{
  "MIT License": {"fedora_abbrev": "MIT", "spdx_abbrev": "MIT", "approved": "yes"},
  "GNU General Public License v2.0 or later": {"fedora_abbrev": "GPLv2+", "spdx_abbrev": "GPL-2.0-or-later", "approved": "yes"},
  "GNU Lesser General Public License v2.1 or later": {"fedora_abbrev": "LGPLv2+", "spdx_abbrev": "LGPL-2.1-or-later", "approved": "yes"}
}`

// testSettings returns settings pointing at a temporary vendor data dir with
// a license database
func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	s := config.Default()
	s.VendorDataDir = t.TempDir()
	s.LicenseDB = "test.json"
	s.Vendor = "Acme"
	s.BadWords = []string{"crud"}

	dir := filepath.Join(s.VendorDataDir, "licenses")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.json"), []byte(licenseJSON), 0644))
	return s
}

func header(name, version, release string) models.Header {
	return models.Header{
		Name:        name,
		Version:     version,
		Release:     release,
		Arch:        "x86_64",
		Vendor:      "Acme",
		Summary:     "A package",
		Description: "A longer description.",
		License:     "MIT",
	}
}

func pkg(h models.Header, files ...models.File) *models.Package {
	return &models.Package{Filename: h.Name + ".rpm", Header: h, Files: files}
}

// content writes data to a temp file and returns a regular File for it
func content(t *testing.T, localPath string, data string) models.File {
	t.Helper()
	full := filepath.Join(t.TempDir(), filepath.Base(localPath))
	require.NoError(t, os.WriteFile(full, []byte(data), 0644))
	f := models.File{LocalPath: localPath, FullPath: full, Mode: 0100644}
	f.Type = rpmfile.Classify(&f, false)
	return f
}

type fakeIntrospector map[string]*kmod.ModuleInfo

func (f fakeIntrospector) Inspect(path string) (*kmod.ModuleInfo, error) {
	info, ok := f[path]
	if !ok {
		return nil, kmod.ErrNotModule
	}
	return info, nil
}

func run(t *testing.T, name string, c *Context) []result.Finding {
	t.Helper()
	in, ok := Lookup(name)
	require.True(t, ok, name)

	report := result.NewReport()
	_, err := in.Run(context.Background(), c, report)
	require.NoError(t, err)
	return report.Findings()
}

func messages(fs []result.Finding) []string {
	var out []string
	for _, f := range fs {
		out = append(out, f.Message)
	}
	return out
}

func TestCleanPackageRecordsSingleOK(t *testing.T) {
	s := testSettings(t)
	h := header("foo", "1.0", "1")
	pairs := []*peers.Pair{peers.NewPair(pkg(h), pkg(h))}
	c := NewContext(s, pairs, fakeIntrospector{})

	for _, in := range All() {
		fs := run(t, in.Name, c)
		require.Len(t, fs, 1, in.Name)
		assert.Equal(t, result.OK, fs[0].Severity, in.Name)
		assert.Equal(t, in.Name, fs[0].Inspection)
	}
}

func TestLicense(t *testing.T) {
	s := testSettings(t)

	tests := []struct {
		license string
		want    []result.Severity
	}{
		{"MIT", []result.Severity{result.OK}},
		{"(GPLv2+ and MIT) or LGPLv2+", []result.Severity{result.OK}},
		{"GPLv2+ and MIT) or (LGPLv2+", []result.Severity{result.Bad}},
		{"Proprietary", []result.Severity{result.Bad}},
		{"", []result.Severity{result.Bad}},
		{"MIT and Crud", []result.Severity{result.Bad, result.Bad}},
	}

	for _, tt := range tests {
		h := header("foo", "1.0", "1")
		h.License = tt.license
		c := NewContext(s, []*peers.Pair{peers.NewPair(nil, pkg(h))}, nil)

		fs := run(t, "license", c)
		var got []result.Severity
		for _, f := range fs {
			got = append(got, f.Severity)
		}
		assert.Equal(t, tt.want, got, tt.license)
	}
}

func TestLicenseMissingDatabase(t *testing.T) {
	s := testSettings(t)
	s.LicenseDB = "missing.json"
	h := header("foo", "1.0", "1")
	c := NewContext(s, []*peers.Pair{peers.NewPair(nil, pkg(h)), peers.NewPair(nil, pkg(h))}, nil)

	in, _ := Lookup("license")
	report := result.NewReport()
	passed, err := in.Run(context.Background(), c, report)
	require.NoError(t, err)
	assert.False(t, passed)

	fs := report.Findings()
	require.Len(t, fs, 1)
	assert.Equal(t, result.Bad, fs[0].Severity)
	assert.Contains(t, fs[0].Message, "Missing license database")
	assert.Equal(t, remedyLicenseDB, fs[0].Remedy)
}

func TestMetadataLostVendor(t *testing.T) {
	s := testSettings(t)
	before := header("foo", "1.0", "1")
	after := header("foo", "1.0", "2")
	after.Vendor = ""

	c := NewContext(s, []*peers.Pair{peers.NewPair(pkg(before), pkg(after))}, nil)
	fs := run(t, "metadata", c)

	require.Len(t, fs, 1)
	assert.Equal(t, result.Verify, fs[0].Severity)
	assert.Equal(t, result.WaivableByAnyone, fs[0].Waiver)
	assert.Equal(t, `Lost Package Vendor "Acme" in foo`, fs[0].Message)
}

func TestMetadataDrift(t *testing.T) {
	s := testSettings(t)
	before := header("foo", "1.0", "1")
	before.Vendor = ""
	after := header("foo", "1.0", "2")
	after.Summary = "Another package"
	after.Description = "Rewritten."

	c := NewContext(s, []*peers.Pair{peers.NewPair(pkg(before), pkg(after))}, nil)
	fs := run(t, "metadata", c)

	assert.Equal(t, []string{
		`Gained Package Vendor "Acme" in foo`,
		`Package Summary changed from "A package" to "Another package" in foo`,
		"Package Description changed in foo",
	}, messages(fs))
	assert.Equal(t, "from:\n\nA longer description.\n\nto:\n\nRewritten.", fs[2].Details)
}

func TestMetadataPolicy(t *testing.T) {
	s := testSettings(t)
	s.BuildHostSubdomain = []string{".build.example.com"}

	h := header("foo", "1.0", "1")
	h.Vendor = "Other"
	h.BuildHost = "laptop.local"
	h.Summary = "Some crud"
	h.Description = "More CRUD here"

	c := NewContext(s, []*peers.Pair{peers.NewPair(nil, pkg(h))}, nil)
	fs := run(t, "metadata", c)

	require.Len(t, fs, 4)
	for _, f := range fs {
		assert.Equal(t, result.Bad, f.Severity, f.Message)
	}
	assert.Equal(t, remedyVendor, fs[0].Remedy)
	assert.Equal(t, remedyBuildHost, fs[1].Remedy)
	assert.Equal(t, "Summary: Some crud", fs[2].Details)

	h.BuildHost = "b01.build.example.com"
	h.Vendor = "Acme"
	h.Summary = "fine"
	h.Description = "fine"
	c = NewContext(s, []*peers.Pair{peers.NewPair(nil, pkg(h))}, nil)
	fs = run(t, "metadata", c)
	require.Len(t, fs, 1)
	assert.Equal(t, result.OK, fs[0].Severity)
}

func TestMetadataVendorNotConfigured(t *testing.T) {
	s := testSettings(t)
	s.Vendor = ""
	h := header("foo", "1.0", "1")

	c := NewContext(s, []*peers.Pair{peers.NewPair(nil, pkg(h))}, nil)
	fs := run(t, "metadata", c)
	require.Len(t, fs, 1)
	assert.Equal(t, result.Info, fs[0].Severity)
}

func TestIdempotent(t *testing.T) {
	s := testSettings(t)
	before := header("foo", "1.0", "1")
	after := header("foo", "1.1", "1")
	after.Summary = "changed"
	after.License = "MIT and Bogus"
	pairs := []*peers.Pair{peers.NewPair(pkg(before), pkg(after))}

	for _, name := range []string{"metadata", "license"} {
		first := run(t, name, NewContext(s, pairs, nil))
		c := NewContext(s, pairs, nil)
		second := run(t, name, c)
		third := run(t, name, c)
		assert.Equal(t, first, second, name)
		assert.Equal(t, second, third, name)
	}
}

func modulePair(t *testing.T, beforeVersion, afterVersion string, beforeInfo, afterInfo *kmod.ModuleInfo) *Context {
	t.Helper()
	const path = "/lib/modules/6.1/kernel/drivers/foo.ko.xz"

	b := content(t, path, "before")
	a := content(t, path, "after")
	intro := fakeIntrospector{b.FullPath: beforeInfo, a.FullPath: afterInfo}

	before := pkg(header("kmod-foo", beforeVersion, "1"), b)
	after := pkg(header("kmod-foo", afterVersion, "2"), a)
	return NewContext(testSettings(t), []*peers.Pair{peers.NewPair(before, after)}, intro)
}

func TestKmodParameterLossSameVersion(t *testing.T) {
	c := modulePair(t, "1.0", "1.0",
		&kmod.ModuleInfo{Name: "foo", Parameters: []string{"foo", "bar"}},
		&kmod.ModuleInfo{Name: "foo", Parameters: []string{"bar"}})

	fs := run(t, "kmod", c)
	require.Len(t, fs, 1)
	assert.Equal(t, result.Verify, fs[0].Severity)
	assert.Equal(t, result.WaivableByAnyone, fs[0].Waiver)
	assert.Contains(t, fs[0].Message, "removes parameter 'foo'")
	assert.Equal(t, remedyKmodParm, fs[0].Remedy)
}

func TestKmodParameterLossNewVersion(t *testing.T) {
	c := modulePair(t, "1.0", "2.0",
		&kmod.ModuleInfo{Name: "foo", Parameters: []string{"foo"}},
		&kmod.ModuleInfo{Name: "foo"})

	fs := run(t, "kmod", c)
	require.Len(t, fs, 1)
	assert.Equal(t, result.Info, fs[0].Severity)
	assert.Equal(t, result.NotWaivable, fs[0].Waiver)
	assert.Contains(t, fs[0].Message, "removes parameter 'foo'")
	assert.Empty(t, fs[0].Remedy)
}

func TestKmodDependenciesAndAliases(t *testing.T) {
	c := modulePair(t, "1.0", "1.0",
		&kmod.ModuleInfo{Name: "foo", Dependencies: []string{"usbcore"}, Aliases: []string{"pci:1", "pci:2"}},
		&kmod.ModuleInfo{Name: "foo", Parameters: []string{"debug"}, Dependencies: []string{"hid"}, Aliases: []string{"pci:2", "pci:3"}})

	fs := run(t, "kmod", c)
	assert.Equal(t, []string{
		"Kernel module /lib/modules/6.1/kernel/drivers/foo.ko.xz adds parameter 'debug'",
		"Kernel module /lib/modules/6.1/kernel/drivers/foo.ko.xz removes dependency 'usbcore'",
		"Kernel module /lib/modules/6.1/kernel/drivers/foo.ko.xz adds dependency 'hid'",
		"Kernel module 'foo' lost alias 'pci:1'",
		"Kernel module 'foo' gained alias 'pci:3'",
	}, messages(fs))

	assert.Equal(t, result.Info, fs[0].Severity)
	assert.Equal(t, result.Verify, fs[1].Severity)
	assert.Equal(t, result.Verify, fs[2].Severity)
	assert.Equal(t, result.Verify, fs[3].Severity)
	assert.Equal(t, result.Info, fs[4].Severity)
}

func TestKmodPairsAcrossKernelReleases(t *testing.T) {
	b := content(t, "/lib/modules/5.14.0-1.el9.x86_64/kernel/drivers/foo.ko", "before")
	a := content(t, "/lib/modules/5.14.0-2.el9.x86_64/kernel/drivers/foo.ko", "after")
	intro := fakeIntrospector{
		b.FullPath: {Name: "foo", Parameters: []string{"foo", "bar"}},
		a.FullPath: {Name: "foo", Parameters: []string{"bar"}},
	}

	before := pkg(header("kernel-modules", "5.14.0", "1.el9"), b)
	after := pkg(header("kernel-modules", "5.14.0", "2.el9"), a)
	c := NewContext(testSettings(t), []*peers.Pair{peers.NewPair(before, after)}, intro)

	fs := run(t, "kmod", c)
	require.Len(t, fs, 1)
	assert.Equal(t, result.Verify, fs[0].Severity)
	assert.Equal(t, result.WaivableByAnyone, fs[0].Waiver)
	assert.Equal(t, "Kernel module /lib/modules/5.14.0-2.el9.x86_64/kernel/drivers/foo.ko removes parameter 'foo'", fs[0].Message)
}

func TestKmodSkipsUnparsableModules(t *testing.T) {
	c := modulePair(t, "1.0", "1.0", &kmod.ModuleInfo{Name: "foo", Parameters: []string{"foo"}}, nil)
	c.Introspector = fakeIntrospector{}

	fs := run(t, "kmod", c)
	require.Len(t, fs, 1)
	assert.Equal(t, result.OK, fs[0].Severity)
}

func TestKmodIgnoresNonModules(t *testing.T) {
	b := content(t, "/usr/lib/debug/lib/modules/6.1/foo.ko", "x")
	a := content(t, "/usr/lib/debug/lib/modules/6.1/foo.ko", "y")
	intro := fakeIntrospector{
		b.FullPath: {Name: "foo", Parameters: []string{"p"}},
		a.FullPath: {Name: "foo"},
	}
	h := header("kmod-foo", "1.0", "1")
	c := NewContext(testSettings(t), []*peers.Pair{peers.NewPair(pkg(h, b), pkg(h, a))}, intro)

	fs := run(t, "kmod", c)
	require.Len(t, fs, 1)
	assert.Equal(t, result.OK, fs[0].Severity)
}

func sourceHeader(version string, sources ...string) models.Header {
	h := header("foo", version, "1")
	h.IsSource = true
	h.Sources = sources
	return h
}

func TestUpstreamChangedTextSource(t *testing.T) {
	before := pkg(sourceHeader("1.0", "foo.txt", "gone.txt"),
		content(t, "foo.txt", "one\ntwo\nthree\n"),
		content(t, "foo.spec", "Name: foo\n"),
		content(t, "gone.txt", "bye\n"),
		content(t, "undeclared.patch", "x\n"))
	after := pkg(sourceHeader("1.0", "foo.txt", "new.txt"),
		content(t, "foo.txt", "one\n2\nthree\n"),
		content(t, "foo.spec", "Name: foo\nRelease: 2\n"),
		content(t, "new.txt", "hello\n"))

	c := NewContext(testSettings(t), []*peers.Pair{peers.NewPair(before, after)}, nil)
	fs := run(t, "upstream", c)

	assert.Equal(t, []string{
		"Upstream source file `foo.txt` changed content",
		"New upstream source file `new.txt` appeared",
		"Source RPM member `gone.txt` removed",
	}, messages(fs))

	for _, f := range fs {
		assert.Equal(t, result.Verify, f.Severity)
		assert.Equal(t, result.WaivableByAnyone, f.Waiver)
		assert.Equal(t, remedyUpstream, f.Remedy)
	}

	detail := fs[0].Details
	assert.True(t, strings.HasPrefix(detail, "@@"), detail)
	assert.NotContains(t, detail, "--- ")
	assert.NotContains(t, detail, "+++ ")
	assert.Contains(t, detail, "-two\n")
	assert.Contains(t, detail, "+2\n")
}

func TestUpstreamVersionBump(t *testing.T) {
	before := pkg(sourceHeader("1.0", "foo.tar"), content(t, "foo.tar", "\x00\x01binary"))
	after := pkg(sourceHeader("2.0", "foo.tar"), content(t, "foo.tar", "\x00\x02binary"))

	c := NewContext(testSettings(t), []*peers.Pair{peers.NewPair(before, after)}, nil)
	fs := run(t, "upstream", c)

	require.Len(t, fs, 1)
	assert.Equal(t, result.Info, fs[0].Severity)
	assert.Equal(t, result.NotWaivable, fs[0].Waiver)
	assert.Empty(t, fs[0].Remedy)
	assert.Empty(t, fs[0].Details)
}

func TestUpstreamPolicyIgnoresNewSourcePackages(t *testing.T) {
	newHeader := sourceHeader("1.0", "a.txt")
	newHeader.Name = "a"
	fresh := pkg(newHeader, content(t, "a.txt", "a\n"))

	bh, ah := sourceHeader("1.0", "b.txt"), sourceHeader("1.0", "b.txt")
	bh.Name, ah.Name = "b", "b"
	before := pkg(bh, content(t, "b.txt", "one\n"))
	after := pkg(ah, content(t, "b.txt", "two\n"))

	pairs := []*peers.Pair{peers.NewPair(nil, fresh), peers.NewPair(before, after)}
	fs := run(t, "upstream", NewContext(testSettings(t), pairs, nil))

	require.Equal(t, []string{
		"New upstream source file `a.txt` appeared",
		"Upstream source file `b.txt` changed content",
	}, messages(fs))
	for _, f := range fs {
		assert.Equal(t, result.Verify, f.Severity, f.Message)
		assert.Equal(t, result.WaivableByAnyone, f.Waiver, f.Message)
	}
}

func TestUpstreamNewPackage(t *testing.T) {
	after := pkg(sourceHeader("1.0", "foo.tar"), content(t, "foo.tar", "data"))
	c := NewContext(testSettings(t), []*peers.Pair{peers.NewPair(nil, after)}, nil)

	fs := run(t, "upstream", c)
	require.Len(t, fs, 1)
	assert.Equal(t, "New upstream source file `foo.tar` appeared", fs[0].Message)
	assert.Equal(t, result.Info, fs[0].Severity)
}

func TestUpstreamNoSources(t *testing.T) {
	after := pkg(sourceHeader("1.0"), content(t, "foo.spec", "Name: foo\n"))
	c := NewContext(testSettings(t), []*peers.Pair{peers.NewPair(nil, after)}, nil)

	fs := run(t, "upstream", c)
	require.Len(t, fs, 1)
	assert.Equal(t, result.Bad, fs[0].Severity)
	assert.Equal(t, remedySources, fs[0].Remedy)
}

func entry(day int, text string) models.ChangelogEntry {
	return models.ChangelogEntry{
		Time: time.Date(2024, time.March, day, 12, 0, 0, 0, time.UTC),
		Name: "Jane Doe <jane@example.com> - 1.0-1",
		Text: text,
	}
}

func changelogPairs(srcBefore, srcAfter, binBefore, binAfter []models.ChangelogEntry) []*peers.Pair {
	sb, sa := sourceHeader("1.0", "foo.tar"), sourceHeader("1.0", "foo.tar")
	sb.Changelog, sa.Changelog = srcBefore, srcAfter
	bb, ba := header("foo", "1.0", "1"), header("foo", "1.0", "2")
	bb.Changelog, ba.Changelog = binBefore, binAfter

	return []*peers.Pair{
		peers.NewPair(pkg(sb), pkg(sa)),
		peers.NewPair(pkg(bb), pkg(ba)),
	}
}

func TestChangelogNewEntry(t *testing.T) {
	old := []models.ChangelogEntry{entry(1, "- Initial build")}
	updated := []models.ChangelogEntry{entry(5, "- Fix bug"), entry(1, "- Initial build")}

	c := NewContext(testSettings(t), changelogPairs(old, updated, old, updated), nil)
	fs := run(t, "changelog", c)

	require.Len(t, fs, 1)
	assert.Equal(t, result.Info, fs[0].Severity)
	assert.Contains(t, fs[0].Message, "contains new text")
	assert.Contains(t, fs[0].Details, "+* Tue Mar 05 2024 Jane Doe")
	assert.NotContains(t, fs[0].Details, "--- before")
}

func TestChangelogNoNewEntry(t *testing.T) {
	old := []models.ChangelogEntry{entry(1, "- Initial build")}

	c := NewContext(testSettings(t), changelogPairs(old, old, old, old), nil)
	fs := run(t, "changelog", c)

	require.Len(t, fs, 1)
	assert.Equal(t, result.Bad, fs[0].Severity)
	assert.Contains(t, fs[0].Message, "No new %changelog entry")
}

func TestChangelogRewritten(t *testing.T) {
	old := []models.ChangelogEntry{entry(1, "- Initial build")}
	rewritten := []models.ChangelogEntry{entry(5, "- Fix crud"), entry(1, "- First build")}

	c := NewContext(testSettings(t), changelogPairs(old, rewritten, old, rewritten), nil)
	fs := run(t, "changelog", c)

	var sevs []result.Severity
	for _, f := range fs {
		sevs = append(sevs, f.Severity)
	}
	assert.Equal(t, []result.Severity{result.Verify, result.Bad}, sevs)
	assert.Contains(t, fs[0].Message, "modified")
	assert.Contains(t, fs[1].Message, "unprofessional")
}

func TestChangelogLostAndGained(t *testing.T) {
	old := []models.ChangelogEntry{entry(1, "- Initial build")}

	fs := run(t, "changelog", NewContext(testSettings(t), changelogPairs(old, nil, nil, nil), nil))
	require.Len(t, fs, 1)
	assert.Equal(t, result.Verify, fs[0].Severity)

	fs = run(t, "changelog", NewContext(testSettings(t), changelogPairs(nil, old, nil, nil), nil))
	require.Len(t, fs, 1)
	assert.Equal(t, result.Info, fs[0].Severity)

	fs = run(t, "changelog", NewContext(testSettings(t), changelogPairs(nil, nil, nil, nil), nil))
	require.Len(t, fs, 1)
	assert.Equal(t, result.Bad, fs[0].Severity)
}

func TestSelect(t *testing.T) {
	s := config.Default()

	all, err := Select(s, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "license,metadata,kmod,upstream,changelog", Names(all))

	s.Inspections["kmod"] = false
	some, err := Select(s, nil, []string{"changelog"})
	require.NoError(t, err)
	assert.Equal(t, "license,metadata,upstream", Names(some))

	only, err := Select(s, []string{"kmod", "license"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "license,kmod", Names(only))

	_, err = Select(s, []string{"bogus"}, nil)
	assert.Error(t, err)

	_, err = Select(s, nil, []string{"bogus"})
	assert.Error(t, err)

	s.Inspections["bogus"] = true
	_, err = Select(s, nil, nil)
	assert.Error(t, err)
}

func TestContextCaches(t *testing.T) {
	s := testSettings(t)
	c := NewContext(s, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			db, err := c.LicenseDB()
			assert.NoError(t, err)
			assert.Equal(t, 3, db.Len())
		}()
	}
	wg.Wait()

	p := pkg(sourceHeader("1.0", "a.tar", "b.tar"))
	first := c.Sources(p)
	assert.Equal(t, map[string]bool{"a.tar": true, "b.tar": true}, first)
	p.Header.Sources = nil
	assert.Equal(t, first, c.Sources(p))
}

func TestContextWhitelists(t *testing.T) {
	s := testSettings(t)
	dir := filepath.Join(s.VendorDataDir, "stat-whitelist")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "el9"), []byte("-rwsr-xr-x root root /usr/bin/su\n"), 0644))

	cfg, err := config.Parse("products:\n  el9: \"\\\\.el9\"\n")
	require.NoError(t, err)
	s.Products = cfg.Products

	after := pkg(header("foo", "1.0", "1.el9"))
	c := NewContext(s, []*peers.Pair{peers.NewPair(nil, after)}, nil)
	assert.Equal(t, "el9", c.DetectProduct())

	stat, caps, err := c.Whitelists()
	require.NoError(t, err)
	require.NotNil(t, stat)
	assert.Len(t, stat.Entries, 1)
	assert.Nil(t, caps)

	none := NewContext(s, nil, nil)
	stat, caps, err = none.Whitelists()
	assert.NoError(t, err)
	assert.Nil(t, stat)
	assert.Nil(t, caps)
}

func TestCancelledRun(t *testing.T) {
	h := header("foo", "1.0", "1")
	c := NewContext(testSettings(t), []*peers.Pair{peers.NewPair(nil, pkg(h))}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in, _ := Lookup("metadata")
	_, err := in.Run(ctx, c, result.NewReport())
	assert.ErrorIs(t, err, context.Canceled)
}
