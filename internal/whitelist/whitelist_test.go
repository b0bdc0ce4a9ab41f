package whitelist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"-rw-r--r--", 0100644},
		{"-rwsr-xr-x", 0104755},
		{"-rwSr--r--", 0104644},
		{"drwxrwsr-x", 0042775},
		{"drwxrwxrwt", 0041777},
		{"drwxrwxrwT", 0041776},
		{"lrwxrwxrwx", 0120777},
		{"crw-rw----", 0020660},
		{"----------", 0100000},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "-rw-r--r-", "xrw-r--r--", "-rz-r--r--", "-rw-r--r-s"} {
		_, err := ParseMode(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseStat(t *testing.T) {
	input := strings.Join([]string{
		"# comment",
		"",
		"-rwsr-xr-x  root  root   /usr/bin/passwd",
		"drwxr-xr-x\troot\troot\tjunk/usr/share/thing",
		"-rw-r--r-- root root nofilename",
		"-rw-r--r-- root root",
		"bogusmode root root /etc/x",
	}, "\n")

	l, err := ParseStat(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, l.Entries, 2)
	assert.Len(t, l.Rejected, 3)
	assert.Equal(t, 5, l.Rejected[0].Line)

	e, ok := l.Lookup("/usr/bin/passwd")
	require.True(t, ok)
	assert.Equal(t, 0104755, e.Mode)
	assert.Equal(t, "root", e.Owner)

	_, ok = l.Lookup("/usr/share/thing")
	assert.True(t, ok)

	_, ok = l.Lookup("/nope")
	assert.False(t, ok)

	var empty *StatList
	_, ok = empty.Lookup("/usr/bin/passwd")
	assert.False(t, ok)
}

func TestParseCaps(t *testing.T) {
	input := "# pkg path caps\n" +
		"iputils /usr/bin/ping cap_net_raw=p\n" +
		"libcap /usr/sbin/capsh cap_setpcap=ep\n" +
		"iputils /usr/bin/arping cap_net_raw=p\n" +
		"lonely\n"

	l, err := ParseCaps(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, l.Packages, 2)
	assert.Equal(t, "iputils", l.Packages[0].Package)
	assert.Len(t, l.Packages[0].Files, 2)
	assert.Equal(t, 3, l.Files())
	assert.Len(t, l.Rejected, 1)

	caps, ok := l.Lookup("iputils", "/usr/bin/arping")
	require.True(t, ok)
	assert.Equal(t, "cap_net_raw=p", caps)

	_, ok = l.Lookup("libcap", "/usr/bin/ping")
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, StatDir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, StatDir, "rhel-9"),
		[]byte("-rw-r--r-- root root /etc/motd\n"), 0644))

	stat, err := LoadStat(dir, "rhel-9")
	require.NoError(t, err)
	require.NotNil(t, stat)
	assert.Len(t, stat.Entries, 1)

	caps, err := LoadCaps(dir, "rhel-9")
	require.NoError(t, err)
	assert.Nil(t, caps)
}
