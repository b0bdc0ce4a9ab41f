package utils

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffContext is the number of context lines around each unified hunk
const DiffContext = 3

// UnifiedDiff returns a unified diff of a and b with the usual ---/+++
// header lines. Identical inputs produce an empty string.
func UnifiedDiff(aName, bName, a, b string) (string, error) {
	u := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: aName,
		ToFile:   bName,
		Context:  DiffContext,
	}
	return difflib.GetUnifiedDiffString(u)
}

// StripDiffHeader drops the leading "--- " and "+++ " lines of a unified diff
func StripDiffHeader(diff string) string {
	for _, prefix := range []string{"--- ", "+++ "} {
		if !strings.HasPrefix(diff, prefix) {
			continue
		}
		i := strings.IndexByte(diff, '\n')
		if i < 0 {
			return ""
		}
		diff = diff[i+1:]
	}
	return diff
}

// RemovedLines returns the lines a unified diff removes, without the leading
// '-'. The diff must already have its header stripped.
func RemovedLines(diff string) []string {
	var out []string
	for _, line := range strings.Split(diff, "\n") {
		if !strings.HasPrefix(line, "-") {
			continue
		}
		out = append(out, line[1:])
	}
	return out
}
