package inspect

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ralt/rpmaudit/internal/models"
	"github.com/ralt/rpmaudit/internal/peers"
	"github.com/ralt/rpmaudit/internal/result"
	"github.com/ralt/rpmaudit/internal/utils"
)

const checksumType = "sha256"

// upstreamPolicy is decided once per run across every compared source package
type upstreamPolicy struct {
	sev    result.Severity
	waiver result.Waiver
	remedy string
}

func newUpstreamPolicy(pairs []*peers.Pair) upstreamPolicy {
	for _, p := range pairs {
		if !p.After.IsSource() || !p.HasBefore() {
			continue
		}
		if p.Before.Header.Version == p.After.Header.Version {
			return upstreamPolicy{result.Verify, result.WaivableByAnyone, remedyUpstream}
		}
	}
	// new versions are expected to bring new sources
	return upstreamPolicy{result.Info, result.NotWaivable, ""}
}

func runUpstream(ctx context.Context, c *Context, rec *result.Recorder) error {
	policy := newUpstreamPolicy(c.Pairs)

	for _, p := range c.Pairs {
		if !p.After.IsSource() || len(p.After.Files) == 0 {
			continue
		}

		sources := c.Sources(p.After)
		if len(sources) == 0 {
			rec.Record(result.Bad, result.NotWaivable,
				fmt.Sprintf("No Source entries declared in %s", p.After), "", remedySources)
			continue
		}

		for i := range p.After.Files {
			if err := ctx.Err(); err != nil {
				return err
			}

			f := &p.After.Files[i]
			if !sources[f.Basename()] {
				continue
			}
			compareSource(rec, policy, p.BeforePeer(i), f)
		}

		if !p.HasBefore() {
			continue
		}

		declared := c.Sources(p.Before)
		for _, f := range p.RemovedFiles() {
			if !declared[f.Basename()] {
				continue
			}
			rec.Record(policy.sev, policy.waiver,
				fmt.Sprintf("Source RPM member `%s` removed", f.Basename()), "", policy.remedy)
		}
	}
	return nil
}

func compareSource(rec *result.Recorder, policy upstreamPolicy, before, after *models.File) {
	name := after.Basename()

	if before == nil {
		rec.Record(policy.sev, policy.waiver,
			fmt.Sprintf("New upstream source file `%s` appeared", name), "", policy.remedy)
		return
	}

	beforeSum, err := utils.FileChecksum(before.FullPath, checksumType)
	if err != nil {
		logrus.Warnf("Skipping %s: %v", name, err)
		return
	}
	afterSum, err := utils.FileChecksum(after.FullPath, checksumType)
	if err != nil {
		logrus.Warnf("Skipping %s: %v", name, err)
		return
	}

	if beforeSum == afterSum {
		return
	}

	rec.Record(policy.sev, policy.waiver,
		fmt.Sprintf("Upstream source file `%s` changed content", name),
		textDiff(before, after), policy.remedy)
}

// textDiff returns the unified diff of two text files without its header
// lines, or "" when either side is binary
func textDiff(before, after *models.File) string {
	for _, f := range []*models.File{before, after} {
		text, err := utils.IsTextFile(f.FullPath)
		if err != nil || !text {
			return ""
		}
	}

	a, err := os.ReadFile(before.FullPath)
	if err != nil {
		logrus.Warnf("Failed to read %s: %v", before.FullPath, err)
		return ""
	}
	b, err := os.ReadFile(after.FullPath)
	if err != nil {
		logrus.Warnf("Failed to read %s: %v", after.FullPath, err)
		return ""
	}

	diff, err := utils.UnifiedDiff(before.FullPath, after.FullPath, string(a), string(b))
	if err != nil {
		logrus.Warnf("Failed to diff %s: %v", after.LocalPath, err)
		return ""
	}
	return utils.StripDiffHeader(diff)
}
