package inspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ralt/rpmaudit/internal/models"
	"github.com/ralt/rpmaudit/internal/peers"
	"github.com/ralt/rpmaudit/internal/result"
	"github.com/ralt/rpmaudit/internal/utils"
)

func runChangelog(ctx context.Context, c *Context, rec *result.Recorder) error {
	var src, bin *peers.Pair
	for _, p := range c.Pairs {
		if !p.HasBefore() {
			continue
		}
		if p.After.IsSource() {
			if src == nil {
				src = p
			}
		} else if bin == nil {
			bin = p
		}
		if src != nil && bin != nil {
			break
		}
	}

	if src == nil && bin == nil {
		logrus.Debug("No before build, skipping changelog comparison")
		return nil
	}

	if src != nil {
		checkSourceChangelog(rec, src)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if bin != nil {
		checkBinaryChangelog(c, rec, bin)
	}
	return nil
}

// checkSourceChangelog verifies the source package gained a new entry
func checkSourceChangelog(rec *result.Recorder, p *peers.Pair) {
	before, after := p.Before.Header.Changelog, p.After.Header.Changelog

	switch {
	case len(before) > 0 && len(after) == 0:
		rec.Record(result.Verify, result.WaivableByAnyone,
			fmt.Sprintf("%%changelog lost between the %s and %s builds", p.Before, p.After),
			"", remedyChangelog)
	case len(before) == 0 && len(after) > 0:
		rec.Record(result.Info, result.NotWaivable,
			fmt.Sprintf("Gained %%changelog between the %s and %s builds", p.Before, p.After),
			"", "")
	case len(before) == 0 && len(after) == 0:
		rec.Record(result.Bad, result.WaivableByAnyone,
			fmt.Sprintf("No %%changelog present in the %s build", p.After),
			"", remedyChangelog)
	case before[0].String() == after[0].String():
		rec.Record(result.Bad, result.WaivableByAnyone,
			fmt.Sprintf("No new %%changelog entry in the %s build", p.After),
			"", remedyChangelog)
	}
}

// renderChangelog lays entries out the way rpm --changelog prints them
func renderChangelog(entries []models.ChangelogEntry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.String())
		b.WriteString("\n")
	}
	return b.String()
}

// checkBinaryChangelog diffs the rendered changelogs of a binary package
func checkBinaryChangelog(c *Context, rec *result.Recorder, p *peers.Pair) {
	diff, err := utils.UnifiedDiff("before", "after",
		renderChangelog(p.Before.Header.Changelog), renderChangelog(p.After.Header.Changelog))
	if err != nil {
		logrus.Warnf("Failed to diff changelogs of %s: %v", p.After, err)
	} else if diff != "" {
		diff = utils.StripDiffHeader(diff)
		if len(utils.RemovedLines(diff)) > 0 {
			rec.Record(result.Verify, result.WaivableByAnyone,
				fmt.Sprintf("%%changelog modified between the %s and %s builds", p.Before, p.After),
				diff, remedyChangelog)
		} else {
			rec.Record(result.Info, result.NotWaivable,
				fmt.Sprintf("%%changelog contains new text in the %s build", p.After),
				diff, "")
		}
	}

	for _, e := range p.After.Header.Changelog {
		entry := e.String()
		if utils.HasBadWord(entry, c.Settings.BadWords) {
			rec.Record(result.Bad, result.WaivableByAnyone,
				fmt.Sprintf("%%changelog entry has unprofessional language in the %s build", p.After),
				entry, remedyChangelog)
		}
	}
}
