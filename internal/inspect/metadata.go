package inspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/ralt/rpmaudit/internal/peers"
	"github.com/ralt/rpmaudit/internal/result"
	"github.com/ralt/rpmaudit/internal/utils"
)

func runMetadata(ctx context.Context, c *Context, rec *result.Recorder) error {
	for _, p := range c.Pairs {
		if err := ctx.Err(); err != nil {
			return err
		}
		checkPolicy(c, rec, p)
		if p.HasBefore() {
			checkDrift(rec, p)
		}
	}
	return nil
}

// checkPolicy validates the after header against the configured policy
func checkPolicy(c *Context, rec *result.Recorder, p *peers.Pair) {
	after := p.After
	h := after.Header
	s := c.Settings

	switch {
	case s.Vendor == "":
		rec.Record(result.Info, result.NotWaivable,
			fmt.Sprintf("Vendor not set in the configuration, ignoring Package Vendor %q in %s", h.Vendor, after),
			"", remedyVendor)
	case h.Vendor != "" && h.Vendor != s.Vendor:
		rec.Record(result.Bad, result.NotWaivable,
			fmt.Sprintf("Package Vendor %q is not %q in %s", h.Vendor, s.Vendor, after),
			"", remedyVendor)
	}

	if h.BuildHost != "" && len(s.BuildHostSubdomain) > 0 {
		valid := false
		for _, sub := range s.BuildHostSubdomain {
			if strings.HasSuffix(h.BuildHost, sub) {
				valid = true
				break
			}
		}
		if !valid {
			rec.Record(result.Bad, result.NotWaivable,
				fmt.Sprintf("Package Build Host %q is not within an expected build host subdomain in %s", h.BuildHost, after),
				"", remedyBuildHost)
		}
	}

	if h.Summary != "" && utils.HasBadWord(h.Summary, s.BadWords) {
		rec.Record(result.Bad, result.NotWaivable,
			fmt.Sprintf("Package Summary contains unprofessional language in %s", after),
			fmt.Sprintf("Summary: %s", h.Summary), remedyBadWords)
	}

	if h.Description != "" && utils.HasBadWord(h.Description, s.BadWords) {
		rec.Record(result.Bad, result.NotWaivable,
			fmt.Sprintf("Package Description contains unprofessional language in %s", after),
			h.Description, remedyBadWords)
	}
}

// checkDrift reports header fields that changed since the before build
func checkDrift(rec *result.Recorder, p *peers.Pair) {
	before, after := p.Before.Header, p.After.Header
	name := after.Name

	var msg string
	switch {
	case before.Vendor == "" && after.Vendor != "":
		msg = fmt.Sprintf("Gained Package Vendor %q in %s", after.Vendor, name)
	case before.Vendor != "" && after.Vendor == "":
		msg = fmt.Sprintf("Lost Package Vendor %q in %s", before.Vendor, name)
	case before.Vendor != after.Vendor:
		msg = fmt.Sprintf("Package Vendor changed from %q to %q in %s", before.Vendor, after.Vendor, name)
	}
	if msg != "" {
		rec.Record(result.Verify, result.WaivableByAnyone, msg, "", "")
	}

	if before.Summary != after.Summary {
		rec.Record(result.Verify, result.WaivableByAnyone,
			fmt.Sprintf("Package Summary changed from %q to %q in %s", before.Summary, after.Summary, name),
			"", "")
	}

	if before.Description != after.Description {
		rec.Record(result.Verify, result.WaivableByAnyone,
			fmt.Sprintf("Package Description changed in %s", name),
			fmt.Sprintf("from:\n\n%s\n\nto:\n\n%s", before.Description, after.Description), "")
	}
}
