// Package inspect implements the build comparison inspections.
package inspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/ralt/rpmaudit/internal/config"
	"github.com/ralt/rpmaudit/internal/result"
)

// Inspection is one named check run over every package pair
type Inspection struct {
	Name        string
	Description string

	// run records findings through rec. It returns an error only when the
	// run is cancelled.
	run func(ctx context.Context, c *Context, rec *result.Recorder) error
}

// Run executes the inspection into report and returns whether it passed.
// An inspection that records nothing records a single OK finding.
func (i Inspection) Run(ctx context.Context, c *Context, report *result.Report) (bool, error) {
	rec := result.NewRecorder(report, i.Name)
	if err := i.run(ctx, c, rec); err != nil {
		return false, err
	}
	return rec.Finish(), nil
}

// All returns every inspection in run order
func All() []Inspection {
	return []Inspection{
		{
			Name:        "license",
			Description: "Verify the License tag of every package is approved and well formed.",
			run:         runLicense,
		},
		{
			Name:        "metadata",
			Description: "Check vendor, build host, summary and description against policy and the before build.",
			run:         runMetadata,
		},
		{
			Name:        "kmod",
			Description: "Report kernel module parameters, dependencies and aliases lost or gained between builds.",
			run:         runKmod,
		},
		{
			Name:        "upstream",
			Description: "Report new, changed and removed upstream source files in source packages.",
			run:         runUpstream,
		},
		{
			Name:        "changelog",
			Description: "Check the %changelog gained a new entry and was not rewritten.",
			run:         runChangelog,
		},
	}
}

// Lookup returns the inspection called name
func Lookup(name string) (Inspection, bool) {
	for _, i := range All() {
		if i.Name == name {
			return i, true
		}
	}
	return Inspection{}, false
}

// Select returns the inspections to run. A non-empty tests list restricts the
// run to those names, exclude removes names, and inspections switched off in
// settings are dropped unless named in tests. Unknown names are errors.
func Select(settings *config.Settings, tests, exclude []string) ([]Inspection, error) {
	want := make(map[string]bool)
	for _, n := range tests {
		if _, ok := Lookup(n); !ok {
			return nil, fmt.Errorf("unknown inspection %q", n)
		}
		want[n] = true
	}

	skip := make(map[string]bool)
	for _, n := range exclude {
		if _, ok := Lookup(n); !ok {
			return nil, fmt.Errorf("unknown inspection %q", n)
		}
		skip[n] = true
	}

	if settings != nil {
		for n := range settings.Inspections {
			if _, ok := Lookup(n); !ok {
				return nil, fmt.Errorf("unknown inspection %q in configuration", n)
			}
		}
	}

	var out []Inspection
	for _, i := range All() {
		if skip[i.Name] {
			continue
		}
		if len(want) > 0 {
			if want[i.Name] {
				out = append(out, i)
			}
			continue
		}
		if settings != nil && !settings.Enabled(i.Name) {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}

// Names returns the names of inspections, comma separated
func Names(inspections []Inspection) string {
	names := make([]string, len(inspections))
	for i, in := range inspections {
		names[i] = in.Name
	}
	return strings.Join(names, ",")
}
