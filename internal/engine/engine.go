// Package engine loads the before and after builds, pairs them and runs the
// selected inspections.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ralt/rpmaudit/internal/config"
	"github.com/ralt/rpmaudit/internal/inspect"
	"github.com/ralt/rpmaudit/internal/kmod"
	"github.com/ralt/rpmaudit/internal/models"
	"github.com/ralt/rpmaudit/internal/peers"
	"github.com/ralt/rpmaudit/internal/report"
	"github.com/ralt/rpmaudit/internal/result"
	"github.com/ralt/rpmaudit/internal/rpmfile"
	"github.com/ralt/rpmaudit/internal/scanner"
	"github.com/ralt/rpmaudit/internal/utils"
)

// Options describes one audit run
type Options struct {
	// Before and After are RPM files or directories holding them. Before may
	// be empty.
	Before []string
	After  []string

	Tests   []string
	Exclude []string

	// KeepWorkDir leaves the extracted payloads on disk
	KeepWorkDir bool
}

// Engine runs audits with one set of settings
type Engine struct {
	settings     *config.Settings
	scanner      scanner.Scanner
	introspector kmod.Introspector
}

// New creates an Engine. A nil settings means defaults.
func New(settings *config.Settings) *Engine {
	if settings == nil {
		settings = config.Default()
	}
	return &Engine{
		settings:     settings,
		scanner:      scanner.NewFileSystemScanner(),
		introspector: kmod.NewELFIntrospector(),
	}
}

// Run loads both builds, runs the selected inspections and returns the
// report document
func (e *Engine) Run(ctx context.Context, opts Options) (*report.Document, error) {
	if len(opts.After) == 0 {
		return nil, &models.AuditError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("at least one after build is required"),
		}
	}

	inspections, err := inspect.Select(e.settings, opts.Tests, opts.Exclude)
	if err != nil {
		return nil, &models.AuditError{Type: models.ErrInvalidConfig, Err: err}
	}
	logrus.Infof("Running inspections: %s", inspect.Names(inspections))

	workdir, err := utils.MakeWorkDir(e.settings.WorkDir, "rpmaudit-")
	if err != nil {
		return nil, &models.AuditError{
			Type: models.ErrExtract,
			Err:  fmt.Errorf("failed to create work directory: %w", err),
		}
	}
	if opts.KeepWorkDir {
		logrus.Infof("Keeping work directory %s", workdir)
	} else {
		defer func() {
			if err := os.RemoveAll(workdir); err != nil {
				logrus.Warnf("Failed to remove %s: %v", workdir, err)
			}
		}()
	}

	before, err := e.Load(ctx, opts.Before, filepath.Join(workdir, "before"))
	if err != nil {
		return nil, err
	}
	after, err := e.Load(ctx, opts.After, filepath.Join(workdir, "after"))
	if err != nil {
		return nil, err
	}
	if len(after) == 0 {
		return nil, &models.AuditError{
			Type: models.ErrPackageParse,
			Err:  fmt.Errorf("no packages found in the after build"),
		}
	}

	logrus.Infof("Comparing %d before and %d after packages", len(before), len(after))
	return e.Inspect(ctx, peers.Match(before, after), inspections)
}

// Load scans paths, parses every package found and extracts it below workdir.
// All failures are collected before returning.
func (e *Engine) Load(ctx context.Context, paths []string, workdir string) ([]*models.Package, error) {
	var packages []*models.Package
	var errs *multierror.Error

	for _, path := range paths {
		scanned, err := e.scanner.Scan(ctx, path)
		if err != nil {
			errs = multierror.Append(errs, &models.AuditError{Type: models.ErrPackageParse, Package: path, Err: err})
			continue
		}

		for _, s := range scanned {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			logrus.Debugf("Loading %s package: %s", s.Type, s.Path)
			pkg, err := rpmfile.ParsePackage(s.Path)
			if err != nil {
				errs = multierror.Append(errs, &models.AuditError{Type: models.ErrPackageParse, Package: s.Path, Err: err})
				continue
			}
			if s.Type == scanner.TypeSrpm && !pkg.IsSource() {
				logrus.Warnf("%s looks like a source package but carries a SOURCERPM tag", s.Path)
			}

			if err := rpmfile.Extract(pkg, workdir); err != nil {
				errs = multierror.Append(errs, &models.AuditError{Type: models.ErrExtract, Package: s.Path, Err: err})
				continue
			}
			packages = append(packages, pkg)
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return packages, nil
}

// Inspect runs inspections over pairs. Each inspection writes to its own
// report; the reports are merged in inspection order.
func (e *Engine) Inspect(ctx context.Context, pairs []*peers.Pair, inspections []inspect.Inspection) (*report.Document, error) {
	c := inspect.NewContext(e.settings, pairs, e.introspector)
	if product := c.DetectProduct(); product != "" {
		logrus.Infof("Product release: %s", product)
	}

	reports := make([]*result.Report, len(inspections))
	passed := make([]bool, len(inspections))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, in := range inspections {
		reports[i] = result.NewReport()
		g.Go(func() error {
			logrus.Debugf("Running %s", in.Name)
			ok, err := in.Run(gctx, c, reports[i])
			if err != nil {
				return fmt.Errorf("%s: %w", in.Name, err)
			}
			passed[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &models.AuditError{Type: models.ErrInspection, Err: err}
	}

	merged := result.NewReport()
	doc := &report.Document{Product: c.Product}
	for i, in := range inspections {
		merged.Merge(reports[i])
		doc.Inspections = append(doc.Inspections, report.InspectionResult{Name: in.Name, Passed: passed[i]})
		if passed[i] {
			logrus.Debugf("%s passed", in.Name)
		} else {
			logrus.Infof("%s failed", in.Name)
		}
	}

	for _, p := range pairs {
		if p.HasBefore() {
			doc.Before = append(doc.Before, p.Before.String())
		}
		doc.After = append(doc.After, p.After.String())
	}
	doc.Worst = merged.Worst()
	doc.Findings = merged.Findings()

	return doc, nil
}
