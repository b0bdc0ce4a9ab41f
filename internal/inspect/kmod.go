package inspect

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ralt/rpmaudit/internal/kmod"
	"github.com/ralt/rpmaudit/internal/models"
	"github.com/ralt/rpmaudit/internal/peers"
	"github.com/ralt/rpmaudit/internal/result"
)

func runKmod(ctx context.Context, c *Context, rec *result.Recorder) error {
	for _, p := range c.Pairs {
		if !p.HasBefore() || p.After.IsSource() {
			continue
		}

		// losses within one name and version are suspicious
		sev, waiver := result.Info, result.NotWaivable
		if p.SameNameVersion() {
			sev, waiver = result.Verify, result.WaivableByAnyone
		}

		for i := range p.After.Files {
			if err := ctx.Err(); err != nil {
				return err
			}

			after := &p.After.Files[i]
			if after.Type != models.FileKernelModule {
				continue
			}

			before := p.BeforePeer(i)
			if before == nil {
				continue
			}

			compareModules(c, rec, p, before, after, sev, waiver)
		}
	}
	return nil
}

func introspect(c *Context, f *models.File) *kmod.ModuleInfo {
	info, err := c.Introspector.Inspect(f.FullPath)
	if err != nil {
		if errors.Is(err, kmod.ErrNotModule) {
			logrus.Debugf("Skipping %s: %v", f.LocalPath, err)
		} else {
			logrus.Warnf("Failed to read kernel module %s: %v", f.LocalPath, err)
		}
		return nil
	}
	return info
}

func compareModules(c *Context, rec *result.Recorder, p *peers.Pair, before, after *models.File, sev result.Severity, waiver result.Waiver) {
	beforeInfo := introspect(c, before)
	if beforeInfo == nil {
		return
	}
	afterInfo := introspect(c, after)
	if afterInfo == nil {
		return
	}

	remedy := func(r string) string {
		if sev == result.Info {
			return ""
		}
		return r
	}

	lost, gained := kmod.DiffParameters(beforeInfo, afterInfo)
	for _, parm := range lost {
		rec.Record(sev, waiver,
			fmt.Sprintf("Kernel module %s removes parameter '%s'", after.LocalPath, parm),
			"", remedy(remedyKmodParm))
	}
	for _, parm := range gained {
		rec.Record(result.Info, result.NotWaivable,
			fmt.Sprintf("Kernel module %s adds parameter '%s'", after.LocalPath, parm), "", "")
	}

	lost, gained = kmod.DiffDependencies(beforeInfo, afterInfo)
	for _, dep := range lost {
		rec.Record(sev, waiver,
			fmt.Sprintf("Kernel module %s removes dependency '%s'", after.LocalPath, dep),
			"", remedy(remedyKmodDeps))
	}
	for _, dep := range gained {
		rec.Record(sev, waiver,
			fmt.Sprintf("Kernel module %s adds dependency '%s'", after.LocalPath, dep),
			"", remedy(remedyKmodDeps))
	}

	changes := kmod.DiffAliases(kmod.NewAliasTable(beforeInfo), kmod.NewAliasTable(afterInfo))
	for _, ch := range changes {
		if ch.Direction == kmod.Gained {
			rec.Record(result.Info, result.NotWaivable,
				fmt.Sprintf("Kernel module '%s' gained alias '%s'", ch.Module, ch.Alias), "", "")
			continue
		}
		rec.Record(sev, waiver,
			fmt.Sprintf("Kernel module '%s' lost alias '%s'", ch.Module, ch.Alias),
			"", remedy(remedyKmodAlias))
	}

	logrus.Debugf("Compared kernel module %s in %s", after.LocalPath, p.After)
}
