package inspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ralt/rpmaudit/internal/license"
	"github.com/ralt/rpmaudit/internal/models"
	"github.com/ralt/rpmaudit/internal/result"
	"github.com/ralt/rpmaudit/internal/utils"
)

// runLicense only looks at the after builds
func runLicense(ctx context.Context, c *Context, rec *result.Recorder) error {
	db, err := c.LicenseDB()
	if err != nil {
		rec.Record(result.Bad, result.NotWaivable,
			fmt.Sprintf("Missing license database: %s", c.Settings.LicenseDBPath()),
			err.Error(), remedyLicenseDB)
		return nil
	}

	for _, p := range c.Pairs {
		if err := ctx.Err(); err != nil {
			return err
		}
		checkLicense(c, rec, db, p.After)
	}
	return nil
}

func checkLicense(c *Context, rec *result.Recorder, db *license.DB, pkg *models.Package) {
	tag := pkg.Header.License
	if strings.TrimSpace(tag) == "" {
		rec.Record(result.Bad, result.NotWaivable,
			fmt.Sprintf("Empty License Tag in %s", pkg), "", remedyLicense)
		return
	}

	v := db.Check(tag)
	if v.Valid {
		logrus.Debugf("Valid License Tag in %s: %s", pkg, tag)
	} else {
		var details string
		switch {
		case v.Unbalanced:
			details = "Unbalanced parentheses"
		case len(v.Unapproved) > 0:
			details = fmt.Sprintf("Not approved: %s", strings.Join(v.Unapproved, ", "))
		}
		rec.Record(result.Bad, result.NotWaivable,
			fmt.Sprintf("Invalid License Tag in %s: %s", pkg, tag), details, remedyLicense)
	}

	if utils.HasBadWord(tag, c.Settings.BadWords) {
		rec.Record(result.Bad, result.NotWaivable,
			fmt.Sprintf("License Tag contains unprofessional language in %s: %s", pkg, tag), "", remedyLicense)
	}
}
