package inspect

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ralt/rpmaudit/internal/config"
	"github.com/ralt/rpmaudit/internal/kmod"
	"github.com/ralt/rpmaudit/internal/license"
	"github.com/ralt/rpmaudit/internal/models"
	"github.com/ralt/rpmaudit/internal/peers"
	"github.com/ralt/rpmaudit/internal/whitelist"
)

// Context is the state shared by every inspection of one run. Its caches are
// filled on first use and are safe for concurrent inspections.
type Context struct {
	Settings     *config.Settings
	Pairs        []*peers.Pair
	Introspector kmod.Introspector

	// Product is the product release used to locate whitelists
	Product string

	licenseOnce sync.Once
	licenseDB   *license.DB
	licenseErr  error

	sourcesMu sync.Mutex
	sources   map[*models.Package]map[string]bool

	whitelistOnce sync.Once
	stat          *whitelist.StatList
	caps          *whitelist.CapsList
	whitelistErr  error
}

// NewContext creates the context for one run over pairs
func NewContext(settings *config.Settings, pairs []*peers.Pair, introspector kmod.Introspector) *Context {
	if settings == nil {
		settings = config.Default()
	}
	if introspector == nil {
		introspector = kmod.NewELFIntrospector()
	}
	return &Context{
		Settings:     settings,
		Pairs:        pairs,
		Introspector: introspector,
		sources:      make(map[*models.Package]map[string]bool),
	}
}

// DetectProduct sets Product from the first after build whose release
// matches a configured product
func (c *Context) DetectProduct() string {
	for _, p := range c.Pairs {
		if name, ok := c.Settings.ProductRelease(p.After.Header.Release); ok {
			c.Product = name
			logrus.Debugf("Product release %s from %s", name, p.After)
			return name
		}
	}
	return ""
}

// LicenseDB loads the license database on first call
func (c *Context) LicenseDB() (*license.DB, error) {
	c.licenseOnce.Do(func() {
		path := c.Settings.LicenseDBPath()
		c.licenseDB, c.licenseErr = license.Load(path)
		if c.licenseErr == nil {
			logrus.Debugf("Loaded %d licenses from %s", c.licenseDB.Len(), path)
		}
	})
	return c.licenseDB, c.licenseErr
}

// Sources returns the declared Source basenames of pkg, computed once per
// package. The set is empty when the package declares no sources.
func (c *Context) Sources(pkg *models.Package) map[string]bool {
	c.sourcesMu.Lock()
	defer c.sourcesMu.Unlock()

	if set, ok := c.sources[pkg]; ok {
		return set
	}

	set := make(map[string]bool, len(pkg.Header.Sources))
	for _, s := range pkg.Header.Sources {
		set[s] = true
	}
	c.sources[pkg] = set
	return set
}

// Whitelists loads the stat and capabilities whitelists of Product on first
// call. Both are nil when no product is known or no file exists.
func (c *Context) Whitelists() (*whitelist.StatList, *whitelist.CapsList, error) {
	c.whitelistOnce.Do(func() {
		if c.Product == "" {
			logrus.Debug("No product release, skipping whitelists")
			return
		}

		c.stat, c.whitelistErr = whitelist.LoadStat(c.Settings.VendorDataDir, c.Product)
		if c.whitelistErr != nil {
			return
		}
		c.caps, c.whitelistErr = whitelist.LoadCaps(c.Settings.VendorDataDir, c.Product)
	})
	return c.stat, c.caps, c.whitelistErr
}
