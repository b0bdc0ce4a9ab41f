// Package config loads rpmaudit settings from YAML files and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/ralt/rpmaudit/internal/result"
)

const (
	// DefaultConfigFile is read when no --config flag is given
	DefaultConfigFile = "/etc/rpmaudit/rpmaudit.yaml"

	defaultWorkDir       = "/var/tmp/rpmaudit"
	defaultProfileDir    = "/usr/share/rpmaudit/profiles"
	defaultVendorDataDir = "/usr/share/rpmaudit"
	defaultLicenseDB     = "generic.json"
	licensesDir          = "licenses"
)

// Product maps a product release name to the after-build release it matches
type Product struct {
	Name    string
	Pattern *regexp.Regexp
}

// Settings is the run configuration shared by every inspection
type Settings struct {
	WorkDir            string
	ProfileDir         string
	VendorDataDir      string
	LicenseDB          string
	Vendor             string
	BuildHostSubdomain []string
	BadWords           []string
	Threshold          result.Severity

	// Inspections holds explicit on/off switches by inspection name.
	// Inspections not mentioned are enabled.
	Inspections map[string]bool

	// Products is ordered by name
	Products []Product
}

// Default returns the settings used when no configuration file exists
func Default() *Settings {
	return &Settings{
		WorkDir:       defaultWorkDir,
		ProfileDir:    defaultProfileDir,
		VendorDataDir: defaultVendorDataDir,
		LicenseDB:     defaultLicenseDB,
		Threshold:     result.Verify,
		Inspections:   make(map[string]bool),
	}
}

// LicenseDBPath returns the location of the license database
func (s *Settings) LicenseDBPath() string {
	if filepath.IsAbs(s.LicenseDB) {
		return s.LicenseDB
	}
	return filepath.Join(s.VendorDataDir, licensesDir, s.LicenseDB)
}

// Enabled reports whether the configuration leaves inspection switched on
func (s *Settings) Enabled(inspection string) bool {
	on, ok := s.Inspections[inspection]
	return !ok || on
}

// ProductRelease returns the first product (by name) whose pattern matches release
func (s *Settings) ProductRelease(release string) (string, bool) {
	for _, p := range s.Products {
		if p.Pattern.MatchString(release) {
			return p.Name, true
		}
	}
	return "", false
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	d := Default()
	v.SetDefault("common.workdir", d.WorkDir)
	v.SetDefault("common.profiledir", d.ProfileDir)
	v.SetDefault("vendor.vendor_data_dir", d.VendorDataDir)
	v.SetDefault("vendor.licensedb", d.LicenseDB)
	v.SetDefault("settings.vendor", "")
	v.SetDefault("settings.buildhost_subdomain", []string{})
	v.SetDefault("settings.badwords", []string{})
	v.SetDefault("settings.threshold", d.Threshold.String())

	v.SetEnvPrefix("rpmaudit")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the configuration file at path and, when profile is set, the
// profile overlay from the configured profile directory. A missing main file
// is not an error when path is the default location.
func Load(path, profile string) (*Settings, error) {
	v := newViper()

	if path == "" {
		path = DefaultConfigFile
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) || path != DefaultConfigFile {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		logrus.Debugf("No configuration at %s, using defaults", path)
	} else {
		logrus.Debugf("Loaded configuration from %s", path)
	}

	if profile != "" {
		overlay := filepath.Join(v.GetString("common.profiledir"), profile+".yaml")
		v.SetConfigFile(overlay)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read profile %s: %w", overlay, err)
		}
		logrus.Debugf("Merged profile %s", overlay)
	}

	return fromViper(v)
}

// Parse builds settings from YAML configuration text
func Parse(data string) (*Settings, error) {
	v := newViper()
	if err := v.ReadConfig(strings.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		WorkDir:            v.GetString("common.workdir"),
		ProfileDir:         v.GetString("common.profiledir"),
		VendorDataDir:      v.GetString("vendor.vendor_data_dir"),
		LicenseDB:          v.GetString("vendor.licensedb"),
		Vendor:             v.GetString("settings.vendor"),
		BuildHostSubdomain: v.GetStringSlice("settings.buildhost_subdomain"),
		BadWords:           v.GetStringSlice("settings.badwords"),
		Inspections:        make(map[string]bool),
	}

	threshold, err := result.ParseSeverity(v.GetString("settings.threshold"))
	if err != nil {
		return nil, fmt.Errorf("invalid settings.threshold: %w", err)
	}
	s.Threshold = threshold

	for name, raw := range v.GetStringMap("inspections") {
		on, err := parseSwitch(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid setting for inspection %s: %w", name, err)
		}
		s.Inspections[name] = on
	}

	names := make([]string, 0)
	patterns := v.GetStringMapString("products")
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		re, err := regexp.Compile(patterns[name])
		if err != nil {
			return nil, fmt.Errorf("invalid pattern for product %s: %w", name, err)
		}
		s.Products = append(s.Products, Product{Name: name, Pattern: re})
	}

	return s, nil
}

// parseSwitch accepts on/off style values
func parseSwitch(raw interface{}) (bool, error) {
	switch val := raw.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "on", "yes":
			return true, nil
		case "off", "no":
			return false, nil
		}
		if b, err := strconv.ParseBool(val); err == nil {
			return b, nil
		}
		return false, fmt.Errorf("%q is not on or off", val)
	default:
		return false, fmt.Errorf("%v is not on or off", raw)
	}
}
