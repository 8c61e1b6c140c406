// Package config loads the Directory Agent's configuration from a YAML
// file, covering the keys enumerated in spec §6: addresses, port, scopes,
// attributes, language, advertisementPeriod, expiredServicesPurgePeriod.
// Config setters are not exposed after Load; the DA is expected to treat
// the returned value as immutable for the process lifetime (§5).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slpgo/slpd/slp"
)

const (
	DefaultPort                       = 427
	DefaultScope                      = slp.DefaultScope
	DefaultLanguage                   = "en"
	DefaultAdvertisementPeriodSeconds = 10800 // RFC 2608 §12.2
)

// raw mirrors the on-disk YAML shape; Config is the parsed, typed form
// callers use.
type raw struct {
	Addresses                  []string `yaml:"addresses"`
	Port                       int      `yaml:"port"`
	Scopes                     []string `yaml:"scopes"`
	Attributes                 string   `yaml:"attributes"`
	Language                   string   `yaml:"language"`
	AdvertisementPeriod        *int     `yaml:"advertisementPeriod"`
	ExpiredServicesPurgePeriod int      `yaml:"expiredServicesPurgePeriod"`
}

// Config is the fully-resolved, typed DA configuration.
type Config struct {
	Addresses                  []string
	Port                       int
	Scopes                     slp.Scopes
	Attributes                 slp.Attributes
	Language                   string
	AdvertisementPeriod        time.Duration // <= 0 disables unsolicited adverts
	ExpiredServicesPurgePeriod time.Duration // <= 0 disables the purger
}

// Default returns the configuration to use when no file is given, per the
// defaults named in §6.
func Default() Config {
	return Config{
		Addresses:           []string{"0.0.0.0"},
		Port:                DefaultPort,
		Scopes:              slp.NewScopes(DefaultScope),
		Attributes:          slp.NewAttributes(),
		Language:            DefaultLanguage,
		AdvertisementPeriod: DefaultAdvertisementPeriodSeconds * time.Second,
	}
}

// Load reads and parses a YAML configuration file at path, applying
// Default() for any field the file omits.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var r raw
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if len(r.Addresses) > 0 {
		cfg.Addresses = r.Addresses
	}
	if r.Port != 0 {
		cfg.Port = r.Port
	}
	if len(r.Scopes) > 0 {
		cfg.Scopes = slp.NewScopes(r.Scopes...)
	}
	if r.Attributes != "" {
		attrs, err := slp.AttributesFrom(r.Attributes)
		if err != nil {
			return Config{}, fmt.Errorf("config: parsing attributes: %w", err)
		}
		cfg.Attributes = attrs
	}
	if r.Language != "" {
		cfg.Language = r.Language
	}
	if r.AdvertisementPeriod != nil {
		cfg.AdvertisementPeriod = time.Duration(*r.AdvertisementPeriod) * time.Second
	}
	if r.ExpiredServicesPurgePeriod != 0 {
		cfg.ExpiredServicesPurgePeriod = time.Duration(r.ExpiredServicesPurgePeriod) * time.Second
	}

	return cfg, nil
}
