// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/luxfi/adserve/pkg/ads"
)

// Defaults shared by every ad surface
const (
	DefaultMaxAdsPerHour       = 4
	DefaultMaxAdsPerDay        = 20
	DefaultServingVersion      = 1
	DefaultCatalogPingInterval = 2 * time.Hour
)

// Features configures one ad surface. Replaces the process-wide
// feature-flag singletons of older engines; injected at construction.
type Features struct {
	Enabled         bool
	Version         int
	MaxAdsPerHour   uint
	MaxAdsPerDay    uint
	MinimumWaitTime time.Duration
}

// EffectiveMinimumWaitTime returns the configured spacing between served
// ads, deriving hour/cap when unset
func (f Features) EffectiveMinimumWaitTime() time.Duration {
	if f.MinimumWaitTime > 0 {
		return f.MinimumWaitTime
	}
	if f.MaxAdsPerHour == 0 {
		return 0
	}
	return time.Hour / time.Duration(f.MaxAdsPerHour)
}

// Config is the full engine configuration
type Config struct {
	Environment ads.Environment
	Platform    ads.Platform

	// True when the process command line was overridden from defaults
	DidOverrideCommandLine bool

	// True when the user joined the rewards program
	RewardsOptedIn bool

	CatalogPingInterval time.Duration

	Features map[ads.Type]Features
}

// DefaultFeatures returns the default feature configuration for one surface
func DefaultFeatures() Features {
	return Features{
		Enabled:       true,
		Version:       DefaultServingVersion,
		MaxAdsPerHour: DefaultMaxAdsPerHour,
		MaxAdsPerDay:  DefaultMaxAdsPerDay,
	}
}

// Default returns the default engine configuration
func Default() Config {
	features := make(map[ads.Type]Features, len(ads.Types))
	for _, t := range ads.Types {
		features[t] = DefaultFeatures()
	}

	return Config{
		Environment:         ads.EnvironmentProduction,
		Platform:            ads.PlatformDesktop,
		RewardsOptedIn:      true,
		CatalogPingInterval: DefaultCatalogPingInterval,
		Features:            features,
	}
}

// FeaturesFor returns the feature configuration for an ad type,
// defaulting when the type was never configured
func (c *Config) FeaturesFor(adType ads.Type) Features {
	if f, ok := c.Features[adType]; ok {
		return f
	}
	return DefaultFeatures()
}

// FromEnv overlays ADSERVE_* environment variables onto the defaults
func FromEnv() Config {
	cfg := Default()

	if v := os.Getenv("ADSERVE_ENVIRONMENT"); v != "" {
		cfg.Environment = ads.Environment(v)
	}
	if v := os.Getenv("ADSERVE_PLATFORM"); v != "" {
		cfg.Platform = ads.Platform(v)
	}
	if v := os.Getenv("ADSERVE_REWARDS_OPTED_IN"); v != "" {
		cfg.RewardsOptedIn = v == "true" || v == "1"
	}
	if v := os.Getenv("ADSERVE_CATALOG_PING"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.CatalogPingInterval = d
		}
	}
	if v := os.Getenv("ADSERVE_MAX_ADS_PER_HOUR"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			for t, f := range cfg.Features {
				f.MaxAdsPerHour = uint(n)
				cfg.Features[t] = f
			}
		}
	}
	if v := os.Getenv("ADSERVE_MAX_ADS_PER_DAY"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			for t, f := range cfg.Features {
				f.MaxAdsPerDay = uint(n)
				cfg.Features[t] = f
			}
		}
	}

	return cfg
}
