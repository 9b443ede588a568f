// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/luxfi/adserve/pkg/ads"
)

// Info describes the catalog snapshot the permission layer gates on
type Info struct {
	Exists        bool
	LastUpdatedAt time.Time
}

// Source supplies creatives and catalog freshness metadata. The
// catalog is owned elsewhere; the serving pipeline only reads snapshots.
type Source interface {
	// Info returns catalog existence and last refresh time.
	Info(ctx context.Context) (Info, error)

	// CreativeAds returns every creative for one ad surface.
	CreativeAds(ctx context.Context, adType ads.Type) ([]ads.CreativeAd, error)
}

// MemoryCatalog is an in-memory creative catalog
type MemoryCatalog struct {
	mu            sync.RWMutex
	creatives     map[ads.Type][]ads.CreativeAd
	exists        bool
	lastUpdatedAt time.Time
}

// NewMemoryCatalog creates an empty in-memory catalog
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		creatives: make(map[ads.Type][]ads.CreativeAd),
	}
}

// SetCreativeAds replaces the creatives for one surface and stamps the
// catalog as refreshed at updatedAt
func (c *MemoryCatalog) SetCreativeAds(adType ads.Type, creatives []ads.CreativeAd, updatedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.creatives[adType] = append([]ads.CreativeAd(nil), creatives...)
	c.exists = true
	c.lastUpdatedAt = updatedAt
}

// Info returns catalog existence and last refresh time
func (c *MemoryCatalog) Info(ctx context.Context) (Info, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Info{Exists: c.exists, LastUpdatedAt: c.lastUpdatedAt}, nil
}

// CreativeAds returns every creative for one ad surface
func (c *MemoryCatalog) CreativeAds(ctx context.Context, adType ads.Type) ([]ads.CreativeAd, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stored := c.creatives[adType]
	out := make([]ads.CreativeAd, len(stored))
	copy(out, stored)

	return out, nil
}
