// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package eligible

import (
	"context"
	"strings"
	"sync"

	"github.com/luxfi/adserve/pkg/ads"
	"github.com/luxfi/adserve/pkg/ads/catalog"
	"github.com/luxfi/adserve/pkg/log"
)

// The catalog marks creatives without targeting with this segment.
const untargetedSegment = "untargeted"

// Source narrows the catalog down to the candidates a user model may be
// served right now. One Source per ad surface; the last-served state it
// keeps for pacing is guarded, but interleaved GetForUserModel calls may
// observe pacing decisions out of order.
type Source struct {
	adType  ads.Type
	catalog catalog.Source
	log     log.Logger

	mu              sync.Mutex
	lastServedSetID string
}

// NewSource creates an eligible-ads source for one ad surface
func NewSource(adType ads.Type, cat catalog.Source, logger log.Logger) *Source {
	return &Source{
		adType:  adType,
		catalog: cat,
		log:     logger,
	}
}

// GetForUserModel returns the candidates eligible for a user model.
// hadOpportunity is true whenever the catalog was consulted, even when
// no candidate survives filtering; dimensions narrows inline-content
// candidates and is ignored when empty.
func (s *Source) GetForUserModel(ctx context.Context, model ads.UserModel, dimensions string) (bool, []ads.CreativeAd, error) {
	creatives, err := s.catalog.CreativeAds(ctx, s.adType)
	if err != nil {
		return false, nil, err
	}

	candidates := creatives

	if dimensions != "" {
		candidates = filter(candidates, func(c ads.CreativeAd) bool {
			return c.Dimensions == dimensions
		})
	}

	candidates = matchSegments(candidates, model.AllSegments())
	candidates = topPriorityTier(candidates)
	candidates = s.excludeLastServed(candidates)

	s.log.Debug("eligible ads",
		"ad_type", s.adType,
		"catalog", len(creatives),
		"candidates", len(candidates))

	return true, candidates, nil
}

// SetLastServedAd records pacing state so the same creative set is not
// served twice in a row when alternatives exist
func (s *Source) SetLastServedAd(ad ads.ServedAd) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastServedSetID = ad.CreativeSetID
}

// matchSegments keeps creatives targeting any of the user's segments.
// A creative whose segment is a taxonomy parent of a user segment
// (e.g. "technology" vs "technology-software") also matches. When no
// targeted creative matches, untargeted creatives are the fallback.
func matchSegments(creatives []ads.CreativeAd, segments []string) []ads.CreativeAd {
	matched := filter(creatives, func(c ads.CreativeAd) bool {
		for _, s := range segments {
			if segmentMatches(c.Segment, s) {
				return true
			}
		}
		return false
	})

	if len(matched) > 0 {
		return matched
	}

	return filter(creatives, func(c ads.CreativeAd) bool {
		return c.Segment == untargetedSegment || c.Segment == ""
	})
}

func segmentMatches(creativeSegment, userSegment string) bool {
	creativeSegment = strings.ToLower(creativeSegment)
	userSegment = strings.ToLower(userSegment)

	if creativeSegment == userSegment {
		return true
	}

	return strings.HasPrefix(userSegment, creativeSegment+"-")
}

// topPriorityTier keeps only the highest-priority candidates
func topPriorityTier(creatives []ads.CreativeAd) []ads.CreativeAd {
	if len(creatives) == 0 {
		return creatives
	}

	var top uint
	for _, c := range creatives {
		if c.Priority > top {
			top = c.Priority
		}
	}

	return filter(creatives, func(c ads.CreativeAd) bool {
		return c.Priority == top
	})
}

func (s *Source) excludeLastServed(creatives []ads.CreativeAd) []ads.CreativeAd {
	s.mu.Lock()
	lastSetID := s.lastServedSetID
	s.mu.Unlock()

	if lastSetID == "" {
		return creatives
	}

	remaining := filter(creatives, func(c ads.CreativeAd) bool {
		return c.CreativeSetID != lastSetID
	})

	// When the last-served creative set is the only option, repeat it
	// rather than going dark.
	if len(remaining) == 0 {
		return creatives
	}

	return remaining
}

func filter(creatives []ads.CreativeAd, keep func(ads.CreativeAd) bool) []ads.CreativeAd {
	var out []ads.CreativeAd
	for _, c := range creatives {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
