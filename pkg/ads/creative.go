// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreativeAd is a read-only snapshot of one creative from the catalog.
// Dimensions is set for inline-content creatives only (e.g. "200x100").
type CreativeAd struct {
	CreativeInstanceID string          `json:"creative_instance_id"`
	CreativeSetID      string          `json:"creative_set_id"`
	CampaignID         string          `json:"campaign_id"`
	AdvertiserID       string          `json:"advertiser_id"`
	Segment            string          `json:"segment"`
	Title              string          `json:"title"`
	Body               string          `json:"body"`
	TargetURL          string          `json:"target_url"`
	Priority           uint            `json:"priority"`
	PassThroughRate    float64         `json:"ptr"`
	Value              decimal.Decimal `json:"value"`
	Dimensions         string          `json:"dimensions,omitempty"`
}

// IsValid reports whether the creative carries every identifier the
// serving pipeline requires
func (c *CreativeAd) IsValid() bool {
	return c.CreativeInstanceID != "" &&
		c.CreativeSetID != "" &&
		c.CampaignID != "" &&
		c.AdvertiserID != "" &&
		c.TargetURL != ""
}

// ServedAd is a fully materialized ad handed to the caller after a
// successful serve. Built once per serve; ownership transfers with the
// completion callback.
type ServedAd struct {
	PlacementID string `json:"placement_id"`
	Type        Type   `json:"ad_type"`
	CreativeAd
}

// NewServedAd materializes a creative for a surface, minting a fresh
// placement ID
func NewServedAd(adType Type, creative CreativeAd) ServedAd {
	return ServedAd{
		PlacementID: uuid.NewString(),
		Type:        adType,
		CreativeAd:  creative,
	}
}

// IsValid reports whether the served ad is complete enough to hand out
func (a *ServedAd) IsValid() bool {
	return a.PlacementID != "" && a.Type != "" && a.CreativeAd.IsValid()
}
