// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serving

import (
	"github.com/luxfi/adserve/pkg/ads"
)

// Delegate observes serve lifecycle events. Every MaybeServeAd call
// ends in exactly one of OnDidServeAd or OnFailedToServeAd;
// OnOpportunityAroseToServeAd fires independently of that outcome
// whenever the candidate set was consulted.
type Delegate interface {
	OnOpportunityAroseToServeAd(adType ads.Type, segments []string)
	OnDidServeAd(ad ads.ServedAd)
	OnFailedToServeAd(adType ads.Type)
}

// delegates fans notifications out to every registered observer
type delegates []Delegate

func (d delegates) notifyOpportunityArose(adType ads.Type, segments []string) {
	for _, delegate := range d {
		delegate.OnOpportunityAroseToServeAd(adType, segments)
	}
}

func (d delegates) notifyDidServe(ad ads.ServedAd) {
	for _, delegate := range d {
		delegate.OnDidServeAd(ad)
	}
}

func (d delegates) notifyFailedToServe(adType ads.Type) {
	for _, delegate := range d {
		delegate.OnFailedToServeAd(adType)
	}
}
