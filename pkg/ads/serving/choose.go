// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serving

import (
	"math/rand"

	"github.com/luxfi/adserve/pkg/ads"
)

// ChooseCreativeAd picks one candidate uniformly at random. Candidates
// must be non-empty; an empty list reaching this point is a programming
// error, so it fails fast.
func ChooseCreativeAd(rng *rand.Rand, candidates []ads.CreativeAd) ads.CreativeAd {
	if len(candidates) == 0 {
		panic("serving: choose from empty candidate list")
	}

	return candidates[rng.Intn(len(candidates))]
}
