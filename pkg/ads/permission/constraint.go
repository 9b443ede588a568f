// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package permission

import (
	"time"
)

// HistoryRespectsRollingTimeConstraint reports whether one more event may
// be added to history without exceeding cap events per window. An event
// recorded exactly window ago has aged out and no longer counts, so a
// full window frees up again at the instant its oldest event turns
// window old. A cap of zero never allows. Pure; now is supplied by the
// caller's clock.
func HistoryRespectsRollingTimeConstraint(history []time.Time, window time.Duration, cap uint, now time.Time) bool {
	cutoff := now.Add(-window)

	var count uint
	for _, ts := range history {
		if ts.After(cutoff) {
			count++
		}
	}

	return count < cap
}
