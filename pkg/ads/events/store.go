// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package events

import (
	"context"
	"time"

	"github.com/luxfi/adserve/pkg/ads"
)

// Store persists ad lifecycle events and answers history queries.
// Implementations must return timestamps in ascending order and must
// serialize their own internal access.
type Store interface {
	// Record appends one event. Events are never mutated after creation.
	Record(ctx context.Context, event ads.Event) error

	// Timestamps returns the recorded timestamps for one
	// (ad type, confirmation type) pair, ascending.
	Timestamps(ctx context.Context, adType ads.Type, confirmation ads.ConfirmationType) ([]time.Time, error)
}

func historyKey(adType ads.Type, confirmation ads.ConfirmationType) string {
	return string(adType) + ":" + string(confirmation)
}
