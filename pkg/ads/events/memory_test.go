// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/adserve/pkg/ads"
)

func TestMemoryStoreRecordAndQuery(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		err := store.Record(ctx, ads.Event{
			Type:         ads.TypeNotification,
			Confirmation: ads.ConfirmationServed,
			Timestamp:    t0.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	history, err := store.Timestamps(ctx, ads.TypeNotification, ads.ConfirmationServed)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.True(t, history[0].Before(history[1]))
	require.True(t, history[1].Before(history[2]))
}

func TestMemoryStoreScopesHistoryByTypeAndConfirmation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, ads.Event{
		Type: ads.TypeNotification, Confirmation: ads.ConfirmationServed, Timestamp: now,
	}))
	require.NoError(t, store.Record(ctx, ads.Event{
		Type: ads.TypeNotification, Confirmation: ads.ConfirmationViewed, Timestamp: now,
	}))
	require.NoError(t, store.Record(ctx, ads.Event{
		Type: ads.TypeInlineContent, Confirmation: ads.ConfirmationServed, Timestamp: now,
	}))

	served, err := store.Timestamps(ctx, ads.TypeNotification, ads.ConfirmationServed)
	require.NoError(t, err)
	require.Len(t, served, 1)

	viewed, err := store.Timestamps(ctx, ads.TypeNotification, ads.ConfirmationViewed)
	require.NoError(t, err)
	require.Len(t, viewed, 1)

	other, err := store.Timestamps(ctx, ads.TypeSearchResult, ads.ConfirmationServed)
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestMemoryStoreSortsBackfilledEvents(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, offset := range []time.Duration{time.Hour, 0, 30 * time.Minute} {
		require.NoError(t, store.Record(ctx, ads.Event{
			Type:         ads.TypeNotification,
			Confirmation: ads.ConfirmationServed,
			Timestamp:    t0.Add(offset),
		}))
	}

	history, err := store.Timestamps(ctx, ads.TypeNotification, ads.ConfirmationServed)
	require.NoError(t, err)
	require.Equal(t, []time.Time{t0, t0.Add(30 * time.Minute), t0.Add(time.Hour)}, history)
}
