// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/adserve/pkg/ads"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client)
}

func TestRedisStoreRecordAndQuery(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Insert out of order; the sorted set orders by score.
	for _, offset := range []time.Duration{2 * time.Minute, 0, time.Minute} {
		err := store.Record(ctx, ads.Event{
			Type:         ads.TypeNotification,
			Confirmation: ads.ConfirmationServed,
			Timestamp:    t0.Add(offset),
		})
		require.NoError(t, err)
	}

	history, err := store.Timestamps(ctx, ads.TypeNotification, ads.ConfirmationServed)
	require.NoError(t, err)
	require.Len(t, history, 3)

	for i := range history {
		require.True(t, history[i].Equal(t0.Add(time.Duration(i)*time.Minute)))
	}
}

func TestRedisStoreKeepsEventsWithEqualTimestamps(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	// Several serves can land on the same clock reading; each must count
	// against the rolling caps.
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		require.NoError(t, store.Record(ctx, ads.Event{
			Type:         ads.TypeNotification,
			Confirmation: ads.ConfirmationServed,
			Timestamp:    t0,
		}))
	}

	history, err := store.Timestamps(ctx, ads.TypeNotification, ads.ConfirmationServed)
	require.NoError(t, err)
	require.Len(t, history, 4)

	for _, ts := range history {
		require.True(t, ts.Equal(t0))
	}
}

func TestRedisStoreScopesHistoryByTypeAndConfirmation(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, ads.Event{
		Type: ads.TypeNotification, Confirmation: ads.ConfirmationServed, Timestamp: now,
	}))
	require.NoError(t, store.Record(ctx, ads.Event{
		Type: ads.TypeInlineContent, Confirmation: ads.ConfirmationServed, Timestamp: now,
	}))

	served, err := store.Timestamps(ctx, ads.TypeNotification, ads.ConfirmationServed)
	require.NoError(t, err)
	require.Len(t, served, 1)

	clicked, err := store.Timestamps(ctx, ads.TypeNotification, ads.ConfirmationClicked)
	require.NoError(t, err)
	require.Empty(t, clicked)
}

func TestRedisStoreTrimBefore(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, offset := range []time.Duration{-48 * time.Hour, -time.Hour, 0} {
		require.NoError(t, store.Record(ctx, ads.Event{
			Type:         ads.TypeNotification,
			Confirmation: ads.ConfirmationServed,
			Timestamp:    t0.Add(offset),
		}))
	}

	require.NoError(t, store.TrimBefore(ctx, t0.Add(-24*time.Hour)))

	history, err := store.Timestamps(ctx, ads.TypeNotification, ads.ConfirmationServed)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.True(t, history[0].Equal(t0.Add(-time.Hour)))
}
