// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package events

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/luxfi/adserve/pkg/ads"
)

const redisKeyPrefix = "adserve:events:"

// RedisStore keeps event history in Redis sorted sets, one set per
// (ad type, confirmation type) pair scored by unix nanos. Survives
// process restarts, unlike MemoryStore.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed event store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Record appends one event. The member carries a unique suffix so
// events sharing a timestamp stay distinct entries in the sorted set.
func (s *RedisStore) Record(ctx context.Context, event ads.Event) error {
	key := redisKeyPrefix + historyKey(event.Type, event.Confirmation)
	nanos := event.Timestamp.UnixNano()

	return s.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(nanos),
		Member: strconv.FormatInt(nanos, 10) + ":" + uuid.NewString(),
	}).Err()
}

// Timestamps returns recorded timestamps for one filter pair, ascending
func (s *RedisStore) Timestamps(ctx context.Context, adType ads.Type, confirmation ads.ConfirmationType) ([]time.Time, error) {
	key := redisKeyPrefix + historyKey(adType, confirmation)

	members, err := s.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: "-inf",
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, err
	}

	out := make([]time.Time, 0, len(members))
	for _, m := range members {
		encoded, _, _ := strings.Cut(m, ":")
		nanos, err := strconv.ParseInt(encoded, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, time.Unix(0, nanos))
	}

	return out, nil
}

// TrimBefore drops events older than the cutoff; callers run it
// periodically so the sets stay bounded by the widest rule window
func (s *RedisStore) TrimBefore(ctx context.Context, cutoff time.Time) error {
	max := strconv.FormatInt(cutoff.UnixNano(), 10)

	for _, adType := range ads.Types {
		for _, confirmation := range []ads.ConfirmationType{
			ads.ConfirmationServed,
			ads.ConfirmationViewed,
			ads.ConfirmationClicked,
			ads.ConfirmationDismissed,
			ads.ConfirmationLanded,
		} {
			key := redisKeyPrefix + historyKey(adType, confirmation)
			if err := s.client.ZRemRangeByScore(ctx, key, "-inf", "("+max).Err(); err != nil {
				return err
			}
		}
	}

	return nil
}
