// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package events

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/luxfi/adserve/pkg/ads"
)

// MemoryStore is an in-memory event store
type MemoryStore struct {
	mu      sync.RWMutex
	history map[string][]time.Time
}

// NewMemoryStore creates a new in-memory event store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		history: make(map[string][]time.Time),
	}
}

// Record appends one event
func (s *MemoryStore) Record(ctx context.Context, event ads.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := historyKey(event.Type, event.Confirmation)
	s.history[key] = append(s.history[key], event.Timestamp)

	return nil
}

// Timestamps returns recorded timestamps for one filter pair, ascending
func (s *MemoryStore) Timestamps(ctx context.Context, adType ads.Type, confirmation ads.ConfirmationType) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.history[historyKey(adType, confirmation)]
	out := make([]time.Time, len(stored))
	copy(out, stored)

	// Events arrive in time order in practice, but callers may backfill
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })

	return out, nil
}
