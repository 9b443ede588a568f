// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package permission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEmptyHistoryAlwaysRespectsConstraint(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, cap := range []uint{1, 2, 4, 20, 100} {
		require.True(t, HistoryRespectsRollingTimeConstraint(nil, time.Hour, cap, now))
		require.True(t, HistoryRespectsRollingTimeConstraint([]time.Time{}, 24*time.Hour, cap, now))
	}
}

func TestCapOfZeroNeverAllows(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.False(t, HistoryRespectsRollingTimeConstraint(nil, time.Hour, 0, now))
	require.False(t, HistoryRespectsRollingTimeConstraint([]time.Time{now}, time.Hour, 0, now))
}

func TestEventAgesOutExactlyAtWindowBoundary(t *testing.T) {
	event := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	history := []time.Time{event}

	// One millisecond before the event turns an hour old the window is
	// still full.
	now := event.Add(time.Hour - time.Millisecond)
	require.False(t, HistoryRespectsRollingTimeConstraint(history, time.Hour, 1, now))

	// At exactly one hour the event has aged out.
	now = event.Add(time.Hour)
	require.True(t, HistoryRespectsRollingTimeConstraint(history, time.Hour, 1, now))
}

func TestConstraintCountsOnlyEventsWithinWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	history := []time.Time{
		now.Add(-25 * time.Hour), // outside a day window
		now.Add(-2 * time.Hour),  // outside an hour window
		now.Add(-30 * time.Minute),
		now.Add(-time.Minute),
	}

	require.True(t, HistoryRespectsRollingTimeConstraint(history, time.Hour, 3, now))
	require.False(t, HistoryRespectsRollingTimeConstraint(history, time.Hour, 2, now))

	require.True(t, HistoryRespectsRollingTimeConstraint(history, 24*time.Hour, 4, now))
	require.False(t, HistoryRespectsRollingTimeConstraint(history, 24*time.Hour, 3, now))
}

func TestRespectingSmallerCapImpliesRespectingLargerCap(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	histories := [][]time.Time{
		nil,
		{now.Add(-time.Minute)},
		{now.Add(-59 * time.Minute), now.Add(-30 * time.Minute), now.Add(-time.Second)},
		{now.Add(-time.Hour), now.Add(-time.Minute)},
	}

	for _, history := range histories {
		for smaller := uint(1); smaller < 6; smaller++ {
			for larger := smaller + 1; larger < 8; larger++ {
				if HistoryRespectsRollingTimeConstraint(history, time.Hour, smaller, now) {
					require.True(t,
						HistoryRespectsRollingTimeConstraint(history, time.Hour, larger, now),
						"history respecting cap %d must respect cap %d", smaller, larger)
				}
			}
		}
	}
}

func TestUnsortedHistoryCountsTheSame(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	sorted := []time.Time{
		now.Add(-50 * time.Minute),
		now.Add(-40 * time.Minute),
		now.Add(-10 * time.Minute),
	}
	shuffled := []time.Time{sorted[2], sorted[0], sorted[1]}

	for cap := uint(1); cap < 5; cap++ {
		require.Equal(t,
			HistoryRespectsRollingTimeConstraint(sorted, time.Hour, cap, now),
			HistoryRespectsRollingTimeConstraint(shuffled, time.Hour, cap, now))
	}
}
