// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all metrics for the ad serving engine
type Metrics struct {
	registry *prometheus.Registry

	// Serving metrics
	ServeRequests prometheus.CounterVec
	AdsServed     prometheus.CounterVec
	ServeFailures prometheus.CounterVec
	Opportunities prometheus.CounterVec

	// Permission metrics
	PermissionDenied prometheus.CounterVec

	// Store metrics
	EventsRecorded prometheus.CounterVec

	// Performance metrics
	ServeDuration      prometheus.Histogram
	EligibleCandidates prometheus.Histogram
}

// NewMetrics creates a new metrics instance backed by its own registry
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		ServeRequests: *prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adserve",
			Name:      "serve_requests_total",
			Help:      "Total number of serve attempts by ad type",
		}, []string{"ad_type"}),

		AdsServed: *prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adserve",
			Name:      "ads_served_total",
			Help:      "Total number of ads served by ad type",
		}, []string{"ad_type"}),

		ServeFailures: *prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adserve",
			Name:      "serve_failures_total",
			Help:      "Total number of failed serve attempts by ad type",
		}, []string{"ad_type"}),

		Opportunities: *prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adserve",
			Name:      "serve_opportunities_total",
			Help:      "Total number of serve opportunities by ad type",
		}, []string{"ad_type"}),

		PermissionDenied: *prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adserve",
			Name:      "permission_denied_total",
			Help:      "Total number of permission denials by rule",
		}, []string{"ad_type", "rule"}),

		EventsRecorded: *prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adserve",
			Name:      "ad_events_recorded_total",
			Help:      "Total number of ad events recorded by confirmation type",
		}, []string{"confirmation"}),

		ServeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "adserve",
			Name:      "serve_duration_seconds",
			Help:      "Time to complete a serve attempt",
			Buckets:   prometheus.DefBuckets,
		}),

		EligibleCandidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "adserve",
			Name:      "eligible_candidates",
			Help:      "Number of eligible candidates per serve attempt",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
	}

	collectors := []prometheus.Collector{
		&m.ServeRequests,
		&m.AdsServed,
		&m.ServeFailures,
		&m.Opportunities,
		&m.PermissionDenied,
		&m.EventsRecorded,
		m.ServeDuration,
		m.EligibleCandidates,
	}

	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// GetGatherer returns the prometheus gatherer for metrics export
func (m *Metrics) GetGatherer() prometheus.Gatherer {
	if m.registry != nil {
		return m.registry
	}
	return prometheus.DefaultGatherer
}

// GetRegisterer returns the prometheus registerer
func (m *Metrics) GetRegisterer() prometheus.Registerer {
	if m.registry != nil {
		return m.registry
	}
	return prometheus.DefaultRegisterer
}
