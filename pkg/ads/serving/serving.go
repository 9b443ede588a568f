// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serving

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/luxfi/adserve/pkg/ads"
	"github.com/luxfi/adserve/pkg/ads/catalog"
	"github.com/luxfi/adserve/pkg/ads/config"
	"github.com/luxfi/adserve/pkg/ads/eligible"
	"github.com/luxfi/adserve/pkg/ads/events"
	"github.com/luxfi/adserve/pkg/ads/permission"
	"github.com/luxfi/adserve/pkg/log"
	"github.com/luxfi/adserve/pkg/metric"
)

// EngineConfig wires one serving engine. AdType, Events, Catalog and
// UserModelBuilder are required; the rest default sensibly.
type EngineConfig struct {
	AdType ads.Type
	Config config.Config

	Clock            ads.Clock
	Events           events.Store
	Catalog          catalog.Source
	UserModelBuilder UserModelBuilder
	Ambient          AmbientState

	Metrics *metric.Metrics
	Logger  log.Logger
	Rand    *rand.Rand
}

// Engine serves ads for one surface: feature gate, version gate,
// permission gate, user model, eligible candidates, uniform random
// choice, build, validate, notify. Safe to share across goroutines,
// though concurrent MaybeServeAd calls may interleave pacing decisions.
type Engine struct {
	adType   ads.Type
	cfg      config.Config
	features config.Features

	clock    ads.Clock
	events   events.Store
	catalog  catalog.Source
	eligible *eligible.Source
	builder  UserModelBuilder
	ambient  AmbientState
	ruleSet  *permission.RuleSet

	metrics *metric.Metrics
	log     log.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	delegateMu sync.RWMutex
	delegates  delegates
}

// NewEngine creates a serving engine for one ad surface
func NewEngine(ec EngineConfig) *Engine {
	logger := ec.Logger
	if logger == nil {
		logger = log.NoLog
	}

	clock := ec.Clock
	if clock == nil {
		clock = ads.SystemClock{}
	}

	ambient := ec.Ambient
	if ambient == nil {
		ambient = PermissiveAmbientState()
	}

	rng := ec.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	features := ec.Config.FeaturesFor(ec.AdType)

	return &Engine{
		adType:   ec.AdType,
		cfg:      ec.Config,
		features: features,
		clock:    clock,
		events:   ec.Events,
		catalog:  ec.Catalog,
		eligible: eligible.NewSource(ec.AdType, ec.Catalog, logger),
		builder:  ec.UserModelBuilder,
		ambient:  ambient,
		ruleSet:  permission.ForAdType(ec.AdType, features, logger),
		metrics:  ec.Metrics,
		log:      logger,
		rng:      rng,
	}
}

// AddDelegate registers a lifecycle observer
func (e *Engine) AddDelegate(d Delegate) {
	e.delegateMu.Lock()
	defer e.delegateMu.Unlock()

	e.delegates = append(e.delegates, d)
}

// AdType returns the surface this engine serves
func (e *Engine) AdType() ads.Type {
	return e.adType
}

// isSupported reports whether this binary knows how to run the
// configured serving algorithm version
func (e *Engine) isSupported() bool {
	return e.features.Version == config.DefaultServingVersion
}

// MaybeServeAd attempts to serve one ad. The callback is invoked
// exactly once, with the served ad or nil, on the calling goroutine;
// delivery is guaranteed regardless of outcome. For inline-content,
// dimensions narrows candidates; other surfaces pass "".
func (e *Engine) MaybeServeAd(ctx context.Context, dimensions string, callback func(*ads.ServedAd)) {
	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.ServeDuration.Observe(time.Since(start).Seconds())
		}
	}()

	if e.metrics != nil {
		e.metrics.ServeRequests.WithLabelValues(string(e.adType)).Inc()
	}

	if !e.features.Enabled {
		e.log.Debug("feature is disabled", "ad_type", e.adType)
		e.failedToServe(callback)
		return
	}

	if !e.isSupported() {
		e.log.Warn("unsupported serving version",
			"ad_type", e.adType,
			"version", e.features.Version)
		e.failedToServe(callback)
		return
	}

	if !e.hasPermission(ctx) {
		e.failedToServe(callback)
		return
	}

	model, err := e.builder.Build(ctx)
	if err != nil {
		e.log.Error("failed to build user model", "ad_type", e.adType, "error", err)
		e.failedToServe(callback)
		return
	}

	hadOpportunity, candidates, err := e.eligible.GetForUserModel(ctx, model, dimensions)
	if hadOpportunity {
		e.opportunityArose(model)
	}
	if err != nil {
		e.log.Error("failed to get eligible ads", "ad_type", e.adType, "error", err)
		e.failedToServe(callback)
		return
	}

	if e.metrics != nil {
		e.metrics.EligibleCandidates.Observe(float64(len(candidates)))
	}

	if len(candidates) == 0 {
		e.log.Debug("no eligible ads", "ad_type", e.adType)
		e.failedToServe(callback)
		return
	}

	e.rngMu.Lock()
	creative := ChooseCreativeAd(e.rng, candidates)
	e.rngMu.Unlock()

	served := ads.NewServedAd(e.adType, creative)
	if !served.IsValid() {
		e.log.Error("built an invalid ad",
			"ad_type", e.adType,
			"creative_instance_id", creative.CreativeInstanceID)
		e.failedToServe(callback)
		return
	}

	e.eligible.SetLastServedAd(served)

	if err := e.recordServed(ctx); err != nil {
		e.log.Error("failed to record served event", "ad_type", e.adType, "error", err)
	}

	e.log.Info("served ad",
		"ad_type", e.adType,
		"placement_id", served.PlacementID,
		"creative_instance_id", served.CreativeInstanceID)

	if e.metrics != nil {
		e.metrics.AdsServed.WithLabelValues(string(e.adType)).Inc()
	}

	e.delegateMu.RLock()
	e.delegates.notifyDidServe(served)
	e.delegateMu.RUnlock()

	callback(&served)
}

// hasPermission assembles one point-in-time permission context and
// evaluates the surface's rule set against it
func (e *Engine) hasPermission(ctx context.Context) bool {
	pctx, err := e.permissionContext(ctx)
	if err != nil {
		e.log.Error("failed to build permission context", "ad_type", e.adType, "error", err)
		return false
	}

	denial := e.ruleSet.Check(pctx)
	if denial == nil {
		return true
	}

	e.log.Debug("permission denied",
		"ad_type", e.adType,
		"rule", denial.Rule,
		"reason", denial.Reason)

	if e.metrics != nil {
		e.metrics.PermissionDenied.WithLabelValues(string(e.adType), string(denial.Rule)).Inc()
	}

	return false
}

// permissionContext fetches the served-event history exactly once so
// every history-consuming rule sees the same snapshot
func (e *Engine) permissionContext(ctx context.Context) (*permission.Context, error) {
	history, err := e.events.Timestamps(ctx, e.adType, ads.ConfirmationServed)
	if err != nil {
		return nil, err
	}

	info, err := e.catalog.Info(ctx)
	if err != nil {
		return nil, err
	}

	return &permission.Context{
		Now:                    e.clock.Now(),
		Environment:            e.cfg.Environment,
		Platform:               e.cfg.Platform,
		BrowserIsActive:        e.ambient.BrowserIsActive(),
		IsFullScreen:           e.ambient.IsFullScreen(),
		MediaPlaying:           e.ambient.MediaPlaying(),
		NetworkConnected:       e.ambient.NetworkConnected(),
		UserActivityPermitted:  e.ambient.UserActivityPermitted(),
		IssuersAvailable:       e.ambient.IssuersAvailable(),
		UnblindedTokenCount:    e.ambient.UnblindedTokenCount(),
		DidOverrideCommandLine: e.cfg.DidOverrideCommandLine,
		RewardsOptedIn:         e.cfg.RewardsOptedIn,
		CatalogExists:          info.Exists,
		CatalogLastUpdatedAt:   info.LastUpdatedAt,
		CatalogPingInterval:    e.cfg.CatalogPingInterval,
		ServedHistory:          history,
	}, nil
}

func (e *Engine) recordServed(ctx context.Context) error {
	err := e.events.Record(ctx, ads.Event{
		Type:         e.adType,
		Confirmation: ads.ConfirmationServed,
		Timestamp:    e.clock.Now(),
	})
	if err == nil && e.metrics != nil {
		e.metrics.EventsRecorded.WithLabelValues(string(ads.ConfirmationServed)).Inc()
	}
	return err
}

func (e *Engine) opportunityArose(model ads.UserModel) {
	if e.metrics != nil {
		e.metrics.Opportunities.WithLabelValues(string(e.adType)).Inc()
	}

	e.delegateMu.RLock()
	e.delegates.notifyOpportunityArose(e.adType, model.TopSegments(3))
	e.delegateMu.RUnlock()
}

func (e *Engine) failedToServe(callback func(*ads.ServedAd)) {
	if e.metrics != nil {
		e.metrics.ServeFailures.WithLabelValues(string(e.adType)).Inc()
	}

	e.delegateMu.RLock()
	e.delegates.notifyFailedToServe(e.adType)
	e.delegateMu.RUnlock()

	callback(nil)
}
