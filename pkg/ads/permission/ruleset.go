// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package permission

import (
	"fmt"

	"github.com/luxfi/adserve/pkg/ads"
	"github.com/luxfi/adserve/pkg/ads/config"
	"github.com/luxfi/adserve/pkg/log"
)

// Denial reports which rule denied and why
type Denial struct {
	Rule   Kind
	Reason error
}

func (d *Denial) Error() string {
	return fmt.Sprintf("%s: %v", d.Rule, d.Reason)
}

func (d *Denial) Unwrap() error {
	return d.Reason
}

// RuleSet is an ordered, short-circuiting AND over permission rules for
// one ad surface. Order only affects which denial is reported first;
// the rules are independent, so the final decision is order-free.
type RuleSet struct {
	adType ads.Type
	rules  []Rule
	bypass func(*Context) bool
	log    log.Logger
}

// NewRuleSet creates a rule set that evaluates rules in declared order
func NewRuleSet(adType ads.Type, rules []Rule, logger log.Logger) *RuleSet {
	return &RuleSet{
		adType: adType,
		rules:  rules,
		log:    logger,
	}
}

// Rules returns the declared rule order
func (rs *RuleSet) Rules() []Rule {
	return rs.rules
}

// Check evaluates every rule in order and returns the first denial, or
// nil when all rules allow
func (rs *RuleSet) Check(ctx *Context) *Denial {
	if rs.bypass != nil && rs.bypass(ctx) {
		return nil
	}

	for _, r := range rs.rules {
		if err := Evaluate(r, ctx); err != nil {
			return &Denial{Rule: r.Kind, Reason: err}
		}
	}

	return nil
}

// HasPermission reports whether serving is currently permitted, logging
// the first denial reason
func (rs *RuleSet) HasPermission(ctx *Context) bool {
	denial := rs.Check(ctx)
	if denial == nil {
		return true
	}

	rs.log.Debug("permission denied",
		"ad_type", rs.adType,
		"rule", denial.Rule,
		"reason", denial.Reason)

	return false
}

// baseRules are shared by every ad surface
func baseRules() []Rule {
	return []Rule{Issuers(), UnblindedTokens(), CommandLine()}
}

// ForAdType composes the fixed rule set for one ad surface. Caps and
// spacing come from the injected feature configuration.
func ForAdType(adType ads.Type, features config.Features, logger log.Logger) *RuleSet {
	perDay := AdsPerDay(features.MaxAdsPerDay)
	perHour := AdsPerHour(features.MaxAdsPerHour)
	wait := MinimumWaitTime(features.EffectiveMinimumWaitTime())

	var rules []Rule

	switch adType {
	case ads.TypeNotification:
		rules = append(baseRules(),
			Catalog(),
			UserActivity(),
			NetworkConnection(),
			FullScreenMode(),
			BrowserIsActive(),
			DoNotDisturb(),
			Media(),
			perDay,
			perHour,
			wait,
		)

	case ads.TypeSearchResult:
		// Search placements are user initiated, so no activity or
		// spacing requirements.
		rules = append(baseRules(),
			Catalog(),
			perDay,
			perHour,
		)

	default:
		rules = append(baseRules(),
			Catalog(),
			UserActivity(),
			perDay,
			perHour,
			wait,
		)
	}

	rs := NewRuleSet(adType, rules, logger)

	if adType == ads.TypeNewTabPage {
		// Users outside the rewards program see sponsored new tab images
		// without permission gating.
		rs.bypass = func(ctx *Context) bool { return !ctx.RewardsOptedIn }
	}

	return rs
}
