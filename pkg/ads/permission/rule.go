// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package permission

import (
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/adserve/pkg/ads"
)

// Kind names a permission rule
type Kind string

const (
	KindCatalog           Kind = "catalog"
	KindCommandLine       Kind = "command_line"
	KindDoNotDisturb      Kind = "do_not_disturb"
	KindUserActivity      Kind = "user_activity"
	KindIssuers           Kind = "issuers"
	KindUnblindedTokens   Kind = "unblinded_tokens"
	KindMedia             Kind = "media"
	KindNetworkConnection Kind = "network_connection"
	KindFullScreenMode    Kind = "full_screen_mode"
	KindBrowserIsActive   Kind = "browser_is_active"
	KindAdsPerHour        Kind = "ads_per_hour"
	KindAdsPerDay         Kind = "ads_per_day"
	KindMinimumWaitTime   Kind = "minimum_wait_time"
)

// Denial reasons. Fixed per rule; a denial is a policy decision, never
// an exception.
var (
	ErrCatalogMissing      = errors.New("catalog does not exist")
	ErrCatalogStale        = errors.New("catalog was not updated within the ping interval")
	ErrCommandLineOverride = errors.New("command line was overridden in production")
	ErrDoNotDisturb        = errors.New("should not disturb the user at this hour")
	ErrUserInactive        = errors.New("user was inactive")
	ErrIssuersUnavailable  = errors.New("issuers are unavailable")
	ErrTooFewTokens        = errors.New("too few unblinded tokens")
	ErrMediaPlaying        = errors.New("media is playing")
	ErrNetworkUnavailable  = errors.New("network connection is unavailable")
	ErrFullScreenMode      = errors.New("browser is in full screen mode")
	ErrBrowserInactive     = errors.New("browser is not active")
	ErrAdsPerHourExceeded  = errors.New("exceeded ads per hour cap")
	ErrAdsPerDayExceeded   = errors.New("exceeded ads per day cap")
	ErrMinimumWaitTime     = errors.New("minimum wait time has not elapsed")
)

// Hours between which notification ads may disturb an inactive Android
// browser.
const (
	doNotDisturbEndHour   = 6  // inclusive
	doNotDisturbStartHour = 21 // exclusive
)

// Ad serving requires at least this many unblinded tokens on hand.
const minimumUnblindedTokens = 10

// Rule is one permission predicate: a kind plus its parameters. Rules
// are values; building a fresh slice per rule set keeps them stateless
// across evaluations.
type Rule struct {
	Kind   Kind
	Window time.Duration // rolling rate rules
	Cap    uint          // rolling rate rules
	Wait   time.Duration // minimum wait time rule
}

// Catalog requires a catalog that was refreshed within the ping interval
func Catalog() Rule { return Rule{Kind: KindCatalog} }

// CommandLine denies when a production binary runs with an overridden
// command line
func CommandLine() Rule { return Rule{Kind: KindCommandLine} }

// DoNotDisturb denies on Android overnight while the browser is inactive
func DoNotDisturb() Rule { return Rule{Kind: KindDoNotDisturb} }

// UserActivity requires recent user activity
func UserActivity() Rule { return Rule{Kind: KindUserActivity} }

// Issuers requires token issuers to be available
func Issuers() Rule { return Rule{Kind: KindIssuers} }

// UnblindedTokens requires a minimum stock of unblinded tokens
func UnblindedTokens() Rule { return Rule{Kind: KindUnblindedTokens} }

// Media denies while media is playing
func Media() Rule { return Rule{Kind: KindMedia} }

// NetworkConnection requires a network connection
func NetworkConnection() Rule { return Rule{Kind: KindNetworkConnection} }

// FullScreenMode denies while the browser is in full screen mode
func FullScreenMode() Rule { return Rule{Kind: KindFullScreenMode} }

// BrowserIsActive requires an active browser
func BrowserIsActive() Rule { return Rule{Kind: KindBrowserIsActive} }

// AdsPerHour caps served ads per rolling hour
func AdsPerHour(cap uint) Rule {
	return Rule{Kind: KindAdsPerHour, Window: time.Hour, Cap: cap}
}

// AdsPerDay caps served ads per rolling day
func AdsPerDay(cap uint) Rule {
	return Rule{Kind: KindAdsPerDay, Window: 24 * time.Hour, Cap: cap}
}

// MinimumWaitTime requires the newest served ad to be at least wait old
func MinimumWaitTime(wait time.Duration) Rule {
	return Rule{Kind: KindMinimumWaitTime, Wait: wait}
}

// Context is the point-in-time snapshot a rule set evaluates against.
// ServedHistory is fetched once per HasPermission call and shared by
// every history-consuming rule, so per-hour and per-day caps always see
// the same view.
type Context struct {
	Now time.Time

	Environment ads.Environment
	Platform    ads.Platform

	BrowserIsActive       bool
	IsFullScreen          bool
	MediaPlaying          bool
	NetworkConnected      bool
	UserActivityPermitted bool

	IssuersAvailable    bool
	UnblindedTokenCount int

	DidOverrideCommandLine bool
	RewardsOptedIn         bool

	CatalogExists        bool
	CatalogLastUpdatedAt time.Time
	CatalogPingInterval  time.Duration

	ServedHistory []time.Time
}

// Evaluate applies one rule to a context. A nil result allows; a
// non-nil result carries the denial reason. No state is mutated.
func Evaluate(r Rule, ctx *Context) error {
	switch r.Kind {
	case KindCatalog:
		if !ctx.CatalogExists {
			return ErrCatalogMissing
		}
		if ctx.Now.Sub(ctx.CatalogLastUpdatedAt) >= ctx.CatalogPingInterval {
			return ErrCatalogStale
		}
		return nil

	case KindCommandLine:
		if ctx.Environment == ads.EnvironmentProduction && ctx.DidOverrideCommandLine {
			return ErrCommandLineOverride
		}
		return nil

	case KindDoNotDisturb:
		if ctx.Platform != ads.PlatformAndroid || ctx.BrowserIsActive {
			return nil
		}
		hour := ctx.Now.Hour()
		if hour < doNotDisturbEndHour || hour >= doNotDisturbStartHour {
			return ErrDoNotDisturb
		}
		return nil

	case KindUserActivity:
		if !ctx.UserActivityPermitted {
			return ErrUserInactive
		}
		return nil

	case KindIssuers:
		if !ctx.IssuersAvailable {
			return ErrIssuersUnavailable
		}
		return nil

	case KindUnblindedTokens:
		if ctx.UnblindedTokenCount < minimumUnblindedTokens {
			return ErrTooFewTokens
		}
		return nil

	case KindMedia:
		if ctx.MediaPlaying {
			return ErrMediaPlaying
		}
		return nil

	case KindNetworkConnection:
		if !ctx.NetworkConnected {
			return ErrNetworkUnavailable
		}
		return nil

	case KindFullScreenMode:
		if ctx.IsFullScreen {
			return ErrFullScreenMode
		}
		return nil

	case KindBrowserIsActive:
		if !ctx.BrowserIsActive {
			return ErrBrowserInactive
		}
		return nil

	case KindAdsPerHour:
		if !HistoryRespectsRollingTimeConstraint(ctx.ServedHistory, r.Window, r.Cap, ctx.Now) {
			return ErrAdsPerHourExceeded
		}
		return nil

	case KindAdsPerDay:
		if !HistoryRespectsRollingTimeConstraint(ctx.ServedHistory, r.Window, r.Cap, ctx.Now) {
			return ErrAdsPerDayExceeded
		}
		return nil

	case KindMinimumWaitTime:
		// Equivalent to a rolling window of wait with a cap of one, which
		// keeps the aging-out boundary identical to the rate rules.
		if !HistoryRespectsRollingTimeConstraint(ctx.ServedHistory, r.Wait, 1, ctx.Now) {
			return ErrMinimumWaitTime
		}
		return nil

	default:
		panic(fmt.Sprintf("permission: unknown rule kind %q", r.Kind))
	}
}
