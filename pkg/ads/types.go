// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ads

import (
	"time"
)

// Type identifies an ad surface
type Type string

const (
	TypeInlineContent   Type = "inline_content"
	TypeNewTabPage      Type = "new_tab_page"
	TypeNotification    Type = "notification"
	TypePromotedContent Type = "promoted_content"
	TypeSearchResult    Type = "search_result"
)

// Types lists every supported ad surface
var Types = []Type{
	TypeInlineContent,
	TypeNewTabPage,
	TypeNotification,
	TypePromotedContent,
	TypeSearchResult,
}

// ParseType parses an ad type from its wire representation
func ParseType(s string) (Type, bool) {
	for _, t := range Types {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// ConfirmationType identifies what happened to a served ad
type ConfirmationType string

const (
	ConfirmationServed    ConfirmationType = "served"
	ConfirmationViewed    ConfirmationType = "viewed"
	ConfirmationClicked   ConfirmationType = "clicked"
	ConfirmationDismissed ConfirmationType = "dismissed"
	ConfirmationLanded    ConfirmationType = "landed"
)

// Event records a single ad lifecycle event. Events are immutable and
// append-only; history queries filter by (Type, Confirmation).
type Event struct {
	Type         Type             `json:"ad_type"`
	Confirmation ConfirmationType `json:"confirmation_type"`
	Timestamp    time.Time        `json:"timestamp"`
}

// Clock supplies the current time. Production code uses SystemClock;
// tests substitute an advanceable clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Platform identifies the host operating system class
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformDesktop Platform = "desktop"
	PlatformIOS     Platform = "ios"
)

// Environment identifies the deployment environment
type Environment string

const (
	EnvironmentProduction  Environment = "production"
	EnvironmentStaging     Environment = "staging"
	EnvironmentDevelopment Environment = "development"
)
