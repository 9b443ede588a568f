// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serving

// AmbientState reports the client state permission rules read. The
// browser glue implements this; each method is a cheap point-in-time
// check with no side effects.
type AmbientState interface {
	BrowserIsActive() bool
	IsFullScreen() bool
	MediaPlaying() bool
	NetworkConnected() bool
	UserActivityPermitted() bool
	IssuersAvailable() bool
	UnblindedTokenCount() int
}

// StaticAmbientState is a fixed AmbientState, useful as a default and
// in tests
type StaticAmbientState struct {
	Active       bool
	FullScreen   bool
	Media        bool
	Network      bool
	UserActivity bool
	Issuers      bool
	TokenCount   int
}

// PermissiveAmbientState returns ambient state that allows every
// ambient-gated rule
func PermissiveAmbientState() *StaticAmbientState {
	return &StaticAmbientState{
		Active:       true,
		Network:      true,
		UserActivity: true,
		Issuers:      true,
		TokenCount:   50,
	}
}

func (s *StaticAmbientState) BrowserIsActive() bool       { return s.Active }
func (s *StaticAmbientState) IsFullScreen() bool          { return s.FullScreen }
func (s *StaticAmbientState) MediaPlaying() bool          { return s.Media }
func (s *StaticAmbientState) NetworkConnected() bool      { return s.Network }
func (s *StaticAmbientState) UserActivityPermitted() bool { return s.UserActivity }
func (s *StaticAmbientState) IssuersAvailable() bool      { return s.Issuers }
func (s *StaticAmbientState) UnblindedTokenCount() int    { return s.TokenCount }
