// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ads

// UserModel carries the inferred segments used to rank and filter
// candidate creatives. Opaque to the permission layer.
type UserModel struct {
	IntentSegments         []string `json:"intent_segments"`
	InterestSegments       []string `json:"interest_segments"`
	LatentInterestSegments []string `json:"latent_interest_segments"`
}

// AllSegments returns intent, interest and latent interest segments in
// priority order, deduplicated
func (m *UserModel) AllSegments() []string {
	seen := make(map[string]bool)
	var out []string

	for _, group := range [][]string{m.IntentSegments, m.InterestSegments, m.LatentInterestSegments} {
		for _, s := range group {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}

	return out
}

// TopSegments returns up to n highest-priority segments
func (m *UserModel) TopSegments(n int) []string {
	all := m.AllSegments()
	if len(all) <= n {
		return all
	}
	return all[:n]
}
