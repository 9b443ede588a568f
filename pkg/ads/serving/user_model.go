// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serving

import (
	"context"

	"github.com/luxfi/adserve/pkg/ads"
)

// UserModelBuilder derives the interest and intent segments used to
// filter candidates. Building may block on classification state; the
// engine treats a build error as a failed serve.
type UserModelBuilder interface {
	Build(ctx context.Context) (ads.UserModel, error)
}

// StaticUserModelBuilder returns a fixed user model
type StaticUserModelBuilder struct {
	Model ads.UserModel
}

// Build returns the fixed model
func (b *StaticUserModelBuilder) Build(ctx context.Context) (ads.UserModel, error) {
	return b.Model, nil
}
