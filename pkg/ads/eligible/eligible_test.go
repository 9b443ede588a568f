// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package eligible

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/adserve/pkg/ads"
	"github.com/luxfi/adserve/pkg/ads/catalog"
	"github.com/luxfi/adserve/pkg/log"
)

func creative(instanceID, setID, segment string) ads.CreativeAd {
	return ads.CreativeAd{
		CreativeInstanceID: instanceID,
		CreativeSetID:      setID,
		CampaignID:         "campaign-1",
		AdvertiserID:       "advertiser-1",
		Segment:            segment,
		TargetURL:          "https://example.com",
	}
}

func newCatalog(t *testing.T, adType ads.Type, creatives ...ads.CreativeAd) *catalog.MemoryCatalog {
	t.Helper()

	cat := catalog.NewMemoryCatalog()
	cat.SetCreativeAds(adType, creatives, time.Now())
	return cat
}

func TestGetForUserModelMatchesSegments(t *testing.T) {
	cat := newCatalog(t, ads.TypeNotification,
		creative("a", "set-a", "technology"),
		creative("b", "set-b", "travel"),
		creative("c", "set-c", "untargeted"),
	)

	source := NewSource(ads.TypeNotification, cat, log.NoLog)

	model := ads.UserModel{InterestSegments: []string{"technology"}}
	hadOpportunity, candidates, err := source.GetForUserModel(context.Background(), model, "")
	require.NoError(t, err)
	require.True(t, hadOpportunity)
	require.Len(t, candidates, 1)
	require.Equal(t, "a", candidates[0].CreativeInstanceID)
}

func TestGetForUserModelMatchesTaxonomyParents(t *testing.T) {
	cat := newCatalog(t, ads.TypeNotification,
		creative("a", "set-a", "technology"),
	)

	source := NewSource(ads.TypeNotification, cat, log.NoLog)

	model := ads.UserModel{InterestSegments: []string{"technology-software"}}
	_, candidates, err := source.GetForUserModel(context.Background(), model, "")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
}

func TestGetForUserModelFallsBackToUntargeted(t *testing.T) {
	cat := newCatalog(t, ads.TypeNotification,
		creative("a", "set-a", "technology"),
		creative("b", "set-b", "untargeted"),
	)

	source := NewSource(ads.TypeNotification, cat, log.NoLog)

	model := ads.UserModel{InterestSegments: []string{"gardening"}}
	hadOpportunity, candidates, err := source.GetForUserModel(context.Background(), model, "")
	require.NoError(t, err)
	require.True(t, hadOpportunity)
	require.Len(t, candidates, 1)
	require.Equal(t, "b", candidates[0].CreativeInstanceID)
}

func TestGetForUserModelFiltersByDimensions(t *testing.T) {
	wide := creative("a", "set-a", "untargeted")
	wide.Dimensions = "900x225"
	square := creative("b", "set-b", "untargeted")
	square.Dimensions = "200x200"

	cat := newCatalog(t, ads.TypeInlineContent, wide, square)
	source := NewSource(ads.TypeInlineContent, cat, log.NoLog)

	_, candidates, err := source.GetForUserModel(context.Background(), ads.UserModel{}, "200x200")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, "b", candidates[0].CreativeInstanceID)
}

func TestGetForUserModelKeepsTopPriorityTier(t *testing.T) {
	low := creative("a", "set-a", "untargeted")
	low.Priority = 1
	high := creative("b", "set-b", "untargeted")
	high.Priority = 3
	alsoHigh := creative("c", "set-c", "untargeted")
	alsoHigh.Priority = 3

	cat := newCatalog(t, ads.TypeNotification, low, high, alsoHigh)
	source := NewSource(ads.TypeNotification, cat, log.NoLog)

	_, candidates, err := source.GetForUserModel(context.Background(), ads.UserModel{}, "")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	for _, c := range candidates {
		require.EqualValues(t, 3, c.Priority)
	}
}

func TestLastServedCreativeSetIsExcludedWhenAlternativesExist(t *testing.T) {
	cat := newCatalog(t, ads.TypeNotification,
		creative("a", "set-a", "untargeted"),
		creative("b", "set-b", "untargeted"),
	)

	source := NewSource(ads.TypeNotification, cat, log.NoLog)
	source.SetLastServedAd(ads.NewServedAd(ads.TypeNotification, creative("a", "set-a", "untargeted")))

	_, candidates, err := source.GetForUserModel(context.Background(), ads.UserModel{}, "")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, "b", candidates[0].CreativeInstanceID)
}

func TestLastServedCreativeSetRepeatsWhenItIsTheOnlyOption(t *testing.T) {
	cat := newCatalog(t, ads.TypeNotification,
		creative("a", "set-a", "untargeted"),
	)

	source := NewSource(ads.TypeNotification, cat, log.NoLog)
	source.SetLastServedAd(ads.NewServedAd(ads.TypeNotification, creative("a", "set-a", "untargeted")))

	_, candidates, err := source.GetForUserModel(context.Background(), ads.UserModel{}, "")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
}

func TestHadOpportunityIsTrueEvenWithZeroCandidates(t *testing.T) {
	cat := newCatalog(t, ads.TypeNotification,
		creative("a", "set-a", "technology"),
	)

	source := NewSource(ads.TypeNotification, cat, log.NoLog)

	model := ads.UserModel{InterestSegments: []string{"gardening"}}
	hadOpportunity, candidates, err := source.GetForUserModel(context.Background(), model, "")
	require.NoError(t, err)
	require.True(t, hadOpportunity)
	require.Empty(t, candidates)
}

type failingCatalog struct{}

func (failingCatalog) Info(ctx context.Context) (catalog.Info, error) {
	return catalog.Info{}, nil
}

func (failingCatalog) CreativeAds(ctx context.Context, adType ads.Type) ([]ads.CreativeAd, error) {
	return nil, errors.New("catalog unavailable")
}

func TestCatalogErrorMeansNoOpportunity(t *testing.T) {
	source := NewSource(ads.TypeNotification, failingCatalog{}, log.NoLog)

	hadOpportunity, candidates, err := source.GetForUserModel(context.Background(), ads.UserModel{}, "")
	require.Error(t, err)
	require.False(t, hadOpportunity)
	require.Empty(t, candidates)
}
