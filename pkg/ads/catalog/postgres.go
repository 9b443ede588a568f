// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/luxfi/adserve/pkg/ads"
)

const schema = `
CREATE TABLE IF NOT EXISTS catalog_meta (
	id INT PRIMARY KEY DEFAULT 1,
	last_updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS creative_ads (
	creative_instance_id TEXT PRIMARY KEY,
	creative_set_id TEXT NOT NULL,
	campaign_id TEXT NOT NULL,
	advertiser_id TEXT NOT NULL,
	ad_type TEXT NOT NULL,
	segment TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	body TEXT NOT NULL DEFAULT '',
	target_url TEXT NOT NULL,
	priority INT NOT NULL DEFAULT 0,
	ptr DOUBLE PRECISION NOT NULL DEFAULT 1.0,
	value NUMERIC NOT NULL DEFAULT 0,
	dimensions TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_creative_ads_ad_type ON creative_ads (ad_type);
`

// PostgresCatalog reads creatives from PostgreSQL
type PostgresCatalog struct {
	pool *pgxpool.Pool
}

// NewPostgresCatalog connects to PostgreSQL and ensures the schema
func NewPostgresCatalog(ctx context.Context, dsn string) (*PostgresCatalog, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect catalog database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping catalog database: %w", err)
	}

	c := &PostgresCatalog{pool: pool}
	if err := c.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return c, nil
}

func (c *PostgresCatalog) initSchema(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("init catalog schema: %w", err)
	}
	return nil
}

// Close releases the connection pool
func (c *PostgresCatalog) Close() {
	c.pool.Close()
}

// Info returns catalog existence and last refresh time
func (c *PostgresCatalog) Info(ctx context.Context) (Info, error) {
	var lastUpdatedAt time.Time

	row := c.pool.QueryRow(ctx, `SELECT last_updated_at FROM catalog_meta WHERE id = 1`)
	if err := row.Scan(&lastUpdatedAt); err != nil {
		// No row means no catalog has ever been stored; anything else is
		// an infrastructure failure, not a policy answer.
		if errors.Is(err, pgx.ErrNoRows) {
			return Info{}, nil
		}
		return Info{}, fmt.Errorf("query catalog meta: %w", err)
	}

	return Info{Exists: true, LastUpdatedAt: lastUpdatedAt}, nil
}

// CreativeAds returns every creative for one ad surface
func (c *PostgresCatalog) CreativeAds(ctx context.Context, adType ads.Type) ([]ads.CreativeAd, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT creative_instance_id, creative_set_id, campaign_id, advertiser_id,
		       segment, title, body, target_url, priority, ptr, value, dimensions
		FROM creative_ads
		WHERE ad_type = $1
		ORDER BY priority DESC, creative_instance_id`,
		string(adType))
	if err != nil {
		return nil, fmt.Errorf("query creative ads: %w", err)
	}
	defer rows.Close()

	var out []ads.CreativeAd
	for rows.Next() {
		var (
			creative ads.CreativeAd
			priority int
			value    string
		)

		if err := rows.Scan(
			&creative.CreativeInstanceID,
			&creative.CreativeSetID,
			&creative.CampaignID,
			&creative.AdvertiserID,
			&creative.Segment,
			&creative.Title,
			&creative.Body,
			&creative.TargetURL,
			&priority,
			&creative.PassThroughRate,
			&value,
			&creative.Dimensions,
		); err != nil {
			return nil, fmt.Errorf("scan creative ad: %w", err)
		}

		creative.Priority = uint(priority)
		creative.Value, err = decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("parse creative value: %w", err)
		}

		out = append(out, creative)
	}

	return out, rows.Err()
}

// UpsertCreativeAd stores one creative for a surface
func (c *PostgresCatalog) UpsertCreativeAd(ctx context.Context, adType ads.Type, creative ads.CreativeAd) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO creative_ads (
			creative_instance_id, creative_set_id, campaign_id, advertiser_id,
			ad_type, segment, title, body, target_url, priority, ptr, value, dimensions
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (creative_instance_id) DO UPDATE SET
			creative_set_id = EXCLUDED.creative_set_id,
			campaign_id = EXCLUDED.campaign_id,
			advertiser_id = EXCLUDED.advertiser_id,
			ad_type = EXCLUDED.ad_type,
			segment = EXCLUDED.segment,
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			target_url = EXCLUDED.target_url,
			priority = EXCLUDED.priority,
			ptr = EXCLUDED.ptr,
			value = EXCLUDED.value,
			dimensions = EXCLUDED.dimensions`,
		creative.CreativeInstanceID,
		creative.CreativeSetID,
		creative.CampaignID,
		creative.AdvertiserID,
		string(adType),
		creative.Segment,
		creative.Title,
		creative.Body,
		creative.TargetURL,
		int(creative.Priority),
		creative.PassThroughRate,
		creative.Value.String(),
		creative.Dimensions,
	)
	if err != nil {
		return fmt.Errorf("upsert creative ad: %w", err)
	}

	return nil
}

// TouchUpdated stamps the catalog as refreshed at updatedAt
func (c *PostgresCatalog) TouchUpdated(ctx context.Context, updatedAt time.Time) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO catalog_meta (id, last_updated_at) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET last_updated_at = EXCLUDED.last_updated_at`,
		updatedAt)
	if err != nil {
		return fmt.Errorf("touch catalog: %w", err)
	}

	return nil
}
