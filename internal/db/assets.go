package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/infraai/backend/internal/model"
)

// EnsureAssetSchema - system_assets 테이블 생성 (없으면)
func (p *Postgres) EnsureAssetSchema(ctx context.Context) error {
	_, err := p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS system_assets (
			ip         TEXT         PRIMARY KEY,
			hostname   TEXT         NOT NULL DEFAULT '',
			type       TEXT         NOT NULL DEFAULT 'server',
			services   JSONB        NOT NULL DEFAULT '[]',
			last_seen  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create system_assets table: %w", err)
	}
	return nil
}

// UpsertAsset - ip 기준으로 갱신, 없으면 추가
func (p *Postgres) UpsertAsset(ctx context.Context, asset model.Asset) error {
	services := asset.Services
	if services == nil {
		services = []string{}
	}
	servicesJSON, err := json.Marshal(services)
	if err != nil {
		return fmt.Errorf("failed to marshal services: %w", err)
	}

	_, err = p.Pool.Exec(ctx, `
		INSERT INTO system_assets (ip, hostname, type, services, last_seen)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (ip) DO UPDATE
		SET hostname = EXCLUDED.hostname,
		    type = EXCLUDED.type,
		    services = EXCLUDED.services,
		    last_seen = NOW();
	`, asset.IP, asset.Hostname, asset.Type, servicesJSON)
	if err != nil {
		return fmt.Errorf("failed to upsert asset %s: %w", asset.IP, err)
	}
	return nil
}

func (p *Postgres) ListAssets(ctx context.Context) ([]model.Asset, error) {
	rows, err := p.Pool.Query(ctx, `
		SELECT ip, hostname, type, services, last_seen
		FROM system_assets
		ORDER BY ip ASC;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		var asset model.Asset
		var servicesJSON []byte
		if err := rows.Scan(&asset.IP, &asset.Hostname, &asset.Type, &servicesJSON, &asset.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		if err := json.Unmarshal(servicesJSON, &asset.Services); err != nil {
			return nil, fmt.Errorf("failed to unmarshal services: %w", err)
		}
		assets = append(assets, asset)
	}
	if assets == nil {
		assets = []model.Asset{}
	}
	return assets, nil
}
