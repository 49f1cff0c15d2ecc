package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/infraai/backend/internal/model"
)

// EnsurePolicySchema - policies 테이블 생성 (없으면)
func (p *Postgres) EnsurePolicySchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS policies (
			id         SERIAL       PRIMARY KEY,
			name       TEXT         NOT NULL UNIQUE,
			condition  JSONB        NOT NULL DEFAULT '{}',
			action     JSONB        NOT NULL DEFAULT '{}',
			priority   INTEGER      NOT NULL DEFAULT 100,
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS policies_priority_idx ON policies(priority, id)`,
	}

	for _, query := range queries {
		if _, err := p.Pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to create policies table: %w", err)
		}
	}
	return nil
}

// ListPolicies - 우선순위 오름차순 (같으면 id 순)
func (p *Postgres) ListPolicies(ctx context.Context) ([]model.Policy, error) {
	rows, err := p.Pool.Query(ctx, `
		SELECT id, name, condition, action, priority, created_at
		FROM policies
		ORDER BY priority ASC, id ASC;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query policies: %w", err)
	}
	defer rows.Close()

	var policies []model.Policy
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, *policy)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate policies: %w", err)
	}
	if policies == nil {
		policies = []model.Policy{}
	}
	return policies, nil
}

func (p *Postgres) GetPolicyByID(ctx context.Context, id int64) (*model.Policy, error) {
	row := p.Pool.QueryRow(ctx, `
		SELECT id, name, condition, action, priority, created_at
		FROM policies
		WHERE id = $1;
	`, id)

	policy, err := scanPolicy(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("policy id=%d: %w", id, ErrNotFound)
	}
	return policy, err
}

func (p *Postgres) CreatePolicy(ctx context.Context, policy model.Policy) (int64, error) {
	conditionJSON, err := json.Marshal(policy.Condition)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal condition: %w", err)
	}
	actionJSON, err := json.Marshal(policy.Action)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal action: %w", err)
	}

	var id int64
	err = p.Pool.QueryRow(ctx, `
		INSERT INTO policies (name, condition, action, priority)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`, policy.Name, conditionJSON, actionJSON, policy.Priority).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert policy: %w", err)
	}
	return id, nil
}

func (p *Postgres) DeletePolicy(ctx context.Context, id int64) error {
	tag, err := p.Pool.Exec(ctx, `DELETE FROM policies WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete policy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("policy id=%d: %w", id, ErrNotFound)
	}
	return nil
}

func scanPolicy(row pgx.Row) (*model.Policy, error) {
	var policy model.Policy
	var conditionJSON, actionJSON []byte
	if err := row.Scan(&policy.ID, &policy.Name, &conditionJSON, &actionJSON, &policy.Priority, &policy.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan policy: %w", err)
	}
	if err := json.Unmarshal(conditionJSON, &policy.Condition); err != nil {
		return nil, fmt.Errorf("failed to unmarshal condition: %w", err)
	}
	if err := json.Unmarshal(actionJSON, &policy.Action); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action: %w", err)
	}
	return &policy, nil
}
