package db

import (
	"context"
	"fmt"

	"github.com/infraai/backend/internal/model"
)

// EnsureJobLogSchema - job_logs 테이블 생성 (없으면)
func (p *Postgres) EnsureJobLogSchema(ctx context.Context) error {
	_, err := p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS job_logs (
			id         SERIAL       PRIMARY KEY,
			action     TEXT         NOT NULL,
			target     TEXT         NOT NULL DEFAULT 'unknown',
			status     TEXT         NOT NULL,
			result     TEXT         NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create job_logs table: %w", err)
	}
	return nil
}

// AppendJobLog - 작업 로그는 추가만 가능
func (p *Postgres) AppendJobLog(ctx context.Context, entry model.JobLog) (int64, error) {
	var id int64
	err := p.Pool.QueryRow(ctx, `
		INSERT INTO job_logs (action, target, status, result)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`, entry.Action, entry.Target, entry.Status, entry.Result).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert job log: %w", err)
	}
	return id, nil
}

// ListJobLogs - 최신순 limit 건
func (p *Postgres) ListJobLogs(ctx context.Context, limit int) ([]model.JobLog, error) {
	rows, err := p.Pool.Query(ctx, `
		SELECT id, action, target, status, result, created_at
		FROM job_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1;
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query job logs: %w", err)
	}
	defer rows.Close()

	var logs []model.JobLog
	for rows.Next() {
		var entry model.JobLog
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.Target, &entry.Status, &entry.Result, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job log: %w", err)
		}
		logs = append(logs, entry)
	}
	if logs == nil {
		logs = []model.JobLog{}
	}
	return logs, nil
}
