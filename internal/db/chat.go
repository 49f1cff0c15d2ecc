package db

import (
	"context"
	"fmt"

	"github.com/infraai/backend/internal/model"
)

// EnsureChatSchema - chat_history 테이블 생성 (없으면)
func (p *Postgres) EnsureChatSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS chat_history (
			id         SERIAL       PRIMARY KEY,
			session_id TEXT         NOT NULL,
			role       TEXT         NOT NULL,
			content    TEXT         NOT NULL,
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS chat_history_session_idx ON chat_history(session_id, id)`,
	}

	for _, query := range queries {
		if _, err := p.Pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to create chat_history table: %w", err)
		}
	}
	return nil
}

func (p *Postgres) SaveChatMessage(ctx context.Context, sessionID, role, content string) error {
	_, err := p.Pool.Exec(ctx, `
		INSERT INTO chat_history (session_id, role, content)
		VALUES ($1, $2, $3);
	`, sessionID, role, content)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

// GetChatHistory - 세션의 최근 limit 건을 오래된 순서로 반환
func (p *Postgres) GetChatHistory(ctx context.Context, sessionID string, limit int) ([]model.ChatHistoryEntry, error) {
	rows, err := p.Pool.Query(ctx, `
		SELECT id, session_id, role, content, created_at
		FROM (
			SELECT id, session_id, role, content, created_at
			FROM chat_history
			WHERE session_id = $1
			ORDER BY id DESC
			LIMIT $2
		) recent
		ORDER BY id ASC;
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}
	defer rows.Close()

	var history []model.ChatHistoryEntry
	for rows.Next() {
		var entry model.ChatHistoryEntry
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Role, &entry.Content, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		history = append(history, entry)
	}
	if history == nil {
		history = []model.ChatHistoryEntry{}
	}
	return history, nil
}
