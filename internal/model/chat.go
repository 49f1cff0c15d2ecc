package model

import "time"

// ChatMode - chat: 일반 어시스턴트, chat-with-infra: 인프라 명령 추출
type ChatMode string

const (
	ChatModePlain ChatMode = "chat"
	ChatModeInfra ChatMode = "chat-with-infra"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	SessionID string        `json:"session_id"`
	Prompt    string        `json:"prompt"`
	ChatMode  ChatMode      `json:"chatMode"`
	History   []ChatMessage `json:"history"`
}

type ChatResponse struct {
	Status    string `json:"status"`
	Answer    string `json:"response"`
	SessionID string `json:"session_id"`
}

// ChatHistoryEntry - chat_history 테이블 한 행
type ChatHistoryEntry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatHistoryResponse struct {
	Status string             `json:"status"`
	Data   []ChatHistoryEntry `json:"data"`
}
