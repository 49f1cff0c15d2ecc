// 채팅 비즈니스 로직
//
// 처리 흐름:
//  1. 요청 검증 (prompt 필수, chatMode 는 chat | chat-with-infra)
//  2. session_id 가 없으면 새로 발급
//  3. 같은 세션의 요청은 세션 락으로 직렬화
//  4. 사용자 메시지 저장
//  5. 요청에 history 가 없으면 저장된 기록을 불러와 대화 맥락으로 사용
//  6. 추출 상태 머신 실행 후 답변 저장

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/infraai/backend/internal/agent"
	"github.com/infraai/backend/internal/model"
)

var ErrInvalidChatRequest = errors.New("invalid chat request")

const (
	chatContextLimit = 20
	chatHistoryLimit = 50
)

type chatEngine interface {
	Run(ctx context.Context, turn agent.Turn) (*agent.Outcome, error)
}

type chatRepo interface {
	SaveChatMessage(ctx context.Context, sessionID, role, content string) error
	GetChatHistory(ctx context.Context, sessionID string, limit int) ([]model.ChatHistoryEntry, error)
}

type ChatService struct {
	repo   chatRepo
	engine chatEngine
	log    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*sessionLock
}

// sessionLock - 대기 중인 요청이 없으면 맵에서 제거
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewChatService(repo chatRepo, engine chatEngine, log *zap.Logger) *ChatService {
	return &ChatService{repo: repo, engine: engine, log: log, sessions: map[string]*sessionLock{}}
}

func (s *ChatService) Chat(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", ErrInvalidChatRequest)
	}

	mode := req.ChatMode
	switch mode {
	case "":
		mode = model.ChatModePlain
	case model.ChatModePlain, model.ChatModeInfra:
	default:
		return nil, fmt.Errorf("%w: unknown chatMode %q", ErrInvalidChatRequest, mode)
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	unlock := s.lockSession(sessionID)
	defer unlock()

	history := req.History
	if len(history) == 0 {
		history = s.loadHistory(ctx, sessionID)
	}

	s.save(ctx, sessionID, model.RoleUser, prompt)

	outcome, err := s.engine.Run(ctx, agent.Turn{Mode: mode, History: history, Input: prompt})
	if err != nil {
		return nil, err
	}

	s.save(ctx, sessionID, model.RoleAssistant, outcome.Answer)
	if len(outcome.Calls) > 0 {
		s.log.Info("chat turn dispatched",
			zap.String("session_id", sessionID),
			zap.String("mode", string(mode)),
			zap.String("detector", outcome.Detector),
			zap.Int("calls", len(outcome.Calls)),
		)
	}

	return &model.ChatResponse{
		Status:    "success",
		Answer:    outcome.Answer,
		SessionID: sessionID,
	}, nil
}

// History - 세션의 최근 메시지, 오래된 순
func (s *ChatService) History(ctx context.Context, sessionID string) ([]model.ChatHistoryEntry, error) {
	return s.repo.GetChatHistory(ctx, sessionID, chatHistoryLimit)
}

func (s *ChatService) lockSession(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.sessions[sessionID]
	if !ok {
		l = &sessionLock{}
		s.sessions[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.sessions, sessionID)
		}
		s.mu.Unlock()
	}
}

func (s *ChatService) loadHistory(ctx context.Context, sessionID string) []model.ChatMessage {
	entries, err := s.repo.GetChatHistory(ctx, sessionID, chatContextLimit)
	if err != nil {
		s.log.Warn("failed to load chat history", zap.String("session_id", sessionID), zap.Error(err))
		return nil
	}
	history := make([]model.ChatMessage, 0, len(entries))
	for _, e := range entries {
		history = append(history, model.ChatMessage{Role: e.Role, Content: e.Content})
	}
	return history
}

// save - 기록 저장 실패는 답변을 막지 않음
func (s *ChatService) save(ctx context.Context, sessionID, role, content string) {
	if err := s.repo.SaveChatMessage(ctx, sessionID, role, content); err != nil {
		s.log.Warn("failed to save chat message",
			zap.String("session_id", sessionID),
			zap.String("role", role),
			zap.Error(err),
		)
	}
}
