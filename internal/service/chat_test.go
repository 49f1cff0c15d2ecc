package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/infraai/backend/internal/agent"
	"github.com/infraai/backend/internal/model"
)

type memoryChatRepo struct {
	mu       sync.Mutex
	messages []model.ChatHistoryEntry
}

func (m *memoryChatRepo) SaveChatMessage(_ context.Context, sessionID, role, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, model.ChatHistoryEntry{SessionID: sessionID, Role: role, Content: content})
	return nil
}

func (m *memoryChatRepo) GetChatHistory(_ context.Context, sessionID string, limit int) ([]model.ChatHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ChatHistoryEntry
	for _, msg := range m.messages {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type echoEngine struct {
	mu    sync.Mutex
	turns []agent.Turn
	err   error
}

func (e *echoEngine) Run(_ context.Context, turn agent.Turn) (*agent.Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.turns = append(e.turns, turn)
	if e.err != nil {
		return nil, e.err
	}
	return &agent.Outcome{Answer: "echo: " + turn.Input}, nil
}

func TestChatAssignsSessionAndPersists(t *testing.T) {
	repo := &memoryChatRepo{}
	engine := &echoEngine{}
	svc := NewChatService(repo, engine, zap.NewNop())

	resp, err := svc.Chat(context.Background(), model.ChatRequest{Prompt: " hello "})
	require.NoError(t, err)

	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "echo: hello", resp.Answer)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, model.ChatModePlain, engine.turns[0].Mode)

	history, err := svc.History(context.Background(), resp.SessionID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.RoleUser, history[0].Role)
	assert.Equal(t, model.RoleAssistant, history[1].Role)
}

func TestChatUsesStoredHistoryWhenRequestHasNone(t *testing.T) {
	repo := &memoryChatRepo{}
	engine := &echoEngine{}
	svc := NewChatService(repo, engine, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Chat(ctx, model.ChatRequest{SessionID: "s1", Prompt: "first"})
	require.NoError(t, err)
	_, err = svc.Chat(ctx, model.ChatRequest{SessionID: "s1", Prompt: "second", ChatMode: model.ChatModeInfra})
	require.NoError(t, err)

	second := engine.turns[1]
	assert.Equal(t, model.ChatModeInfra, second.Mode)
	assert.Equal(t, []model.ChatMessage{
		{Role: model.RoleUser, Content: "first"},
		{Role: model.RoleAssistant, Content: "echo: first"},
	}, second.History)

	_, err = svc.Chat(ctx, model.ChatRequest{
		SessionID: "s1",
		Prompt:    "third",
		History:   []model.ChatMessage{{Role: model.RoleUser, Content: "client side"}},
	})
	require.NoError(t, err)
	assert.Len(t, engine.turns[2].History, 1)
}

func TestChatValidation(t *testing.T) {
	svc := NewChatService(&memoryChatRepo{}, &echoEngine{}, zap.NewNop())

	_, err := svc.Chat(context.Background(), model.ChatRequest{Prompt: "  "})
	assert.ErrorIs(t, err, ErrInvalidChatRequest)

	_, err = svc.Chat(context.Background(), model.ChatRequest{Prompt: "hi", ChatMode: "agentic"})
	assert.ErrorIs(t, err, ErrInvalidChatRequest)
}

func TestChatEngineErrorKeepsUserMessage(t *testing.T) {
	repo := &memoryChatRepo{}
	svc := NewChatService(repo, &echoEngine{err: errors.New("llm down")}, zap.NewNop())

	_, err := svc.Chat(context.Background(), model.ChatRequest{SessionID: "s", Prompt: "hi"})
	assert.ErrorContains(t, err, "llm down")
	require.Len(t, repo.messages, 1)
	assert.Equal(t, model.RoleUser, repo.messages[0].Role)
}

type stubJobs struct{ limit int }

func (s *stubJobs) ListJobLogs(_ context.Context, limit int) ([]model.JobLog, error) {
	s.limit = limit
	return nil, nil
}

func TestChatSessionLocksAreReleased(t *testing.T) {
	svc := NewChatService(&memoryChatRepo{}, &echoEngine{}, zap.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessionID := "s-shared"
			if i%2 == 0 {
				sessionID = ""
			}
			_, err := svc.Chat(ctx, model.ChatRequest{SessionID: sessionID, Prompt: "hi"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Empty(t, svc.sessions)
}

func TestListJobsClampsLimit(t *testing.T) {
	jobs := &stubJobs{}
	svc := NewInventoryService(jobs, nil, nil, "")

	_, _ = svc.ListJobs(context.Background(), 0)
	assert.Equal(t, 50, jobs.limit)
	_, _ = svc.ListJobs(context.Background(), 10000)
	assert.Equal(t, 500, jobs.limit)
	_, _ = svc.ListJobs(context.Background(), 7)
	assert.Equal(t, 7, jobs.limit)
}
