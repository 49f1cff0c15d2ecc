package client

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/infraai/backend/internal/config"
)

// GeminiClient - LLM_PROVIDER=gemini 일 때 사용하는 텍스트 생성 클라이언트
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, cfg config.LLMConfig) (*GeminiClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("missing AI_API_KEY")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.GeminiModel}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	res, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if res == nil || len(res.Candidates) == 0 {
		return "", fmt.Errorf("empty generation result")
	}
	return strings.TrimSpace(res.Text()), nil
}
