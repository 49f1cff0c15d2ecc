// Ollama 텍스트 생성 클라이언트
//
// 환경변수:
//   - OLLAMA_API_URL (default: http://localhost:11434)
//   - OLLAMA_MODEL (default: llama2)
//
// POST /api/generate {"model":..,"prompt":..,"stream":false} -> {"response":..}

package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/infraai/backend/internal/config"
)

type OllamaClient struct {
	baseURL string
	model   string
	http    *resty.Client
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func NewOllamaClient(cfg config.LLMConfig) *OllamaClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OllamaClient{
		baseURL: strings.TrimRight(cfg.OllamaURL, "/"),
		model:   cfg.OllamaModel,
		http:    resty.New().SetTimeout(timeout),
	}
}

func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	var out ollamaGenerateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(ollamaGenerateRequest{Model: c.model, Prompt: prompt, Stream: false}).
		SetResult(&out).
		Post(c.baseURL + "/api/generate")
	if err != nil {
		return "", fmt.Errorf("failed to send request to ollama: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}
	return strings.TrimSpace(out.Response), nil
}
