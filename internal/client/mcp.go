// 도메인 백엔드(MCP 서버)와 JSON-RPC 2.0 으로 통신하는 클라이언트
//
// 요청 형식:
//   - tools/call: {"jsonrpc":"2.0","method":"tools/call","params":{"name":..,"arguments":..},"id":N}
//   - Prometheus 는 tools/call 없이 메서드 이름을 직접 호출
//
// 전송 실패는 error 대신 {"status":"error","error":...} 맵으로 반환해서
// Router 가 도메인 구분 없이 같은 방식으로 분류할 수 있게 한다

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/infraai/backend/internal/model"
)

// ProbeKind - 백엔드별 생존 확인 방식
type ProbeKind int

const (
	// ProbeHealthEndpoint - GET {base}/health 200
	ProbeHealthEndpoint ProbeKind = iota
	// ProbeRoot - GET {base} 200
	ProbeRoot
	// ProbeInitialize - JSON-RPC initialize 응답에 serverInfo 포함
	ProbeInitialize
)

// MCPClientConfig - 도메인 백엔드 접속 정보
type MCPClientConfig struct {
	Domain        model.Domain
	BaseURL       string
	Endpoint      string
	Probe         ProbeKind
	CallTimeout   time.Duration
	HealthTimeout time.Duration
}

type MCPClient struct {
	domain        model.Domain
	baseURL       string
	endpoint      string
	probe         ProbeKind
	healthTimeout time.Duration
	http          *resty.Client
	requestID     atomic.Int64
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
}

func NewMCPClient(cfg MCPClientConfig) *MCPClient {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = 5 * time.Second
	}
	return &MCPClient{
		domain:        cfg.Domain,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		endpoint:      cfg.Endpoint,
		probe:         cfg.Probe,
		healthTimeout: cfg.HealthTimeout,
		http: resty.New().
			SetTimeout(cfg.CallTimeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
}

func (c *MCPClient) Domain() model.Domain {
	return c.domain
}

// Call - JSON-RPC 메서드 직접 호출
// 요청자의 취소는 전파하지 않고 호출 자체의 타임아웃만 적용
func (c *MCPClient) Call(ctx context.Context, method string, params any) map[string]any {
	if params == nil {
		params = map[string]any{}
	}
	payload := rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.requestID.Add(1),
	}

	resp, err := c.http.R().
		SetContext(context.WithoutCancel(ctx)).
		SetBody(payload).
		Post(c.baseURL + c.endpoint)
	if err != nil {
		return errorResult(method, err.Error())
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return errorResult(method, fmt.Sprintf("HTTP %d: %s", resp.StatusCode(), truncate(string(body), 200)))
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		res := errorResult(method, "Invalid JSON response")
		res["raw_response"] = truncate(string(body), 500)
		return res
	}
	return result
}

// CallTool - MCP tools/call 형식으로 호출
func (c *MCPClient) CallTool(ctx context.Context, name string, arguments map[string]any) map[string]any {
	if arguments == nil {
		arguments = map[string]any{}
	}
	return c.Call(ctx, "tools/call", map[string]any{
		"name":      name,
		"arguments": arguments,
	})
}

// Probe - 백엔드 생존 확인, 실패하면 원인 반환
func (c *MCPClient) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	switch c.probe {
	case ProbeInitialize:
		return c.probeInitialize(ctx)
	case ProbeRoot:
		return c.probeGET(ctx, c.baseURL)
	default:
		return c.probeGET(ctx, c.baseURL+"/health")
	}
}

func (c *MCPClient) probeGET(ctx context.Context, url string) error {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", url, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("health check returned HTTP %d", resp.StatusCode())
	}
	return nil
}

func (c *MCPClient) probeInitialize(ctx context.Context) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(rpcRequest{
			JSONRPC: "2.0",
			Method:  "initialize",
			Params: map[string]any{
				"protocolVersion": "2024-11-05",
				"capabilities":    map[string]any{},
				"clientInfo":      map[string]any{"name": "infraai-backend", "version": "1.0.0"},
			},
			ID: c.requestID.Add(1),
		}).
		Post(c.baseURL + c.endpoint)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("failed to initialize: HTTP %d", resp.StatusCode())
	}

	var out struct {
		Result struct {
			ServerInfo map[string]any `json:"serverInfo"`
		} `json:"result"`
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return fmt.Errorf("failed to parse initialize response: %w", err)
	}
	if out.Result.ServerInfo == nil {
		return fmt.Errorf("failed to initialize: missing serverInfo")
	}
	return nil
}

func errorResult(method, msg string) map[string]any {
	return map[string]any{
		"status": "error",
		"error":  msg,
		"method": method,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
