// Command Router
//
// Command 하나를 (domain, action) 테이블에서 찾아 백엔드 호출 한 번으로 변환한다.
// 결과는 항상 문자열이며 에러도 설명 문자열로 반환한다 (호출자에게 panic/error 를 넘기지 않음).
//
// 처리 흐름:
//  1. (domain, action) 으로 route 조회, 없으면 도메인 fallback 또는 "Command not supported"
//  2. route 의 파라미터 선언으로 Command 필드를 백엔드 인자로 바인딩 (필수값 검증, 기본값, 타입 변환)
//  3. route 핸들러가 레지스트리에서 클라이언트를 얻어 호출
//  4. 서버 접근 불가 응답은 공통 메시지로 변환

package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/infraai/backend/internal/client"
	"github.com/infraai/backend/internal/metrics"
	"github.com/infraai/backend/internal/model"
)

// Scanner - network 도메인의 서브넷 탐색
type Scanner interface {
	Scan(ctx context.Context, subnet string) (*model.ScanResult, error)
}

type routeKey struct {
	domain model.Domain
	action string
}

type handlerFunc func(ctx context.Context, cmd model.Command, args map[string]any) string

type route struct {
	params []param
	handle handlerFunc
}

// fallbackFunc - 테이블에 없는 action 을 도메인 단위로 처리, 처리하지 않으면 false
type fallbackFunc func(ctx context.Context, cmd model.Command) (string, bool)

type Options struct {
	Registry        *client.Registry
	Scanner         Scanner
	DefaultSubnet   string
	PrometheusTools client.Capabilities
	GrafanaTools    client.Capabilities
	Logger          *zap.Logger
}

type Router struct {
	registry      *client.Registry
	scanner       Scanner
	defaultSubnet string
	promTools     client.Capabilities
	grafanaTools  client.Capabilities
	log           *zap.Logger
	routes        map[routeKey]route
	fallbacks     map[model.Domain]fallbackFunc
}

func New(opts Options) *Router {
	if opts.PrometheusTools == nil {
		opts.PrometheusTools = client.DefaultPrometheusCapabilities()
	}
	if opts.GrafanaTools == nil {
		opts.GrafanaTools = client.DefaultGrafanaCapabilities()
	}
	if opts.DefaultSubnet == "" {
		opts.DefaultSubnet = "192.168.1.0/24"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := &Router{
		registry:      opts.Registry,
		scanner:       opts.Scanner,
		defaultSubnet: opts.DefaultSubnet,
		promTools:     opts.PrometheusTools,
		grafanaTools:  opts.GrafanaTools,
		log:           opts.Logger,
		routes:        map[routeKey]route{},
		fallbacks:     map[model.Domain]fallbackFunc{},
	}
	r.registerKubernetes()
	r.registerPrometheus()
	r.registerGrafana()
	r.registerVMware()
	r.registerNetwork()
	return r
}

func (r *Router) add(domain model.Domain, action string, handle handlerFunc, params ...param) {
	r.routes[routeKey{domain: domain, action: action}] = route{params: params, handle: handle}
}

// Execute - Command 를 실행하고 결과 문자열 반환
func (r *Router) Execute(ctx context.Context, cmd model.Command) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("router panic", zap.String("domain", string(cmd.Domain)), zap.Any("panic", rec))
			out = fmt.Sprintf("Error executing command: %v", rec)
		}
	}()

	cmd.Domain = model.Domain(strings.ToLower(strings.TrimSpace(string(cmd.Domain))))
	cmd.Action = strings.ToLower(strings.TrimSpace(cmd.Action))

	rt, ok := r.routes[routeKey{domain: cmd.Domain, action: cmd.Action}]
	if !ok {
		if fallback, has := r.fallbacks[cmd.Domain]; has {
			if res, handled := fallback(ctx, cmd); handled {
				return res
			}
		}
		return "Command not supported: " + describe(cmd)
	}

	args, err := bind(cmd, rt.params)
	if err != nil {
		return "Error: " + err.Error()
	}

	r.log.Debug("dispatching command",
		zap.String("domain", string(cmd.Domain)),
		zap.String("action", cmd.Action),
		zap.String("name", cmd.Name),
	)
	return rt.handle(ctx, cmd, args)
}

// render - 백엔드 응답을 결과 문자열로 변환
func (r *Router) render(domain model.Domain, res map[string]any) string {
	if IsServerUnavailable(res) {
		metrics.BackendCalls.WithLabelValues(string(domain), "unavailable").Inc()
		r.log.Warn("backend unavailable",
			zap.String("domain", string(domain)),
			zap.String("error", model.StringValue(res["error"])),
		)
		return unavailableMessage(domain)
	}

	outcome := "ok"
	if model.StringValue(res["status"]) == "error" || res["error"] != nil {
		outcome = "error"
	}
	metrics.BackendCalls.WithLabelValues(string(domain), outcome).Inc()

	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Sprintf("Error executing command: %v", err)
	}
	return string(data)
}

func (r *Router) acquireFailed(domain model.Domain, err error) string {
	metrics.BackendCalls.WithLabelValues(string(domain), "unavailable").Inc()
	return "Error: " + err.Error()
}

func unavailableMessage(domain model.Domain) string {
	return fmt.Sprintf("Error: %s MCP server is not accessible. Please check server configuration and connectivity.", domain.Title())
}

func describe(cmd model.Command) string {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Sprintf("%s/%s", cmd.Domain, cmd.Action)
	}
	return string(data)
}

// IsFailure - Execute 결과 문자열이 실패를 나타내는지
func IsFailure(out string) bool {
	trimmed := strings.TrimSpace(out)
	if strings.HasPrefix(trimmed, "Error") || strings.HasPrefix(trimmed, "Command not supported") {
		return true
	}
	var res map[string]any
	if err := json.Unmarshal([]byte(trimmed), &res); err != nil {
		return false
	}
	if model.StringValue(res["status"]) == "error" || res["error"] != nil {
		return true
	}
	if result, ok := res["result"].(map[string]any); ok {
		if isErr, _ := result["isError"].(bool); isErr {
			return true
		}
	}
	return false
}
