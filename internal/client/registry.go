// 도메인별 백엔드 클라이언트 레지스트리
//
// 프로세스당 도메인마다 하나의 클라이언트를 지연 생성하고,
// 생존 확인이 성공한 동안만 캐시한다. 확인에 실패하면 캐시를 버려서
// 다음 호출에서 다시 생성을 시도한다.

package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/infraai/backend/internal/model"
)

type ConnState string

const (
	StateHealthy     ConnState = "healthy"
	StateUnavailable ConnState = "unavailable"
)

// Factory - 도메인 클라이언트 생성 함수
type Factory func() *MCPClient

type connection struct {
	client          *MCPClient
	lastHealthCheck time.Time
	state           ConnState
}

// ConnectionStatus - /health 응답 등에 노출되는 상태
type ConnectionStatus struct {
	State           ConnState `json:"state"`
	LastHealthCheck time.Time `json:"last_health_check"`
	LastError       string    `json:"last_error,omitempty"`
}

type Registry struct {
	mu        sync.Mutex
	factories map[model.Domain]Factory
	conns     map[model.Domain]*connection
	status    map[model.Domain]ConnectionStatus
	group     singleflight.Group
	log       *zap.Logger
	now       func() time.Time
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		factories: map[model.Domain]Factory{},
		conns:     map[model.Domain]*connection{},
		status:    map[model.Domain]ConnectionStatus{},
		log:       log,
		now:       time.Now,
	}
}

func (r *Registry) Register(domain model.Domain, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[domain] = factory
	delete(r.conns, domain)
}

// Acquire - 캐시된 정상 클라이언트 반환, 없으면 생성 후 생존 확인
func (r *Registry) Acquire(ctx context.Context, domain model.Domain) (*MCPClient, error) {
	r.mu.Lock()
	if conn, ok := r.conns[domain]; ok && conn.state == StateHealthy {
		r.mu.Unlock()
		return conn.client, nil
	}
	r.mu.Unlock()

	return r.connect(ctx, domain, false)
}

// AcquireChecked - 매 호출마다 생존 확인 (Kubernetes)
func (r *Registry) AcquireChecked(ctx context.Context, domain model.Domain) (*MCPClient, error) {
	return r.connect(ctx, domain, true)
}

func (r *Registry) connect(ctx context.Context, domain model.Domain, reuse bool) (*MCPClient, error) {
	v, err, _ := r.group.Do(string(domain), func() (any, error) {
		r.mu.Lock()
		factory, ok := r.factories[domain]
		var client *MCPClient
		if conn, cached := r.conns[domain]; cached && reuse {
			client = conn.client
		}
		r.mu.Unlock()
		if !ok {
			return nil, fmt.Errorf("no backend registered for domain %s", domain)
		}
		if client == nil {
			client = factory()
		}

		probeErr := client.Probe(ctx)
		checkedAt := r.now()

		r.mu.Lock()
		defer r.mu.Unlock()
		if probeErr != nil {
			delete(r.conns, domain)
			r.status[domain] = ConnectionStatus{State: StateUnavailable, LastHealthCheck: checkedAt, LastError: probeErr.Error()}
			r.log.Warn("backend liveness check failed",
				zap.String("domain", string(domain)),
				zap.Error(probeErr),
			)
			return nil, fmt.Errorf("%s MCP server not accessible: %w", domain.Title(), probeErr)
		}
		r.conns[domain] = &connection{client: client, lastHealthCheck: checkedAt, state: StateHealthy}
		r.status[domain] = ConnectionStatus{State: StateHealthy, LastHealthCheck: checkedAt}
		return client, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*MCPClient), nil
}

// Status - 도메인별 마지막 생존 확인 결과
func (r *Registry) Status() map[model.Domain]ConnectionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[model.Domain]ConnectionStatus, len(r.status))
	for domain, st := range r.status {
		out[domain] = st
	}
	return out
}
