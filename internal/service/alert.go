// Alert 처리 비즈니스 로직 정의
// handler 에서 받은 웹훅을 정책과 대조하고 매칭된 조치를 Redis 큐에 적재
//
// 처리 흐름:
//  1. 정책 저장소에서 전체 정책 조회
//  2. Evaluate 로 첫 번째 매칭 (알림, 정책) 쌍 탐색
//  3. 매칭되면 ActionDescriptor 를 JSON 으로 큐 tail 에 추가
//  4. 매칭이 없으면 아무것도 적재하지 않음
//
// 조치 실행은 워커 프로세스의 몫이며 여기서는 기다리지 않음

package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/infraai/backend/internal/metrics"
	"github.com/infraai/backend/internal/model"
)

type policyReader interface {
	ListPolicies(ctx context.Context) ([]model.Policy, error)
}

type actionQueue interface {
	Push(ctx context.Context, payload []byte) error
}

// AlertService 구조체 정의
type AlertService struct {
	policies policyReader
	queue    actionQueue
	log      *zap.Logger
}

// AlertService 객체 생성
func NewAlertService(policies policyReader, queue actionQueue, log *zap.Logger) *AlertService {
	return &AlertService{policies: policies, queue: queue, log: log}
}

// ProcessWebhook - 매칭된 조치를 반환, 매칭이 없으면 nil
func (s *AlertService) ProcessWebhook(ctx context.Context, webhook model.AlertmanagerWebhook) (*model.ActionDescriptor, error) {
	policies, err := s.policies.ListPolicies(ctx)
	if err != nil {
		metrics.AlertsEvaluated.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	action, ok := Evaluate(policies, webhook)
	if !ok {
		metrics.AlertsEvaluated.WithLabelValues("no_action").Inc()
		s.log.Debug("no policy matched",
			zap.Int("alerts", len(webhook.Alerts)),
			zap.Int("policies", len(policies)),
		)
		return nil, nil
	}

	payload, err := json.Marshal(action)
	if err != nil {
		metrics.AlertsEvaluated.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to encode action: %w", err)
	}
	if err := s.queue.Push(ctx, payload); err != nil {
		metrics.AlertsEvaluated.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.AlertsEvaluated.WithLabelValues("enqueued").Inc()
	s.log.Info("remediation enqueued",
		zap.String("policy", action.PolicyName),
		zap.String("tool", action.Tool),
		zap.String("idempotency_key", action.IdempotencyKey),
	)
	return action, nil
}
