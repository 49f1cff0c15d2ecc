// 자동복구 워커
//
// 처리 흐름:
//  1. 시작 시 이전 워커가 처리 중에 남긴 메시지를 큐로 복구
//  2. 최대 PopTimeout 동안 대기하며 메시지 하나를 꺼냄
//  3. JSON 파싱 실패 -> 로그만 남기고 폐기
//  4. 도구 조회 -> 없으면 error 작업 로그
//  5. 멱등성이 없는 도구는 idempotency key 를 선점, 이미 있으면 skipped
//  6. 핸들러 실행 (panic/에러는 error 작업 로그로 변환)
//  7. 작업 로그 기록 후 Ack (종료 신호가 와도 꺼낸 메시지는 여기까지 완료)
//
// 메시지 하나를 처리하는 동안 다음 메시지는 꺼내지 않음
// 실패한 실행은 재시도하지 않음

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/infraai/backend/internal/metrics"
	"github.com/infraai/backend/internal/model"
	"github.com/infraai/backend/internal/queue"
)

type workerQueue interface {
	Pop(ctx context.Context, timeout time.Duration) (string, error)
	Ack(ctx context.Context, payload string) error
	Recover(ctx context.Context) (int, error)
}

type jobLogRepo interface {
	AppendJobLog(ctx context.Context, entry model.JobLog) (int64, error)
}

type idempotencyGuard interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// ToolResult - 핸들러 실행 결과, Status 가 success 가 아니면 error 로 기록
type ToolResult struct {
	Status string
	Output string
}

type ToolHandler func(ctx context.Context, params map[string]any) (ToolResult, error)

// Tool - 워커 도구 테이블 항목
type Tool struct {
	Handler ToolHandler

	// 같은 알림에 대해 두 번 실행되면 안 되는 도구 (VM 생성, 스냅샷 등)
	NonIdempotent bool
}

type Worker struct {
	queue      workerQueue
	logs       jobLogRepo
	guard      idempotencyGuard
	tools      map[string]Tool
	popTimeout time.Duration
	log        *zap.Logger
}

func NewWorker(q workerQueue, logs jobLogRepo, guard idempotencyGuard, tools map[string]Tool, popTimeout time.Duration, log *zap.Logger) *Worker {
	if popTimeout <= 0 {
		popTimeout = time.Second
	}
	return &Worker{
		queue:      q,
		logs:       logs,
		guard:      guard,
		tools:      tools,
		popTimeout: popTimeout,
		log:        log,
	}
}

// Run - ctx 가 취소될 때까지 큐를 소비
func (w *Worker) Run(ctx context.Context) error {
	recovered, err := w.queue.Recover(ctx)
	if err != nil {
		w.log.Warn("failed to recover in-flight actions", zap.Error(err))
	} else if recovered > 0 {
		w.log.Info("recovered in-flight actions", zap.Int("count", recovered))
	}

	w.log.Info("remediation worker started", zap.Int("tools", len(w.tools)))
	for {
		if ctx.Err() != nil {
			w.log.Info("remediation worker stopped")
			return nil
		}

		payload, err := w.queue.Pop(ctx, w.popTimeout)
		if errors.Is(err, queue.ErrEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.log.Error("failed to pop action", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(w.popTimeout):
			}
			continue
		}

		// 꺼낸 메시지는 종료 신호와 무관하게 작업 로그까지 끝까지 처리
		w.Handle(context.WithoutCancel(ctx), payload)

		if err := w.queue.Ack(context.WithoutCancel(ctx), payload); err != nil {
			w.log.Error("failed to ack action", zap.Error(err))
		}
	}
}

// Handle - 메시지 하나 처리, 기록한 작업 로그 반환 (파싱 실패 시 nil)
func (w *Worker) Handle(ctx context.Context, payload string) *model.JobLog {
	var action model.ActionDescriptor
	if err := json.Unmarshal([]byte(payload), &action); err != nil {
		w.log.Warn("dropping malformed action", zap.Error(err), zap.String("payload", truncate(payload, 200)))
		return nil
	}

	entry := model.JobLog{
		Action: action.Tool,
		Target: targetOf(action.Params),
	}

	tool, ok := w.tools[action.Tool]
	switch {
	case !ok:
		entry.Status = model.JobStatusError
		entry.Result = fmt.Sprintf("Unknown tool: %s", action.Tool)
	case tool.NonIdempotent && action.IdempotencyKey != "" && w.guard != nil:
		claimed, err := w.guard.Claim(ctx, action.IdempotencyKey)
		switch {
		case err != nil:
			entry.Status = model.JobStatusError
			entry.Result = fmt.Sprintf("Error executing %s: %v", action.Tool, err)
		case !claimed:
			entry.Status = model.JobStatusSkipped
			entry.Result = fmt.Sprintf("Duplicate execution suppressed (idempotency key %s)", action.IdempotencyKey)
		default:
			// 백엔드 호출 전에 실패했으면 키를 반환해 다음 알림에서 실행 가능
			if err := w.execute(ctx, tool, action, &entry); errors.Is(err, errMissingParameter) {
				if err := w.guard.Release(ctx, action.IdempotencyKey); err != nil {
					w.log.Warn("failed to release idempotency key", zap.String("key", action.IdempotencyKey), zap.Error(err))
				}
			}
		}
	default:
		_ = w.execute(ctx, tool, action, &entry)
	}

	if _, err := w.logs.AppendJobLog(ctx, entry); err != nil {
		w.log.Error("failed to write job log", zap.String("tool", action.Tool), zap.Error(err))
	}
	metrics.RemediationJobs.WithLabelValues(action.Tool, entry.Status).Inc()
	w.log.Info("remediation executed",
		zap.String("tool", action.Tool),
		zap.String("target", entry.Target),
		zap.String("status", entry.Status),
		zap.String("policy", action.PolicyName),
	)
	return &entry
}

// execute - 핸들러 에러를 그대로 반환
func (w *Worker) execute(ctx context.Context, tool Tool, action model.ActionDescriptor, entry *model.JobLog) error {
	params, _ := model.DeepCopy(action.Params).(map[string]any)
	if params == nil {
		params = map[string]any{}
	}

	res, err := invoke(ctx, tool.Handler, params)
	if err != nil {
		entry.Status = model.JobStatusError
		entry.Result = fmt.Sprintf("Error executing %s: %v", action.Tool, err)
		return err
	}
	entry.Result = res.Output
	if res.Status == model.JobStatusSuccess {
		entry.Status = model.JobStatusSuccess
	} else {
		entry.Status = model.JobStatusError
	}
	return nil
}

func invoke(ctx context.Context, handler ToolHandler, params map[string]any) (res ToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return handler(ctx, params)
}

var targetKeys = []string{"vm_name", "pod_name", "deployment_name", "name"}

// targetOf - 대상 이름 키가 없으면 unknown
func targetOf(params map[string]any) string {
	for _, key := range targetKeys {
		if v := model.StringValue(params[key]); v != "" {
			return v
		}
	}
	return "unknown"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
