package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/infraai/backend/internal/config"
	"github.com/infraai/backend/internal/model"
	"github.com/infraai/backend/internal/queue"
)

type fakeJobLogs struct {
	mu      sync.Mutex
	entries []model.JobLog
}

// AppendJobLog - pgx 처럼 취소된 ctx 에서는 실패
func (f *fakeJobLogs) AppendJobLog(ctx context.Context, entry model.JobLog) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return int64(len(f.entries)), nil
}

func (f *fakeJobLogs) snapshot() []model.JobLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.JobLog(nil), f.entries...)
}

// fakeRunner - Router 대신 받은 명령을 기록하고 고정 출력 반환
type fakeRunner struct {
	mu       sync.Mutex
	commands []model.Command
	outputs  map[string]string
}

func (f *fakeRunner) Execute(_ context.Context, cmd model.Command) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, cmd)
	if out, ok := f.outputs[string(cmd.Domain)+"."+cmd.Action]; ok {
		return out
	}
	return `{"result":"ok"}`
}

func (f *fakeRunner) executed() []model.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Command(nil), f.commands...)
}

type fakePolicies struct {
	policies []model.Policy
	err      error
}

func (f *fakePolicies) ListPolicies(context.Context) ([]model.Policy, error) {
	return f.policies, f.err
}

func setupWorker(t *testing.T, runner *fakeRunner) (*Worker, *queue.RedisQueue, *fakeJobLogs) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := queue.NewRedisClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	q := queue.NewRedisQueue(client, "remediation_queue", "")
	logs := &fakeJobLogs{}
	guard := queue.NewIdempotency(client, time.Hour)
	w := NewWorker(q, logs, guard, NewToolTable(runner), time.Second, zap.NewNop())
	return w, q, logs
}

func TestWorkerHandleSuccess(t *testing.T) {
	runner := &fakeRunner{}
	w, _, logs := setupWorker(t, runner)

	entry := w.Handle(context.Background(), `{"tool":"restart_pod","params":{"pod_name":"web-1","namespace":"prod"},"policy_name":"p","alert_labels":{}}`)
	require.NotNil(t, entry)

	assert.Equal(t, model.JobStatusSuccess, entry.Status)
	assert.Equal(t, "restart_pod", entry.Action)
	assert.Equal(t, "web-1", entry.Target)
	assert.Len(t, logs.snapshot(), 1)

	cmds := runner.executed()
	require.Len(t, cmds, 1)
	assert.Equal(t, model.DomainKubernetes, cmds[0].Domain)
	assert.Equal(t, "delete", cmds[0].Action)
	assert.Equal(t, "pods", cmds[0].Resource)
	assert.Equal(t, "prod", cmds[0].Namespace)
}

func TestWorkerHandleUnknownTool(t *testing.T) {
	runner := &fakeRunner{}
	w, _, _ := setupWorker(t, runner)

	entry := w.Handle(context.Background(), `{"tool":"reboot_datacenter","params":{}}`)
	require.NotNil(t, entry)

	assert.Equal(t, model.JobStatusError, entry.Status)
	assert.Equal(t, "Unknown tool: reboot_datacenter", entry.Result)
	assert.Equal(t, "unknown", entry.Target)
	assert.Empty(t, runner.executed())
}

func TestWorkerHandleMalformedPayload(t *testing.T) {
	w, _, logs := setupWorker(t, &fakeRunner{})

	assert.Nil(t, w.Handle(context.Background(), `{not json`))
	assert.Empty(t, logs.snapshot())
}

func TestWorkerHandleRouterFailure(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"kubernetes.restart": "Error: Kubernetes MCP server is not accessible. Please check server configuration and connectivity.",
	}}
	w, _, _ := setupWorker(t, runner)

	entry := w.Handle(context.Background(), `{"tool":"restart_deployment","params":{"deployment_name":"api"}}`)
	require.NotNil(t, entry)
	assert.Equal(t, model.JobStatusError, entry.Status)
	assert.Contains(t, entry.Result, "not accessible")
}

func TestWorkerHandleMissingParameter(t *testing.T) {
	w, _, _ := setupWorker(t, &fakeRunner{})

	entry := w.Handle(context.Background(), `{"tool":"scale_deployment","params":{"deployment_name":"api"}}`)
	require.NotNil(t, entry)
	assert.Equal(t, model.JobStatusError, entry.Status)
	assert.Equal(t, `Error executing scale_deployment: missing required parameter "replicas"`, entry.Result)
}

func TestWorkerRecoversHandlerPanic(t *testing.T) {
	logs := &fakeJobLogs{}
	tools := map[string]Tool{
		"boom": {Handler: func(context.Context, map[string]any) (ToolResult, error) {
			panic("kaboom")
		}},
	}
	w := NewWorker(nil, logs, nil, tools, time.Second, zap.NewNop())

	entry := w.Handle(context.Background(), `{"tool":"boom","params":{"name":"x"}}`)
	require.NotNil(t, entry)
	assert.Equal(t, model.JobStatusError, entry.Status)
	assert.Equal(t, "Error executing boom: kaboom", entry.Result)
	assert.Equal(t, "x", entry.Target)
}

func TestWorkerHandlerErrorStatus(t *testing.T) {
	tools := map[string]Tool{
		"fails": {Handler: func(context.Context, map[string]any) (ToolResult, error) {
			return ToolResult{}, errors.New("backend down")
		}},
		"soft": {Handler: func(context.Context, map[string]any) (ToolResult, error) {
			return ToolResult{Status: "error", Output: "nope"}, nil
		}},
	}
	w := NewWorker(nil, &fakeJobLogs{}, nil, tools, time.Second, zap.NewNop())

	entry := w.Handle(context.Background(), `{"tool":"fails"}`)
	assert.Equal(t, "Error executing fails: backend down", entry.Result)
	assert.Equal(t, model.JobStatusError, entry.Status)

	entry = w.Handle(context.Background(), `{"tool":"soft"}`)
	assert.Equal(t, model.JobStatusError, entry.Status)
	assert.Equal(t, "nope", entry.Result)
}

func TestWorkerSuppressesDuplicateNonIdempotent(t *testing.T) {
	runner := &fakeRunner{}
	w, _, _ := setupWorker(t, runner)
	payload := `{"tool":"create_vm","params":{"vm_name":"replacement"},"idempotency_key":"k-1"}`

	first := w.Handle(context.Background(), payload)
	second := w.Handle(context.Background(), payload)

	assert.Equal(t, model.JobStatusSuccess, first.Status)
	assert.Equal(t, model.JobStatusSkipped, second.Status)
	assert.Len(t, runner.executed(), 1)
}

func TestWorkerReleasesKeyWhenParametersMissing(t *testing.T) {
	runner := &fakeRunner{}
	w, _, _ := setupWorker(t, runner)

	missing := `{"tool":"create_vm","params":{"cpu":4},"idempotency_key":"k-2"}`
	first := w.Handle(context.Background(), missing)
	second := w.Handle(context.Background(), missing)
	assert.Equal(t, model.JobStatusError, first.Status)
	assert.Equal(t, `Error executing create_vm: missing required parameter "vm_name"`, first.Result)
	assert.Equal(t, model.JobStatusError, second.Status)
	assert.Empty(t, runner.executed())

	fixed := w.Handle(context.Background(), `{"tool":"create_vm","params":{"vm_name":"replacement"},"idempotency_key":"k-2"}`)
	assert.Equal(t, model.JobStatusSuccess, fixed.Status)
	assert.Len(t, runner.executed(), 1)
}

func TestWorkerRestartVMStopsOnPowerOffFailure(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"vmware.power_off": `{"status":"error","error":"vm locked"}`,
	}}
	w, _, _ := setupWorker(t, runner)

	entry := w.Handle(context.Background(), `{"tool":"mcp_restart_vm","params":{"vm_name":"db-01"}}`)
	assert.Equal(t, model.JobStatusError, entry.Status)
	assert.Equal(t, "db-01", entry.Target)

	cmds := runner.executed()
	require.Len(t, cmds, 1)
	assert.Equal(t, "power_off", cmds[0].Action)
}

func TestWorkerLoopContinuesAfterUnknownTool(t *testing.T) {
	runner := &fakeRunner{}
	w, q, logs := setupWorker(t, runner)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, q.Push(ctx, []byte(`{"tool":"no_such_tool","params":{}}`)))
	require.NoError(t, q.Push(ctx, []byte(`{"tool":"query_prometheus","params":{"query":"up"}}`)))

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return len(logs.snapshot()) == 2 }, 5*time.Second, 20*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}

	entries := logs.snapshot()
	assert.Equal(t, model.JobStatusError, entries[0].Status)
	assert.Equal(t, model.JobStatusSuccess, entries[1].Status)

	n, err := q.Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAlertToJobLogEndToEnd(t *testing.T) {
	runner := &fakeRunner{}
	w, q, logs := setupWorker(t, runner)
	svc := NewAlertService(&fakePolicies{policies: []model.Policy{crashLoopPolicy()}}, q, zap.NewNop())
	ctx := context.Background()

	action, err := svc.ProcessWebhook(ctx, firing(model.Alert{Labels: map[string]string{
		"alertname": "PodCrashLoop",
		"pod_name":  "web-1",
		"namespace": "prod",
	}}))
	require.NoError(t, err)
	require.NotNil(t, action)

	payload, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"tool": "restart_pod",
		"params": {"pod_name": "web-1", "namespace": "prod"},
		"policy_name": "restart-on-crashloop",
		"alert_labels": {"alertname": "PodCrashLoop", "pod_name": "web-1", "namespace": "prod"},
		"idempotency_key": "`+action.IdempotencyKey+`"
	}`, payload)

	entry := w.Handle(ctx, payload)
	require.NoError(t, q.Ack(ctx, payload))

	assert.Equal(t, model.JobStatusSuccess, entry.Status)
	assert.Equal(t, "web-1", entry.Target)
	assert.Len(t, logs.snapshot(), 1)
}

func TestWorkerFinishesJobOnShutdown(t *testing.T) {
	w, q, logs := setupWorker(t, &fakeRunner{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 실행 도중 종료 신호
	w.tools["drain_node"] = Tool{Handler: func(context.Context, map[string]any) (ToolResult, error) {
		cancel()
		return ToolResult{Status: model.JobStatusSuccess, Output: "drained"}, nil
	}}
	require.NoError(t, q.Push(ctx, []byte(`{"tool":"drain_node","params":{"name":"node-3"}}`)))

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}

	entries := logs.snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, model.JobStatusSuccess, entries[0].Status)
	assert.Equal(t, "node-3", entries[0].Target)

	bg := context.Background()
	n, err := q.Len(bg)
	require.NoError(t, err)
	assert.Zero(t, n)
	recovered, err := q.Recover(bg)
	require.NoError(t, err)
	assert.Zero(t, recovered)
}
