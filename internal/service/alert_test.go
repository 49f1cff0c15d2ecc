package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/infraai/backend/internal/model"
)

type recordingQueue struct {
	payloads [][]byte
	err      error
}

func (r *recordingQueue) Push(_ context.Context, payload []byte) error {
	if r.err != nil {
		return r.err
	}
	r.payloads = append(r.payloads, payload)
	return nil
}

func TestProcessWebhookNoMatchDoesNotEnqueue(t *testing.T) {
	q := &recordingQueue{}
	svc := NewAlertService(&fakePolicies{policies: []model.Policy{crashLoopPolicy()}}, q, zap.NewNop())

	action, err := svc.ProcessWebhook(context.Background(), firing(model.Alert{Labels: map[string]string{"alertname": "Other"}}))
	require.NoError(t, err)
	assert.Nil(t, action)
	assert.Empty(t, q.payloads)
}

func TestProcessWebhookPolicyLoadError(t *testing.T) {
	svc := NewAlertService(&fakePolicies{err: errors.New("db down")}, &recordingQueue{}, zap.NewNop())

	_, err := svc.ProcessWebhook(context.Background(), firing(model.Alert{}))
	assert.ErrorContains(t, err, "db down")
}

func TestProcessWebhookPushError(t *testing.T) {
	q := &recordingQueue{err: errors.New("redis down")}
	svc := NewAlertService(&fakePolicies{policies: []model.Policy{crashLoopPolicy()}}, q, zap.NewNop())

	_, err := svc.ProcessWebhook(context.Background(), firing(model.Alert{Labels: map[string]string{"alertname": "PodCrashLoop"}}))
	assert.ErrorContains(t, err, "redis down")
}
