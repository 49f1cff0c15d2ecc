// Redis 리스트 기반 조치 큐
//
// 처리 흐름:
//  1. 평가기가 ActionDescriptor JSON 을 큐의 tail 에 RPUSH
//  2. 워커가 BLMOVE 로 head 에서 꺼내면서 processing 리스트로 원자적으로 이동
//  3. 실행 및 작업 로그 기록 후 Ack 로 processing 리스트에서 제거
//  4. 워커 시작 시 Recover 로 이전 워커가 남긴 메시지를 큐 head 로 되돌림 (at-least-once)

package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/infraai/backend/internal/config"
)

var (
	// ErrEmpty - 타임아웃 동안 메시지가 없음
	ErrEmpty = errors.New("queue empty")

	ErrAddrRequired = errors.New("redis addr is required")
)

// NewRedisClient - 연결 후 5초 안에 Ping 이 성공해야 함
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, ErrAddrRequired
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// RedisQueue - 단일 이름의 내구성 있는 리스트 큐
type RedisQueue struct {
	client        *redis.Client
	key           string
	processingKey string
}

func NewRedisQueue(client *redis.Client, key, processingKey string) *RedisQueue {
	if processingKey == "" {
		processingKey = key + ":processing"
	}
	return &RedisQueue{client: client, key: key, processingKey: processingKey}
}

func (q *RedisQueue) Push(ctx context.Context, payload []byte) error {
	if err := q.client.RPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to push to %s: %w", q.key, err)
	}
	return nil
}

// Pop - timeout 동안 대기, 메시지가 없으면 ErrEmpty
// 꺼낸 메시지는 Ack 전까지 processing 리스트에 남는다
func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	payload, err := q.client.BLMove(ctx, q.key, q.processingKey, "LEFT", "RIGHT", timeout).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrEmpty
	}
	if err != nil {
		return "", fmt.Errorf("failed to pop from %s: %w", q.key, err)
	}
	return payload, nil
}

func (q *RedisQueue) Ack(ctx context.Context, payload string) error {
	if err := q.client.LRem(ctx, q.processingKey, 1, payload).Err(); err != nil {
		return fmt.Errorf("failed to ack message: %w", err)
	}
	return nil
}

// Recover - processing 리스트에 남은 메시지를 원래 순서대로 큐 head 에 되돌림
func (q *RedisQueue) Recover(ctx context.Context) (int, error) {
	recovered := 0
	for {
		err := q.client.LMove(ctx, q.processingKey, q.key, "RIGHT", "LEFT").Err()
		if errors.Is(err, redis.Nil) {
			return recovered, nil
		}
		if err != nil {
			return recovered, fmt.Errorf("failed to recover in-flight messages: %w", err)
		}
		recovered++
	}
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read queue length: %w", err)
	}
	return n, nil
}
