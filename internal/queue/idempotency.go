package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "remediation:idempotency:"

// Idempotency - 재실행되면 안 되는 조치(create_vm 등)의 중복 실행 방지
type Idempotency struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotency(client *redis.Client, ttl time.Duration) *Idempotency {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Idempotency{client: client, ttl: ttl}
}

// Claim - 처음 선점하면 true, 이미 선점된 키면 false
func (i *Idempotency) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := i.client.SetNX(ctx, idempotencyPrefix+key, time.Now().UTC().Format(time.RFC3339), i.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	return ok, nil
}

// Release - 백엔드 호출 전에 실패한 경우 키를 반환해 재실행을 허용
func (i *Idempotency) Release(ctx context.Context, key string) error {
	if err := i.client.Del(ctx, idempotencyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
