package repository

import (
	"context"
	"errors"
	"time"

	domainRepo "clinical-scheduling/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

type redisThrottleRepository struct {
	client *redis.Client
}

func NewRedisThrottleRepository(client *redis.Client) domainRepo.ThrottleRepository {
	return &redisThrottleRepository{client: client}
}

// Increment runs INCR and EXPIRE in one transaction so a counter never outlives its window.
func (r *redisThrottleRepository) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (r *redisThrottleRepository) Get(ctx context.Context, key string) (int64, error) {
	n, err := r.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}
