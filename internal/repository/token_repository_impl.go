package repository

import (
	"context"
	"fmt"
	"time"

	domainRepo "clinical-scheduling/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const refreshTokenKeyPrefix = "refresh_token:"

type redisTokenRepository struct {
	client *redis.Client
}

func NewRedisTokenRepository(client *redis.Client) domainRepo.TokenRepository {
	return &redisTokenRepository{client: client}
}

func refreshTokenKey(userID, tokenID string) string {
	return fmt.Sprintf("%s%s:%s", refreshTokenKeyPrefix, userID, tokenID)
}

func (r *redisTokenRepository) Register(ctx context.Context, userID, tokenID string, ttl time.Duration) error {
	return r.client.Set(ctx, refreshTokenKey(userID, tokenID), "1", ttl).Err()
}

func (r *redisTokenRepository) Exists(ctx context.Context, userID, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, refreshTokenKey(userID, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *redisTokenRepository) Revoke(ctx context.Context, userID, tokenID string) error {
	return r.client.Del(ctx, refreshTokenKey(userID, tokenID)).Err()
}
