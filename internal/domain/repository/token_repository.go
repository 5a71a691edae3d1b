package repository

import (
	"context"
	"time"
)

// TokenRepository tracks issued refresh tokens. A refresh token is usable only
// while its id is registered.
type TokenRepository interface {
	Register(ctx context.Context, userID, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, userID, tokenID string) (bool, error)
	Revoke(ctx context.Context, userID, tokenID string) error
}
