package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type TokenObtainRequest struct {
	Username string `json:"username" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

type TokenRefreshRequest struct {
	Refresh string `json:"refresh" validate:"required,notblank"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,notblank,max=150"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Response DTOs

// ExpiresIn is the access token lifetime in seconds.
type TokenPairResponse struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh"`
	ExpiresIn int64  `json:"expires_in"`
}

type AccessTokenResponse struct {
	Access    string `json:"access"`
	ExpiresIn int64  `json:"expires_in"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
