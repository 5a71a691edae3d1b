package middleware

import (
	"context"
	"net/http"
	"strings"

	"clinical-scheduling/pkg/jwt"
	"clinical-scheduling/pkg/response"
)

const (
	detailMissingCredentials = "Authentication credentials were not provided."
	detailInvalidToken       = "Given token not valid for any token type"
)

type AuthMiddleware struct {
	jwtService *jwt.JWTService
}

func NewAuthMiddleware(jwtService *jwt.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// Authenticate rejects the request with 401 unless it carries a valid access token.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, detailMissingCredentials)
			return
		}

		claims, ok := m.parse(authHeader)
		if !ok {
			response.Unauthorized(w, detailInvalidToken)
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

// Identify attaches the caller's identity when a valid access token is present and
// otherwise lets the request through anonymously.
func (m *AuthMiddleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := m.parse(r.Header.Get("Authorization")); ok {
			r = r.WithContext(withClaims(r.Context(), claims))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) parse(authHeader string) (*jwt.Claims, bool) {
	// Extract token from "Bearer <token>"
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, false
	}

	claims, err := m.jwtService.ValidateTokenOfType(parts[1], jwt.AccessToken)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func withClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	ctx = WithUser(ctx, claims.UserID, claims.Username)
	return context.WithValue(ctx, TokenIDKey, claims.TokenID())
}
