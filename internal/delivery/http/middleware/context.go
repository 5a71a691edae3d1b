package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey      contextKey = "user_id"
	TokenIDKey     contextKey = "token_id"
	requestInfoKey contextKey = "request_info"
)

const AnonymousUser = "Anonymous"

// RequestInfo is filled in by inner stages and read by outer ones once the
// response is written. It is owned by a single request goroutine.
type RequestInfo struct {
	Username string
	Route    string
}

func withRequestInfo(r *http.Request) (*RequestInfo, *http.Request) {
	if info, ok := r.Context().Value(requestInfoKey).(*RequestInfo); ok {
		return info, r
	}
	info := &RequestInfo{}
	return info, r.WithContext(context.WithValue(r.Context(), requestInfoKey, info))
}

func requestInfoFrom(ctx context.Context) *RequestInfo {
	info, _ := ctx.Value(requestInfoKey).(*RequestInfo)
	return info
}

// WithUser marks ctx as acting on behalf of the given user.
func WithUser(ctx context.Context, userID uuid.UUID, username string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	if info := requestInfoFrom(ctx); info != nil {
		info.Username = username
	}
	return ctx
}

// GetUserIDFromContext extracts user ID from context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetTokenIDFromContext extracts token ID from context
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	return tokenID, ok
}

// ClientIP prefers the first X-Forwarded-For entry and falls back to the peer address.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
