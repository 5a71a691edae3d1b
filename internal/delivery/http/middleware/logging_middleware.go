package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// AccessLogMiddleware writes one "API Access" entry per request, after the response.
type AccessLogMiddleware struct {
	log *logrus.Logger
}

func NewAccessLogMiddleware(log *logrus.Logger) *AccessLogMiddleware {
	return &AccessLogMiddleware{log: log}
}

func (m *AccessLogMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		info, r := withRequestInfo(r)
		rec := newResponseRecorder(w)

		defer func() {
			duration := time.Since(start)

			user := info.Username
			if user == "" {
				user = AnonymousUser
			}

			m.log.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.RequestURI(),
				"status":      rec.Status(),
				"duration":    fmt.Sprintf("%.3fs", duration.Seconds()),
				"duration_ms": duration.Milliseconds(),
				"ip":          ClientIP(r),
				"user":        user,
			}).Info("API Access")
		}()

		next.ServeHTTP(rec, r)
	})
}
