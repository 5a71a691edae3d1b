package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"clinical-scheduling/pkg/response"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

type RecoveryMiddleware struct {
	log *logrus.Logger
}

func NewRecoveryMiddleware(log *logrus.Logger) *RecoveryMiddleware {
	return &RecoveryMiddleware{log: log}
}

// Handle turns a panic into a 500 and reports it to Sentry when configured.
func (m *RecoveryMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			m.log.WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.RequestURI(),
				"panic":  fmt.Sprint(rec),
			}).Errorf("Recovered from panic: %s", debug.Stack())

			hub := sentry.CurrentHub().Clone()
			hub.Scope().SetRequest(r)
			hub.Recover(rec)

			response.InternalServerError(w, "")
		}()

		next.ServeHTTP(w, r)
	})
}
