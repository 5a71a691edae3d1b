package middleware

import (
	"net/http"
	"time"

	"clinical-scheduling/internal/infrastructure/monitoring"
	"clinical-scheduling/pkg/response"
	"clinical-scheduling/pkg/throttle"

	"github.com/sirupsen/logrus"
)

const (
	ThrottleScopeUser = "user"
	ThrottleScopeAnon = "anon"
)

type ThrottleRates struct {
	User throttle.Rate
	Anon throttle.Rate
}

// ThrottleMiddleware must run after authentication: authenticated callers are
// limited per user id, everyone else per client IP.
type ThrottleMiddleware struct {
	limiter *throttle.Limiter
	rates   ThrottleRates
	log     *logrus.Logger
	metrics *monitoring.Metrics
	now     func() time.Time
}

func NewThrottleMiddleware(limiter *throttle.Limiter, rates ThrottleRates, log *logrus.Logger, metrics *monitoring.Metrics) *ThrottleMiddleware {
	return &ThrottleMiddleware{
		limiter: limiter,
		rates:   rates,
		log:     log,
		metrics: metrics,
		now:     time.Now,
	}
}

// WithClock replaces the time source used to pick the window.
func (m *ThrottleMiddleware) WithClock(now func() time.Time) *ThrottleMiddleware {
	m.now = now
	return m
}

func (m *ThrottleMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope, identity, rate := m.classify(r)

		decision, err := m.limiter.Allow(r.Context(), scope, identity, rate, m.now())
		if err != nil {
			// The counter store is unavailable; serve the request rather than fail closed.
			m.log.Warnf("Failed to check throttle for %s %s: %+v", scope, identity, err)
		}

		if !decision.Allowed {
			m.metrics.ObserveThrottled(scope)
			response.TooManyRequests(w, decision.RetryAfterSeconds())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *ThrottleMiddleware) classify(r *http.Request) (string, string, throttle.Rate) {
	if userID, ok := GetUserIDFromContext(r.Context()); ok {
		return ThrottleScopeUser, userID.String(), m.rates.User
	}
	return ThrottleScopeAnon, ClientIP(r), m.rates.Anon
}
