package throttle

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rate is a request quota per rolling period. The zero Rate disables throttling.
type Rate struct {
	Requests int
	Period   time.Duration
}

func (r Rate) Enabled() bool {
	return r.Requests > 0 && r.Period > 0
}

func (r Rate) String() string {
	if !r.Enabled() {
		return "none"
	}
	return fmt.Sprintf("%d/%s", r.Requests, r.Period)
}

// ParseRate reads "N/period" where only the first letter of period matters:
// s(econd), m(inute), h(our), d(ay). "" and "none" disable the rate.
func ParseRate(raw string) (Rate, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" || raw == "none" {
		return Rate{}, nil
	}

	num, period, ok := strings.Cut(raw, "/")
	if !ok || period == "" {
		return Rate{}, fmt.Errorf("invalid rate %q: expected N/period", raw)
	}

	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || n <= 0 {
		return Rate{}, fmt.Errorf("invalid rate %q: request count must be a positive integer", raw)
	}

	var d time.Duration
	switch strings.TrimSpace(period)[0] {
	case 's':
		d = time.Second
	case 'm':
		d = time.Minute
	case 'h':
		d = time.Hour
	case 'd':
		d = 24 * time.Hour
	default:
		return Rate{}, fmt.Errorf("invalid rate %q: unknown period", raw)
	}

	return Rate{Requests: n, Period: d}, nil
}

// Counter is the shared store behind the limiter. Increment atomically bumps key and
// returns the new value; ttl bounds the key's lifetime. Get reads a key, 0 when absent.
type Counter interface {
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
}

// Decision carries the bucket counts seen by the request, itself included in Current.
type Decision struct {
	Allowed    bool
	Current    int64
	Previous   int64
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds up so clients never retry before a request would fit.
func (d Decision) RetryAfterSeconds() int {
	secs := int(d.RetryAfter / time.Second)
	if d.RetryAfter%time.Second != 0 {
		secs++
	}
	return secs
}

// Limiter approximates a rolling window with two fixed buckets: the previous bucket's
// count is weighted by how much of it still overlaps the last period, then added to
// the current bucket's count.
type Limiter struct {
	counter Counter
}

func NewLimiter(counter Counter) *Limiter {
	return &Limiter{counter: counter}
}

func Key(class, identity string, windowID int64) string {
	return fmt.Sprintf("throttle:%s:%s:%d", class, identity, windowID)
}

func WindowID(now time.Time, period time.Duration) int64 {
	return now.Unix() / int64(period/time.Second)
}

// Allow counts the request against class/identity and reports whether it fits the rate.
// Rejected requests are counted too.
func (l *Limiter) Allow(ctx context.Context, class, identity string, rate Rate, now time.Time) (Decision, error) {
	if !rate.Enabled() {
		return Decision{Allowed: true}, nil
	}

	period := rate.Period
	if period < time.Second {
		period = time.Second
	}

	windowID := WindowID(now, period)
	windowStart := time.Unix(windowID*int64(period/time.Second), 0)

	// A bucket is read as the previous one during the following period.
	current, err := l.counter.Increment(ctx, Key(class, identity, windowID), 2*period+time.Second)
	if err != nil {
		return Decision{Allowed: true}, fmt.Errorf("increment throttle counter: %w", err)
	}
	previous, err := l.counter.Get(ctx, Key(class, identity, windowID-1))
	if err != nil {
		return Decision{Allowed: true}, fmt.Errorf("read throttle counter: %w", err)
	}

	w := slidingWindow{
		limit:    int64(rate.Requests),
		period:   period.Milliseconds(),
		elapsed:  now.Sub(windowStart).Milliseconds(),
		previous: previous,
		current:  current,
	}

	d := Decision{Allowed: w.fits(), Current: current, Previous: previous}
	if !d.Allowed {
		d.RetryAfter = time.Duration(w.retryAfter()) * time.Millisecond
	}
	return d, nil
}

// slidingWindow does its arithmetic in integer milliseconds, scaled by period,
// so boundary comparisons are exact.
type slidingWindow struct {
	limit    int64
	period   int64
	elapsed  int64
	previous int64
	current  int64
}

// fits reports previous*(period-elapsed)/period + current <= limit.
func (w slidingWindow) fits() bool {
	return w.previous*(w.period-w.elapsed)+w.current*w.period <= w.limit*w.period
}

// retryAfter is how long until one more request would fit, with no other traffic.
func (w slidingWindow) retryAfter() int64 {
	if w.current+1 <= w.limit && w.previous > 0 {
		// Fits later in this window once the previous bucket's weight has faded.
		at := w.period - (w.limit-w.current-1)*w.period/w.previous
		return at - w.elapsed
	}

	// Fits in the next window, where this bucket becomes the weighted one.
	at := w.period - (w.limit-1)*w.period/w.current
	if at < 0 {
		at = 0
	}
	return w.period - w.elapsed + at
}
