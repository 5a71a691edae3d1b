package monitoring

import (
	"fmt"
	"time"

	"clinical-scheduling/config"

	"github.com/getsentry/sentry-go"
)

const sentryFlushTimeout = 2 * time.Second

// InitSentry is a no-op without a DSN; capture calls then do nothing.
func InitSentry(cfg config.SentryConfig, env string) error {
	if cfg.DSN == "" {
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      env,
		Release:          "clinical-scheduling@" + Version,
		TracesSampleRate: 0.2,
	})
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}

	return nil
}

func FlushSentry() {
	sentry.Flush(sentryFlushTimeout)
}

func CaptureError(err error, extra map[string]interface{}) {
	if hub := sentry.CurrentHub(); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			for k, v := range extra {
				scope.SetExtra(k, v)
			}
			hub.CaptureException(err)
		})
	}
}

// Version is overridden at build time with -ldflags "-X".
var Version = "dev"
