package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.App.Port)
	assert.Equal(t, EnvLocal, cfg.App.Env)
	assert.Equal(t, localJWTSecret, cfg.JWT.Secret)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpiry)
	assert.Equal(t, BackendRedis, cfg.Throttle.Backend)
	assert.Equal(t, "100/day", cfg.Throttle.AnonRate)
	assert.True(t, cfg.Payment.PlatformFee().Equal(decimal.NewFromInt(20)))
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("THROTTLE_BACKEND", "memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("JWT_ACCESS_EXPIRY", "5m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.App.Env)
	assert.False(t, cfg.IsLocal())
	assert.Equal(t, BackendMemory, cfg.Throttle.Backend)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessExpiry)
}

func TestLoadConfigRequiresSecretOutsideLocal(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		return &Config{
			App:      AppConfig{Env: EnvLocal},
			Throttle: ThrottleConfig{Backend: BackendMemory},
			Payment: PaymentConfig{
				Value:             decimal.NewFromInt(200),
				ProfessionalShare: decimal.NewFromInt(180),
			},
		}
	}

	require.NoError(t, base().Validate())

	cfg := base()
	cfg.App.Env = "mars"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Throttle.Backend = "etcd"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Payment.ProfessionalShare = decimal.NewFromInt(250)
	assert.Error(t, cfg.Validate())
}

func TestDBConfigURLs(t *testing.T) {
	db := DBConfig{Host: "db", Port: "5432", User: "app", Password: "p@ss", Name: "sched", SSLMode: "disable"}

	assert.Contains(t, db.DSN(), "host=db")
	assert.Contains(t, db.DSN(), "TimeZone=UTC")
	assert.Equal(t, "pgx5://app:p%40ss@db:5432/sched?sslmode=disable", db.MigrationURL())
}
