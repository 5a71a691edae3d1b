package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	EnvLocal      = "local"
	EnvStaging    = "staging"
	EnvProduction = "production"

	BackendRedis  = "redis"
	BackendMemory = "memory"

	localJWTSecret = "local-development-secret"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Throttle ThrottleConfig
	CORS     CORSConfig
	Payment  PaymentConfig
	Kafka    KafkaConfig
	Sentry   SentryConfig
}

type AppConfig struct {
	Port  string
	Env   string
	Debug bool
}

type DBConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// ThrottleConfig holds DRF-style rates ("100/min") per caller class.
type ThrottleConfig struct {
	Backend  string
	UserRate string
	AnonRate string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type PaymentConfig struct {
	Customer            string
	Value               decimal.Decimal
	ProfessionalShare   decimal.Decimal
	ProfessionalWallet  string
	PlatformWallet      string
	NotificationTimeout time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type SentryConfig struct {
	DSN string
}

// DSN returns the gorm/pgx connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

// MigrationURL returns the URL understood by the golang-migrate pgx/v5 driver.
func (c DBConfig) MigrationURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// PlatformFee is what remains of the charge after the professional's share.
func (c PaymentConfig) PlatformFee() decimal.Decimal {
	return c.Value.Sub(c.ProfessionalShare)
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	// The process environment is authoritative; .env is a local convenience.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8000")
	v.SetDefault("APP_ENV", EnvLocal)
	v.SetDefault("APP_DEBUG", false)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "scheduling")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_ACCESS_EXPIRY", "15m")
	v.SetDefault("JWT_REFRESH_EXPIRY", "168h")

	v.SetDefault("THROTTLE_BACKEND", BackendRedis)
	v.SetDefault("THROTTLE_USER_RATE", "1000/day")
	v.SetDefault("THROTTLE_ANON_RATE", "100/day")

	v.SetDefault("PAYMENT_CUSTOMER", "platform_customer_id")
	v.SetDefault("PAYMENT_VALUE", "200.00")
	v.SetDefault("PAYMENT_PROFESSIONAL_SHARE", "180.00")
	v.SetDefault("PAYMENT_PROFESSIONAL_WALLET", "professional_wallet_id")
	v.SetDefault("PAYMENT_PLATFORM_WALLET", "platform_wallet_id")
	v.SetDefault("PAYMENT_NOTIFICATION_TIMEOUT", "10s")

	v.SetDefault("KAFKA_TOPIC", "appointment-events")
}

func fromViper(v *viper.Viper) (*Config, error) {
	accessExpiry, err := time.ParseDuration(v.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(v.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	notificationTimeout, err := time.ParseDuration(v.GetString("PAYMENT_NOTIFICATION_TIMEOUT"))
	if err != nil {
		notificationTimeout = 10 * time.Second
	}

	value, err := decimal.NewFromString(v.GetString("PAYMENT_VALUE"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYMENT_VALUE: %w", err)
	}
	share, err := decimal.NewFromString(v.GetString("PAYMENT_PROFESSIONAL_SHARE"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYMENT_PROFESSIONAL_SHARE: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Port:  v.GetString("APP_PORT"),
			Env:   strings.ToLower(v.GetString("APP_ENV")),
			Debug: v.GetBool("APP_DEBUG"),
		},
		DB: DBConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			Name:        v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Throttle: ThrottleConfig{
			Backend:  strings.ToLower(v.GetString("THROTTLE_BACKEND")),
			UserRate: v.GetString("THROTTLE_USER_RATE"),
			AnonRate: v.GetString("THROTTLE_ANON_RATE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Payment: PaymentConfig{
			Customer:            v.GetString("PAYMENT_CUSTOMER"),
			Value:               value,
			ProfessionalShare:   share,
			ProfessionalWallet:  v.GetString("PAYMENT_PROFESSIONAL_WALLET"),
			PlatformWallet:      v.GetString("PAYMENT_PLATFORM_WALLET"),
			NotificationTimeout: notificationTimeout,
		},
		Kafka: KafkaConfig{
			Brokers: splitCSV(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		Sentry: SentryConfig{
			DSN: v.GetString("SENTRY_DSN"),
		},
	}

	if cfg.JWT.Secret == "" && cfg.IsLocal() {
		cfg.JWT.Secret = localJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects combinations that cannot run safely.
func (c *Config) Validate() error {
	switch c.App.Env {
	case EnvLocal, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("unknown APP_ENV %q", c.App.Env)
	}

	if c.JWT.Secret == "" && c.App.Env != EnvLocal {
		return errors.New("JWT_SECRET is required outside the local environment")
	}

	switch c.Throttle.Backend {
	case BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown THROTTLE_BACKEND %q", c.Throttle.Backend)
	}

	if c.Payment.ProfessionalShare.IsNegative() || c.Payment.ProfessionalShare.GreaterThan(c.Payment.Value) {
		return errors.New("PAYMENT_PROFESSIONAL_SHARE must be between 0 and PAYMENT_VALUE")
	}

	return nil
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
