package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"clinical-scheduling/config"
	deliveryHttp "clinical-scheduling/internal/delivery/http"
	"clinical-scheduling/internal/delivery/http/handler"
	"clinical-scheduling/internal/delivery/http/middleware"
	domainRepo "clinical-scheduling/internal/domain/repository"
	"clinical-scheduling/internal/infrastructure/cache"
	"clinical-scheduling/internal/infrastructure/database"
	"clinical-scheduling/internal/infrastructure/messaging"
	"clinical-scheduling/internal/infrastructure/monitoring"
	"clinical-scheduling/internal/repository"
	"clinical-scheduling/internal/service"
	"clinical-scheduling/internal/usecase"
	"clinical-scheduling/pkg/jwt"
	"clinical-scheduling/pkg/throttle"
	"clinical-scheduling/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App holds all dependencies for the application
type App struct {
	Config        *config.Config
	Log           *logrus.Logger
	DB            *gorm.DB
	RedisClient   *redis.Client
	MemoryStore   *repository.MemoryStore
	Producer      messaging.Producer
	Notifications service.NotificationService
	AuthUsecase   usecase.AuthUsecase
	Server        *http.Server
}

// NewLogger returns a JSON logger on stdout, or a text logger in debug mode.
func NewLogger(cfg config.AppConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)
	log.SetFormatter(&logrus.JSONFormatter{})

	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log
}

// New creates a new App instance with all dependencies initialized.
// On error every connection opened so far is closed.
func New(cfg *config.Config, log *logrus.Logger) (*App, error) {
	app := &App{Config: cfg, Log: log}
	if err := app.init(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (app *App) init() error {
	cfg := app.Config

	if err := monitoring.InitSentry(cfg.Sentry, cfg.App.Env); err != nil {
		app.Log.Warnf("Failed to initialize Sentry: %+v", err)
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Debug)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	app.Log.Info("Database connected successfully")

	if cfg.DB.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
		app.Log.Info("Database schema auto-migrated")
	}

	throttleRepo, tokenRepo, err := app.initStores()
	if err != nil {
		return err
	}

	app.Server, err = app.initializeServer(throttleRepo, tokenRepo)
	return err
}

// initStores selects the shared counter store and token registry backend.
func (app *App) initStores() (domainRepo.ThrottleRepository, domainRepo.TokenRepository, error) {
	if app.Config.Throttle.Backend == config.BackendMemory {
		app.MemoryStore = repository.NewMemoryStore(app.Log)
		app.Log.Warn("Using in-memory throttle and token store; state is per process")
		return app.MemoryStore, app.MemoryStore, nil
	}

	redisClient, err := cache.NewRedisClient(app.Config.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	app.Log.Info("Redis connected successfully")

	return repository.NewRedisThrottleRepository(redisClient), repository.NewRedisTokenRepository(redisClient), nil
}

func (app *App) initNotifiers() []service.AppointmentNotifier {
	notifiers := []service.AppointmentNotifier{
		service.NewPaymentSplitNotifier(app.Log, app.Config.Payment),
	}

	if len(app.Config.Kafka.Brokers) == 0 {
		return notifiers
	}

	producer, err := messaging.NewKafkaProducer(app.Config.Kafka)
	if err != nil {
		app.Log.Warnf("Failed to connect to Kafka, appointment events disabled: %+v", err)
		return notifiers
	}
	app.Producer = producer
	app.Log.Infof("Publishing appointment events to Kafka topic %s", app.Config.Kafka.Topic)

	return append(notifiers, service.NewEventNotifier(producer, app.Config.Payment))
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer(throttleRepo domainRepo.ThrottleRepository, tokenRepo domainRepo.TokenRepository) (*http.Server, error) {
	cfg := app.Config
	log := app.Log
	db := app.DB

	userRate, err := throttle.ParseRate(cfg.Throttle.UserRate)
	if err != nil {
		return nil, fmt.Errorf("THROTTLE_USER_RATE: %w", err)
	}
	anonRate, err := throttle.ParseRate(cfg.Throttle.AnonRate)
	if err != nil {
		return nil, fmt.Errorf("THROTTLE_ANON_RATE: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(registry)

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	professionalRepo := repository.NewProfessionalRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	app.Notifications = service.NewNotificationService(log, metrics, cfg.Payment.NotificationTimeout, app.initNotifiers()...)

	// Initialize usecases
	app.AuthUsecase = usecase.NewAuthUsecase(db, log, userRepo, tokenRepo, auditService, jwtService)
	professionalUsecase := usecase.NewProfessionalUsecase(db, log, professionalRepo, appointmentRepo, auditService)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, appointmentRepo, professionalRepo, auditService, app.Notifications)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	router := deliveryHttp.NewRouter(
		deliveryHttp.Handlers{
			Auth:         handler.NewAuthHandler(app.AuthUsecase, customValidator),
			Professional: handler.NewProfessionalHandler(professionalUsecase, customValidator),
			Appointment:  handler.NewAppointmentHandler(appointmentUsecase, customValidator),
			AuditLog:     handler.NewAuditLogHandler(auditLogUsecase),
			Health:       handler.NewHealthHandler(sqlDB),
			Metrics:      metrics.Handler(),
		},
		deliveryHttp.Middlewares{
			AccessLog: middleware.NewAccessLogMiddleware(log),
			Recovery:  middleware.NewRecoveryMiddleware(log),
			Metrics:   middleware.NewMetricsMiddleware(metrics),
			CORS:      middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigins, cfg.IsLocal()),
			Auth:      middleware.NewAuthMiddleware(jwtService),
			Throttle: middleware.NewThrottleMiddleware(
				throttle.NewLimiter(throttleRepo),
				middleware.ThrottleRates{User: userRate, Anon: anonRate},
				log,
				metrics,
			),
		},
	)

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (app *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		app.Log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.Server.Shutdown(shutdownCtx); err != nil {
			app.Log.Errorf("Server forced to shutdown: %v", err)
			return err
		}
		return nil
	})

	err := g.Wait()
	app.Log.Info("Server shutdown complete")
	return err
}

// Close waits for pending notifications, then closes all connections.
func (app *App) Close() {
	if app.Notifications != nil {
		app.Notifications.Close()
	}

	if app.Producer != nil {
		if err := app.Producer.Close(); err != nil {
			app.Log.Warnf("Failed to close Kafka producer: %+v", err)
		}
	}

	if app.MemoryStore != nil {
		app.MemoryStore.Stop()
	}

	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			app.Log.Warnf("Failed to close Redis: %+v", err)
		}
	}

	if app.DB != nil {
		if sqlDB, err := app.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}

	monitoring.FlushSentry()
}
