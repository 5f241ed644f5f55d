package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	analyticsapp "github.com/kasamthapa/krisi/internal/application/analytics"
	catalogapp "github.com/kasamthapa/krisi/internal/application/catalog"
	escrowapp "github.com/kasamthapa/krisi/internal/application/escrow"
	notificationapp "github.com/kasamthapa/krisi/internal/application/notification"
	tradeapp "github.com/kasamthapa/krisi/internal/application/trade"
	"github.com/kasamthapa/krisi/internal/domain/catalog"
	"github.com/kasamthapa/krisi/internal/domain/escrow"
	"github.com/kasamthapa/krisi/internal/domain/notification"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/kasamthapa/krisi/internal/domain/trade"
	"github.com/kasamthapa/krisi/internal/infrastructure/cache"
	"github.com/kasamthapa/krisi/internal/infrastructure/config"
	"github.com/kasamthapa/krisi/internal/infrastructure/event"
	"github.com/kasamthapa/krisi/internal/infrastructure/logger"
	"github.com/kasamthapa/krisi/internal/infrastructure/messaging"
	"github.com/kasamthapa/krisi/internal/infrastructure/persistence"
	"github.com/kasamthapa/krisi/internal/infrastructure/persistence/memory"
	"github.com/kasamthapa/krisi/internal/infrastructure/telemetry"
	"github.com/kasamthapa/krisi/internal/interfaces/http/handler"
	"github.com/kasamthapa/krisi/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// repositories groups the stores behind the application services
type repositories struct {
	products      catalog.ProductRepository
	orders        trade.OrderRepository
	payments      escrow.PaymentRepository
	notifications notification.NotificationRepository
	db            *persistence.Database
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	// Telemetry: traces, metrics and the OTLP log bridge
	otelProviders, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:       cfg.Telemetry.ServiceName,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		Traces:            cfg.Telemetry.Enabled,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		Metrics:           cfg.Telemetry.MetricsEnabled,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		Logs:              cfg.Telemetry.LogsEnabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log = otelProviders.Bridge(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))

	metrics, err := telemetry.NewMarketplaceMetrics(otelProviders.Meter(cfg.Telemetry.ServiceName))
	if err != nil {
		log.Fatal("Failed to register business metrics", zap.Error(err))
	}

	log.Info("Starting Krisi marketplace",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
	)

	repos, err := newRepositories(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize storage", zap.Error(err))
	}
	if repos.db != nil {
		defer func() {
			if err := repos.db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()
	}

	// Application services
	productService := catalogapp.NewProductService(repos.products, log)
	paymentService := escrowapp.NewPaymentService(repos.payments, repos.orders, cfg.Escrow.HoldWindow, log)
	orderService := tradeapp.NewOrderService(repos.orders, productService, paymentService, log)
	analyticsService := analyticsapp.NewService(repos.products, repos.orders, log)

	sender := messaging.NewLogSender(messaging.LogSenderConfig{FailureRate: cfg.Notification.FailureRate}, log)
	dispatcher := notificationapp.NewDispatcher(repos.notifications, sender, notificationapp.Config{
		Workers:     cfg.Notification.Workers,
		QueueSize:   cfg.Notification.QueueSize,
		SendTimeout: cfg.Notification.SendTimeout,
	}, log)

	productService.SetMaxConflictRetries(cfg.Order.MaxConflictRetries)
	orderService.SetMaxConflictRetries(cfg.Order.MaxConflictRetries)
	paymentService.SetMaxConflictRetries(cfg.Order.MaxConflictRetries)

	productService.SetMetrics(metrics)
	orderService.SetMetrics(metrics)
	paymentService.SetMetrics(metrics)
	dispatcher.SetMetrics(metrics)

	// Event bus: notifications subscribe, Kafka mirrors every event when enabled
	eventBus := event.NewInMemoryEventBus(log)

	idempotencyStore, err := newIdempotencyStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	notificationHandlers := event.WrapHandlers(
		notificationapp.Handlers(dispatcher, log),
		idempotencyStore,
		shared.IdempotencyConfig{
			Enabled: cfg.Event.IdempotencyEnabled,
			TTL:     cfg.Event.IdempotencyTTL,
		},
		log,
	)
	for _, h := range notificationHandlers {
		eventBus.Subscribe(h)
	}
	log.Info("Event handlers registered", zap.Int("count", len(notificationHandlers)))

	var publisher shared.EventPublisher = eventBus
	if cfg.Kafka.Enabled {
		kafkaPublisher := event.NewKafkaPublisher(event.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		}, log)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Error("Error closing Kafka publisher", zap.Error(err))
			}
		}()
		publisher = event.NewMultiPublisher(eventBus, kafkaPublisher)
		log.Info("Kafka event streaming enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	productService.SetEventPublisher(publisher)
	orderService.SetEventPublisher(publisher)
	paymentService.SetEventPublisher(publisher)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	if err := dispatcher.Start(ctx); err != nil {
		log.Fatal("Failed to start notification dispatcher", zap.Error(err))
	}

	// HTTP
	mode := gin.DebugMode
	if cfg.IsProduction() {
		mode = gin.ReleaseMode
	}
	r, err := router.New(router.Options{
		ServiceName:    cfg.Telemetry.ServiceName,
		Tracing:        cfg.Telemetry.Enabled,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Mode:           mode,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize router", zap.Error(err))
	}

	var pinger handler.Pinger
	if repos.db != nil {
		pinger = repos.db
	}
	engine := r.Register(
		handler.NewHealthHandler(cfg.App.Name, pinger),
		handler.NewProductHandler(productService),
		handler.NewOrderHandler(orderService),
		handler.NewPaymentHandler(paymentService),
		handler.NewNotificationHandler(dispatcher),
		handler.NewAnalyticsHandler(analyticsService),
	).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping notification dispatcher", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	_ = otelProviders.Shutdown(shutdownCtx)

	log.Info("Server exited gracefully")
}

// newRepositories selects in-memory or GORM-backed stores by database driver
func newRepositories(cfg *config.Config, log *zap.Logger) (*repositories, error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Info("Using in-memory storage")
		return &repositories{
			products:      memory.NewProductRepository(),
			orders:        memory.NewOrderRepository(),
			payments:      memory.NewPaymentRepository(),
			notifications: memory.NewNotificationRepository(),
		}, nil
	}

	db, err := persistence.NewDatabase(&cfg.Database, log, persistence.Options{
		LogLevel: cfg.Log.Level,
		Plugins: telemetry.DBTracingPlugins(telemetry.DBTracingConfig{
			Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
			DBSystem:   dbSystem(cfg.Database.Driver),
			LogFullSQL: !cfg.IsProduction(),
		}),
	})
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &repositories{
		products:      persistence.NewGormProductRepository(db.DB),
		orders:        persistence.NewGormOrderRepository(db.DB),
		payments:      persistence.NewGormPaymentRepository(db.DB),
		notifications: persistence.NewGormNotificationRepository(db.DB),
		db:            db,
	}, nil
}

// newIdempotencyStore shares processed event IDs through Redis when enabled
func newIdempotencyStore(ctx context.Context, cfg *config.Config) (shared.IdempotencyStore, error) {
	if !cfg.Redis.Enabled {
		return cache.NewInMemoryIdempotencyStore(), nil
	}
	return cache.NewRedisIdempotencyStore(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func dbSystem(driver string) string {
	if driver == config.DriverPostgres {
		return "postgresql"
	}
	return driver
}
