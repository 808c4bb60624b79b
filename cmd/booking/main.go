package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/UmarSidiki/taxibooking/internal/cancellation"
	"github.com/UmarSidiki/taxibooking/internal/maps"
	"github.com/UmarSidiki/taxibooking/internal/payments"
	"github.com/UmarSidiki/taxibooking/internal/pricing"
	"github.com/UmarSidiki/taxibooking/internal/reservations"
	"github.com/UmarSidiki/taxibooking/migrations"
	"github.com/UmarSidiki/taxibooking/pkg/common"
	"github.com/UmarSidiki/taxibooking/pkg/config"
	"github.com/UmarSidiki/taxibooking/pkg/database"
	"github.com/UmarSidiki/taxibooking/pkg/errors"
	"github.com/UmarSidiki/taxibooking/pkg/eventbus"
	"github.com/UmarSidiki/taxibooking/pkg/logger"
	"github.com/UmarSidiki/taxibooking/pkg/middleware"
	redisclient "github.com/UmarSidiki/taxibooking/pkg/redis"
)

const (
	serviceName = "booking-service"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting booking service",
		zap.String("service", serviceName),
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
	)

	if cfg.Sentry.Enabled {
		sentryConfig := errors.DefaultSentryConfig()
		sentryConfig.DSN = cfg.Sentry.DSN
		sentryConfig.ServerName = serviceName
		sentryConfig.Release = version
		if err := errors.InitSentry(sentryConfig); err != nil {
			logger.Warn("Failed to initialize Sentry, continuing without error tracking", zap.Error(err))
		} else {
			defer errors.Flush(2 * time.Second)
		}
	}

	db, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.RunMigrations(migrations.FS, migrations.Dir, &cfg.Database); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	redisClient, err := redisclient.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	bus, err := eventbus.New(eventbus.Config{
		URL:        cfg.NATS.URL,
		Name:       serviceName,
		StreamName: cfg.NATS.StreamName,
	})
	if err != nil {
		logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer bus.Close()

	var distance maps.DistanceProvider = maps.NoopProvider{}
	if cfg.Maps.Enabled {
		google, err := maps.NewGoogleProvider(cfg.Maps.APIKey)
		if err != nil {
			logger.Fatal("Failed to initialize maps client", zap.Error(err))
		}
		distance = maps.NewCachedProvider(google, redisClient)
		logger.Info("Distance resolution enabled")
	}

	pricingRepo := pricing.NewRepository(db)
	pricingService := pricing.NewService(pricingRepo, distance, cfg.Tax, cfg.Stripe.Currency)
	pricingHandler := pricing.NewHandler(pricingService)

	gateway := payments.NewResilientGateway(payments.NewStripeClient(cfg.Stripe.APIKey))

	reservationsRepo := reservations.NewRepository(db, cfg.Payments.AmountTolerance)
	reservationsService := reservations.NewService(
		reservationsRepo, pricingRepo, pricingService, gateway, bus, cfg.Partner, serviceName)
	reservationsHandler := reservations.NewHandler(reservationsService)

	reconciler := payments.NewReconciler(reservationsRepo, reservationsService, bus, cfg.Partner, serviceName)
	paymentsHandler := payments.NewHandler(reconciler, cfg.Stripe.WebhookSecret)

	cancellationService := cancellation.NewService(reservationsRepo, gateway, bus, serviceName)
	cancellationHandler := cancellation.NewHandler(cancellationService)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Sentry())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestTimeout(30 * time.Second))
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Use(middleware.Metrics(serviceName))

	router.GET("/healthz", common.HealthCheck(serviceName, version))
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, map[string]func() error{
		"database": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.Ping(ctx)
		},
		"redis": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx).Err()
		},
		"nats": func() error {
			if !bus.Connected() {
				return fmt.Errorf("nats connection lost")
			}
			return nil
		},
	}))
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": serviceName, "version": version})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")

	// Checkout endpoints are public; the Stripe webhook authenticates with
	// its signature header instead of a bearer token.
	pricingHandler.RegisterRoutes(api)
	reservationsHandler.RegisterRoutes(api)
	paymentsHandler.RegisterRoutes(api)

	operator := api.Group("", middleware.Auth(cfg.JWT.Secret), middleware.RequireRole("operator"))
	reservationsHandler.RegisterOperatorRoutes(operator)
	cancellationHandler.RegisterOperatorRoutes(operator)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
