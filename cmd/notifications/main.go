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

	"github.com/UmarSidiki/taxibooking/internal/dispatch"
	"github.com/UmarSidiki/taxibooking/internal/notifications"
	"github.com/UmarSidiki/taxibooking/migrations"
	"github.com/UmarSidiki/taxibooking/pkg/common"
	"github.com/UmarSidiki/taxibooking/pkg/config"
	"github.com/UmarSidiki/taxibooking/pkg/database"
	"github.com/UmarSidiki/taxibooking/pkg/errors"
	"github.com/UmarSidiki/taxibooking/pkg/eventbus"
	"github.com/UmarSidiki/taxibooking/pkg/logger"
	"github.com/UmarSidiki/taxibooking/pkg/middleware"
)

const (
	serviceName = "notifications-service"
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

	logger.Info("Starting notifications service",
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

	bus, err := eventbus.New(eventbus.Config{
		URL:        cfg.NATS.URL,
		Name:       serviceName,
		StreamName: cfg.NATS.StreamName,
	})
	if err != nil {
		logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer bus.Close()

	emailClient := notifications.NewResilientEmailClient(
		cfg.SMTP.Host, cfg.SMTP.Port,
		cfg.SMTP.Username, cfg.SMTP.Password,
		cfg.SMTP.FromEmail, cfg.SMTP.FromName,
		nil,
	)

	var smsClient notifications.SMSClientInterface
	if cfg.Twilio.Enabled {
		smsClient = notifications.NewResilientTwilioClient(
			cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber, nil)
		logger.Info("SMS delivery enabled")
	}

	partners := dispatch.NewRepository(db)

	sink := notifications.NewSink(emailClient, smsClient, partners, cfg.SMTP.AdminEmail, cfg.Twilio.Enabled)

	subCtx, cancelSubs := context.WithCancel(context.Background())
	defer cancelSubs()

	if err := sink.Register(subCtx, bus); err != nil {
		logger.Fatal("Failed to subscribe to platform events", zap.Error(err))
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// The service is event-driven; HTTP only serves health and metrics.
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.Metrics(serviceName))

	router.GET("/healthz", common.HealthCheck(serviceName, version))
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, map[string]func() error{
		"database": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.Ping(ctx)
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

	cancelSubs()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
