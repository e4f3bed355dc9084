package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/courtside/field-booking/internal/di"
	"github.com/courtside/field-booking/internal/gateway"
	"github.com/courtside/field-booking/internal/service"
	"github.com/courtside/field-booking/internal/worker"
	"github.com/courtside/field-booking/pkg/config"
	"github.com/courtside/field-booking/pkg/database"
	"github.com/courtside/field-booking/pkg/logger"
	"github.com/courtside/field-booking/pkg/middleware"
	pkgredis "github.com/courtside/field-booking/pkg/redis"
	"github.com/courtside/field-booking/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if _, err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info(fmt.Sprintf("Starting %s v%s", cfg.App.Name, cfg.App.Version))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry init failed: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			appLog.Warn(fmt.Sprintf("Telemetry shutdown failed: %v", err))
		}
	}()

	// Database
	var db *database.Postgres
	db, err = database.NewPostgres(ctx, &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		MaxRetries:      5,
		RetryInterval:   2 * time.Second,
		Tracing:         cfg.OTel.Enabled,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Database connection failed, using in-memory repositories: %v", err))
		db = nil
	} else {
		defer db.Close()
		appLog.Info("Database connected")
	}

	// Redis
	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(ctx, &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: time.Second,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed, idempotency disabled: %v", err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLog.Info("Redis connected")
	}

	// Event publisher, falling back to no-op when Kafka is unreachable
	var publisher service.EventPublisher
	kafkaPublisher, err := service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.Topic,
		ServiceName: cfg.App.Name,
		ClientID:    cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, events disabled: %v", err))
		publisher = service.NewNoOpEventPublisher()
	} else {
		publisher = kafkaPublisher
		defer kafkaPublisher.Close()
		appLog.Info("Kafka producer connected")
	}

	// Wallet gateway, mock unless credentials are configured
	var walletGateway gateway.WalletGateway
	if cfg.Wallet.SecretKey != "" && cfg.Wallet.EndpointURL != "" {
		walletGateway, err = gateway.NewWalletClient(&gateway.WalletClientConfig{
			PartnerCode: cfg.Wallet.PartnerCode,
			AccessKey:   cfg.Wallet.AccessKey,
			SecretKey:   cfg.Wallet.SecretKey,
			EndpointURL: cfg.Wallet.EndpointURL,
			RedirectURL: cfg.Wallet.RedirectURL,
			IPNURL:      cfg.Wallet.IPNURL,
			RequestType: cfg.Wallet.RequestType,
			OrderInfo:   cfg.Wallet.OrderInfo,
		})
		if err != nil {
			log.Fatalf("Failed to create wallet gateway: %v", err)
		}
		appLog.Info("Using wallet payment gateway")
	} else {
		walletGateway = gateway.NewMockGateway()
		appLog.Warn("Wallet credentials not configured, using mock gateway")
	}

	container := di.NewContainer(&di.ContainerConfig{
		DB:             db,
		Redis:          redisClient,
		WalletGateway:  walletGateway,
		EventPublisher: publisher,
		PaymentConfig: &service.PaymentServiceConfig{
			AccessKey: cfg.Wallet.AccessKey,
			SecretKey: cfg.Wallet.SecretKey,
		},
		SweeperConfig: &worker.StaleBookingWorkerConfig{
			SweepInterval: cfg.Sweeper.Interval,
			GraceWindow:   cfg.Sweeper.GraceWindow,
		},
	})

	if err := container.StaleBookingWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start stale booking worker: %v", err)
	}
	defer container.StaleBookingWorker.Stop()

	router := setupRouter(cfg, container, redisClient)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLog.Info(fmt.Sprintf("HTTP server listening on %s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Error(fmt.Sprintf("HTTP server error: %v", err))
			stop()
		}
	}()

	<-ctx.Done()
	appLog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error(fmt.Sprintf("HTTP server shutdown failed: %v", err))
	}
}

func setupRouter(cfg *config.Config, container *di.Container, redisClient *pkgredis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware(cfg.App.Name))

	router.GET("/health", container.HealthHandler.Live)
	router.GET("/health/ready", container.HealthHandler.Ready)

	auth := middleware.AuthMiddleware(&middleware.AuthConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	})

	var idempotency gin.HandlerFunc
	if redisClient != nil {
		idempotency = middleware.Idempotency(&middleware.IdempotencyConfig{Redis: redisClient})
	} else {
		idempotency = func(c *gin.Context) { c.Next() }
	}

	v1 := router.Group("/api/v1")
	{
		fields := v1.Group("/fields")
		{
			fields.GET("/:id/availability", container.BookingHandler.Availability)
			fields.GET("/:id/pricings", container.PricingHandler.GetByField)
		}

		pricings := v1.Group("/pricings", auth)
		{
			pricings.POST("/range", container.PricingHandler.CreateRange)
			pricings.PUT("/range", container.PricingHandler.UpdateRange)
			pricings.DELETE("/range", container.PricingHandler.DeleteRange)
		}

		bookings := v1.Group("/bookings", auth)
		{
			bookings.POST("", idempotency, container.BookingHandler.Create)
			bookings.GET("", container.BookingHandler.List)
			bookings.GET("/:id", container.BookingHandler.Get)
			bookings.POST("/:id/cancel", container.BookingHandler.Cancel)
			bookings.POST("/:id/payment", idempotency, container.PaymentHandler.CreatePaymentRequest)
			bookings.GET("/:id/payment", container.PaymentHandler.GetPayment)
		}

		// The wallet gateway authenticates by signature, not by JWT
		v1.POST("/payments/wallet/callback", container.PaymentHandler.WalletCallback)
	}

	return router
}
