package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/practika/practika/internal/adapter/dispatch"
	httpadapter "github.com/practika/practika/internal/adapter/http"
	"github.com/practika/practika/internal/adapter/http/middleware"
	"github.com/practika/practika/internal/adapter/persistence"
	"github.com/practika/practika/internal/config"
	"github.com/practika/practika/internal/logger"
	"github.com/practika/practika/internal/ports"
	"github.com/practika/practika/internal/service/password"
	"github.com/practika/practika/internal/service/ratelimit"
	"github.com/practika/practika/internal/service/token"
	"github.com/practika/practika/internal/usecase"
)

func main() {
	// Load .env if present; real deployments set env vars directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	appLog.WithField("env", cfg.Server.Environment).Info("application starting")

	// Connect to database
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		appLog.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetConnMaxIdleTime(cfg.Database.MaxIdleTime)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		appLog.WithError(err).Fatal("failed to ping database")
	}
	appLog.Info("database connection established")

	// Trigger rate limiter (Redis-backed or noop based on config)
	limiter, err := ratelimit.New(ratelimit.Config{
		Enabled:  cfg.RateLimit.Enabled,
		RedisURL: cfg.Redis.URL,
		Attempts: cfg.RateLimit.TriggerAttempts,
		Window:   cfg.RateLimit.TriggerWindow,
	}, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("failed to initialize trigger rate limiter")
	}

	// Dispatcher: Kafka in real deployments, log-only when disabled
	routing := dispatch.NewRoutingTable(cfg.Kafka.Topics, cfg.Kafka.DefaultTopic)
	var dispatcher ports.Dispatcher
	if cfg.Kafka.Enabled {
		kafkaDispatcher, err := dispatch.NewKafkaDispatcher(cfg.Kafka.BootstrapServers, routing, cfg.Kafka.DeliveryTimeout, appLog)
		if err != nil {
			appLog.WithError(err).Fatal("failed to initialize kafka dispatcher")
		}
		defer kafkaDispatcher.Close()
		dispatcher = kafkaDispatcher
		appLog.WithField("bootstrap_servers", cfg.Kafka.BootstrapServers).Info("kafka dispatcher initialized")
	} else {
		dispatcher = dispatch.NewLogDispatcher(routing, appLog)
		appLog.Warn("kafka disabled, using log dispatcher")
	}

	// Repositories
	actorRepo := persistence.NewPostgresActorRepository(db)
	workflowRepo := persistence.NewPostgresWorkflowRepository(db)
	runRepo := persistence.NewPostgresRunRepository(db)
	auditRepo := persistence.NewPostgresAuditRepository(db)
	doctorRepo := persistence.NewPostgresDoctorRepository(db)

	// Services
	tokenService, err := token.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	if err != nil {
		appLog.WithError(err).Fatal("failed to initialize token service")
	}
	passwordService := password.NewBcryptService(0)

	// Use cases
	recorder := usecase.NewAuditRecorder(auditRepo, appLog)
	authUseCase := usecase.NewAuthUseCase(actorRepo, passwordService, tokenService, appLog)
	workflowUseCase := usecase.NewWorkflowUseCase(workflowRepo, runRepo, dispatcher, recorder, limiter, appLog)
	runUseCase := usecase.NewRunUseCase(runRepo, appLog)
	adminUseCase := usecase.NewAdminUseCase(actorRepo, recorder, appLog)
	doctorUseCase := usecase.NewDoctorUseCase(doctorRepo, recorder)
	auditUseCase := usecase.NewAuditUseCase(auditRepo)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(tokenService, actorRepo)
	workerAuth := middleware.NewWorkerAuth(cfg.Auth.WorkerToken)

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, appLog,
		httpadapter.NewAuthHandler(authUseCase),
		httpadapter.NewWorkflowHandler(workflowUseCase, authMiddleware),
		httpadapter.NewRunHandler(runUseCase, workerAuth),
		httpadapter.NewAdminHandler(adminUseCase, doctorUseCase, authMiddleware),
		httpadapter.NewAuditHandler(auditUseCase, authMiddleware),
	)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			appLog.WithError(err).Fatal("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("server forced to shutdown")
	}
	appLog.Info("server exited")
}
