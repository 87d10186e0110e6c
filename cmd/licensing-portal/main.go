package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/piyushaneja30/licensing-portal/internal/config"
	"github.com/piyushaneja30/licensing-portal/internal/events"
	"github.com/piyushaneja30/licensing-portal/internal/events/kafka"
	httpHandler "github.com/piyushaneja30/licensing-portal/internal/handler/http"
	"github.com/piyushaneja30/licensing-portal/internal/logger"
	"github.com/piyushaneja30/licensing-portal/internal/repository"
	"github.com/piyushaneja30/licensing-portal/internal/repository/memory"
	"github.com/piyushaneja30/licensing-portal/internal/repository/postgres"
	"github.com/piyushaneja30/licensing-portal/internal/repository/redis"
	"github.com/piyushaneja30/licensing-portal/internal/security"
	"github.com/piyushaneja30/licensing-portal/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if cfg.Database.AutoMigrate {
		log.Info("Running database migrations")
		migrationURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			cfg.Database.User, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, cfg.Database.SSLMode)
		m, err := migrate.New("file://migrations", migrationURL)
		if err != nil {
			log.Fatal("Failed to create migration instance", zap.Error(err))
		}
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
		log.Info("Migrations applied successfully")
	}

	ctx := context.Background()

	dbPool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize PostgreSQL connection pool", zap.Error(err))
	}
	defer dbPool.Close()

	accountRepo := postgres.NewAccountRepository(dbPool)

	var sessionRepo repository.SessionRepository
	var closeSessions func()
	switch cfg.Auth.SessionBackend {
	case "redis":
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to initialize Redis client", zap.Error(err))
		}
		defer redisClient.Close()
		sessionRepo = redis.NewSessionStore(redisClient, log)
		// Redis expires session keys itself; no reaper needed.
	case "postgres":
		pgSessions := postgres.NewSessionRepository(dbPool)
		sessionRepo = pgSessions
		stopReaper := startSessionReaper(pgSessions, cfg.Auth.SessionReapInterval, log)
		closeSessions = stopReaper
	default:
		store := memory.NewSessionStore()
		store.StartJanitor(cfg.Auth.SessionReapInterval)
		sessionRepo = store
		closeSessions = store.Close
	}
	if closeSessions != nil {
		defer closeSessions()
	}
	log.Info("Session store initialized", zap.String("backend", cfg.Auth.SessionBackend))

	var publisher events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer
	} else {
		log.Info("Kafka brokers not configured; auth events are discarded")
		publisher = events.NoopPublisher{}
	}

	hasher, err := security.NewPasswordHasher(security.Argon2Params{
		Memory:      cfg.Auth.Argon2Memory,
		Iterations:  cfg.Auth.Argon2Iterations,
		Parallelism: cfg.Auth.Argon2Parallelism,
		SaltLength:  cfg.Auth.Argon2SaltLength,
		KeyLength:   cfg.Auth.Argon2KeyLength,
	})
	if err != nil {
		log.Fatal("Failed to initialize password hasher", zap.Error(err))
	}

	codec, err := security.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatal("Failed to initialize token codec", zap.Error(err))
	}

	authService, err := service.NewAuthService(accountRepo, sessionRepo, hasher, codec, publisher, log)
	if err != nil {
		log.Fatal("Failed to initialize auth service", zap.Error(err))
	}

	router := httpHandler.NewRouter(authService, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Starting HTTP server", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited properly")
}

// startSessionReaper deletes expired session rows on a fixed interval. Expiry
// checks happen at read time regardless; this only bounds table growth.
func startSessionReaper(repo repository.SessionRepository, interval time.Duration, log *zap.Logger) func() {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := repo.DeleteExpired(context.Background(), time.Now())
				if err != nil {
					log.Warn("Failed to reap expired sessions", zap.Error(err))
					continue
				}
				if n > 0 {
					log.Debug("Reaped expired sessions", zap.Int("count", n))
				}
			case <-stop:
				return
			}
		}
	}()
	return func() { close(stop) }
}
