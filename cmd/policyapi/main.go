package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	deliveryHTTP "github.com/frontandrew/insura/internal/delivery/http"
	"github.com/frontandrew/insura/internal/pkg/config"
	"github.com/frontandrew/insura/internal/pkg/database"
	"github.com/frontandrew/insura/internal/pkg/jwt"
	"github.com/frontandrew/insura/internal/pkg/logger"
	redisclient "github.com/frontandrew/insura/internal/pkg/redis"
	"github.com/frontandrew/insura/internal/repository"
	"github.com/frontandrew/insura/internal/repository/cached"
	"github.com/frontandrew/insura/internal/repository/memory"
	"github.com/frontandrew/insura/internal/repository/postgres"
)

func main() {
	// =========================================================================
	// Загрузка конфигурации
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// =========================================================================
	// Инициализация logger
	// =========================================================================

	log := logger.New(cfg.Logger.Level, cfg.Logger.Format, cfg.Logger.Output)
	log.Info("Starting Insura policy API server", map[string]interface{}{
		"version": "1.0.0",
		"storage": cfg.Storage.Backend,
	})

	// =========================================================================
	// Создание repositories: memory по умолчанию, postgres по конфигурации
	// =========================================================================

	ctx := context.Background()

	var policyRepo repository.PolicyRepository
	var userRepo repository.UserRepository

	switch cfg.Storage.Backend {
	case "postgres":
		db, err := database.Connect(ctx, &cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", map[string]interface{}{
				"error": err.Error(),
			})
		}
		defer database.Close(db)

		log.Info("Connected to PostgreSQL", map[string]interface{}{
			"host":     cfg.Database.Host,
			"port":     cfg.Database.Port,
			"database": cfg.Database.Database,
		})

		policyRepo = postgres.NewPolicyRepository(db)
		userRepo = postgres.NewUserRepository(db)

	default:
		policyRepo = memory.NewPolicyRepository()
		userRepo = memory.NewUserRepository()
	}

	var blacklist repository.TokenBlacklist
	if cfg.Storage.Blacklist == "redis" {
		redisConn, err := redisclient.NewClient(redisclient.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", map[string]interface{}{
				"error": err.Error(),
			})
		}
		defer func() { _ = redisConn.Close() }()

		log.Info("Connected to Redis", map[string]interface{}{
			"host": cfg.Redis.Host,
			"port": cfg.Redis.Port,
		})

		blacklist = cached.NewTokenBlacklist(redisConn)
	} else {
		blacklist = memory.NewTokenBlacklist()
	}

	log.Info("Repositories initialized")

	// =========================================================================
	// Создание JWT token service
	// =========================================================================

	tokenService := jwt.NewTokenService(cfg.JWT.SecretKey, cfg.JWT.TokenExpiry)

	log.Info("JWT token service initialized")

	// =========================================================================
	// Создание HTTP handlers
	// =========================================================================

	documentVault := deliveryHTTP.NewDocumentVault()
	authHandler := deliveryHTTP.NewAuthHandler(userRepo, blacklist, tokenService, log)
	policyHandler := deliveryHTTP.NewPolicyHandler(policyRepo, documentVault, cfg.Server.PublicURL, log)

	log.Info("HTTP handlers initialized")

	// =========================================================================
	// Создание и настройка HTTP router
	// =========================================================================

	router := deliveryHTTP.NewRouter(
		authHandler,
		policyHandler,
		tokenService,
		blacklist,
		cfg,
		log,
	)

	handler := router.Setup()

	log.Info("HTTP router configured")

	// =========================================================================
	// Создание HTTP сервера
	// =========================================================================

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// =========================================================================
	// Запуск сервера в goroutine
	// =========================================================================

	serverErrors := make(chan error, 1)

	go func() {
		log.Info("API server listening", map[string]interface{}{
			"address": srv.Addr,
		})
		serverErrors <- srv.ListenAndServe()
	}()

	// =========================================================================
	// Graceful shutdown
	// =========================================================================

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatal("Server error", map[string]interface{}{
			"error": err.Error(),
		})

	case sig := <-shutdown:
		log.Info("Shutdown signal received", map[string]interface{}{
			"signal": sig.String(),
		})

		// Даем серверу 30 секунд на graceful shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Graceful shutdown failed", map[string]interface{}{
				"error": err.Error(),
			})

			if err := srv.Close(); err != nil {
				log.Fatal("Failed to close server", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}

		log.Info("Server stopped gracefully")
	}
}
