package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/tournament-rounds/cache"
	"github.com/Dosada05/tournament-rounds/config"
	"github.com/Dosada05/tournament-rounds/db"
	"github.com/Dosada05/tournament-rounds/handlers"
	"github.com/Dosada05/tournament-rounds/repositories"
	api "github.com/Dosada05/tournament-rounds/routes"
	"github.com/Dosada05/tournament-rounds/services"
	"github.com/Dosada05/tournament-rounds/storage"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Duration("round_expiry", cfg.RoundExpiry),
		slog.Duration("poll_interval", cfg.PollInterval))

	// Миграции схемы
	if cfg.MigrationsAuto {
		version, err := db.Migrate(cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("migrations applied", slog.Uint64("schema_version", uint64(version)))
	}

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	healthChecks := map[string]handlers.Pinger{"postgres": dbConn}

	// Кэш снимков состояния раунда (опционально)
	var roundStateCache services.RoundStateCache
	if cfg.Redis != nil {
		redisClient := cache.NewClient(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		roundStateCache = cache.NewRoundStateCache(redisClient, cfg.PollInterval)
		healthChecks["redis"] = handlers.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		logger.Info("redis round state cache enabled", slog.String("addr", cfg.Redis.Addr))
	}

	// Архив итогов в Cloudflare R2 (опционально)
	var archive storage.ResultsArchive
	if cfg.R2 != nil {
		archive, err = storage.NewCloudflareR2Archive(context.Background(), storage.CloudflareR2Config{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 archive", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 results archive initialized")
	}

	// Инициализация репозиториев
	txManager := repositories.NewTxManager(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	courseRepo := repositories.NewPostgresCourseRepository(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	sessionRepo := repositories.NewPostgresRoundSessionRepository(dbConn)
	participationRepo := repositories.NewPostgresParticipationRepository(dbConn)
	scoreRepo := repositories.NewPostgresScoreRepository(dbConn)
	standingRepo := repositories.NewPostgresTournamentStandingRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	roundService := services.NewRoundSessionService(
		txManager,
		tournamentRepo,
		sessionRepo,
		participationRepo,
		roundStateCache,
		services.RoundSessionConfig{Expiry: cfg.RoundExpiry, PollInterval: cfg.PollInterval},
		logger,
	)
	scoreService := services.NewScoreService(
		txManager,
		tournamentRepo,
		courseRepo,
		sessionRepo,
		participationRepo,
		scoreRepo,
		logger,
	)
	standingsService := services.NewStandingsService(
		txManager,
		tournamentRepo,
		sessionRepo,
		participationRepo,
		scoreRepo,
		standingRepo,
		userRepo,
		archive,
		logger,
	)
	coordinator := services.NewRoundCoordinator(
		tournamentRepo,
		participationRepo,
		roundService,
		scoreService,
		standingsService,
		logger,
	)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	roundHandler := handlers.NewRoundHandler(coordinator)
	tournamentHandler := handlers.NewTournamentHandler(coordinator)
	healthHandler := handlers.NewHealthHandler(healthChecks)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{JWTSecret: []byte(cfg.JWTSecretKey), AllowedOrigins: cfg.AllowedOrigins},
		roundHandler,
		tournamentHandler,
		healthHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
