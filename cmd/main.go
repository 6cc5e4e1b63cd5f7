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

	"github.com/Dosada05/tournament-rewards/cache"
	"github.com/Dosada05/tournament-rewards/config"
	"github.com/Dosada05/tournament-rewards/db"
	"github.com/Dosada05/tournament-rewards/handlers"
	"github.com/Dosada05/tournament-rewards/live"
	"github.com/Dosada05/tournament-rewards/repositories"
	api "github.com/Dosada05/tournament-rewards/routes"
	"github.com/Dosada05/tournament-rewards/services"
	"github.com/Dosada05/tournament-rewards/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Bool("cache", cfg.CacheEnabled()),
		slog.Bool("archive", cfg.ArchiveEnabled()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	if err := db.Migrate(ctx, dbConn); err != nil {
		logger.Error("failed to apply schema", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("schema applied")

	// Кэш таблицы лидеров (опционально)
	var leaderboardCache services.LeaderboardCache
	if cfg.CacheEnabled() {
		var redisClient *redis.Client
		redisClient, err = cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Error("failed to connect to redis", slog.String("addr", cfg.RedisAddr), slog.Any("error", err))
			os.Exit(1)
		}
		defer redisClient.Close()
		leaderboardCache = cache.NewLeaderboardCache(redisClient, cfg.LeaderboardCacheTTL)
		logger.Info("leaderboard cache enabled", slog.Duration("ttl", cfg.LeaderboardCacheTTL))
	}

	// Архив итогов турниров в Cloudflare R2 (опционально)
	var archiver services.ResultsArchiver
	if cfg.ArchiveEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		archiver = storage.NewResultsArchive(uploader)
		logger.Info("results archive enabled", slog.String("bucket", cfg.R2BucketName))
	}

	// Инициализация WebSocket Hub
	wsHub := live.NewHub(logger)
	go wsHub.Run(ctx)

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	transactor := repositories.NewTransactor(dbConn, logger)

	// Инициализация сервисов
	scorer, err := services.NewRandomScoreGenerator(cfg.ScoreMin, cfg.ScoreMax)
	if err != nil {
		logger.Error("invalid score range", slog.Any("error", err))
		os.Exit(1)
	}
	userService := services.NewUserService(userRepo, logger)
	matchService := services.NewMatchService(transactor, matchRepo)
	tournamentService := services.NewTournamentService(
		transactor,
		tournamentRepo,
		userRepo,
		matchRepo,
		scorer,
		leaderboardCache,
		archiver,
		wsHub,
		logger,
	)

	// Инициализация обработчиков HTTP
	userHandler := handlers.NewUserHandler(userService, logger)
	matchHandler := handlers.NewMatchHandler(matchService, logger)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, logger)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.CORSAllowedOrigins, logger)
	healthHandler := handlers.NewHealthHandler(dbConn, logger)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.CORSAllowedOrigins,
		userHandler,
		matchHandler,
		tournamentHandler,
		webSocketHandler,
		healthHandler,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

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
