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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/sportlink/sportlink-backend/brackets"
	"github.com/sportlink/sportlink-backend/config"
	"github.com/sportlink/sportlink-backend/db"
	"github.com/sportlink/sportlink-backend/handlers"
	"github.com/sportlink/sportlink-backend/repositories"
	api "github.com/sportlink/sportlink-backend/routes"
	"github.com/sportlink/sportlink-backend/services"
)

const (
	statusSchedulerInterval   = 30 * time.Second // How often tournament statuses are rolled forward
	dispatchSchedulerInterval = time.Minute      // How often due notifications are pushed out
	inviteCleanupInterval     = time.Hour        // How often expired invites are pruned
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
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

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

	// WebSocket-хаб: комнаты турниров и личные комнаты пользователей.
	wsHub := brackets.NewHub()
	go wsHub.Run()
	logger.Info("websocket hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	inviteRepo := repositories.NewPostgresInviteRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	notificationRepo := repositories.NewPostgresNotificationRepository(dbConn)
	postRepo := repositories.NewPostgresPostRepository(dbConn)
	followRepo := repositories.NewPostgresFollowRepository(dbConn)
	messageRepo := repositories.NewPostgresMessageRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo)
	teamService := services.NewTeamService(teamRepo, userRepo)
	inviteService := services.NewInviteService(inviteRepo, teamRepo)
	notificationService := services.NewNotificationService(notificationRepo, wsHub, logger)
	tournamentService := services.NewTournamentService(
		dbConn,
		tournamentRepo,
		participantRepo,
		matchRepo,
		teamRepo,
		notificationRepo,
		wsHub,
		logger,
	)
	postService := services.NewPostService(postRepo, followRepo)
	followService := services.NewFollowService(followRepo, userRepo)
	chatService := services.NewChatService(messageRepo, userRepo, wsHub)
	logger.Info("services initialized")

	// Фоновые планировщики: перевод статусов турниров по датам и рассылка
	// наступивших уведомлений. Останавливаются вместе с сервером.
	schedulerCtx, stopSchedulers := context.WithCancel(context.Background())
	schedulers, schedulerCtx := errgroup.WithContext(schedulerCtx)
	schedulers.Go(func() error {
		return runScheduler(schedulerCtx, logger, "tournament status", statusSchedulerInterval, func(ctx context.Context) (int, error) {
			return tournamentService.AutoUpdateStatuses(ctx, time.Now())
		})
	})
	schedulers.Go(func() error {
		return runScheduler(schedulerCtx, logger, "notification dispatch", dispatchSchedulerInterval, func(ctx context.Context) (int, error) {
			return notificationService.DispatchDue(ctx, time.Now())
		})
	})
	schedulers.Go(func() error {
		return runScheduler(schedulerCtx, logger, "invite cleanup", inviteCleanupInterval, func(ctx context.Context) (int, error) {
			n, err := inviteRepo.DeleteExpired(ctx)
			return int(n), err
		})
	})

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	userHandler := handlers.NewUserHandler(userService)
	teamHandler := handlers.NewTeamHandler(teamService, inviteService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	postHandler := handlers.NewPostHandler(postService)
	followHandler := handlers.NewFollowHandler(followService)
	chatHandler := handlers.NewChatHandler(chatService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		[]byte(cfg.JWTSecretKey),
		cfg.CORSAllowedOrigins,
		authHandler,
		userHandler,
		teamHandler,
		tournamentHandler,
		postHandler,
		followHandler,
		chatHandler,
		notificationHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

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
		logger.Info("server stopped")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}

	stopSchedulers()
	if err := schedulers.Wait(); err != nil {
		logger.Error("scheduler exited with error", slog.Any("error", err))
	}
	logger.Info("application exited")
}

// runScheduler сразу выполняет job, а затем повторяет его по тикеру до
// отмены контекста. Ошибки отдельных прогонов логируются, но не
// останавливают планировщик.
func runScheduler(ctx context.Context, logger *slog.Logger, name string, interval time.Duration, job func(context.Context) (int, error)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info("scheduler started", slog.String("name", name), slog.Duration("interval", interval))

	run := func() {
		n, err := job(ctx)
		if err != nil {
			logger.Error("scheduler run failed", slog.String("name", name), slog.Any("error", err))
			return
		}
		if n > 0 {
			logger.Info("scheduler run complete", slog.String("name", name), slog.Int("processed", n))
		}
	}

	run()
	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler stopped", slog.String("name", name))
			return nil
		case <-ticker.C:
			run()
		}
	}
}
