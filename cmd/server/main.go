package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/St1cky1/task-manager/internal/api"
	"github.com/St1cky1/task-manager/internal/config"
	"github.com/St1cky1/task-manager/internal/infrastructure/assist"
	"github.com/St1cky1/task-manager/internal/infrastructure/auth"
	"github.com/St1cky1/task-manager/internal/infrastructure/client"
	"github.com/St1cky1/task-manager/internal/repository"
	"github.com/St1cky1/task-manager/internal/usecase"
	"github.com/St1cky1/task-manager/internal/worker"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "server configuration file")
	flag.Parse()

	cfg := config.MustLoad(configPath)
	log := mustMakeLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Запускаем миграции
	if err := client.RunMigrations(cfg.DB.URL); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	// Подключаемся к БД
	db, err := client.NewPostgresClient(ctx, client.PostgresConfig{URL: cfg.DB.URL, MaxConns: cfg.DB.MaxConns})
	if err != nil {
		log.Error("cannot connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Инициализируем репозитории
	taskRepo := repository.NewTaskRepository(db.Pool)
	categoryRepo := repository.NewCategoryRepository(db.Pool)
	userRepo := repository.NewUserRepository(db.Pool)
	taskAuditRepo := repository.NewTaskAuditRepository(db.Pool)

	var wg sync.WaitGroup

	// Аудит через RabbitMQ включается только при заданном URL
	var publisher usecase.AuditPublisher = client.NoopPublisher{Log: log}
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := client.NewRabbitMQClient(cfg.RabbitMQ.URL, log)
		if err != nil {
			log.Error("cannot connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer func() { _ = rabbitMQ.Close() }()
		publisher = rabbitMQ

		auditWorker := worker.NewAuditWorker(log, cfg.RabbitMQ.URL, taskAuditRepo)
		wg.Add(1)
		go func() {
			defer wg.Done()
			auditWorker.Start(ctx)
		}()
	} else {
		log.Warn("rabbitmq url is empty, audit log disabled")
	}

	var generator usecase.TextGenerator
	if cfg.Assist.APIKey != "" {
		generator = assist.NewGeminiClient(assist.Config{
			APIKey:  cfg.Assist.APIKey,
			Model:   cfg.Assist.Model,
			BaseURL: cfg.Assist.BaseURL,
			Timeout: cfg.Assist.Timeout,
		})
	} else {
		log.Warn("assist api key is empty, ai assistant disabled")
	}

	// Инициализируем сервисы
	deps := api.Deps{
		Tasks:      usecase.NewTaskService(log, taskRepo, taskAuditRepo, publisher),
		Categories: usecase.NewCategoryService(categoryRepo),
		Auth:       usecase.NewAuthService(log, userRepo, auth.NewPasswordManager()),
		Assist:     usecase.NewAssistService(log, generator, taskRepo),
		DB:         db,
	}

	server := http.Server{
		Addr:              cfg.HTTP.Address,
		ReadHeaderTimeout: cfg.HTTP.Timeout,
		Handler: api.NewRouter(log, deps, api.Options{
			Timeout:     cfg.HTTP.Timeout,
			CORSOrigins: cfg.HTTP.CORSOrigins,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server", "address", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped unexpectedly", "error", err)
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}

	// ждём воркер аудита
	wg.Wait()
	log.Info("server stopped")
}

func mustMakeLogger(logLevel string) *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
