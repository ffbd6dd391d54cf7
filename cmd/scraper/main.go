package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"leilauto/internal/api"
	"leilauto/internal/config"
	"leilauto/internal/publisher"
	"leilauto/internal/scheduler"
	"leilauto/internal/service"
	"leilauto/internal/source/browser"
	"leilauto/internal/source/megaleiloes"
	"leilauto/internal/source/superbid"
	"leilauto/internal/source/vipleiloes"
	"leilauto/internal/storage/postgres"
	"leilauto/migrations"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	if err := migrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
		URL:        cfg.RabbitMQ.URL,
		Exchange:   cfg.RabbitMQ.Exchange,
		RoutingKey: cfg.RabbitMQ.RoutingKey,
		QueueName:  cfg.RabbitMQ.QueueName,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer rabbitMQ.Close()

	vehicleStore := postgres.NewVehicleStore(db)
	auctioneerStore := postgres.NewAuctioneerStore(db)
	fipeStore := postgres.NewFipeStore(db)

	adapters := buildAdapters(cfg, logger)

	reconciler := service.NewReconciler(vehicleStore, fipeStore, rabbitMQ, logger)
	runService := service.NewRunService(
		adapters,
		auctioneerStore,
		reconciler,
		rabbitMQ,
		logger,
		cfg.Scraping.AdapterTimeout,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	sched := scheduler.NewScheduler(runService, cfg.Scraping.Interval, cfg.Scraping.RunTimeout, logger)
	go func() {
		if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scheduler error", "error", err)
		}
	}()

	server := api.NewServer(runService, vehicleStore, logger)
	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: server.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown error", "error", err)
		}
	}()

	logger.Info("starting scraper",
		"adapters", len(adapters),
		"interval", cfg.Scraping.Interval,
		"addr", cfg.HTTP.Addr,
	)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server error", "error", err)
		os.Exit(1)
	}
}

func migrate(db *sqlx.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db.DB, ".")
}

func buildAdapters(cfg *config.Config, logger *slog.Logger) []service.Adapter {
	adapters := []service.Adapter{
		superbid.New(superbid.Config{
			BaseURL:        cfg.Scraping.Superbid.BaseURL,
			PageSize:       cfg.Scraping.Superbid.PageSize,
			MaxPages:       cfg.Scraping.Superbid.MaxPages,
			Timeout:        cfg.Scraping.Superbid.Timeout,
			MaxAttempts:    cfg.Scraping.Superbid.Retry.MaxAttempts,
			InitialBackoff: cfg.Scraping.Superbid.Retry.InitialBackoff,
			MaxBackoff:     cfg.Scraping.Superbid.Retry.MaxBackoff,
		}, logger),
		megaleiloes.New(megaleiloes.Config{
			BaseURL:  cfg.Scraping.Megaleiloes.BaseURL,
			MaxPages: cfg.Scraping.Megaleiloes.MaxPages,
			Timeout:  cfg.Scraping.Megaleiloes.Timeout,
		}, logger),
		vipleiloes.New(vipleiloes.Config{
			BaseURL:     cfg.Scraping.Vipleiloes.BaseURL,
			MaxPages:    cfg.Scraping.Vipleiloes.MaxPages,
			PageTimeout: cfg.Scraping.Vipleiloes.Timeout,
			Browser: browser.Options{
				ChromeBin: cfg.Browser.ChromeBin,
				Headless:  cfg.Browser.Headless,
				UserAgent: cfg.Browser.UserAgent,
			},
		}, logger),
	}
	return adapters
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
