package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"catalog_importer/internal/api"
	"catalog_importer/internal/catalog"
	"catalog_importer/internal/config"
	"catalog_importer/internal/inbox"
	"catalog_importer/internal/normalizer"
	"catalog_importer/internal/observability"
	"catalog_importer/internal/publisher"
	"catalog_importer/internal/scheduler"
	"catalog_importer/internal/service"
	"catalog_importer/internal/sheet"
	"catalog_importer/internal/storage/postgres"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	mode := flag.String("mode", "import", "import | template | sheets | serve | watch")
	file := flag.String("file", "", "spreadsheet to import (import mode)")
	out := flag.String("out", "product_template.xlsx", "template output path (template mode)")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	if *mode == "template" {
		if err := writeTemplate(*out, cfg.Layout); err != nil {
			logger.Error("failed to write template", "error", err)
			os.Exit(1)
		}
		logger.Info("template written", "path", *out, "layout", cfg.Layout.Preset)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if err := run(ctx, *mode, *file, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("importer failed", "mode", *mode, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, mode, file string, cfg *config.Config, logger *slog.Logger) error {
	catalogClient, err := catalog.New(catalog.Config{
		BaseURL: cfg.Catalog.BaseURL,
		Token:   cfg.Catalog.Token,
		Timeout: cfg.Catalog.Timeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("create catalog client: %w", err)
	}
	defer catalogClient.Close()

	norm, err := normalizer.New(cfg.Layout, logger)
	if err != nil {
		return fmt.Errorf("create normalizer: %w", err)
	}

	recorder := observability.NewRecorder()

	// Optional collaborators stay untyped nil when disabled.
	var (
		pub     service.Publisher
		runs    service.RunStore
		history api.RunReader
	)

	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	if cfg.Database.Enabled {
		db, err := sqlx.Connect("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		logger.Info("connected to database")

		runStore := postgres.NewRunStore(db)
		runs = runStore
		history = runStore
	}

	svc := service.NewSyncService(
		catalogClient,
		norm,
		sheet.NewXLSXReader(cfg.Sheet.Name),
		pub,
		runs,
		recorder,
		logger,
		cfg.Sync,
	)

	logger.Info("starting catalog importer",
		"mode", mode,
		"catalog", cfg.Catalog.BaseURL,
		"layout", cfg.Layout.Preset,
	)

	switch mode {
	case "import":
		return importFile(ctx, svc, file)
	case "sheets":
		return importGoogleSheet(ctx, svc, cfg.Google)
	case "serve":
		handler := api.NewHandler(svc, history, cfg.Layout, recorder.Handler(), api.Config{
			MaxUploadSize: cfg.HTTP.MaxUploadSize,
		}, logger)
		return serve(ctx, cfg.HTTP.Addr, handler, logger)
	case "watch":
		box, err := inbox.New(svc, inbox.Config{
			Dir:       cfg.Inbox.Dir,
			DoneDir:   cfg.Inbox.DoneDir,
			FailedDir: cfg.Inbox.FailedDir,
		}, logger)
		if err != nil {
			return err
		}
		return scheduler.NewScheduler(box, cfg.Inbox.Interval, cfg.Inbox.Timeout, logger).Start(ctx)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func importFile(ctx context.Context, svc *service.SyncService, path string) error {
	if path == "" {
		return errors.New("-file is required in import mode")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	_, err = svc.Import(ctx, filepath.Base(path), f)
	return err
}

func importGoogleSheet(ctx context.Context, svc *service.SyncService, cfg config.GoogleConfig) error {
	reader, err := sheet.NewGoogleReader(ctx, sheet.GoogleConfig{
		SpreadsheetID:   cfg.SpreadsheetID,
		SheetName:       cfg.SheetName,
		CredentialsFile: cfg.CredentialsFile,
	})
	if err != nil {
		return fmt.Errorf("create google sheets reader: %w", err)
	}

	rows, err := reader.ReadRows(ctx)
	if err != nil {
		return fmt.Errorf("read google sheet: %w", err)
	}

	_, err = svc.Run(ctx, reader.Source(), rows)
	return err
}

func serve(ctx context.Context, addr string, handler *api.Handler, logger *slog.Logger) error {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}

func writeTemplate(path string, layout normalizer.Layout) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create template file: %w", err)
	}
	if err := sheet.WriteTemplate(f, layout); err != nil {
		f.Close()
		return err
	}
	return f.Close()
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
