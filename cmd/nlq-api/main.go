package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alikhantareen/natural-language-query-finder/internal/api"
	"github.com/alikhantareen/natural-language-query-finder/internal/api/uistatic"
	"github.com/alikhantareen/natural-language-query-finder/internal/auth"
	"github.com/alikhantareen/natural-language-query-finder/internal/config"
	"github.com/alikhantareen/natural-language-query-finder/internal/history"
	"github.com/alikhantareen/natural-language-query-finder/internal/nl2sql"
	"github.com/alikhantareen/natural-language-query-finder/internal/observability"
	"github.com/alikhantareen/natural-language-query-finder/internal/pipeline"
	"github.com/alikhantareen/natural-language-query-finder/internal/query"
	"github.com/alikhantareen/natural-language-query-finder/internal/query/memory"
	"github.com/alikhantareen/natural-language-query-finder/internal/query/sqldb"
	s3store "github.com/alikhantareen/natural-language-query-finder/internal/storage/s3"
)

func main() {
	if _, err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load env files", slog.Any("error", err))
		os.Exit(1)
	}
	cfg, err := config.LoadFromEnv("nlq-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	readiness := []api.ReadinessCheck{api.CheckAIConfig(cfg)}

	executor := cfg.ResolveExecutor()
	var engine query.Engine
	switch executor {
	case config.ExecutorSQL:
		db, err := sqldb.Open(context.Background(), sqldb.DBConfig{
			Driver:          cfg.Database.Driver,
			DSN:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ReadOnly:        cfg.Database.ReadOnly,
		})
		if err != nil {
			logger.Error("failed to open database", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()
		// DuckDB enforces read-only at open time; PostgreSQL per transaction.
		readOnlyTx := cfg.Database.ReadOnly && cfg.Database.Driver == sqldb.DriverPostgres
		sqlEngine := sqldb.NewEngine(db, readOnlyTx, cfg.Database.RowLimit)
		engine = sqlEngine
		readiness = append(readiness, sqlEngine.Ping)
	default:
		engine = memory.NewEngine()
	}
	logger.Info("query executor selected", slog.String("executor", string(executor)))

	client, err := nl2sql.NewOpenAIClient(nl2sql.OpenAIConfig{
		BaseURL: cfg.AI.BaseURL,
		APIKey:  cfg.AI.APIKey,
		Timeout: cfg.AI.Timeout,
		Referer: cfg.AI.Referer,
		Title:   cfg.AI.Title,
	})
	if err != nil {
		logger.Error("failed to initialize llm client", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.AI.APIKey == "" {
		logger.Warn("AI API key is not configured, queries will fail and /ready reports not ready")
	}

	settings := nl2sql.Settings{
		Model:        cfg.AI.Model,
		Temperature:  cfg.AI.Temperature,
		SystemPrompt: cfg.AI.SystemPrompt,
	}
	if strings.TrimSpace(settings.SystemPrompt) == "" {
		settings.SystemPrompt = nl2sql.DefaultSystemPrompt
	}

	pipelineDeps := pipeline.Dependencies{
		Logger:         logger,
		Generator:      nl2sql.NewGenerator(client),
		Engine:         engine,
		Narrator:       nl2sql.NewNarrator(client),
		HistoryTimeout: cfg.History.Timeout,
		Settings:       settings,
		RowLimit:       cfg.Database.RowLimit,
	}

	var archive *history.Archive
	if cfg.History.Enabled {
		objectStore, err := s3store.New(context.Background(), s3store.Config{
			Endpoint:         cfg.ObjectStore.Endpoint,
			Region:           cfg.ObjectStore.Region,
			Bucket:           cfg.ObjectStore.Bucket,
			AccessKeyID:      cfg.ObjectStore.AccessKeyID,
			SecretAccessKey:  cfg.ObjectStore.SecretAccessKey,
			UseSSL:           cfg.ObjectStore.UseSSL,
			Prefix:           cfg.ObjectStore.Prefix,
			AutoCreateBucket: cfg.ObjectStore.AutoCreateBucket,
		})
		if err != nil {
			logger.Error("failed to initialize object store", slog.Any("error", err))
			os.Exit(1)
		}
		archive, err = history.NewArchive(objectStore)
		if err != nil {
			logger.Error("failed to initialize history archive", slog.Any("error", err))
			os.Exit(1)
		}
		pipelineDeps.Recorder = archive
		readiness = append(readiness, objectStore.Ready)
	}

	service, err := pipeline.NewService(pipelineDeps)
	if err != nil {
		logger.Error("failed to initialize query pipeline", slog.Any("error", err))
		os.Exit(1)
	}

	deps := api.Dependencies{
		Logger:            logger,
		Readiness:         api.CombineReadinessChecks(readiness...),
		DependencyTimeout: 2 * time.Second,
		Pipeline:          service,
		Executor:          string(executor),
		UI:                uistatic.Handler(),
	}
	if archive != nil {
		deps.History = archive
	}
	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
