// Package app assembles the server: configuration, logging, the analytics
// engine, the workflow runner, and the HTTP transport.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finsight/internal/analytics"
	"finsight/internal/config"
	"finsight/internal/infrastructure"
	"finsight/internal/ingest"
	"finsight/internal/narrative"
	"finsight/internal/services"
	handlers "finsight/internal/transport/http"
	"finsight/internal/workflow"
)

// Version is set at build time.
var Version = "dev"

// Application is the assembled server.
type Application struct {
	Config *config.Config
	Logger *slog.Logger
	Server *http.Server
}

// New builds the application from the config file at path ("" for
// environment-only configuration).
func New(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger := infrastructure.NewLogger(cfg.Logging, os.Stdout)
	logger.Info("application starting",
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port))

	rules := analytics.DefaultCategoryRules()
	var categorizer ingest.Categorizer
	if cfg.Workflow.CategoryRulesFile != "" {
		rulesFile, err := ingest.LoadRulesFile(cfg.Workflow.CategoryRulesFile)
		if err != nil {
			return nil, fmt.Errorf("loading category rules: %w", err)
		}
		rules = rulesFile.EngineRules()
		categorizer = ingest.NewRuleCategorizer(rulesFile.Keywords)
	}

	engine := analytics.NewEngine(rules, logger)
	runner, err := buildRunner(cfg, engine, categorizer, logger)
	if err != nil {
		return nil, err
	}
	service := services.NewAnalysisService(runner, engine, logger)
	router := handlers.NewRouter(cfg, service, logger)

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return &Application{Config: cfg, Logger: logger, Server: server}, nil
}

func buildRunner(cfg *config.Config, engine *analytics.Engine, categorizer ingest.Categorizer, logger *slog.Logger) (*workflow.Runner, error) {
	opts := workflow.Options{
		Engine:       engine,
		Categorizer:  categorizer,
		Concurrency:  cfg.Workflow.MaxConcurrency,
		WindowMonths: cfg.Workflow.WindowMonths,
		Logger:       logger,
	}

	if cfg.Narrative.UseGemini {
		storyteller, err := narrative.NewGeminiStoryteller(context.Background(), cfg.Narrative.Model)
		if err != nil {
			return nil, fmt.Errorf("creating gemini storyteller: %w", err)
		}
		opts.Storyteller = storyteller
		opts.Advisor = storyteller
		logger.Info("gemini narratives enabled", slog.String("model", cfg.Narrative.Model))
	}

	return workflow.NewRunner(opts), nil
}

// Run starts the HTTP server and blocks until shutdown. SIGINT and SIGTERM
// trigger a graceful shutdown bounded by the configured timeout.
func (a *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		a.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	start := time.Now()
	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	a.Logger.Info("server stopped", slog.Duration("drain", time.Since(start)))
	return nil
}
