package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bls-living/sda-engine/pkg/config"
	"github.com/bls-living/sda-engine/pkg/database"
	"github.com/bls-living/sda-engine/pkg/handlers"
	"github.com/bls-living/sda-engine/pkg/llm"
	"github.com/bls-living/sda-engine/pkg/logging"
	mcpserver "github.com/bls-living/sda-engine/pkg/mcp"
	mcptools "github.com/bls-living/sda-engine/pkg/mcp/tools"
	"github.com/bls-living/sda-engine/pkg/middleware"
	"github.com/bls-living/sda-engine/pkg/services"
	"github.com/bls-living/sda-engine/pkg/storage"
	"github.com/bls-living/sda-engine/pkg/tools"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("model", cfg.Anthropic.Model))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, &database.Config{
		ConnString:     cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database",
			zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database.ConnectionString(), logger); err != nil {
		logger.Fatal("Failed to run migrations",
			zap.String("error", logging.SanitizeError(err)))
	}

	model, err := llm.NewClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model, logger)
	if err != nil {
		logger.Fatal("Failed to create model client", zap.Error(err))
	}

	repos := services.NewRepos()
	registry := tools.NewRegistry(tools.AssistantTools())
	store := services.NewPendingActionStore(cfg.Assistant.PendingActionTTL())
	dispatcher := services.NewDispatcher(registry, repos, store, logger)
	resolver := services.NewIntentResolver(model, cfg.Assistant.ConfidenceThreshold, cfg.Anthropic.MaxTokens, logger)
	chatbot := services.NewChatbot(resolver, dispatcher, model, repos,
		cfg.Anthropic.MaxTokens, cfg.Assistant.HistoryLimit, logger)

	files := storage.NewHTTPFileStore(cfg.Storage.BaseURL, logger)
	analysis := services.NewDocumentAnalysisService(repos.Documents, files, model, cfg.Anthropic.MaxTokens, logger)

	tenant := handlers.TenantMiddleware(database.WithTenantContext(db, logger))

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAssistantHandler(chatbot, logger).RegisterRoutes(mux, tenant)
	handlers.NewConversationHandler(repos.Conversations, cfg.Assistant.HistoryLimit, logger).RegisterRoutes(mux, tenant)
	handlers.NewDocumentHandler(analysis, logger).RegisterRoutes(mux, tenant)

	// MCP tools run inside the same tenant scope as the REST API: the
	// streamable endpoint is mounted per-org so ctx carries the org before
	// any tool executes.
	mcpSrv := mcpserver.NewServer("sda-engine", cfg.Version, logger)
	mcptools.RegisterAssistantTools(mcpSrv.MCP(), dispatcher, logger)
	mcptools.RegisterHealthTool(mcpSrv.MCP(), cfg.Version)
	mcpHTTP := mcpSrv.NewStreamableHTTPServer()
	mux.Handle("/api/orgs/{org}/mcp", tenant(mcpHTTP.ServeHTTP))

	srv := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: middleware.RequestLogger(logger)(mux),
	}

	go func() {
		logger.Info("Starting sda-engine",
			zap.String("addr", srv.Addr),
			zap.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
