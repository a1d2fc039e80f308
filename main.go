package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"go.uber.org/zap"

	"github.com/melisaluis/fabric-mcp/pkg/config"
	"github.com/melisaluis/fabric-mcp/pkg/explore"
	"github.com/melisaluis/fabric-mcp/pkg/handlers"
	"github.com/melisaluis/fabric-mcp/pkg/history"
	"github.com/melisaluis/fabric-mcp/pkg/lakehouse"
	"github.com/melisaluis/fabric-mcp/pkg/logging"
	"github.com/melisaluis/fabric-mcp/pkg/mcp"
	"github.com/melisaluis/fabric-mcp/pkg/mcp/tools"
	"github.com/melisaluis/fabric-mcp/pkg/semanticmodel"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("lakehouse_server", cfg.Lakehouse.Server),
		zap.String("lakehouse_database", cfg.Lakehouse.Database),
		zap.String("auth_method", cfg.Lakehouse.AuthMethod),
		zap.Bool("history_enabled", cfg.History.Enabled))

	conn, err := lakehouse.Connect(ctx, &lakehouse.Config{
		Server:            cfg.Lakehouse.Server,
		Port:              cfg.Lakehouse.Port,
		Database:          cfg.Lakehouse.Database,
		AuthMethod:        cfg.Lakehouse.AuthMethod,
		Username:          cfg.Lakehouse.Username,
		Password:          cfg.Lakehouse.Password,
		TenantID:          cfg.Lakehouse.TenantID,
		ClientID:          cfg.Lakehouse.ClientID,
		ClientSecret:      cfg.Lakehouse.ClientSecret,
		Encrypt:           true,
		ConnectionTimeout: cfg.Lakehouse.ConnectionTimeoutSeconds,
		QueryTimeout:      cfg.Lakehouse.QueryTimeoutSeconds,
	})
	if err != nil {
		logger.Fatal("failed to connect to lakehouse", zap.String("error", logging.SanitizeError(err)))
	}
	defer conn.Close()

	executor := lakehouse.NewExecutor(conn)
	catalog := lakehouse.NewCatalog(conn)
	exploreService := explore.NewService(conn, catalog, logger)

	// MCP server and tools
	mcpServer := mcp.NewServer("fabric-mcp", cfg.Version, logger)
	tools.RegisterHealthTool(mcpServer.MCP(), cfg.Version)
	tools.RegisterLakehouseTools(mcpServer.MCP(), &tools.LakehouseToolDeps{
		Executor: executor,
		Catalog:  catalog,
		Logger:   logger,
	})
	tools.RegisterSchemaTools(mcpServer.MCP(), &tools.SchemaToolDeps{
		Catalog: catalog,
		Logger:  logger,
	})
	tools.RegisterExploreTools(mcpServer.MCP(), &tools.ExploreToolDeps{
		Service: exploreService,
		Logger:  logger,
	})

	semanticDeps := &tools.SemanticModelToolDeps{
		DatasetID:     cfg.SemanticModel.DatasetID,
		LakehouseName: cfg.Lakehouse.Database,
		Logger:        logger,
	}
	if cfg.SemanticModel.WorkspaceID != "" {
		cred, err := buildAzureCredential(&cfg.Lakehouse)
		if err != nil {
			logger.Fatal("failed to build Azure credential", zap.String("error", logging.SanitizeError(err)))
		}
		semanticDeps.Client = semanticmodel.NewClient(cred, cfg.SemanticModel.WorkspaceID, logger)
	} else {
		logger.Info("semantic model tools disabled: no workspace configured")
	}
	tools.RegisterSemanticModelTools(mcpServer.MCP(), semanticDeps)

	tools.RegisterHistoryTools(mcpServer.MCP(), &tools.HistoryToolDeps{
		Reader:           history.NewReader(cfg.History.LogPath, logger),
		DefaultHoursBack: cfg.History.DefaultHoursBack,
		Logger:           logger,
	})

	// Background query history capture
	if cfg.History.Enabled {
		capture := history.NewCapture(
			history.NewPlanCacheSource(conn),
			cfg.History.LogPath,
			time.Duration(cfg.History.IntervalSeconds)*time.Second,
			cfg.History.TopQueries,
			logger,
		)
		historyService := history.NewService(capture, logger)
		historyService.Start(ctx)
		defer historyService.Stop()
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewMCPHandler(mcpServer, logger).RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: mux,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting fabric-mcp",
			zap.String("addr", httpServer.Addr),
			zap.String("version", cfg.Version))
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}
}

// buildAzureCredential returns the token credential used for the Power BI
// REST API, mirroring the lakehouse auth method where possible.
func buildAzureCredential(cfg *config.LakehouseConfig) (azcore.TokenCredential, error) {
	if cfg.AuthMethod == "service_principal" {
		return azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
	}
	return azidentity.NewDefaultAzureCredential(nil)
}
