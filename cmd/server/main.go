package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-with-data/internal/api"
	"github.com/Rrens/chat-with-data/internal/config"
	"github.com/Rrens/chat-with-data/internal/credential"
	"github.com/Rrens/chat-with-data/internal/llm/openai"
	"github.com/Rrens/chat-with-data/internal/logging"
	"github.com/Rrens/chat-with-data/internal/repository"
	"github.com/Rrens/chat-with-data/internal/repository/postgres"
	"github.com/Rrens/chat-with-data/internal/repository/redis"
	"github.com/Rrens/chat-with-data/internal/repository/sqldb"
	"github.com/Rrens/chat-with-data/internal/service"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	envLoaded := ""
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			envLoaded = p
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logCloser, err := logging.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if envLoaded != "" {
		log.Info().Str("path", envLoaded).Msg("Loaded .env file")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Bool("project_client", cfg.Project.UseClient).
		Bool("execute_generated", cfg.SQL.ExecuteGenerated).
		Msg("Starting chat-with-data API server")

	ctx := context.Background()

	// Ambient credential for the completion endpoint
	var tokens credential.TokenProvider
	if azureCred, err := credential.NewDefaultAzure(); err != nil {
		log.Warn().Err(err).Msg("Ambient Azure credential unavailable, completions need AZURE_OPENAI_KEY")
	} else {
		tokens = azureCred
	}

	// Initialize database; lookups degrade to empty results when it is down
	var store repository.Connector
	if db, err := openStore(ctx, cfg.Database); err != nil {
		log.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to open database")
	} else {
		store = db
		defer db.Close()
	}

	invoiceService := service.NewInvoiceService(store)
	chatService := service.NewChatService(cfg, openai.NewFactory(cfg, tokens), invoiceService)

	deps := api.Dependencies{
		Invoices: invoiceService,
		Chat:     chatService,
	}

	// Initialize Redis
	if cfg.Redis.Enabled() {
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr()).Msg("Redis unavailable, rate limiting disabled")
		} else {
			defer redisClient.Close()
			deps.RateLimiter = redis.NewRateLimiter(redisClient, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
		}
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// openStore picks the connector for the configured driver
func openStore(ctx context.Context, cfg config.DatabaseConfig) (repository.Connector, error) {
	switch cfg.Driver {
	case "postgres":
		var dbTokens credential.TokenProvider
		if cfg.ManagedIdentityID != "" {
			mid, err := credential.NewManagedIdentity(cfg.ManagedIdentityID)
			if err != nil {
				return nil, fmt.Errorf("failed to create managed identity credential: %w", err)
			}
			dbTokens = mid
		}

		db, err := postgres.NewDB(ctx, cfg, dbTokens)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "mysql", "sqlite":
		db, err := sqldb.Open(cfg)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}
