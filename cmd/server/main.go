package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/card-workbench/internal/api"
	"github.com/Rrens/card-workbench/internal/api/middleware"
	"github.com/Rrens/card-workbench/internal/catalog"
	catalogAPI "github.com/Rrens/card-workbench/internal/catalog/api"
	catalogMongo "github.com/Rrens/card-workbench/internal/catalog/mongo"
	catalogMySQL "github.com/Rrens/card-workbench/internal/catalog/mysql"
	catalogPostgres "github.com/Rrens/card-workbench/internal/catalog/postgres"
	catalogSQLite "github.com/Rrens/card-workbench/internal/catalog/sqlite"
	"github.com/Rrens/card-workbench/internal/config"
	"github.com/Rrens/card-workbench/internal/llm"
	"github.com/Rrens/card-workbench/internal/llm/cardapi"
	"github.com/Rrens/card-workbench/internal/llm/gemini"
	"github.com/Rrens/card-workbench/internal/llm/local"
	"github.com/Rrens/card-workbench/internal/llm/ollama"
	"github.com/Rrens/card-workbench/internal/logger"
	"github.com/Rrens/card-workbench/internal/repository/redis"
	"github.com/Rrens/card-workbench/internal/service"
	"github.com/Rrens/card-workbench/internal/workbench"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			fmt.Printf("Loaded .env from: %s\n", p)
			break
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	closer, err := logger.Setup(cfg.Logging, os.Getenv("ENV") == "production")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("catalog", cfg.Catalog.Driver).
		Msg("Starting card workbench server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catalog sources
	catalogRouter := catalog.NewRouter()
	catalogRouter.RegisterSource("api", catalogAPI.NewSource)
	catalogRouter.RegisterSource("postgres", catalogPostgres.NewSource)
	catalogRouter.RegisterSource("mysql", catalogMySQL.NewSource)
	catalogRouter.RegisterSource("sqlite", catalogSQLite.NewSource)
	catalogRouter.RegisterSource("mongodb", catalogMongo.NewSource)
	defer catalogRouter.CloseAll()

	source, err := catalogRouter.GetSource(ctx, cfg.Catalog.Driver, cfg.Catalog.Connection())
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Catalog.Driver).Msg("Failed to connect to catalog")
	}

	var (
		backend service.Catalog = source
		flusher service.Flusher
		limiter middleware.Limiter
	)

	// Redis is optional; without it the corpus is read from the catalog on
	// every session load and requests are not rate limited
	if cfg.Redis.Enabled() {
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()

		corpusCache := redis.NewCorpusCache(redisClient, cfg.Redis.CorpusTTL)
		backend = service.NewCachedCatalog(source, corpusCache, cfg.Catalog.Driver)
		flusher = corpusCache
		limiter = redis.NewRateLimiter(redisClient, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	} else {
		log.Warn().Msg("Redis host is empty, corpus cache and rate limiting disabled")
	}

	// Reply providers
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)
	llmRouter.RegisterProvider(local.NewProvider())
	if cfg.Catalog.APIURL != "" {
		llmRouter.RegisterProvider(cardapi.NewProvider(cfg.Catalog.APIURL, cfg.LLM.Timeout))
	}
	if cfg.LLM.Ollama.Host != "" {
		log.Info().Str("host", cfg.LLM.Ollama.Host).Msg("Registering Ollama provider")
		llmRouter.RegisterProvider(ollama.NewProvider(cfg.LLM.Ollama.Host, cfg.LLM.Ollama.DefaultModel))
	}
	if cfg.LLM.Gemini.APIKey != "" {
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini))
	}
	log.Info().Strs("providers", llmRouter.ListProviders()).Str("default", llmRouter.DefaultProvider()).Msg("Reply providers registered")

	svc := service.NewWorkbenchService(
		backend,
		service.NewProviderResponder(llmRouter, cfg.LLM.DefaultProvider, ""),
		flusher,
		service.WorkbenchConfig{
			Session: workbench.Options{
				PageSize:         cfg.Workbench.PageSize,
				QuickStartCount:  cfg.Workbench.QuickStartCount,
				RecommendedCount: cfg.Workbench.RecommendedCount,
				RegistrySource:   workbench.RegistrySource(cfg.Catalog.RegistrySource),
			},
			IdleTTL:   cfg.Workbench.SessionIdleTTL,
			MaxSess:   cfg.Workbench.MaxSessions,
			OpTimeout: max(cfg.Catalog.Timeout, cfg.LLM.Timeout),
		},
	)
	go svc.RunJanitor(ctx, time.Minute)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(cfg, svc, llmRouter, limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
