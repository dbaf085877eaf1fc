package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/talentmesh/profilesearch/internal/config"
	dbRedis "github.com/talentmesh/profilesearch/internal/db/redis"
	"github.com/talentmesh/profilesearch/internal/domain/search/policy"
	"github.com/talentmesh/profilesearch/internal/lexical"
	logpkg "github.com/talentmesh/profilesearch/internal/logger"
	"github.com/talentmesh/profilesearch/internal/metrics"
	"github.com/talentmesh/profilesearch/internal/repository/embcache"
	embeddingrepo "github.com/talentmesh/profilesearch/internal/repository/embedding"
	profilerepo "github.com/talentmesh/profilesearch/internal/repository/profile"
	chiTransport "github.com/talentmesh/profilesearch/internal/transport/chi"
	openaiTransport "github.com/talentmesh/profilesearch/internal/transport/openai"
	enhanceuc "github.com/talentmesh/profilesearch/internal/usecase/enhance"
	healthuc "github.com/talentmesh/profilesearch/internal/usecase/health"
	indexuc "github.com/talentmesh/profilesearch/internal/usecase/index"
	searchuc "github.com/talentmesh/profilesearch/internal/usecase/search"
	"github.com/talentmesh/profilesearch/internal/vector"
	"github.com/talentmesh/profilesearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting profile search API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	// Embedding provider with a persistent query cache in front
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	embedder := embcache.New(baseEmbedder, store, metrics.EmbeddingCacheTotal, logger).
		WithTTL(time.Duration(cfg.Embedding.CacheTTL) * time.Second)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	completer := openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
		APIKey:      cfg.Completion.APIKey,
		BaseURL:     cfg.Completion.BaseURL,
		Model:       cfg.Completion.Model,
		Temperature: cfg.Completion.Temperature,
		MaxTokens:   cfg.Completion.MaxTokens,
		Logger:      logger,
	})

	// Repositories and the in-memory lexical index
	profileRepo := profilerepo.New(store)
	embeddingRepo := embeddingrepo.New(store, cfg.Embedding.Dimensions, logger)
	lexIndex := lexical.New(logger)

	pol := buildPolicy(cfg.Search)

	// Use case services
	indexSvc := indexuc.New(profileRepo, embeddingRepo, embedder, lexIndex, logger)
	if err := indexSvc.Rebuild(ctx); err != nil {
		logger.Fatal("Failed to rebuild search indexes", zap.Error(err))
	}
	logger.Info("Search indexes rebuilt", zap.Int("profiles", indexSvc.Count()))

	enhanceSvc := enhanceuc.New(completer, pol.ConfidenceThreshold, cfg.Completion.CacheSize, logger)
	searchSvc := searchuc.New(
		embedder, lexIndex, indexSvc, vector.NewScorer(logger),
		profileRepo, enhanceSvc, pol, logger,
	)
	healthSvc := healthuc.New(baseEmbedder, indexSvc, lexIndex, searchSvc, logger)

	// HTTP server
	server := chiTransport.NewServer(searchSvc, indexSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildPolicy maps search configuration onto the fusion policy.
func buildPolicy(cfg config.SearchConfig) policy.Policy {
	pol := policy.New(cfg.GenericTitles)
	pol.ExactVectorWeight = cfg.ExactVectorWeight
	pol.ExactLexicalWeight = cfg.ExactLexicalWeight
	pol.SemanticVectorWeight = cfg.SemanticVectorWeight
	pol.SemanticLexicalWeight = cfg.SemanticLexicalWeight
	pol.ConfidenceThreshold = cfg.ConfidenceThreshold
	pol.CandidateMultiplier = cfg.CandidateMultiplier
	return pol
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
