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

	"github.com/sedwardstx/DprgArchiveAgent/internal/config"
	domainChat "github.com/sedwardstx/DprgArchiveAgent/internal/domain/chat"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/strategy"
	logpkg "github.com/sedwardstx/DprgArchiveAgent/internal/logger"
	"github.com/sedwardstx/DprgArchiveAgent/internal/metrics"
	archiverepo "github.com/sedwardstx/DprgArchiveAgent/internal/repository/archive"
	chiTransport "github.com/sedwardstx/DprgArchiveAgent/internal/transport/chi"
	openaiTransport "github.com/sedwardstx/DprgArchiveAgent/internal/transport/openai"
	chatuc "github.com/sedwardstx/DprgArchiveAgent/internal/usecase/chat"
	searchuc "github.com/sedwardstx/DprgArchiveAgent/internal/usecase/search"
	"github.com/sedwardstx/DprgArchiveAgent/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, level, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting archive agent API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("redis_addrs", cfg.Redis.Addrs),
		zap.String("index", cfg.Redis.IndexName),
	)

	// External collaborators
	embedder := openaiTransport.NewEmbedder(
		cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.EmbeddingModel, logger,
	)
	completer := openaiTransport.NewCompleter(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, logger)

	// Archive index repository
	repo, err := archiverepo.New(archiverepo.Config{
		Addrs:     cfg.Redis.Addrs,
		Password:  cfg.Redis.Password,
		IndexName: cfg.Redis.IndexName,
		KeyPrefix: cfg.Redis.KeyPrefix,
	}, embedder)
	if err != nil {
		logger.Fatal("Failed to connect to archive index", zap.Error(err))
	}
	defer repo.Close()

	ctx := context.Background()
	if err := repo.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Archive index not ready", zap.Error(err))
	}
	logger.Info("Connected to archive index")

	// Register engine metrics explicitly (no init())
	metrics.RegisterEngineMetrics()

	// Use case services
	searchSvc := searchuc.New(repo, cfg.Search.DenseWeight, cfg.Search.SparseWeight, logger)

	logLevel := cfg.Logging.Level
	if logLevel == "" {
		logLevel = "info"
	}
	defaults := domainChat.Params{
		Strategy:      strategy.Hybrid,
		TopK:          cfg.Search.TopK,
		MinScore:      cfg.Search.MinScore,
		Temperature:   cfg.Chat.Temperature,
		MaxTokens:     cfg.Chat.MaxTokens,
		Model:         cfg.OpenAI.Model,
		FallbackModel: cfg.OpenAI.FallbackModel,
		LogLevel:      logLevel,
	}
	store := chatuc.NewStore(defaults, time.Duration(cfg.Chat.SessionTTLMin)*time.Minute)
	chatSvc := chatuc.New(store, searchSvc, repo, completer, level, logger)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, chatSvc, cfg.Search.MinScore, logger)

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

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
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
