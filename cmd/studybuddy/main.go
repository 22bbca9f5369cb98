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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/clarusedu/studybuddy/internal/config"
	dbRedis "github.com/clarusedu/studybuddy/internal/db/redis"
	"github.com/clarusedu/studybuddy/internal/extract"
	logpkg "github.com/clarusedu/studybuddy/internal/logger"
	"github.com/clarusedu/studybuddy/internal/metrics"
	"github.com/clarusedu/studybuddy/internal/repository/chunkstore"
	"github.com/clarusedu/studybuddy/internal/repository/embcache"
	userrepo "github.com/clarusedu/studybuddy/internal/repository/user"
	"github.com/clarusedu/studybuddy/internal/transport/chihttp"
	openaiClient "github.com/clarusedu/studybuddy/internal/transport/openai"
	authuc "github.com/clarusedu/studybuddy/internal/usecase/auth"
	chatuc "github.com/clarusedu/studybuddy/internal/usecase/chat"
	healthuc "github.com/clarusedu/studybuddy/internal/usecase/health"
	ingestuc "github.com/clarusedu/studybuddy/internal/usecase/ingest"
	retrievaluc "github.com/clarusedu/studybuddy/internal/usecase/retrieval"
	"github.com/clarusedu/studybuddy/internal/splitter"
	"github.com/clarusedu/studybuddy/internal/version"
)

func main() {
	// .env is optional; real deployments set variables directly
	_ = godotenv.Load()

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

	logger.Info("Starting studybuddy API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("redis_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create vector store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Vector store not ready", zap.Error(err))
	}
	logger.Info("Connected to vector store")

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("Failed to create postgres pool", zap.Error(err))
	}
	defer pool.Close()

	users := userrepo.New(pool)
	if err := users.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure users schema", zap.Error(err))
	}
	logger.Info("Connected to postgres")

	// Register embedding metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()

	baseEmbedder := openaiClient.NewEmbedder(&openaiClient.EmbedderConfig{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.EmbeddingModel,
		Dimensions: cfg.OpenAI.EmbeddingDimensions,
		Provider:   "openai",
		Logger:     logger,
	})
	embedder := embcache.New(baseEmbedder, store, metrics.EmbeddingCacheTotal, logger)
	logger.Info("Embedder created",
		zap.String("model", cfg.OpenAI.EmbeddingModel),
		zap.Int("dimensions", cfg.OpenAI.EmbeddingDimensions),
	)

	chatClient := openaiClient.NewChatClient(&openaiClient.ChatConfig{
		APIKey:       cfg.OpenAI.APIKey,
		BaseURL:      cfg.OpenAI.BaseURL,
		ChatModel:    cfg.OpenAI.ChatModel,
		VisionModel:  cfg.OpenAI.VisionModel,
		WhisperModel: cfg.OpenAI.WhisperModel,
		Logger:       logger,
	})

	chunks := chunkstore.New(store, cfg.OpenAI.EmbeddingDimensions).WithHNSW(chunkstore.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})
	if err := chunks.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure vector index", zap.Error(err))
	}

	split := splitter.New(cfg.Splitter.ChunkSize, cfg.Splitter.ChunkOverlap)

	tempDir := cfg.Uploads.TempDir
	pdfExtractor := extract.NewPDFExtractor(tempDir)
	imageExtractor := extract.NewImageExtractor(chatClient)
	videoExtractor := extract.NewVideoExtractor(chatClient, chatClient, tempDir, cfg.Uploads.FFmpegPath, logger)
	youtubeExtractor := extract.NewYouTubeExtractor(chatClient, tempDir, cfg.Uploads.YTDLPPath, logger)

	ingestSvc := ingestuc.New(
		chunks, split, embedder,
		pdfExtractor, imageExtractor, videoExtractor, youtubeExtractor,
		logger,
	)
	retrievalSvc := retrievaluc.New(chunks, embedder).WithParams(retrievaluc.Params{
		TopK:   cfg.Retrieval.TopK,
		FetchK: cfg.Retrieval.FetchK,
		Lambda: cfg.Retrieval.Lambda,
	})
	chatSvc := chatuc.New(retrievalSvc, chatClient, logger)
	authSvc := authuc.New(users, logger)
	healthSvc := healthuc.New(store, pool, baseEmbedder)

	server := chihttp.NewServer(chatSvc, ingestSvc, authSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chihttp.CORSMiddleware())
	r.Use(chihttp.BearerAuthMiddleware(cfg.Auth.APIKeys))
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
