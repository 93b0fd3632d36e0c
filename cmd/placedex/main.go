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

	"github.com/citygrid/placedex/internal/config"
	dbRedis "github.com/citygrid/placedex/internal/db/redis"
	"github.com/citygrid/placedex/internal/domain"
	"github.com/citygrid/placedex/internal/domain/query"
	logpkg "github.com/citygrid/placedex/internal/logger"
	"github.com/citygrid/placedex/internal/metrics"
	placesrepo "github.com/citygrid/placedex/internal/repository/places"
	profilesrepo "github.com/citygrid/placedex/internal/repository/profiles"
	statsrepo "github.com/citygrid/placedex/internal/repository/stats"
	chiTransport "github.com/citygrid/placedex/internal/transport/chi"
	openaiEmb "github.com/citygrid/placedex/internal/transport/openai"
	healthuc "github.com/citygrid/placedex/internal/usecase/health"
	recommenduc "github.com/citygrid/placedex/internal/usecase/recommend"
	searchuc "github.com/citygrid/placedex/internal/usecase/search"
	statsuc "github.com/citygrid/placedex/internal/usecase/stats"
	"github.com/citygrid/placedex/internal/version"
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

	logger.Info("Starting placedex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("city", cfg.Search.City),
		zap.Strings("primary_addrs", cfg.Index.Primary.Addrs),
		zap.Strings("vector_addrs", cfg.Index.Vector.Addrs),
	)

	primary, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Index.Primary.Addrs,
		Password: cfg.Index.Primary.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create primary index store", zap.Error(err))
	}
	defer primary.Close()

	vector, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Index.Vector.Addrs,
		Password: cfg.Index.Vector.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create vector index store", zap.Error(err))
	}
	defer vector.Close()

	// Wait for both index stores to be ready
	ctx := context.Background()
	readiness := time.Duration(cfg.Index.ReadinessTimeout) * time.Second
	if err := primary.WaitForReady(ctx, readiness); err != nil {
		logger.Fatal("Primary index not ready", zap.Error(err))
	}
	if err := vector.WaitForReady(ctx, readiness); err != nil {
		logger.Fatal("Vector index not ready", zap.Error(err))
	}
	logger.Info("Connected to index stores")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterEngineMetrics()

	embedder := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Timeout:    time.Duration(cfg.Embedding.RequestTimeoutSec) * time.Second,
	})
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	builder := query.NewBuilder(cfg.Search.City, cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize)
	indexTimeout := time.Duration(cfg.Index.RequestTimeoutSec) * time.Second

	placesRepo := placesrepo.New(primary, vector, cfg.Index.Primary.IndexName, cfg.Index.Vector.IndexName).
		WithTimeout(indexTimeout).
		WithDataQualityWarnings(cfg.Logging.DataQualityWarnings)
	statsRepo := statsrepo.New(primary, cfg.Index.Primary.IndexName, builder.BrowseAll()).
		WithTimeout(indexTimeout)
	profilesRepo := profilesrepo.New(primary, cfg.Storage.KeyPrefix)

	searchSvc := searchuc.New(placesRepo, builder)
	statsSvc := statsuc.New(statsRepo, statsuc.Caps{
		RatingTopN:   cfg.Stats.RatingTopN,
		CategoryTopN: cfg.Stats.CategoryTopN,
		RegionTopN:   cfg.Stats.RegionTopN,
		ListingCap:   cfg.Stats.ListingCap,
		HeatmapCap:   cfg.Stats.HeatmapCap,
	})
	recommendSvc := recommenduc.New(placesRepo, profilesRepo, embedder, recommenduc.Params{
		K:             cfg.Search.KNNK,
		NumCandidates: cfg.Search.KNNCandidates,
		Dimensions:    cfg.Embedding.Dimensions,
	})
	healthSvc := healthuc.New(primary, vector, newEmbeddingHealthChecker(embedder))

	server := chiTransport.NewServer(searchSvc, statsSvc, recommendSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

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

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
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
