package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexcase/internal/config"
	dbRedis "github.com/kailas-cloud/lexcase/internal/db/redis"
	logpkg "github.com/kailas-cloud/lexcase/internal/logger"
	"github.com/kailas-cloud/lexcase/internal/metrics"
	"github.com/kailas-cloud/lexcase/internal/repository/gencache"
	journalrepo "github.com/kailas-cloud/lexcase/internal/repository/journal"
	chiTransport "github.com/kailas-cloud/lexcase/internal/transport/chi"
	openaiGen "github.com/kailas-cloud/lexcase/internal/transport/openai"
	generateuc "github.com/kailas-cloud/lexcase/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/lexcase/internal/usecase/health"
	"github.com/kailas-cloud/lexcase/internal/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd)
		},
	}
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	rt, err := bootstrap(ctx, cmd.Flags())
	if err != nil {
		return err
	}
	logger, cfg := rt.logger, rt.cfg
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting lexcase API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", rt.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("model", cfg.Generation.Model),
		zap.Bool("cache", cfg.Cache.Enabled()),
		zap.Bool("journal", cfg.Journal.Enabled()),
	)

	// Register metrics explicitly (no init())
	metrics.Register(prometheus.DefaultRegisterer)

	base := openaiGen.NewGenerator(&openaiGen.Config{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temp(),
		TopP:        cfg.Generation.TopP,
		MaxTokens:   cfg.Generation.MaxTokens,
		Timeout:     time.Duration(cfg.Generation.TimeoutSec) * time.Second,
		Logger:      logger,
	})

	// Pass nil interfaces (not typed nil pointers) for disabled components.
	var (
		generator     generateuc.Generator = base
		cachePinger   healthuc.Pinger
		journal       generateuc.Journal
		journalPinger healthuc.Pinger
	)

	if cfg.Cache.Enabled() {
		store, err := openCache(ctx, cfg.Cache, logger)
		if err != nil {
			logger.Warn("Generation cache disabled", zap.Error(err))
		} else {
			defer store.Close()
			generator = gencache.New(base, store, time.Duration(cfg.Cache.TTLSec)*time.Second,
				metrics.GenerationCacheTotal, logger)
			cachePinger = store
		}
	}

	if cfg.Journal.Enabled() {
		js, err := journalrepo.NewStore(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("open ruling journal: %w", err)
		}
		defer func() { _ = js.Close() }()
		journal, journalPinger = js, js
		logger.Info("Ruling journal opened", zap.String("path", cfg.Journal.Path))
	}

	generateSvc := generateuc.New(rt.corpus, generator, journal).
		WithTopK(cfg.Retrieval.TopKLaws, cfg.Retrieval.TopKPrecedents)
	healthSvc := healthuc.New(rt.corpus, base, cachePinger, journalPinger)

	server := chiTransport.NewServer(generateSvc, rt.corpus, healthSvc, logger).
		WithTopK(cfg.Retrieval.TopKLaws, cfg.Retrieval.TopKPrecedents)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

func openCache(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("cache not ready: %w", err)
	}
	logger.Info("Connected to generation cache", zap.Strings("addrs", cfg.Addrs))
	return store, nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
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

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

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
