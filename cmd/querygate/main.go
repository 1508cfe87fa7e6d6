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

	"github.com/kailas-cloud/querygate/internal/aci"
	"github.com/kailas-cloud/querygate/internal/config"
	"github.com/kailas-cloud/querygate/internal/config/watch"
	dbRedis "github.com/kailas-cloud/querygate/internal/db/redis"
	logpkg "github.com/kailas-cloud/querygate/internal/logger"
	"github.com/kailas-cloud/querygate/internal/metrics"
	"github.com/kailas-cloud/querygate/internal/repository/dbcache"
	chiTransport "github.com/kailas-cloud/querygate/internal/transport/chi"
	databasesuc "github.com/kailas-cloud/querygate/internal/usecase/databases"
	healthuc "github.com/kailas-cloud/querygate/internal/usecase/health"
	searchuc "github.com/kailas-cloud/querygate/internal/usecase/search"
	"github.com/kailas-cloud/querygate/internal/version"
)

// runtimeSource supplies the field registry and query manipulation settings.
type runtimeSource interface {
	searchuc.FieldsSource
	searchuc.Settings
}

func main() {
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

	logger.Info("Starting querygate API server",
		zap.Stringer("build", version.Get()),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("content_url", cfg.Backend.Content.URL),
		zap.Bool("qms_enabled", cfg.Backend.QMS.Enabled()),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	metrics.RegisterBackendMetrics()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Backend channels
	content, err := aci.NewClient(&aci.Config{
		Channel: aci.Content,
		BaseURL: cfg.Backend.Content.URL,
		Timeout: cfg.Backend.Content.Timeout(),
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("Failed to create content client", zap.Error(err))
	}
	router := aci.NewRouter(content)

	var qmsPinger healthuc.Pinger
	if cfg.Backend.QMS.Enabled() {
		qms, err := aci.NewClient(&aci.Config{
			Channel: aci.QMS,
			BaseURL: cfg.Backend.QMS.URL,
			Timeout: cfg.Backend.QMS.Timeout(),
			Logger:  logger,
		})
		if err != nil {
			logger.Fatal("Failed to create qms client", zap.Error(err))
		}
		router.Register(aci.QMS, qms)
		qmsPinger = qms
	}

	// Runtime config (fields + query manipulation), hot-reloaded when a file is set
	var runtimeCfg runtimeSource = config.EmptySnapshot()
	if cfg.RuntimeFile != "" {
		watcher, err := watch.New(cfg.RuntimeFile, watch.DefaultDebounce, logger)
		if err != nil {
			logger.Fatal("Failed to load runtime config", zap.Error(err))
		}
		if err := watcher.Start(ctx); err != nil {
			logger.Fatal("Failed to watch runtime config", zap.Error(err))
		}
		defer func() { _ = watcher.Close() }()
		runtimeCfg = watcher
		logger.Info("Runtime config loaded",
			zap.String("path", cfg.RuntimeFile),
			zap.Int("fields", watcher.Fields().Len()),
		)
	}

	// Database list: GetStatus -> shared cache -> in-process refresh
	var source databasesuc.Source = databasesuc.NewStatusSource(router)
	var cachePinger healthuc.Pinger
	if cfg.Cache.Enabled() {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		readiness := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))

		source = dbcache.New(source, store, cfg.Cache.KeyPrefix,
			time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.DatabasesCacheTotal, logger)
		cachePinger = store
	}
	databases := databasesuc.New(source, time.Duration(cfg.Databases.RefreshSec)*time.Second, logger)

	// Use cases
	searchSvc := searchuc.New(router, runtimeCfg, runtimeCfg, databases, logger)
	healthSvc := healthuc.New(content, qmsPinger, cachePinger)

	server := chiTransport.NewServer(searchSvc, databases, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
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

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("Panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
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
				zap.String("route", chi.RouteContext(r.Context()).RoutePattern()),
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
