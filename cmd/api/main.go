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

	"placefinder/internal/geocoding"
	apphttp "placefinder/internal/http"
	"placefinder/internal/http/router"
	"placefinder/internal/places"
	"placefinder/platform/config"
	"placefinder/platform/db"
	"placefinder/platform/logger"
	"placefinder/platform/validator"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.NewWithOptions(logger.Options{Env: cfg.Env, File: cfg.GetLogFile()})
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	nominatim := geocoding.NewNominatim(cfg, log)

	var (
		cache  geocoding.SuggestCache
		health apphttp.HealthChecker
	)
	if cfg.IsRedisEnabled() {
		client, err := connectRedis(ctx, cfg, log)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			panic("failed to connect to redis: " + err.Error())
		}
		defer func() {
			_ = client.Close()
		}()
		cache = geocoding.NewRedisCache(client, cfg.GetSuggestCacheTTL())
		health = db.NewHealthAdapter(client)
		log.Info("suggestion cache backed by redis")
	} else {
		cache = geocoding.NewMemoryCache(cfg.GetSuggestCacheTTL())
		log.Warn("REDIS_URL not configured; using in-process suggestion cache")
	}
	provider := geocoding.NewCachingProvider(nominatim, cache, log)

	val := validator.New()
	placesModule := places.NewModule(provider, cfg, val, log)
	defer placesModule.Close()

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Health:  health,
		Modules: []apphttp.Module{placesModule},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down", "sessions", placesModule.Sessions())
		// Close sessions first so SSE and WebSocket handlers return.
		placesModule.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	log.Info("server stopped")
}

func connectRedis(ctx context.Context, cfg config.CacheConfig, log *logger.Logger) (client *redis.Client, err error) {
	err = withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		c, err := db.NewRedis(ctx, cfg)
		if err != nil {
			return err
		}
		client = c
		return nil
	})
	return client, err
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
