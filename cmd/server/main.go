package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/strcalc/internal/cache"
	"github.com/example/strcalc/internal/config"
	"github.com/example/strcalc/internal/handlers"
	apihttp "github.com/example/strcalc/internal/http"
	applog "github.com/example/strcalc/internal/log"
	"github.com/example/strcalc/internal/rate"
	"github.com/example/strcalc/pkg/calculator"
)

func main() {
	cfg, err := config.Load()
	applog.Configure(applog.Config{Level: cfg.LogLevel})
	if err != nil {
		lg := applog.Base()
		lg.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := applog.WithComponent("server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cacheOpts := []cache.Option{cache.WithLogger(applog.WithComponent("cache"))}
	checks := map[string]apihttp.Pinger{}
	redisStore, err := connectRedis(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect error")
	}
	if redisStore != nil {
		defer redisStore.Close()
		cacheOpts = append(cacheOpts, cache.WithRemote(redisStore))
		checks["redis"] = redisStore
		logger.Info().Str("addr", cfg.RedisAddr).Msg("redis result cache enabled")
	}

	store, closeStore, err := connectHistory(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("history store init error")
	}
	defer closeStore()

	lm := rate.NewLimiterMap(rate.Limits{RPM: cfg.RateLimitRPM, Burst: cfg.RateLimitBurst, IdleTTL: 5 * time.Minute})
	defer lm.Stop()

	router := apihttp.NewRouter(apihttp.Deps{
		Calc: handlers.CalcDeps{
			Calculator:     calculator.Calculator{PatternDelimiters: cfg.PatternDelimiters},
			Cache:          cache.New(cfg.CacheTTL, cacheOpts...),
			Timeout:        cfg.RequestTimeout,
			MaxBatch:       cfg.MaxBatch,
			MaxConcurrency: cfg.MaxConcurrency,
			MaxInputBytes:  cfg.MaxInputBytes,
			Logger:         applog.WithComponent("calc"),
		},
		Limiter: lm,
		History: store,
		Checks:  checks,
		Logger:  applog.WithComponent("http"),
	})

	srv := &http.Server{
		Addr:         listenAddr(cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info().Msg("shutting down")
	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Warn().Err(err).Msg("shutdown")
	}
}
