package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/strcalc/internal/cache"
	"github.com/example/strcalc/internal/config"
	"github.com/example/strcalc/internal/history"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// listenAddr turns a bare port into a listen address; host:port passes through.
func listenAddr(p string) string {
	if p == "" {
		p = "8080"
	}
	if strings.Contains(p, ":") {
		return p
	}
	return ":" + p
}

// connectRedis returns nil when no Redis address is configured.
func connectRedis(ctx context.Context, cfg config.Config) (*cache.RedisStore, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	return cache.NewRedisStore(ctx, cache.RedisConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
}

// connectHistory returns a Nop store when no Mongo URI is configured.
func connectHistory(ctx context.Context, cfg config.Config) (history.Store, func(), error) {
	if cfg.MongoURI == "" {
		return history.Nop{}, func() {}, nil
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	closeFn := func() { _ = client.Disconnect(context.Background()) }
	store, err := history.NewMongoStore(ctx, client, cfg.MongoDB)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return store, closeFn, nil
}
