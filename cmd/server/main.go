package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/geoprofiles/backend/internal/config"
	"github.com/geoprofiles/backend/internal/logger"
	"github.com/geoprofiles/backend/internal/security"
	"github.com/geoprofiles/backend/internal/server"
	"github.com/geoprofiles/backend/internal/services"
	"github.com/geoprofiles/backend/internal/storage"
	"github.com/geoprofiles/backend/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	repo, err := openRepository(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repo.Close(ctx); err != nil {
			log.Error("close store", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	profiles := services.NewProfileService(repo, security.NewHasher(cfg.BcryptCost))
	router := server.NewRouter(server.Options{
		Profiles:       profiles,
		Friendships:    services.NewFriendshipService(profiles),
		Validator:      validation.New(),
		Logger:         log,
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: cfg.AllowedOrigins(),
		Registry:       registry,
	})
	srv := server.New(cfg.ServerAddress, router, log)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func openRepository(cfg *config.Config, log *zap.Logger) (storage.Repository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.StoreBackend {
	case config.BackendMongo:
		store, err := storage.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		log.Info("using mongo store", zap.String("database", cfg.MongoDatabase))
		return store, nil
	case config.BackendRedis:
		store, err := storage.OpenRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("using redis store")
		return store, nil
	default:
		if cfg.DataDir == "" {
			log.Info("using in-memory store")
			return storage.NewMemoryStore(), nil
		}
		file, err := storage.NewJSONStore(cfg.DataDir, "profiles.json")
		if err != nil {
			return nil, fmt.Errorf("open snapshot: %w", err)
		}
		store, err := storage.NewPersistentMemoryStore(file)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		log.Info("using in-memory store", zap.String("snapshot", file.Path()))
		return store, nil
	}
}
