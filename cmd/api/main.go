// @title                       Marketplace API
// @version                     1.0
// @description                 Accounts, products, favorites and the admin console.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
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

	"github.com/rs/zerolog"

	"github.com/micromarket/marketplace-api/internal/api"
	"github.com/micromarket/marketplace-api/internal/api/handler"
	"github.com/micromarket/marketplace-api/internal/core/service"
	mongodb "github.com/micromarket/marketplace-api/internal/infrastructure/db/mongo"
	redisdb "github.com/micromarket/marketplace-api/internal/infrastructure/db/redis"
	"github.com/micromarket/marketplace-api/internal/infrastructure/queue"
	"github.com/micromarket/marketplace-api/internal/pkg/config"
	"github.com/micromarket/marketplace-api/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "marketplace-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "marketplace-api",
	})
	log.Info().Str("env", cfg.Env).Msg("starting marketplace api")

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "marketplace-api",
	})
	if err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()

	users := mongodb.NewUserRepository(db)
	products := mongodb.NewProductRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	if err := products.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("product indexes: %w", err)
	}

	// Audit workers run on their own context and stop after the server.
	auditCtx, stopAudit := context.WithCancel(context.Background())
	defer stopAudit()
	dispatcher := queue.NewDispatcher(
		cfg.Audit.Workers,
		service.NewAuditService(mongodb.NewAuditRepository(db), log),
		log,
	)
	dispatcher.Start(auditCtx)

	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(users, tokens, log,
		service.WithLoginThrottler(redisdb.NewLoginThrottler(rdb, cfg.Login.MaxAttempts, cfg.Login.Window)),
		service.WithAuthAudit(dispatcher),
		service.WithBcryptCost(cfg.BcryptCost),
	)
	productService := service.NewProductService(products, users, dispatcher, log)
	favoriteService := service.NewFavoriteService(users, products, log)
	adminService := service.NewAdminService(users, products, dispatcher, log,
		service.WithAdminBcryptCost(cfg.BcryptCost),
	)

	if cfg.DefaultAdmin.Email != "" {
		if _, err := adminService.EnsureAdmin(ctx, cfg.DefaultAdmin.Name, cfg.DefaultAdmin.Email, cfg.DefaultAdmin.Password); err != nil {
			return fmt.Errorf("default admin: %w", err)
		}
	}

	e := api.NewRouter(api.Deps{
		Log:       log,
		Verifier:  authService,
		Auth:      authService,
		Products:  productService,
		Favorites: favoriteService,
		Admin:     adminService,
		Checks: map[string]handler.HealthCheck{
			"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := e.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("http server failed")
		}
	}

	shutdown(e.Shutdown, log)

	stopAudit()
	dispatcher.Wait()
	log.Info().Msg("server stopped")
	return nil
}

func shutdown(fn func(context.Context) error, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
