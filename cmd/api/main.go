package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/99minutos/user-accounts/internal/api"
	"github.com/99minutos/user-accounts/internal/core/policy"
	"github.com/99minutos/user-accounts/internal/core/service"
	"github.com/99minutos/user-accounts/internal/core/validation"
	"github.com/99minutos/user-accounts/internal/infrastructure/config"
	redisstore "github.com/99minutos/user-accounts/internal/infrastructure/db/redis"
	"github.com/99minutos/user-accounts/internal/infrastructure/http/handlers"
	"github.com/99minutos/user-accounts/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title           User Accounts API
// @version         1.0
// @description     Registration, sessions, profile management and roles.
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token returned by POST /sessions.

func main() {
	log := logger.New(logger.Options{Service: "user-accounts"})

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on environment")
	}

	if err := run(log); err != nil {
		log.Error().Err(err).Msg("service stopped with error")
		os.Exit(1)
	}
}

func run(bootLog zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog.Error().Err(err).Msg("failed to load config")
		return err
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "user-accounts",
	})

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	redisClient, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return multierr.Append(err, st.close(context.Background()))
	}
	sessions := redisstore.NewSessionStore(redisClient)

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := multierr.Combine(st.close(closeCtx), redisClient.Close()); err != nil {
			log.Error().Err(err).Msg("error closing connections")
		}
	}()

	v := validation.New(cfg.PhoneRegion)
	hasher := service.BcryptHasher{Cost: cfg.Auth.BcryptCost}

	roleService := service.NewRoleService(st.roles, v, log)
	if cfg.SeedRoles {
		if err := roleService.EnsureDefaults(ctx); err != nil {
			return err
		}
	}

	router := api.NewRouter(api.Dependencies{
		Users:     service.NewUserService(st.users, st.roles, hasher, policy.OwnerOnly{}, v, log),
		Roles:     roleService,
		Auth:      service.NewAuthService(st.users, st.roles, sessions, hasher, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log),
		Sessions:  sessions,
		Validator: v,
		JWTSecret: cfg.Auth.JWTSecret,
		Logger:    log,
		Probes: []handlers.Dependency{
			st.probe,
			{Name: "redis", Pinger: redisstore.Pinger{Client: redisClient}},
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server exited gracefully")
	return nil
}
