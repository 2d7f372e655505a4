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

	"github.com/stackbase/identity-api/internal/api"
	"github.com/stackbase/identity-api/internal/core/service"
	"github.com/stackbase/identity-api/internal/infrastructure/config"
	mongodb "github.com/stackbase/identity-api/internal/infrastructure/db/mongo"
	redisdb "github.com/stackbase/identity-api/internal/infrastructure/db/redis"
	"github.com/stackbase/identity-api/internal/infrastructure/mail"
	"github.com/stackbase/identity-api/internal/infrastructure/queue"
	"github.com/stackbase/identity-api/pkg/logger"
)

const shutdownTimeout = 20 * time.Second

// @title Identity API
// @version 1.0
// @description User accounts, JWT authentication, and role/tenant authorization.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(rootCtx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	mongoClient, db, err := mongodb.Connect(rootCtx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo init failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	users := mongodb.NewUserRepository(db)
	if err := users.EnsureIndexes(rootCtx); err != nil {
		log.Fatal().Err(err).Msg("mongo index setup failed")
	}

	rdb, err := redisdb.Connect(rootCtx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("redis init failed")
	}
	defer rdb.Close()

	throttle := redisdb.NewLoginThrottle(rdb, 0, 0)

	var dispatcher service.MailDispatcher
	if cfg.SMTP.Addr != "" {
		mailer, err := mail.NewSMTPMailer(cfg.SMTP.Addr, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
		if err != nil {
			log.Fatal().Err(err).Msg("mailer init failed")
		}
		d := queue.NewDispatcher(0, mailer, log)
		d.Start(rootCtx)
		dispatcher = d
	} else {
		log.Warn().Msg("SMTP_ADDR not set, outbound mail disabled")
	}

	e := api.NewRouter(api.Deps{
		Users:      users,
		Mongo:      db,
		Redis:      rdb,
		Throttle:   throttle,
		Mail:       dispatcher,
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		BcryptCost: cfg.BcryptCost,
		Metrics:    true,
		Log:        log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
}
