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

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/servimas/cortineros/internal/account"
	accountStore "github.com/servimas/cortineros/internal/account/store"
	"github.com/servimas/cortineros/internal/auth"
	"github.com/servimas/cortineros/internal/cache"
	"github.com/servimas/cortineros/internal/config"
	"github.com/servimas/cortineros/internal/database"
	"github.com/servimas/cortineros/internal/export"
	cortinerosHttp "github.com/servimas/cortineros/internal/http"
	accountHandler "github.com/servimas/cortineros/internal/http/account"
	billingHandler "github.com/servimas/cortineros/internal/http/billing"
	dashboardHandler "github.com/servimas/cortineros/internal/http/dashboard"
	movementHandler "github.com/servimas/cortineros/internal/http/movement"
	"github.com/servimas/cortineros/internal/importer"
	"github.com/servimas/cortineros/internal/logger"
	"github.com/servimas/cortineros/internal/movement"
	movementStore "github.com/servimas/cortineros/internal/movement/store"
	"github.com/servimas/cortineros/migrations"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	applied, err := database.Migrate(ctx, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	for _, name := range applied {
		log.Info().Str("migration", name).Msg("applied migration")
	}

	authn, err := auth.NewAuthenticator(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("configuring auth: %w", err)
	}

	accountOpts := account.Options{
		Window:      cfg.Ledger.Window,
		RecentLimit: cfg.Ledger.RecentLimit,
		Logger:      log.With().Str("component", "account").Logger(),
	}

	if cfg.Redis.Addr != "" {
		rdb, err := database.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("ledger cache disabled")
		} else {
			defer rdb.Close()
			accountOpts.Cache = cache.New(rdb, cfg.Redis.TTL, log.With().Str("component", "cache").Logger())
		}
	}

	var (
		movementService = movement.NewService(movementStore.New(db))
		accountService  = account.NewService(accountStore.New(db), movementService, accountOpts)
		importService   = importer.NewService(movementService, log.With().Str("component", "importer").Logger())
		exportService   = export.NewService(accountService)
	)

	var (
		accountH   = accountHandler.NewHandler(accountService, movementService, importService, exportService)
		movementH  = movementHandler.NewHandler(movementService)
		dashboardH = dashboardHandler.NewHandler(accountService)
		billingH   = billingHandler.NewHandler()
	)

	router := cortinerosHttp.New(authn, accountH, movementH, dashboardH, billingH, cortinerosHttp.Options{
		Logger:         log,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.App.Env).Msg("starting server")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
