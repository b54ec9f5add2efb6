// Package main is the entry point for the moderation portal API.
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

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	_ "github.com/modportal/portal-api/docs"
	"github.com/modportal/portal-api/internal/api"
	"github.com/modportal/portal-api/internal/core/domain"
	"github.com/modportal/portal-api/internal/core/ports"
	"github.com/modportal/portal-api/internal/core/service"
	"github.com/modportal/portal-api/internal/infrastructure/config"
	mongostore "github.com/modportal/portal-api/internal/infrastructure/db/mongo"
	redisstore "github.com/modportal/portal-api/internal/infrastructure/db/redis"
	"github.com/modportal/portal-api/internal/infrastructure/db/sqlstore"
	"github.com/modportal/portal-api/internal/infrastructure/seed"
	"github.com/modportal/portal-api/internal/infrastructure/storage"
	"github.com/modportal/portal-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title Moderation Portal API
// @version 1.0
// @description Tasks, bug reports and staff applications for a game-server community, reviewed by admins.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "portal-api",
	})

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("portal-api stopped")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()
	clk := clockwork.NewRealClock()

	st, err := openStores(ctx, cfg, logger.Component("store"))
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("closing store")
		}
	}()

	pingers := map[string]ports.Pinger{"store": st.pinger}
	deps := service.ReviewDeps{Clock: clk}

	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		deps.Idempotency = redisstore.NewIdempotencyStore(rdb, 0)
		deps.Notifier = redisstore.NewNotifier(rdb)
		pingers["redis"] = redisstore.NewPinger(rdb)
	} else {
		deps.Idempotency = service.NewMemoryIdempotencyStore(clk, 0)
		log.Info().Msg("REDIS_ADDR not set; idempotency keys kept in process, status notifications disabled")
	}

	hasher := service.NewBcryptHasher(cfg.BcryptCost)
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, clk)

	if err := seedAccounts(ctx, cfg, service.NewSeeder(st.users, hasher, clk, logger.Component("seed"))); err != nil {
		return err
	}

	authService, err := service.NewAuthService(st.users, tokens, hasher, clk, logger.Component("auth"))
	if err != nil {
		return err
	}

	media, err := storage.NewMediaStore(cfg.HTTP.UploadDir)
	if err != nil {
		return err
	}

	reviewLog := logger.Component("review")
	e := api.NewRouter(api.Dependencies{
		Logger:       logger.Component("http"),
		Tokens:       tokens,
		Auth:         authService,
		Tasks:        service.NewReportService(domain.EntityTask, st.tasks, media, deps, reviewLog),
		Bugs:         service.NewReportService(domain.EntityBug, st.bugs, media, deps, reviewLog),
		Applications: service.NewApplicationService(st.apps, cfg.ApplicationCooldown, deps, reviewLog),
		Pingers:      pingers,
		Uploads:      media.FS(),
		StaticDir:    staticDir(cfg.HTTP.StaticDir, log),
		BodyLimit:    cfg.HTTP.MaxUploadSize,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("portal-api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// stores groups the repositories of whichever backend STORE_DRIVER selects.
type stores struct {
	users  ports.UserRepository
	tasks  ports.ReportRepository
	bugs   ports.ReportRepository
	apps   ports.ApplicationRepository
	pinger ports.Pinger
	close  func(context.Context) error
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.Store.Driver == "mongo" {
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &stores{
			users:  mongostore.NewUserRepository(db),
			tasks:  mongostore.NewTaskRepository(db),
			bugs:   mongostore.NewBugRepository(db),
			apps:   mongostore.NewApplicationRepository(db),
			pinger: mongostore.NewPinger(client),
			close:  client.Disconnect,
		}, nil
	}

	db, err := sqlstore.Open(sqlstore.Config{Driver: cfg.Store.Driver, DSN: cfg.Store.DSN}, log)
	if err != nil {
		return nil, err
	}
	if err := sqlstore.Migrate(db); err != nil {
		_ = sqlstore.Close(db)
		return nil, err
	}
	return &stores{
		users:  sqlstore.NewUserRepository(db),
		tasks:  sqlstore.NewTaskRepository(db),
		bugs:   sqlstore.NewBugRepository(db),
		apps:   sqlstore.NewApplicationRepository(db),
		pinger: sqlstore.NewPinger(db),
		close:  func(context.Context) error { return sqlstore.Close(db) },
	}, nil
}

// seedAccounts creates or promotes the configured privileged accounts.
// This is the only way an account gains the admin or super_admin role.
func seedAccounts(ctx context.Context, cfg *config.Config, seeder *service.Seeder) error {
	var accounts []service.PrivilegedAccount
	if sa := cfg.SuperAdmin; sa.Username != "" {
		accounts = append(accounts, service.PrivilegedAccount{
			Username: sa.Username,
			Email:    sa.Email,
			Password: sa.Password,
			Role:     domain.RoleSuperAdmin,
		})
	}
	if cfg.SeedFile != "" {
		fromFile, err := seed.LoadFile(cfg.SeedFile)
		if err != nil {
			return err
		}
		accounts = append(accounts, fromFile...)
	}
	return seeder.EnsureAll(ctx, accounts)
}

func staticDir(dir string, log zerolog.Logger) string {
	if dir == "" {
		return ""
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		log.Info().Str("dir", dir).Msg("static UI bundle not found; serving API only")
		return ""
	}
	return dir
}
