// Command server runs the storefront accounts HTTP API.
//
// @title                       Storefront Accounts API
// @version                     1.0
// @description                 Customer registration, authentication, password reset, profile and address management.
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

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/storefront-accounts/internal/api"
	"github.com/99minutos/storefront-accounts/internal/core/ports"
	"github.com/99minutos/storefront-accounts/internal/core/service"
	"github.com/99minutos/storefront-accounts/internal/infrastructure/config"
	"github.com/99minutos/storefront-accounts/internal/infrastructure/db/memory"
	mongostore "github.com/99minutos/storefront-accounts/internal/infrastructure/db/mongo"
	redisstore "github.com/99minutos/storefront-accounts/internal/infrastructure/db/redis"
	"github.com/99minutos/storefront-accounts/internal/infrastructure/notify"
	"github.com/99minutos/storefront-accounts/internal/infrastructure/queue"
	"github.com/99minutos/storefront-accounts/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	boot := logger.Init(logger.Options{
		Level:   os.Getenv("LOG_LEVEL"),
		Pretty:  os.Getenv("ENV") == "development",
		Service: "storefront-accounts",
	})
	cfg := config.Load(boot)
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

// stores groups the persistence adapters chosen by STORE_DRIVER.
type stores struct {
	accounts  ports.AccountRepository
	addresses ports.AddressRepository
	sessions  ports.SessionStore
	resets    ports.ResetTokenStore
	locker    ports.Locker

	mongo *mongodrv.Database
	redis *goredis.Client

	close func(context.Context)
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn().Msg("using in-memory stores; data is lost on restart")
		return &stores{
			accounts:  memory.NewAccountRepository(),
			addresses: memory.NewAddressRepository(),
			sessions:  memory.NewSessionStore(),
			resets:    memory.NewResetTokenStore(),
			locker:    memory.NewLocker(),
			close:     func(context.Context) {},
		}, nil
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "storefront-accounts",
	})
	if err != nil {
		return nil, err
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	accounts := mongostore.NewAccountRepository(db)
	addresses := mongostore.NewAddressRepository(db)
	if err := mongostore.EnsureIndexes(ctx, accounts, addresses); err != nil {
		_ = client.Disconnect(ctx)
		_ = rdb.Close()
		return nil, err
	}

	return &stores{
		accounts:  accounts,
		addresses: addresses,
		sessions:  redisstore.NewSessionStore(rdb),
		resets:    redisstore.NewResetTokenStore(rdb),
		locker:    redisstore.NewLocker(rdb, 0, 0),
		mongo:     db,
		redis:     rdb,
		close: func(ctx context.Context) {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("redis close")
			}
			if err := client.Disconnect(ctx); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect")
			}
		},
	}, nil
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	dispatcher := queue.NewDispatcher(cfg.NotifyWorkers, notify.NewLogSender(cfg.ResetURL, log), log)
	dispatcher.Start(workerCtx)

	accountSvc := service.NewAccountService(service.AccountDeps{
		Repo:       st.accounts,
		Sessions:   st.sessions,
		Resets:     st.resets,
		Locker:     st.locker,
		Notifier:   dispatcher,
		BcryptCost: cfg.Auth.BcryptCost,
		ResetTTL:   cfg.Auth.ResetTokenTTL,
	}, log)
	authSvc, err := service.NewAuthService(st.accounts, st.sessions, service.AuthConfig{
		JWTSecret:  cfg.Auth.JWTSecret,
		SessionTTL: cfg.Auth.SessionTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	}, log)
	if err != nil {
		return err
	}
	addressSvc := service.NewAddressService(st.addresses, log)

	e := api.NewRouter(api.Deps{
		Accounts:  accountSvc,
		Auth:      authSvc,
		Addresses: addressSvc,
		Mongo:     st.mongo,
		Redis:     st.redis,
		Logger:    log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("store", cfg.StoreDriver).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			st.close(context.Background())
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	cancelWorkers()
	st.close(shutdownCtx)
	return nil
}
