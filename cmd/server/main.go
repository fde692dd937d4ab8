package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-redis/redis/v8"
	"github.com/prajwalbharadwajbm/fundledger/internal/assets"
	"github.com/prajwalbharadwajbm/fundledger/internal/auth"
	"github.com/prajwalbharadwajbm/fundledger/internal/cache"
	"github.com/prajwalbharadwajbm/fundledger/internal/config"
	"github.com/prajwalbharadwajbm/fundledger/internal/database"
	"github.com/prajwalbharadwajbm/fundledger/internal/endpoint"
	"github.com/prajwalbharadwajbm/fundledger/internal/events"
	"github.com/prajwalbharadwajbm/fundledger/internal/logger"
	"github.com/prajwalbharadwajbm/fundledger/internal/metrics"
	"github.com/prajwalbharadwajbm/fundledger/internal/middleware"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
	"github.com/prajwalbharadwajbm/fundledger/internal/repository"
	"github.com/prajwalbharadwajbm/fundledger/internal/service"
	"github.com/prajwalbharadwajbm/fundledger/internal/transport"
)

const VERSION = "1.0.0"

func main() {
	if err := config.LoadConfigs(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := config.AppConfigInstance

	appLogger := logger.New(logger.Config{
		Service: cfg.GeneralConfig.Service,
		Version: VERSION,
		Level:   cfg.LogConfig.Level,
	})

	if err := run(cfg, appLogger); err != nil {
		level.Error(appLogger).Log("msg", "server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.AppConfig, logger log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var owner models.Address
	if cfg.LedgerConfig.Owner != "" {
		parsed, err := models.ParseAddress(cfg.LedgerConfig.Owner)
		if err != nil {
			return fmt.Errorf("invalid LEDGER_OWNER: %w", err)
		}
		owner = parsed
	}

	m := metrics.NewPrometheusMetrics(nil)
	var handlerOpts []transport.HandlerOption

	// Ledger store
	var store service.LedgerStore
	if cfg.DatabaseConfig.Enabled {
		db, cleanup, err := database.Initialize(cfg.DatabaseConfig, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		pg := repository.NewPostgresRepository(db)
		if !owner.IsZero() {
			if err := pg.InitOwner(ctx, owner); err != nil {
				return err
			}
		}
		current, err := pg.Owner(ctx)
		if err != nil {
			return err
		}
		if current.IsZero() {
			return errors.New("ledger has no owner: set LEDGER_OWNER on first start")
		}
		if !owner.IsZero() && current != owner {
			level.Warn(logger).Log("msg", "LEDGER_OWNER ignored, ledger already has an owner", "owner", current)
		}

		store = pg
		handlerOpts = append(handlerOpts, transport.WithHealthCheck("database", db.HealthCheck))
		level.Info(logger).Log("msg", "using postgres ledger store", "database", cfg.DatabaseConfig.DBName)
	} else {
		if owner.IsZero() {
			return errors.New("LEDGER_OWNER is required for the in-memory ledger store")
		}
		store = repository.NewMemoryRepository(owner)
		level.Warn(logger).Log("msg", "using in-memory ledger store, state is lost on restart")
	}
	store = repository.NewInstrumentedRepository(store, m)

	if cfg.CacheConfig.Enabled {
		hybrid, err := cache.NewHybridCache(config.GetCacheConfig())
		if err != nil {
			return fmt.Errorf("failed to create cache: %w", err)
		}
		defer hybrid.Close()
		store = cache.NewCachedRepository(store, hybrid, cfg.CacheConfig.DefaultTTL, logger, m)
		level.Info(logger).Log("msg", "campaign cache enabled", "memory", cfg.CacheConfig.EnableMemory, "redis", cfg.CacheConfig.EnableRedis)
	}

	// Events
	var publisher service.EventPublisher = events.NopPublisher{}
	if cfg.RedisConfig.PublishEvents {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Addr,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		defer client.Close()
		publisher = events.NewRedisPublisher(client, cfg.RedisConfig.EventsChannel)
		handlerOpts = append(handlerOpts, transport.WithHealthCheck("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}))
		level.Info(logger).Log("msg", "publishing ledger events", "channel", cfg.RedisConfig.EventsChannel)
	}

	vault := assets.NewVault()
	mover := assets.NewInstrumentedMover(vault, m)

	var svc service.CrowdfundingService = service.NewLedgerService(store, mover,
		service.WithPublisher(publisher),
		service.WithLogger(logger),
	)
	svc = middleware.NewServiceMetricsMiddleware(m)(svc)
	svc = middleware.NewLoggingMiddleware(logger)(svc)

	tokens := auth.NewTokenManager(cfg.AuthConfig.JWTSecret, cfg.AuthConfig.Issuer, cfg.AuthConfig.TokenTTL)
	handlerOpts = append(handlerOpts,
		transport.WithMetrics(m),
		transport.WithAuth(tokens),
		transport.WithServiceInfo(cfg.GeneralConfig.Service, VERSION),
	)
	if cfg.VaultConfig.DevEndpoints {
		handlerOpts = append(handlerOpts, transport.WithVaultEndpoints(vault))
		level.Warn(logger).Log("msg", "vault development endpoints enabled")
	}

	handler := transport.NewHTTPHandler(endpoint.MakeLedgerEndpoints(svc), logger, handlerOpts...)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPConfig.Port),
		Handler:      handler,
		ReadTimeout:  cfg.HTTPConfig.ReadTimeout,
		WriteTimeout: cfg.HTTPConfig.WriteTimeout,
		IdleTimeout:  cfg.HTTPConfig.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		level.Info(logger).Log("msg", "starting server", "port", cfg.HTTPConfig.Port, "env", cfg.GeneralConfig.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("failed to serve http server: %w", err)
	case <-ctx.Done():
	}

	level.Info(logger).Log("msg", "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPConfig.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
