package initializer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	infraeventbus "github.com/amirasaad/atm/infra/eventbus"
	infrarepo "github.com/amirasaad/atm/infra/repository"
	"github.com/amirasaad/atm/infra/repository/gormstore"
	"github.com/amirasaad/atm/infra/repository/jsonfile"
	"github.com/amirasaad/atm/infra/repository/memory"
	"github.com/amirasaad/atm/infra/repository/redisstore"
	"github.com/amirasaad/atm/pkg/app"
	"github.com/amirasaad/atm/pkg/config"
	"github.com/amirasaad/atm/pkg/eventbus"
	"github.com/amirasaad/atm/pkg/repository"
)

// DefaultSQLiteDSN is the database file used by the sqlite driver when
// STORE_DSN is empty.
const DefaultSQLiteDSN = "atm.db"

// InitializeDependencies builds the logger, store and event bus described
// by cfg. Logs go to stdout.
func InitializeDependencies(ctx context.Context, cfg *config.App) (*app.Deps, error) {
	return InitializeDependenciesWithOutput(ctx, cfg, os.Stdout)
}

// InitializeDependenciesWithOutput is InitializeDependencies with logs
// written to w.
func InitializeDependenciesWithOutput(ctx context.Context, cfg *config.App, w io.Writer) (*app.Deps, error) {
	deps := &app.Deps{}
	logger := SetupLogger(cfg.Log, w)
	deps.Logger = logger

	store, closer, err := initStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	deps.Store = store
	if closer != nil {
		deps.Closers = append(deps.Closers, closer)
	}

	bus, err := initEventBus(ctx, cfg, logger)
	if err != nil {
		for _, c := range deps.Closers {
			_ = c.Close()
		}
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}
	deps.EventBus = bus
	if c, ok := bus.(io.Closer); ok {
		deps.Closers = append(deps.Closers, c)
	}
	return deps, nil
}

func initStore(ctx context.Context, cfg *config.App, logger *slog.Logger) (repository.Store, io.Closer, error) {
	sc := cfg.Store
	logger.Info("Initializing store", "driver", sc.Driver)
	switch sc.Driver {
	case config.StoreJSON, "":
		return jsonfile.New(sc.File, logger), nil, nil
	case config.StoreMemory:
		return memory.New(nil), nil, nil
	case config.StoreSQLite, config.StorePostgres:
		dsn := sc.DSN
		if dsn == "" && sc.Driver == config.StoreSQLite {
			dsn = DefaultSQLiteDSN
		}
		db, err := infrarepo.NewDBConnection(sc.Driver, dsn, cfg.Env)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		store := gormstore.New(db, logger)
		if err := store.Migrate(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return store, sqlDB, nil
	case config.StoreRedis:
		store, err := redisstore.NewFromURL(ctx, sc.RedisURL, sc.RedisKey, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", sc.Driver)
	}
}

// initEventBus returns the configured bus. A Redis bus that cannot be
// reached falls back to the in-memory bus; the outbox is best effort.
func initEventBus(ctx context.Context, cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	bc := cfg.EventBus
	if bc == nil || bc.Driver == "" || bc.Driver == config.EventBusMemory {
		return infraeventbus.NewWithMemory(logger), nil
	}
	if bc.Driver != config.EventBusRedis {
		return nil, fmt.Errorf("unsupported event bus driver %q", bc.Driver)
	}
	if bc.RedisURL == "" {
		return nil, fmt.Errorf("EVENTBUS_REDIS_URL is required for driver %q", bc.Driver)
	}
	bus, err := infraeventbus.NewWithRedis(ctx, bc.RedisURL, bc.Stream, bc.MaxLen, logger)
	if err != nil {
		logger.Warn("Redis event bus unavailable, using in-memory bus", "error", err)
		return infraeventbus.NewWithMemory(logger), nil
	}
	return bus, nil
}
