package config

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the first env file found among envFilePath (each searched for
// from the working directory upwards), falling back to .env, and then
// processes the environment into App. Missing env files are not an error.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	logger.Debug("Loading environment variables")

	loaded := false
	for _, path := range envFilePath {
		foundPath, err := FindEnvFile(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path, "error", err)
			continue
		}
		if err := godotenv.Load(foundPath); err != nil {
			logger.Error("Failed to load environment file", "path", foundPath, "error", err)
			continue
		}
		logger.Info("Environment loaded from file", "path", foundPath)
		loaded = true
		break
	}
	if !loaded {
		if err := godotenv.Load(); err != nil {
			logger.Debug("No .env file found in current directory")
		}
	}
	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Default().Info("App config loaded",
		"env", cfg.Env,
		"store_driver", cfg.Store.Driver,
		"store_file", cfg.Store.File,
		"store_dsn", maskValue(cfg.Store.DSN),
		"eventbus_driver", cfg.EventBus.Driver,
		"auth_jwt_secret", maskValue(cfg.Auth.Jwt.Secret),
		"auth_jwt_expiry", cfg.Auth.Jwt.Expiry,
		"ledger_max_deposit", cfg.Ledger.MaxDeposit.String(),
		"ledger_exclusive_sessions", cfg.Ledger.ExclusiveSessions,
		"rate_limit_max_requests", cfg.RateLimit.MaxRequests,
		"rate_limit_window", cfg.RateLimit.Window,
	)
	return &cfg, nil
}

// Validate rejects unknown drivers and non-positive limits.
func (c *App) Validate() error {
	drivers := []string{StoreJSON, StoreSQLite, StorePostgres, StoreRedis, StoreMemory}
	if !slices.Contains(drivers, c.Store.Driver) {
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Store.Driver == StorePostgres && c.Store.DSN == "" {
		return fmt.Errorf("config: STORE_DSN is required for driver %q", c.Store.Driver)
	}
	if c.EventBus.Driver != EventBusMemory && c.EventBus.Driver != EventBusRedis {
		return fmt.Errorf("config: unknown EVENTBUS_DRIVER %q", c.EventBus.Driver)
	}
	if !c.Ledger.MaxDeposit.IsPositive() {
		return fmt.Errorf("config: LEDGER_MAX_DEPOSIT must be positive, got %s", c.Ledger.MaxDeposit)
	}
	if c.Store.Timeout <= 0 {
		return fmt.Errorf("config: STORE_TIMEOUT must be positive, got %s", c.Store.Timeout)
	}
	return nil
}

func maskValue(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
