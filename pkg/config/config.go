package config

import (
	"time"

	"github.com/shopspring/decimal"
)

// Store drivers.
const (
	StoreJSON     = "json"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

// Event bus drivers.
const (
	EventBusMemory = "memory"
	EventBusRedis  = "redis"
)

type Store struct {
	Driver   string        `envconfig:"DRIVER" default:"json"`
	// FILE rather than PATH: envconfig falls back to the unprefixed name.
	File     string        `envconfig:"FILE" default:"users.json"`
	DSN      string        `envconfig:"DSN"`
	RedisURL string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	RedisKey string        `envconfig:"REDIS_KEY" default:"atm:users"`
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"5s"`
}

type EventBus struct {
	Driver   string `envconfig:"DRIVER" default:"memory"`
	RedisURL string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	Stream   string `envconfig:"STREAM" default:"atm:events"`
	MaxLen   int64  `envconfig:"MAX_LEN" default:"10000"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

// Ledger holds the engine's business rules.
type Ledger struct {
	MaxDeposit        decimal.Decimal `envconfig:"MAX_DEPOSIT" default:"50000"`
	ExclusiveSessions bool            `envconfig:"EXCLUSIVE_SESSIONS" default:"true"`
	CurrencySymbol    string          `envconfig:"CURRENCY_SYMBOL" default:"₹"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[atm]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	Store     *Store     `envconfig:"STORE"`
	EventBus  *EventBus  `envconfig:"EVENTBUS"`
	Auth      *Auth      `envconfig:"AUTH"`
	Ledger    *Ledger    `envconfig:"LEDGER"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
}
