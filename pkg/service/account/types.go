package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Options tune the ledger engine.
type Options struct {
	// MaxDeposit is the ceiling for a single deposit.
	MaxDeposit decimal.Decimal
	// ExclusiveSessions keeps at most one live session: a successful login
	// revokes every other session and clears every logged_in flag.
	ExclusiveSessions bool
	// StoreTimeout bounds each Save call. Zero means no bound.
	StoreTimeout time.Duration
	// CurrencySymbol prefixes amounts in messages.
	CurrencySymbol string
	// Now returns the commit time. Defaults to time.Now.
	Now func() time.Time
}

// DefaultMaxDeposit is the single-deposit ceiling used when none is configured.
var DefaultMaxDeposit = decimal.NewFromInt(50000)

// DefaultOptions returns the stock engine settings.
func DefaultOptions() Options {
	return Options{
		MaxDeposit:        DefaultMaxDeposit,
		ExclusiveSessions: true,
		StoreTimeout:      5 * time.Second,
		CurrencySymbol:    "₹",
		Now:               time.Now,
	}
}

// Session is an authenticated username bound to an opaque identifier.
// Every session-scoped operation takes the identifier explicitly.
type Session struct {
	ID        uuid.UUID
	Username  string
	StartedAt time.Time
}

// Result is the outcome of a money-moving operation.
type Result struct {
	Message string
	// Balance is the caller's balance after the operation.
	Balance decimal.Decimal
}
