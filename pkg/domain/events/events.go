package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType represents the type of an event in the system.
type EventType string

// Event type constants
const (
	// Account events
	EventTypeAccountCreated EventType = "Account.Created"

	// Session events
	EventTypeSessionStarted EventType = "Session.Started"
	EventTypeSessionEnded   EventType = "Session.Ended"

	// Money events
	EventTypeFundsDeposited   EventType = "Funds.Deposited"
	EventTypeFundsWithdrawn   EventType = "Funds.Withdrawn"
	EventTypeFundsTransferred EventType = "Funds.Transferred"

	// Profile events
	EventTypeCredentialChanged EventType = "Credential.Changed"
	EventTypeRatingSubmitted   EventType = "Rating.Submitted"
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	return string(et)
}

// All lists every event type the ledger emits.
func All() []EventType {
	return []EventType{
		EventTypeAccountCreated,
		EventTypeSessionStarted,
		EventTypeSessionEnded,
		EventTypeFundsDeposited,
		EventTypeFundsWithdrawn,
		EventTypeFundsTransferred,
		EventTypeCredentialChanged,
		EventTypeRatingSubmitted,
	}
}

// Event is implemented by every ledger event. Events are emitted only after
// the change they describe has been persisted.
type Event interface {
	Type() string
}

// Meta is embedded in every event.
type Meta struct {
	Username   string
	OccurredAt time.Time
}

// AccountCreated is emitted when a new account is stored.
type AccountCreated struct {
	Meta
}

// SessionStarted is emitted after a successful login. Revoked lists the
// sessions superseded by it.
type SessionStarted struct {
	Meta
	SessionID uuid.UUID
	Revoked   []uuid.UUID
}

// SessionEnded is emitted after a logout.
type SessionEnded struct {
	Meta
	SessionID uuid.UUID
}

// FundsDeposited is emitted after a deposit.
type FundsDeposited struct {
	Meta
	Amount  decimal.Decimal
	Balance decimal.Decimal
}

// FundsWithdrawn is emitted after a withdrawal.
type FundsWithdrawn struct {
	Meta
	Amount  decimal.Decimal
	Balance decimal.Decimal
}

// FundsTransferred is emitted after a transfer; Username is the sender.
type FundsTransferred struct {
	Meta
	To      string
	Amount  decimal.Decimal
	Balance decimal.Decimal
}

// Credential names the secret changed by a CredentialChanged event.
type Credential string

const (
	CredentialPIN      Credential = "pin"
	CredentialPassword Credential = "password"
)

// CredentialChanged is emitted after a PIN or password change.
type CredentialChanged struct {
	Meta
	Credential Credential
}

// RatingSubmitted is emitted after a rating is stored.
type RatingSubmitted struct {
	Meta
	Rating int
}

func (e AccountCreated) Type() string    { return EventTypeAccountCreated.String() }
func (e SessionStarted) Type() string    { return EventTypeSessionStarted.String() }
func (e SessionEnded) Type() string      { return EventTypeSessionEnded.String() }
func (e FundsDeposited) Type() string    { return EventTypeFundsDeposited.String() }
func (e FundsWithdrawn) Type() string    { return EventTypeFundsWithdrawn.String() }
func (e FundsTransferred) Type() string  { return EventTypeFundsTransferred.String() }
func (e CredentialChanged) Type() string { return EventTypeCredentialChanged.String() }
func (e RatingSubmitted) Type() string   { return EventTypeRatingSubmitted.String() }
