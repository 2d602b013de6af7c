// Package app wires the ledger engine, its auth layer and the event bus
// into one application.
package app

import (
	"context"
	"log/slog"

	"github.com/amirasaad/atm/pkg/domain/events"
	"github.com/amirasaad/atm/pkg/eventbus"
)

// setupEventBus registers the audit trail for every ledger event.
func (a *App) setupEventBus() {
	bus := a.Deps.EventBus
	audit := a.Deps.Logger.With("component", "audit")
	for _, et := range events.All() {
		bus.Register(et, HandleAudit(audit))
	}
}

// HandleAudit logs each event as one structured record.
func HandleAudit(logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		attrs := []any{"event", e.Type()}
		switch ev := e.(type) {
		case events.AccountCreated:
			attrs = append(attrs, "username", ev.Username)
		case events.SessionStarted:
			attrs = append(attrs, "username", ev.Username, "session", ev.SessionID, "revoked", len(ev.Revoked))
		case events.SessionEnded:
			attrs = append(attrs, "username", ev.Username, "session", ev.SessionID)
		case events.FundsDeposited:
			attrs = append(attrs, "username", ev.Username, "amount", ev.Amount.String(), "balance", ev.Balance.String())
		case events.FundsWithdrawn:
			attrs = append(attrs, "username", ev.Username, "amount", ev.Amount.String(), "balance", ev.Balance.String())
		case events.FundsTransferred:
			attrs = append(attrs, "username", ev.Username, "to", ev.To, "amount", ev.Amount.String(), "balance", ev.Balance.String())
		case events.CredentialChanged:
			attrs = append(attrs, "username", ev.Username, "credential", string(ev.Credential))
		case events.RatingSubmitted:
			attrs = append(attrs, "username", ev.Username, "rating", ev.Rating)
		}
		logger.InfoContext(ctx, "ledger event", attrs...)
		return nil
	}
}
