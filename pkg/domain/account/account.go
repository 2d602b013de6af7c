package account

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// Account is one user's credentials, balance and ledger.
//
// Invariants:
//   - Username is the primary key; it is non-empty and compared case-sensitively.
//   - PasswordHash and PinHash are digests, never plaintext.
//   - Balance is never negative; every debit is checked before it is applied.
//   - Transactions is append-only and kept in commit order.
//   - Rating is nil or an integer in [1, 5].
type Account struct {
	Username     string
	PasswordHash string
	PinHash      string
	Balance      decimal.Decimal
	Transactions []Entry
	Rating       *int
	// LoggedIn mirrors session state on disk. It is advisory; live sessions
	// are held by the ledger engine.
	LoggedIn bool
	// Extra holds stored fields this package does not interpret. They are
	// written back unchanged on the next save.
	Extra map[string]json.RawMessage
}

// New creates an empty account with the given digests.
func New(username, passwordHash, pinHash string) *Account {
	return &Account{
		Username:     username,
		PasswordHash: passwordHash,
		PinHash:      pinHash,
		Balance:      decimal.Zero,
		Transactions: []Entry{},
	}
}

// Clone returns a deep copy that shares no mutable state with a.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Transactions = slices.Clone(a.Transactions)
	if cp.Transactions == nil {
		cp.Transactions = []Entry{}
	}
	if a.Rating != nil {
		r := *a.Rating
		cp.Rating = &r
	}
	if a.Extra != nil {
		cp.Extra = make(map[string]json.RawMessage, len(a.Extra))
		for k, v := range a.Extra {
			cp.Extra[k] = slices.Clone(v)
		}
	}
	return &cp
}

// CanDebit reports whether amount can be taken without the balance going negative.
func (a *Account) CanDebit(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(a.Balance)
}

// Credit adds amount to the balance and appends the entry.
func (a *Account) Credit(amount decimal.Decimal, e Entry) {
	a.Balance = a.Balance.Add(amount)
	a.Transactions = append(a.Transactions, e)
}

// Debit subtracts amount from the balance and appends the entry.
// Callers check CanDebit first.
func (a *Account) Debit(amount decimal.Decimal, e Entry) {
	a.Balance = a.Balance.Sub(amount)
	a.Transactions = append(a.Transactions, e)
}

// Mapping is the full set of accounts keyed by username. It is the unit of
// persistence: stores always load and save a whole Mapping.
type Mapping map[string]*Account

// Clone deep-copies every account.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, a := range m {
		out[k] = a.Clone()
	}
	return out
}

// Usernames returns the keys in sorted order.
func (m Mapping) Usernames() []string {
	return slices.Sorted(maps.Keys(m))
}
