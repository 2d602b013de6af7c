package account

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the stored timestamp format: local time, second resolution.
const TimestampLayout = "2006-01-02 15:04:05"

// Kind classifies a ledger entry.
type Kind int

const (
	// KindOther is an entry whose stored label is not recognised; its label is kept verbatim.
	KindOther Kind = iota
	KindDeposit
	KindWithdraw
	KindTransferOut
	KindTransferIn
)

const (
	labelDeposit     = "Deposit"
	labelWithdraw    = "Withdraw"
	prefixTransferTo = "Transfer to "
	prefixTransferIn = "Transfer from "
)

// Entry is one immutable ledger record. Amount is positive for deposits,
// withdrawals and incoming transfers, and negative on the sender's side of
// a transfer.
type Entry struct {
	Kind         Kind
	Counterparty string
	// Label is only used for KindOther.
	Label     string
	Amount    decimal.Decimal
	Timestamp time.Time
	// Extra holds stored fields this package does not interpret. Entries
	// never mutate it, so copies may share the map.
	Extra map[string]json.RawMessage
}

// NewDeposit records a deposit of amount at ts.
func NewDeposit(amount decimal.Decimal, ts time.Time) Entry {
	return Entry{Kind: KindDeposit, Amount: amount, Timestamp: ts}
}

// NewWithdraw records a withdrawal of amount at ts.
func NewWithdraw(amount decimal.Decimal, ts time.Time) Entry {
	return Entry{Kind: KindWithdraw, Amount: amount, Timestamp: ts}
}

// NewTransferPair returns the sender's (negative) and recipient's (positive)
// entries of a transfer, stamped with the same time.
func NewTransferPair(from, to string, amount decimal.Decimal, ts time.Time) (out, in Entry) {
	out = Entry{Kind: KindTransferOut, Counterparty: to, Amount: amount.Neg(), Timestamp: ts}
	in = Entry{Kind: KindTransferIn, Counterparty: from, Amount: amount, Timestamp: ts}
	return out, in
}

// Type renders the stored type label, e.g. "Deposit" or "Transfer to bob".
func (e Entry) Type() string {
	switch e.Kind {
	case KindDeposit:
		return labelDeposit
	case KindWithdraw:
		return labelWithdraw
	case KindTransferOut:
		return prefixTransferTo + e.Counterparty
	case KindTransferIn:
		return prefixTransferIn + e.Counterparty
	default:
		return e.Label
	}
}

// FormattedTimestamp renders Timestamp with TimestampLayout in local time.
// The zero time renders as an empty string.
func (e Entry) FormattedTimestamp() string {
	if e.Timestamp.IsZero() {
		return ""
	}
	return e.Timestamp.Local().Format(TimestampLayout)
}

// ParseEntryType is the inverse of Entry.Type.
func ParseEntryType(label string) (kind Kind, counterparty string) {
	switch {
	case label == labelDeposit:
		return KindDeposit, ""
	case label == labelWithdraw:
		return KindWithdraw, ""
	case strings.HasPrefix(label, prefixTransferTo) && len(label) > len(prefixTransferTo):
		return KindTransferOut, strings.TrimPrefix(label, prefixTransferTo)
	case strings.HasPrefix(label, prefixTransferIn) && len(label) > len(prefixTransferIn):
		return KindTransferIn, strings.TrimPrefix(label, prefixTransferIn)
	default:
		return KindOther, ""
	}
}

// ParseTimestamp reads a stored timestamp. Besides TimestampLayout it
// accepts RFC 3339 and the ISO form with a "T" separator.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{TimestampLayout, "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
