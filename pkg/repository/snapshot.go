package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/shopspring/decimal"
)

// Field names of the persisted snapshot.
const (
	fieldPasswordHash = "password_hash"
	fieldPinHash      = "pin_hash"
	fieldBalance      = "balance"
	fieldTransactions = "transactions"
	fieldRating       = "rating"
	fieldLoggedIn     = "logged_in"

	fieldType      = "type"
	fieldAmount    = "amount"
	fieldTimestamp = "timestamp"
)

// ErrCorruptSnapshot is returned by Decode when the document as a whole is
// not a JSON object.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// Encode renders m in the snapshot layout: one object keyed by username,
// each value holding password_hash, pin_hash, balance, transactions,
// rating and logged_in. Fields kept in Extra are written back alongside.
func Encode(m account.Mapping) ([]byte, error) {
	out := make(map[string]map[string]any, len(m))
	for username, a := range m {
		out[username] = encodeAccount(a)
	}
	data, err := json.MarshalIndent(out, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

func encodeAccount(a *account.Account) map[string]any {
	rec := make(map[string]any, len(a.Extra)+6)
	for k, v := range a.Extra {
		rec[k] = v
	}
	entries := make([]map[string]any, 0, len(a.Transactions))
	for _, e := range a.Transactions {
		entries = append(entries, EncodeEntry(e))
	}
	var rating any
	if a.Rating != nil {
		rating = *a.Rating
	}
	rec[fieldPasswordHash] = a.PasswordHash
	rec[fieldPinHash] = a.PinHash
	rec[fieldBalance] = json.Number(a.Balance.String())
	rec[fieldTransactions] = entries
	rec[fieldRating] = rating
	rec[fieldLoggedIn] = a.LoggedIn
	return rec
}

// EncodeEntry renders one ledger entry as {type, amount, timestamp} plus
// any retained extra fields.
func EncodeEntry(e account.Entry) map[string]any {
	rec := make(map[string]any, len(e.Extra)+3)
	for k, v := range e.Extra {
		rec[k] = v
	}
	rec[fieldType] = e.Type()
	rec[fieldAmount] = json.Number(e.Amount.String())
	rec[fieldTimestamp] = e.FormattedTimestamp()
	return rec
}

// Decode parses a snapshot. Empty input yields an empty mapping. A document
// that is not a JSON object fails with ErrCorruptSnapshot. Inside a valid
// document, malformed values are replaced by their defaults and reported to
// logger as warnings: a bad record never fails the whole load.
func Decode(data []byte, logger *slog.Logger) (account.Mapping, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := account.Mapping{}
	if len(bytes.TrimSpace(data)) == 0 {
		return m, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	for username, rawRec := range raw {
		if strings.TrimSpace(username) == "" {
			logger.Warn("skipping snapshot record with empty username")
			continue
		}
		a, ok := decodeAccount(username, rawRec, logger)
		if !ok {
			continue
		}
		m[username] = a
	}
	return m, nil
}

func decodeAccount(username string, raw json.RawMessage, logger *slog.Logger) (*account.Account, bool) {
	log := logger.With("username", username)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		log.Warn("skipping snapshot record that is not an object")
		return nil, false
	}

	a := account.New(username, "", "")
	for key, value := range fields {
		switch key {
		case fieldPasswordHash:
			a.PasswordHash = decodeString(value, key, log)
		case fieldPinHash:
			a.PinHash = decodeString(value, key, log)
		case fieldBalance:
			d, err := decodeDecimal(value)
			if err != nil {
				log.Warn("invalid balance, defaulting to 0", "error", err)
				continue
			}
			if d.IsNegative() {
				log.Warn("negative balance in snapshot", "balance", d.String())
			}
			a.Balance = d
		case fieldTransactions:
			a.Transactions = decodeEntries(value, log)
		case fieldRating:
			a.Rating = decodeRating(value, log)
		case fieldLoggedIn:
			if isNull(value) {
				continue
			}
			if err := json.Unmarshal(value, &a.LoggedIn); err != nil {
				log.Warn("invalid logged_in flag, defaulting to false", "error", err)
			}
		default:
			if a.Extra == nil {
				a.Extra = make(map[string]json.RawMessage)
			}
			a.Extra[key] = value
		}
	}
	return a, true
}

func decodeEntries(raw json.RawMessage, log *slog.Logger) []account.Entry {
	entries := []account.Entry{}
	if isNull(raw) {
		return entries
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Warn("invalid transactions list, defaulting to empty", "error", err)
		return entries
	}
	for i, item := range items {
		e, ok := DecodeEntry(item, log.With("entry", i))
		if ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// DecodeEntry parses one stored {type, amount, timestamp} object.
// Unrecognised type labels are kept verbatim.
func DecodeEntry(raw json.RawMessage, log *slog.Logger) (account.Entry, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		log.Warn("skipping ledger entry that is not an object")
		return account.Entry{}, false
	}

	var e account.Entry
	for key, value := range fields {
		switch key {
		case fieldType:
			label := decodeString(value, key, log)
			e.Kind, e.Counterparty = account.ParseEntryType(label)
			if e.Kind == account.KindOther {
				e.Label = label
			}
		case fieldAmount:
			d, err := decodeDecimal(value)
			if err != nil {
				log.Warn("invalid entry amount, defaulting to 0", "error", err)
				continue
			}
			e.Amount = d
		case fieldTimestamp:
			s := decodeString(value, key, log)
			if s == "" {
				continue
			}
			ts, ok := account.ParseTimestamp(s)
			if !ok {
				log.Warn("invalid entry timestamp, leaving it empty", "timestamp", s)
				continue
			}
			e.Timestamp = ts
		default:
			if e.Extra == nil {
				e.Extra = make(map[string]json.RawMessage)
			}
			e.Extra[key] = value
		}
	}
	return e, true
}

func decodeString(raw json.RawMessage, field string, log *slog.Logger) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		log.Warn("invalid string field, defaulting to empty", "field", field, "error", err)
		return ""
	}
	return s
}

var errExponentRange = errors.New("exponent out of range")

// decodeDecimal accepts a JSON number, a numeric string or null (zero).
func decodeDecimal(raw json.RawMessage) (decimal.Decimal, error) {
	d, err := parseDecimal(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if !account.ExponentInRange(d) {
		return decimal.Zero, errExponentRange
	}
	return d, nil
}

func parseDecimal(raw json.RawMessage) (decimal.Decimal, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return decimal.Zero, err
	}
	switch x := v.(type) {
	case nil:
		return decimal.Zero, nil
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(x))
	default:
		return decimal.Zero, fmt.Errorf("unexpected %T", v)
	}
}

// decodeRating accepts null or an integral number in [1, 5]; anything else
// is discarded with a warning.
func decodeRating(raw json.RawMessage, log *slog.Logger) *int {
	if isNull(raw) {
		return nil
	}
	d, err := decodeDecimal(raw)
	if err != nil || !d.IsInteger() || d.LessThan(decimal.NewFromInt(1)) || d.GreaterThan(decimal.NewFromInt(5)) {
		log.Warn("invalid rating, leaving it unset", "rating", string(raw))
		return nil
	}
	r := int(d.IntPart())
	return &r
}

func isNull(raw json.RawMessage) bool {
	s := bytes.TrimSpace(raw)
	return len(s) == 0 || bytes.Equal(s, []byte("null"))
}
