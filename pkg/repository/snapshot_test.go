package repository

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

const legacySnapshot = `{
    "alice": {
        "password_hash": "ph-a",
        "pin_hash": "pin-a",
        "balance": 400.0,
        "transactions": [
            {"type": "Deposit", "amount": 500.0, "timestamp": "2025-01-02 10:00:00"},
            {"type": "Transfer to bob", "amount": -100.0, "timestamp": "2025-01-02 10:05:00"}
        ],
        "rating": null,
        "logged_in": true,
        "email": "alice@example.com"
    },
    "bob": {
        "password_hash": "ph-b",
        "pin_hash": "pin-b",
        "balance": 100,
        "transactions": [
            {"type": "Transfer from alice", "amount": 100.0, "timestamp": "2025-01-02 10:05:00"}
        ],
        "rating": 4,
        "logged_in": false
    }
}`

func TestDecode_LegacySnapshot(t *testing.T) {
	m, err := Decode([]byte(legacySnapshot), discard)
	require.NoError(t, err)
	require.Len(t, m, 2)

	alice := m["alice"]
	require.NotNil(t, alice)
	assert.Equal(t, "ph-a", alice.PasswordHash)
	assert.Equal(t, "pin-a", alice.PinHash)
	assert.True(t, alice.Balance.Equal(decimal.NewFromInt(400)))
	assert.True(t, alice.LoggedIn)
	assert.Nil(t, alice.Rating)
	require.Len(t, alice.Transactions, 2)
	assert.Equal(t, account.KindDeposit, alice.Transactions[0].Kind)
	assert.Equal(t, account.KindTransferOut, alice.Transactions[1].Kind)
	assert.Equal(t, "bob", alice.Transactions[1].Counterparty)
	assert.True(t, alice.Transactions[1].Amount.Equal(decimal.NewFromInt(-100)))
	assert.Equal(t, "2025-01-02 10:05:00", alice.Transactions[1].FormattedTimestamp())
	assert.JSONEq(t, `"alice@example.com"`, string(alice.Extra["email"]))

	bob := m["bob"]
	require.NotNil(t, bob)
	require.NotNil(t, bob.Rating)
	assert.Equal(t, 4, *bob.Rating)
	assert.Equal(t, account.KindTransferIn, bob.Transactions[0].Kind)
	assert.Equal(t, "alice", bob.Transactions[0].Counterparty)
}

func TestEncode_Shape(t *testing.T) {
	rating := 5
	a := account.New("alice", "ph", "pin")
	a.Rating = &rating
	ts := time.Date(2025, 1, 2, 10, 0, 0, 0, time.Local)
	a.Credit(decimal.RequireFromString("12.5"), account.NewDeposit(decimal.RequireFromString("12.5"), ts))

	data, err := Encode(account.Mapping{"alice": a, "bob": account.New("bob", "ph2", "pin2")})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"alice": {
			"password_hash": "ph",
			"pin_hash": "pin",
			"balance": 12.5,
			"transactions": [{"type": "Deposit", "amount": 12.5, "timestamp": "2025-01-02 10:00:00"}],
			"rating": 5,
			"logged_in": false
		},
		"bob": {
			"password_hash": "ph2",
			"pin_hash": "pin2",
			"balance": 0,
			"transactions": [],
			"rating": null,
			"logged_in": false
		}
	}`, string(data))
}

func TestRoundTrip(t *testing.T) {
	m, err := Decode([]byte(legacySnapshot), discard)
	require.NoError(t, err)

	first, err := Encode(m)
	require.NoError(t, err)
	again, err := Decode(first, discard)
	require.NoError(t, err)
	second, err := Encode(again)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Contains(t, string(second), `"email": "alice@example.com"`)
}

func TestDecode_EmptyAndCorrupt(t *testing.T) {
	for _, in := range []string{"", "   \n", "null"} {
		m, err := Decode([]byte(in), discard)
		require.NoError(t, err, "input %q", in)
		assert.Empty(t, m)
	}

	for _, in := range []string{"{", "[1,2]", `"text"`, "{\"alice\": "} {
		_, err := Decode([]byte(in), discard)
		assert.ErrorIs(t, err, ErrCorruptSnapshot, "input %q", in)
	}
}

func TestDecode_MalformedValuesDefaultWithWarning(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	m, err := Decode([]byte(`{
		"carol": {
			"password_hash": "ph",
			"balance": "oops",
			"rating": 9,
			"logged_in": "yes",
			"transactions": [
				{"type": "Deposit", "amount": 10, "timestamp": "not a time"},
				{"type": "Bonus", "amount": "2.5", "timestamp": "2025-01-02 10:00:00", "note": "promo"},
				7
			]
		},
		"dave": 42,
		"": {}
	}`), logger)
	require.NoError(t, err)

	require.Len(t, m, 1)
	carol := m["carol"]
	assert.Equal(t, "", carol.PinHash)
	assert.True(t, carol.Balance.IsZero())
	assert.Nil(t, carol.Rating)
	assert.False(t, carol.LoggedIn)
	require.Len(t, carol.Transactions, 2)
	assert.True(t, carol.Transactions[0].Timestamp.IsZero())
	assert.Equal(t, "Bonus", carol.Transactions[1].Type())
	assert.True(t, carol.Transactions[1].Amount.Equal(decimal.RequireFromString("2.5")))

	out, err := Encode(m)
	require.NoError(t, err)
	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	txs := decoded["carol"]["transactions"].([]any)
	assert.Equal(t, "promo", txs[1].(map[string]any)["note"])

	assert.Contains(t, logs.String(), "invalid balance")
	assert.Contains(t, logs.String(), "invalid rating")
	assert.Contains(t, logs.String(), "invalid entry timestamp")
	assert.Contains(t, logs.String(), "not an object")
}

func TestDecodeRating(t *testing.T) {
	tests := []struct {
		raw  string
		want *int
	}{
		{"null", nil},
		{"3", ptr(3)},
		{"5.0", ptr(5)},
		{"4.5", nil},
		{"0", nil},
		{"6", nil},
		{`"x"`, nil},
		{"1e-999999999", nil},
		{`"1e999999999"`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeRating(json.RawMessage(tt.raw), discard))
		})
	}
}

func TestDecode_RejectsExtremeExponents(t *testing.T) {
	m, err := Decode([]byte(`{
		"erin": {
			"password_hash": "ph",
			"pin_hash": "qh",
			"balance": "1e999999999",
			"transactions": [{"type": "Deposit", "amount": 1e-999999999, "timestamp": "2025-01-02 10:00:00"}]
		}
	}`), discard)
	require.NoError(t, err)

	erin := m["erin"]
	assert.True(t, erin.Balance.IsZero())
	require.Len(t, erin.Transactions, 1)
	assert.True(t, erin.Transactions[0].Amount.IsZero())
}

func ptr(i int) *int { return &i }
