package account

import (
	"encoding/json"

	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/webapi/common"
	"github.com/shopspring/decimal"
)

// AmountRequest is the body of a deposit.
type AmountRequest struct {
	Amount common.Text `json:"amount" validate:"max=64"`
}

// WithdrawRequest is the body of a withdrawal.
type WithdrawRequest struct {
	Amount common.Text `json:"amount" validate:"max=64"`
	PIN    common.Text `json:"pin" validate:"required,max=32"`
}

// TransferRequest is the body of a transfer to another account holder.
type TransferRequest struct {
	ToUsername string      `json:"to_username" validate:"max=128"`
	Amount     common.Text `json:"amount" validate:"max=64"`
	PIN        common.Text `json:"pin" validate:"max=32"`
}

type ChangePINRequest struct {
	OldPIN common.Text `json:"old_pin" validate:"max=32"`
	NewPIN common.Text `json:"new_pin" validate:"max=32"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"max=256"`
	NewPassword string `json:"new_password" validate:"max=256"`
}

type RatingRequest struct {
	Rating common.Text `json:"rating" validate:"max=16"`
}

// BalanceDTO carries a balance as an exact JSON number.
type BalanceDTO struct {
	Balance json.Number `json:"balance"`
}

// TransactionDTO is one ledger entry as returned by the API.
type TransactionDTO struct {
	Type      string      `json:"type"`
	Amount    json.Number `json:"amount"`
	Timestamp string      `json:"timestamp"`
}

func toBalanceDTO(d decimal.Decimal) BalanceDTO {
	return BalanceDTO{Balance: json.Number(d.StringFixed(2))}
}

func toTransactionDTOs(entries []account.Entry) []TransactionDTO {
	dtos := make([]TransactionDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, TransactionDTO{
			Type:      e.Type(),
			Amount:    json.Number(e.Amount.String()),
			Timestamp: e.FormattedTimestamp(),
		})
	}
	return dtos
}
