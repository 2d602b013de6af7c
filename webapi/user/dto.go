package user

import "github.com/amirasaad/atm/webapi/common"

// NewUser represents the request body for creating a new account holder.
// Blank values are reported by the ledger itself.
type NewUser struct {
	Username string      `json:"username" validate:"max=128"`
	Password string      `json:"password" validate:"max=256"`
	PIN      common.Text `json:"pin" validate:"max=32"`
}
