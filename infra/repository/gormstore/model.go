package gormstore

import "github.com/shopspring/decimal"

// Account is one row of ledger_accounts.
type Account struct {
	Username     string          `gorm:"primaryKey;size:255"`
	PasswordHash string          `gorm:"size:128;not null"`
	PinHash      string          `gorm:"size:128;not null"`
	Balance      decimal.Decimal `gorm:"type:varchar(64);not null"`
	Rating       *int
	LoggedIn     bool `gorm:"not null"`
	// Extra is a JSON object of fields the ledger does not interpret, or empty.
	Extra string `gorm:"type:text"`
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "ledger_accounts"
}

// Entry is one row of ledger_entries. Seq is the entry's position in the
// account's ledger.
type Entry struct {
	ID        uint            `gorm:"primaryKey"`
	Username  string          `gorm:"size:255;not null;index:idx_ledger_entries_user_seq,priority:1"`
	Seq       int             `gorm:"not null;index:idx_ledger_entries_user_seq,priority:2"`
	Type      string          `gorm:"size:300;not null"`
	Amount    decimal.Decimal `gorm:"type:varchar(64);not null"`
	Timestamp string          `gorm:"size:32"`
	Extra     string          `gorm:"type:text"`
}

// TableName specifies the table name for the Entry model.
func (Entry) TableName() string {
	return "ledger_entries"
}
