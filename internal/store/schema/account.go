package schema

import (
	"time"
)

// Account represents the accounts table - the fund balance held by the ledger
// for one address. Balances are unsigned; a debit below zero aborts the
// enclosing transaction.
type Account struct {
	// Address is the account's ledger address (EIP-55 normalized)
	Address string `gorm:"column:address;primaryKey;type:text"`
	// Balance is the spendable balance (stored as string to support up to 78 digits)
	Balance string `gorm:"column:balance;not null;default:0;type:numeric(78,0)"`
	// CreatedAt is the timestamp when this account was first seen
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this balance was last changed
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Account model
func (Account) TableName() string {
	return "accounts"
}
