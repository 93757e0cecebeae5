package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryItem is a ledger entry as stored in the keyed table.
type EntryItem struct {
	PK            string          `db:"pk"`
	SK            string          `db:"sk"`
	TransactionID string          `db:"transaction_id"`
	UserID        string          `db:"user_id"`
	Amount        decimal.Decimal `db:"amount"`
	EntryType     string          `db:"entry_type"`
	Description   string          `db:"description"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	InitiatedBy   string          `db:"initiated_by"`
	Timestamp     time.Time       `db:"entry_timestamp"`
}

// BalanceWrite is one conditional balance transaction: the profile balance moves
// from ExpectedBalance to NewBalance and Entry is inserted, or nothing happens.
type BalanceWrite struct {
	PK              string
	ExpectedBalance decimal.Decimal
	NewBalance      decimal.Decimal
	UpdatedAt       time.Time
	Entry           EntryItem
}
