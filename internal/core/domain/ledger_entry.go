package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind classifies a ledger entry.
type EntryKind string

const (
	EntryDeposit    EntryKind = "deposit"
	EntryWithdrawal EntryKind = "withdrawal"
	EntryInterest   EntryKind = "interest"
	EntryAdjustment EntryKind = "adjustment"
)

// IsValid reports whether k is a known entry kind.
func (k EntryKind) IsValid() bool {
	switch k {
	case EntryDeposit, EntryWithdrawal, EntryInterest, EntryAdjustment:
		return true
	}
	return false
}

// SystemActor is the initiator recorded for entries created by scheduled jobs.
const SystemActor = "SYSTEM"

// LedgerEntry is an immutable record of one balance change.
type LedgerEntry struct {
	EntryID      string          `json:"transactionId"`
	AccountID    string          `json:"userId"`
	Amount       decimal.Decimal `json:"amount"`
	Kind         EntryKind       `json:"type"`
	Description  string          `json:"description"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	InitiatedBy  string          `json:"initiatedBy"`
	Timestamp    time.Time       `json:"timestamp"`
}

// Adjustment requests a signed change to an account's balance.
type Adjustment struct {
	AccountID   string
	Amount      decimal.Decimal
	Kind        EntryKind
	Description string
	InitiatedBy string
}

// EntryPage is one page of ledger entries.
type EntryPage struct {
	Entries   []LedgerEntry
	NextToken string // empty on the last page
}
