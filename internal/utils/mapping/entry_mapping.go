package mapping

import (
	"github.com/SscSPs/family_bank/internal/core/domain"
	"github.com/SscSPs/family_bank/internal/core/keys"
	"github.com/SscSPs/family_bank/internal/models"
)

// ToEntryItem converts a domain.LedgerEntry to its stored item.
func ToEntryItem(e domain.LedgerEntry) models.EntryItem {
	k := keys.Ledger(e.AccountID, e.Timestamp, e.EntryID)
	return models.EntryItem{
		PK:            k.PK,
		SK:            k.SK,
		TransactionID: e.EntryID,
		UserID:        e.AccountID,
		Amount:        e.Amount,
		EntryType:     string(e.Kind),
		Description:   e.Description,
		BalanceAfter:  e.BalanceAfter,
		InitiatedBy:   e.InitiatedBy,
		Timestamp:     e.Timestamp,
	}
}

// ToDomainEntry converts a stored entry item to domain.LedgerEntry.
func ToDomainEntry(m models.EntryItem) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:      m.TransactionID,
		AccountID:    m.UserID,
		Amount:       m.Amount,
		Kind:         domain.EntryKind(m.EntryType),
		Description:  m.Description,
		BalanceAfter: m.BalanceAfter,
		InitiatedBy:  m.InitiatedBy,
		Timestamp:    m.Timestamp,
	}
}

// ToDomainEntries converts a slice of entry items.
func ToDomainEntries(items []models.EntryItem) []domain.LedgerEntry {
	out := make([]domain.LedgerEntry, len(items))
	for i, m := range items {
		out[i] = ToDomainEntry(m)
	}
	return out
}
