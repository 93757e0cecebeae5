package services

import (
	"context"

	"github.com/SscSPs/family_bank/internal/core/domain"
)

// LedgerReaderSvc defines read operations over accounts and their ledgers.
type LedgerReaderSvc interface {
	// GetAccount returns the account profile. Returns apperrors.ErrNotFound if absent.
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)

	// ListEntries returns one page of the account's ledger.
	ListEntries(ctx context.Context, accountID string, page domain.PageRequest) (*domain.EntryPage, error)

	// ListChildren returns the children of parentID via the parent index.
	ListChildren(ctx context.Context, parentID string) ([]domain.Account, error)

	// ListAllChildren returns every child account.
	ListAllChildren(ctx context.Context) ([]domain.Account, error)
}

// LedgerWriterSvc defines the mutations of accounts and their ledgers.
type LedgerWriterSvc interface {
	// CreateAccount stores a new account and, for a positive opening balance, its opening entry.
	CreateAccount(ctx context.Context, acc domain.NewAccount) (*domain.Account, error)

	// UpdateProfile changes the mutable profile fields of an account.
	UpdateProfile(ctx context.Context, accountID string, upd domain.ProfileUpdate) (*domain.Account, error)

	// AdjustBalance atomically applies the adjustment and appends its ledger entry.
	AdjustBalance(ctx context.Context, adj domain.Adjustment) (*domain.LedgerEntry, error)
}

// LedgerSvcFacade combines all ledger operations.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}

// EntryPublisher announces committed ledger entries to downstream consumers.
type EntryPublisher interface {
	PublishEntry(ctx context.Context, entry domain.LedgerEntry) error
}
