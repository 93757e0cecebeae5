package repositories

import (
	"context"

	"github.com/SscSPs/family_bank/internal/models"
)

// ProfileReader defines read operations on account profile items.
type ProfileReader interface {
	// GetProfile returns the profile stored under pk. Returns apperrors.ErrNotFound if absent.
	GetProfile(ctx context.Context, pk string) (*models.ProfileItem, error)

	// QueryIndex returns profiles from one secondary index partition in index sort key order.
	QueryIndex(ctx context.Context, q models.IndexQuery) ([]models.ProfileItem, error)

	// ScanProfiles returns every profile item in partition key order.
	ScanProfiles(ctx context.Context, q models.ScanQuery) ([]models.ProfileItem, error)
}

// ProfileWriter defines conditional writes on account profile items.
type ProfileWriter interface {
	// CreateProfile inserts the profile, and the opening entry when non-nil, in one transaction.
	// Returns apperrors.ErrDuplicate if the profile already exists.
	CreateProfile(ctx context.Context, profile models.ProfileItem, opening *models.EntryItem) error

	// UpdateProfile overwrites the given attributes of an existing profile and returns the result.
	// Returns apperrors.ErrNotFound if absent.
	UpdateProfile(ctx context.Context, pk string, upd models.ProfileUpdate) (*models.ProfileItem, error)
}

// LedgerWriter defines the atomic balance transaction.
type LedgerWriter interface {
	// TransactBalance applies w atomically. Returns apperrors.ErrConditionFailed when the
	// profile is absent, its balance differs from w.ExpectedBalance, or the entry key exists.
	TransactBalance(ctx context.Context, w models.BalanceWrite) error
}

// LedgerReader defines read operations on ledger entry items.
type LedgerReader interface {
	// QueryEntries returns entries of one partition in sort key order.
	QueryEntries(ctx context.Context, q models.EntryQuery) ([]models.EntryItem, error)
}

// ItemStoreFacade is the keyed transactional store holding profiles and ledger entries.
type ItemStoreFacade interface {
	ProfileReader
	ProfileWriter
	LedgerWriter
	LedgerReader
}
