package services

import (
	"context"

	"github.com/SscSPs/family_bank/internal/core/domain"
)

// InterestSvc applies periodic interest to every child account.
type InterestSvc interface {
	// Run performs one pass. It returns apperrors.ErrConflict if a pass is already running.
	Run(ctx context.Context) (*domain.InterestRunSummary, error)

	// State returns the current lifecycle state.
	State() domain.InterestRunState
}
