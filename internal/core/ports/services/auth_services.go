package services

import (
	"context"

	"github.com/SscSPs/family_bank/internal/core/domain"
)

// TokenVerifier validates a bearer token and returns the caller's identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Principal, error)
}
