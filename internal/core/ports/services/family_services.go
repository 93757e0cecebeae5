package services

import (
	"context"

	"github.com/SscSPs/family_bank/internal/core/domain"
	"github.com/SscSPs/family_bank/internal/dto"
)

// ProfileSvc defines operations on the caller's own or a child's profile.
type ProfileSvc interface {
	GetProfile(ctx context.Context, caller domain.Principal, req dto.Empty) (*dto.UserResponse, error)
	RegisterParent(ctx context.Context, caller domain.Principal, req dto.RegisterParentRequest) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, caller domain.Principal, req dto.UpdateUserRequest) (*dto.UserResponse, error)
}

// ChildSvc defines a parent's operations on its children.
type ChildSvc interface {
	CreateChild(ctx context.Context, caller domain.Principal, req dto.CreateChildRequest) (*dto.UserResponse, error)
	ListChildren(ctx context.Context, caller domain.Principal, req dto.Empty) (*dto.ListChildrenResponse, error)
	GetChildSummary(ctx context.Context, caller domain.Principal, req dto.ChildSummaryRequest) (*dto.ChildSummaryResponse, error)
	AdjustBalance(ctx context.Context, caller domain.Principal, req dto.AdjustBalanceRequest) (*dto.AdjustBalanceResponse, error)
}

// TransactionSvc defines ledger listing for callers.
type TransactionSvc interface {
	ListTransactions(ctx context.Context, caller domain.Principal, req dto.ListTransactionsRequest) (*dto.ListTransactionsResponse, error)
}

// FamilySvcFacade combines the caller-facing operations. Every method expects an
// already verified principal.
type FamilySvcFacade interface {
	ProfileSvc
	ChildSvc
	TransactionSvc
}
