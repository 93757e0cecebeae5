package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/family_bank/internal/apperrors"
	"github.com/SscSPs/family_bank/internal/auth"
	"github.com/SscSPs/family_bank/internal/core/domain"
	portssvc "github.com/SscSPs/family_bank/internal/core/ports/services"
	"github.com/SscSPs/family_bank/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// DefaultSummarySize is the number of recent entries in a child summary.
	DefaultSummarySize = 10

	defaultAdjustmentDescription = "Balance adjustment"
)

// familyService implements the caller-facing operations on top of the ledger.
// Callers arrive already verified; ownership of children is checked here.
type familyService struct {
	BaseService
	ledger      portssvc.LedgerSvcFacade
	newChildID  func() string
	summarySize int
}

// FamilyOption is a functional option for configuring the family service
type FamilyOption func(*familyService)

// WithChildIDGenerator replaces the generator used when a child is created without an id.
func WithChildIDGenerator(newID func() string) FamilyOption {
	return func(s *familyService) {
		s.newChildID = newID
	}
}

// WithSummarySize sets how many recent entries a child summary holds.
func WithSummarySize(n int) FamilyOption {
	return func(s *familyService) {
		if n > 0 {
			s.summarySize = n
		}
	}
}

// NewFamilyService creates a new family service with the provided options
func NewFamilyService(ledger portssvc.LedgerSvcFacade, options ...FamilyOption) portssvc.FamilySvcFacade {
	svc := &familyService{
		ledger:      ledger,
		newChildID:  uuid.NewString,
		summarySize: DefaultSummarySize,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure familyService implements the FamilySvcFacade interface
var _ portssvc.FamilySvcFacade = (*familyService)(nil)

// ownChild loads childID and checks that it is a child of caller.
func (s *familyService) ownChild(ctx context.Context, caller domain.Principal, childID string) (*domain.Account, error) {
	child, err := s.ledger.GetAccount(ctx, childID)
	if err != nil {
		return nil, err
	}
	if !child.BelongsTo(caller.SubjectID) {
		s.LogWarn(ctx, apperrors.ErrForbidden, "Caller does not own account", slog.String("target_id", childID))
		return nil, fmt.Errorf("%w: account %s is not your child", apperrors.ErrForbidden, childID)
	}
	return child, nil
}

func (s *familyService) GetProfile(ctx context.Context, caller domain.Principal, _ dto.Empty) (*dto.UserResponse, error) {
	acc, err := s.ledger.GetAccount(ctx, caller.SubjectID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToUserResponse(acc)
	return &resp, nil
}

func (s *familyService) RegisterParent(ctx context.Context, caller domain.Principal, req dto.RegisterParentRequest) (*dto.UserResponse, error) {
	email := req.Email
	if strings.TrimSpace(email) == "" {
		email = caller.Email
	}
	acc, err := s.ledger.CreateAccount(ctx, domain.NewAccount{
		AccountID: caller.SubjectID,
		Role:      domain.RoleParent,
		Name:      req.Name,
		Email:     email,
		CreatedBy: caller.SubjectID,
	})
	if err != nil {
		return nil, err
	}
	resp := dto.ToUserResponse(acc)
	return &resp, nil
}

func (s *familyService) UpdateProfile(ctx context.Context, caller domain.Principal, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	targetID := req.UserID
	if targetID == "" {
		targetID = caller.SubjectID
	}
	isParent := auth.IsParent(caller)

	if req.InterestRate != nil && !isParent {
		return nil, fmt.Errorf("%w: only parents can change interest rates", apperrors.ErrForbidden)
	}

	if targetID != caller.SubjectID {
		if !isParent {
			return nil, fmt.Errorf("%w: cannot update another user's profile", apperrors.ErrForbidden)
		}
		if _, err := s.ownChild(ctx, caller, targetID); err != nil {
			return nil, err
		}
	} else if req.InterestRate != nil {
		// A parent's own profile has no rate to change.
		return nil, fmt.Errorf("%w: interest rate applies to child accounts only", apperrors.ErrValidation)
	}

	acc, err := s.ledger.UpdateProfile(ctx, targetID, domain.ProfileUpdate{
		Name:         req.Name,
		InterestRate: req.InterestRate,
	})
	if err != nil {
		return nil, err
	}
	resp := dto.ToUserResponse(acc)
	return &resp, nil
}

func (s *familyService) CreateChild(ctx context.Context, caller domain.Principal, req dto.CreateChildRequest) (*dto.UserResponse, error) {
	childID := strings.TrimSpace(req.ChildID)
	if childID == "" {
		childID = s.newChildID()
	}
	if childID == caller.SubjectID {
		return nil, fmt.Errorf("%w: a parent cannot be its own child", apperrors.ErrValidation)
	}

	rate := domain.DefaultInterestRate
	if req.InterestRate != nil {
		rate = *req.InterestRate
	}
	opening := decimal.Zero
	if req.InitialBalance != nil {
		opening = *req.InitialBalance
	}

	acc, err := s.ledger.CreateAccount(ctx, domain.NewAccount{
		AccountID:      childID,
		Role:           domain.RoleChild,
		Name:           req.Name,
		Email:          req.Email,
		InterestRate:   rate,
		ParentID:       caller.SubjectID,
		OpeningBalance: opening,
		CreatedBy:      caller.SubjectID,
	})
	if err != nil {
		return nil, err
	}
	resp := dto.ToUserResponse(acc)
	return &resp, nil
}

func (s *familyService) ListChildren(ctx context.Context, caller domain.Principal, _ dto.Empty) (*dto.ListChildrenResponse, error) {
	children, err := s.ledger.ListChildren(ctx, caller.SubjectID)
	if err != nil {
		return nil, err
	}
	return &dto.ListChildrenResponse{
		Children: dto.ToUserResponses(children),
		Count:    len(children),
	}, nil
}

func (s *familyService) GetChildSummary(ctx context.Context, caller domain.Principal, req dto.ChildSummaryRequest) (*dto.ChildSummaryResponse, error) {
	child, err := s.ownChild(ctx, caller, req.ChildID)
	if err != nil {
		return nil, err
	}
	page, err := s.ledger.ListEntries(ctx, child.AccountID, domain.PageRequest{
		Limit: s.summarySize,
		Order: domain.SortNewestFirst,
	})
	if err != nil {
		return nil, err
	}
	return &dto.ChildSummaryResponse{
		Child:              dto.ToUserResponse(child),
		RecentTransactions: dto.ToTransactionResponses(page.Entries),
	}, nil
}

func (s *familyService) AdjustBalance(ctx context.Context, caller domain.Principal, req dto.AdjustBalanceRequest) (*dto.AdjustBalanceResponse, error) {
	kind := domain.EntryKind(strings.ToLower(strings.TrimSpace(req.Kind)))
	if kind == "" {
		kind = domain.EntryAdjustment
	}
	if err := checkCallerAdjustment(kind, req.Amount); err != nil {
		return nil, err
	}

	if _, err := s.ownChild(ctx, caller, req.ChildID); err != nil {
		return nil, err
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = defaultAdjustmentDescription
	}

	entry, err := s.ledger.AdjustBalance(ctx, domain.Adjustment{
		AccountID:   req.ChildID,
		Amount:      req.Amount,
		Kind:        kind,
		Description: description,
		InitiatedBy: caller.SubjectID,
	})
	if err != nil {
		var balErr *apperrors.BalanceError
		if errors.As(err, &balErr) {
			s.LogWarn(ctx, err, "Adjustment rejected", slog.String("child_id", req.ChildID))
		}
		return nil, err
	}

	return &dto.AdjustBalanceResponse{
		Message:     "Balance adjusted successfully",
		Transaction: dto.ToTransactionResponse(entry),
		NewBalance:  entry.BalanceAfter.StringFixed(moneyPlaces),
	}, nil
}

// checkCallerAdjustment enforces the sign conventions of caller-initiated kinds.
func checkCallerAdjustment(kind domain.EntryKind, amount decimal.Decimal) error {
	switch kind {
	case domain.EntryDeposit:
		if !amount.IsPositive() {
			return fmt.Errorf("%w: deposit amount must be positive", apperrors.ErrInvalidAmount)
		}
	case domain.EntryWithdrawal:
		if !amount.IsNegative() {
			return fmt.Errorf("%w: withdrawal amount must be negative", apperrors.ErrInvalidAmount)
		}
	case domain.EntryAdjustment:
	case domain.EntryInterest:
		return fmt.Errorf("%w: interest is applied by the scheduler only", apperrors.ErrValidation)
	default:
		return fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, kind)
	}
	return nil
}

func (s *familyService) ListTransactions(ctx context.Context, caller domain.Principal, req dto.ListTransactionsRequest) (*dto.ListTransactionsResponse, error) {
	targetID := req.UserID
	if targetID == "" {
		targetID = caller.SubjectID
	}
	if targetID != caller.SubjectID {
		if !auth.IsParent(caller) {
			return nil, fmt.Errorf("%w: cannot view another user's transactions", apperrors.ErrForbidden)
		}
		if _, err := s.ownChild(ctx, caller, targetID); err != nil {
			return nil, err
		}
	}

	page, err := s.ledger.ListEntries(ctx, targetID, domain.PageRequest{
		Limit:     req.Limit,
		NextToken: req.NextToken,
		Order:     domain.SortOrder(req.Order),
	})
	if err != nil {
		return nil, err
	}
	return &dto.ListTransactionsResponse{
		UserID:       targetID,
		Transactions: dto.ToTransactionResponses(page.Entries),
		Count:        len(page.Entries),
		NextToken:    page.NextToken,
	}, nil
}
