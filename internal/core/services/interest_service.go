package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/family_bank/internal/apperrors"
	"github.com/SscSPs/family_bank/internal/core/domain"
	portssvc "github.com/SscSPs/family_bank/internal/core/ports/services"
	"github.com/SscSPs/family_bank/internal/platform/metrics"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// interestService credits periodic interest to every child account.
// Runs are not authorized; only the scheduler and operators invoke them.
type interestService struct {
	BaseService
	ledger portssvc.LedgerSvcFacade
	now    func() time.Time

	mu    sync.Mutex
	state domain.InterestRunState
}

// InterestOption is a functional option for configuring the interest service
type InterestOption func(*interestService)

// WithInterestClock replaces time.Now.
func WithInterestClock(now func() time.Time) InterestOption {
	return func(s *interestService) {
		s.now = now
	}
}

// NewInterestService creates a new interest service with the provided options
func NewInterestService(ledger portssvc.LedgerSvcFacade, options ...InterestOption) portssvc.InterestSvc {
	svc := &interestService{
		ledger: ledger,
		now:    time.Now,
		state:  domain.InterestRunIdle,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure interestService implements the InterestSvc interface
var _ portssvc.InterestSvc = (*interestService)(nil)

func (s *interestService) State() domain.InterestRunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// begin moves the service to running. It fails if a run is already in progress.
func (s *interestService) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.InterestRunRunning {
		return fmt.Errorf("%w: an interest run is already in progress", apperrors.ErrConflict)
	}
	s.state = domain.InterestRunRunning
	return nil
}

func (s *interestService) finish(state domain.InterestRunState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Run applies interest to every child once. Per-account failures are recorded
// in the summary and do not stop the run.
func (s *interestService) Run(ctx context.Context) (*domain.InterestRunSummary, error) {
	if err := s.begin(); err != nil {
		s.LogWarn(ctx, err, "Interest run rejected")
		return nil, err
	}

	summary := &domain.InterestRunSummary{
		State:     domain.InterestRunRunning,
		StartedAt: s.now().UTC(),
	}
	s.LogInfo(ctx, "Interest run started")

	var runErr error
	children, err := s.ledger.ListAllChildren(ctx)
	if err != nil {
		runErr = fmt.Errorf("failed to enumerate child accounts: %w", err)
	} else {
		summary.Total = len(children)
		for _, child := range children {
			if ctx.Err() != nil {
				s.recordFailure(summary, child, ctx.Err())
				continue
			}
			s.applyInterest(ctx, summary, child)
		}
	}

	summary.FinishedAt = s.now().UTC()
	summary.State = domain.InterestRunCompleted
	if runErr != nil || summary.Failed > 0 {
		summary.State = domain.InterestRunPartiallyFailed
	}
	s.finish(summary.State)

	metrics.RecordInterestRun(string(summary.State), summary.Applied, summary.Skipped, summary.Failed, summary.Duration())
	logArgs := []any{
		slog.String("state", string(summary.State)),
		slog.Int("total", summary.Total),
		slog.Int("applied", summary.Applied),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		slog.Duration("duration", summary.Duration()),
	}
	if runErr != nil {
		s.LogError(ctx, runErr, "Interest run aborted", logArgs...)
		return summary, runErr
	}
	s.LogInfo(ctx, "Interest run finished", logArgs...)
	return summary, nil
}

// applyInterest credits one child. The balance is re-read so that changes made
// since enumeration are taken into account.
func (s *interestService) applyInterest(ctx context.Context, summary *domain.InterestRunSummary, child domain.Account) {
	acc, err := s.ledger.GetAccount(ctx, child.AccountID)
	if err != nil {
		s.recordFailure(summary, child, err)
		return
	}

	interest := acc.Balance.Mul(acc.InterestRate).Round(moneyPlaces)
	if acc.InterestRate.IsZero() || acc.Balance.IsZero() || interest.IsZero() {
		summary.Skipped++
		s.LogDebug(ctx, "Interest skipped", slog.String("account_id", acc.AccountID))
		return
	}

	_, err = s.ledger.AdjustBalance(ctx, domain.Adjustment{
		AccountID:   acc.AccountID,
		Amount:      interest,
		Kind:        domain.EntryInterest,
		Description: interestDescription(acc.InterestRate),
		InitiatedBy: domain.SystemActor,
	})
	if err != nil {
		s.recordFailure(summary, *acc, err)
		return
	}
	summary.Applied++
}

func (s *interestService) recordFailure(summary *domain.InterestRunSummary, child domain.Account, err error) {
	summary.Failed++
	summary.Failures = append(summary.Failures, domain.InterestFailure{
		AccountID: child.AccountID,
		Name:      child.Name,
		Kind:      apperrors.Kind(err),
		Error:     err.Error(),
	})
}

// interestDescription renders e.g. "Monthly interest (5.00%)".
func interestDescription(rate decimal.Decimal) string {
	return fmt.Sprintf("Monthly interest (%s%%)", rate.Mul(hundred).StringFixed(2))
}
