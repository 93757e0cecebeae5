package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/family_bank/internal/apperrors"
	"github.com/SscSPs/family_bank/internal/core/domain"
	portsrepo "github.com/SscSPs/family_bank/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/family_bank/internal/core/ports/services"
	"github.com/SscSPs/family_bank/internal/core/services"
	"github.com/SscSPs/family_bank/internal/models"
	"github.com/SscSPs/family_bank/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// MockEntryPublisher is a mock type for the EntryPublisher interface
type MockEntryPublisher struct {
	mock.Mock
}

var _ portssvc.EntryPublisher = (*MockEntryPublisher)(nil)

func (m *MockEntryPublisher) PublishEntry(ctx context.Context, entry domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// racingStore lets every GetProfile through only once `readers` callers have
// read, so they all observe the same balance before any of them writes.
type racingStore struct {
	portsrepo.ItemStoreFacade
	barrier sync.WaitGroup
}

func newRacingStore(inner portsrepo.ItemStoreFacade, readers int) *racingStore {
	s := &racingStore{ItemStoreFacade: inner}
	s.barrier.Add(readers)
	return s
}

func (s *racingStore) GetProfile(ctx context.Context, pk string) (*models.ProfileItem, error) {
	p, err := s.ItemStoreFacade.GetProfile(ctx, pk)
	s.barrier.Done()
	s.barrier.Wait()
	return p, err
}

// stallingStore blocks reads until the caller's context ends.
type stallingStore struct {
	portsrepo.ItemStoreFacade
}

func (s stallingStore) GetProfile(ctx context.Context, _ string) (*models.ProfileItem, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type LedgerServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *memory.ItemStore
	ledger portssvc.LedgerSvcFacade
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewItemStore()
	s.ledger = services.NewLedgerService(s.store)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) createParent(id string) {
	_, err := s.ledger.CreateAccount(s.ctx, domain.NewAccount{
		AccountID: id, Role: domain.RoleParent, Name: "Parent " + id, Email: id + "@example.com", CreatedBy: id,
	})
	s.Require().NoError(err)
}

func (s *LedgerServiceTestSuite) createChild(ledger portssvc.LedgerSvcFacade, id, parent, balance, rate string) {
	_, err := ledger.CreateAccount(s.ctx, domain.NewAccount{
		AccountID:      id,
		Role:           domain.RoleChild,
		Name:           "Child " + id,
		Email:          id + "@example.com",
		InterestRate:   dec(rate),
		ParentID:       parent,
		OpeningBalance: dec(balance),
		CreatedBy:      parent,
	})
	s.Require().NoError(err)
}

func (s *LedgerServiceTestSuite) allEntries(accountID string) []domain.LedgerEntry {
	page, err := s.ledger.ListEntries(s.ctx, accountID, domain.PageRequest{Limit: domain.MaxPageSize, Order: domain.SortOldestFirst})
	s.Require().NoError(err)
	s.Require().Empty(page.NextToken)
	return page.Entries
}

func (s *LedgerServiceTestSuite) balance(accountID string) decimal.Decimal {
	acc, err := s.ledger.GetAccount(s.ctx, accountID)
	s.Require().NoError(err)
	return acc.Balance
}

func (s *LedgerServiceTestSuite) TestCreateAccountWritesOpeningEntry() {
	s.createParent("p1")
	s.createChild(s.ledger, "c1", "p1", "25.50", "0.05")

	entries := s.allEntries("c1")
	s.Require().Len(entries, 1)
	s.Equal(domain.EntryDeposit, entries[0].Kind)
	s.Equal("Opening balance", entries[0].Description)
	s.True(entries[0].BalanceAfter.Equal(dec("25.50")))
	s.True(s.balance("c1").Equal(dec("25.50")))

	s.createChild(s.ledger, "c2", "p1", "0", "0.05")
	s.Empty(s.allEntries("c2"))
}

func (s *LedgerServiceTestSuite) TestCreateAccountValidation() {
	s.createParent("p1")

	cases := map[string]struct {
		acc  domain.NewAccount
		kind error
	}{
		"duplicate":          {domain.NewAccount{AccountID: "p1", Role: domain.RoleParent, Name: "x", Email: "x@example.com"}, apperrors.ErrDuplicate},
		"negative opening":   {domain.NewAccount{AccountID: "c", Role: domain.RoleChild, Name: "x", Email: "e", ParentID: "p1", OpeningBalance: dec("-1")}, apperrors.ErrInvalidAmount},
		"precise opening":    {domain.NewAccount{AccountID: "c", Role: domain.RoleChild, Name: "x", Email: "e", ParentID: "p1", OpeningBalance: dec("1.001")}, apperrors.ErrInvalidAmount},
		"rate above one":     {domain.NewAccount{AccountID: "c", Role: domain.RoleChild, Name: "x", Email: "e", ParentID: "p1", InterestRate: dec("1.5")}, apperrors.ErrValidation},
		"child no parent":    {domain.NewAccount{AccountID: "c", Role: domain.RoleChild, Name: "x", Email: "e"}, apperrors.ErrValidation},
		"unknown role":       {domain.NewAccount{AccountID: "c", Role: "admin", Name: "x", Email: "e"}, apperrors.ErrValidation},
		"reserved character": {domain.NewAccount{AccountID: "c#1", Role: domain.RoleParent, Name: "x", Email: "e"}, apperrors.ErrValidation},
	}
	for name, tc := range cases {
		_, err := s.ledger.CreateAccount(s.ctx, tc.acc)
		s.ErrorIs(err, tc.kind, name)
	}
}

func (s *LedgerServiceTestSuite) TestDepositAndWithdrawal() {
	s.createParent("p1")
	s.createChild(s.ledger, "c1", "p1", "10", "0")

	entry, err := s.ledger.AdjustBalance(s.ctx, domain.Adjustment{AccountID: "c1", Amount: dec("5.25"), Kind: domain.EntryDeposit, InitiatedBy: "p1"})
	s.Require().NoError(err)
	s.True(entry.BalanceAfter.Equal(dec("15.25")))
	s.True(s.balance("c1").Equal(entry.BalanceAfter))

	entry, err = s.ledger.AdjustBalance(s.ctx, domain.Adjustment{AccountID: "c1", Amount: dec("-15.25"), Kind: domain.EntryWithdrawal, InitiatedBy: "p1"})
	s.Require().NoError(err)
	s.True(entry.BalanceAfter.IsZero())
	s.True(s.balance("c1").IsZero())

	entries := s.allEntries("c1")
	s.Require().Len(entries, 3)
	s.True(entries[2].BalanceAfter.Equal(s.balance("c1")))
	s.Equal("p1", entries[2].InitiatedBy)
}

func (s *LedgerServiceTestSuite) TestRejectedAdjustmentsLeaveStateUnchanged() {
	s.createParent("p1")
	s.createChild(s.ledger, "c1", "p1", "10", "0")

	_, err := s.ledger.AdjustBalance(s.ctx, domain.Adjustment{AccountID: "c1", Amount: dec("-10.01"), Kind: domain.EntryWithdrawal})
	s.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)
	var balErr *apperrors.BalanceError
	s.Require().ErrorAs(err, &balErr)
	s.True(balErr.CurrentBalance.Equal(dec("10")))
	s.True(balErr.Requested.Equal(dec("-10.01")))

	_, err = s.ledger.AdjustBalance(s.ctx, domain.Adjustment{AccountID: "c1", Amount: decimal.Zero, Kind: domain.EntryAdjustment})
	s.ErrorIs(err, apperrors.ErrInvalidAmount)

	_, err = s.ledger.AdjustBalance(s.ctx, domain.Adjustment{AccountID: "c1", Amount: dec("0.005"), Kind: domain.EntryAdjustment})
	s.ErrorIs(err, apperrors.ErrInvalidAmount)

	_, err = s.ledger.AdjustBalance(s.ctx, domain.Adjustment{AccountID: "c1", Amount: dec("1"), Kind: "gift"})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.ledger.AdjustBalance(s.ctx, domain.Adjustment{AccountID: "nobody", Amount: dec("1"), Kind: domain.EntryDeposit})
	s.ErrorIs(err, apperrors.ErrNotFound)

	s.True(s.balance("c1").Equal(dec("10")))
	s.Len(s.allEntries("c1"), 1)
}

func (s *LedgerServiceTestSuite) TestConflictingWritesExactlyOneCommits() {
	s.createParent("p1")
	s.createChild(s.ledger, "c1", "p1", "10", "0")

	racing := services.NewLedgerService(newRacingStore(s.store, 2))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = racing.AdjustBalance(s.ctx, domain.Adjustment{AccountID: "c1", Amount: dec("-10"), Kind: domain.EntryWithdrawal})
		}(i)
	}
	wg.Wait()

	var committed, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			committed++
		case errors.Is(err, apperrors.ErrConcurrentModification):
			conflicted++
			var balErr *apperrors.BalanceError
			s.Require().ErrorAs(err, &balErr)
			s.True(balErr.CurrentBalance.Equal(dec("10")))
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, committed)
	s.Equal(1, conflicted)
	s.True(s.balance("c1").IsZero())
	s.Len(s.allEntries("c1"), 2)
}

func (s *LedgerServiceTestSuite) TestConcurrentWithdrawalsWithRetryDrainToZero() {
	const n = 20
	s.createParent("p1")
	s.createChild(s.ledger, "c1", "p1", fmt.Sprintf("%d", n), "0")

	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				_, err := s.ledger.AdjustBalance(s.ctx, domain.Adjustment{AccountID: "c1", Amount: dec("-1"), Kind: domain.EntryWithdrawal})
				if errors.Is(err, apperrors.ErrConcurrentModification) {
					continue
				}
				if err != nil {
					failures.Add(1)
				}
				return
			}
		}()
	}
	wg.Wait()

	s.Zero(failures.Load())
	s.True(s.balance("c1").IsZero())

	withdrawals := 0
	for _, e := range s.allEntries("c1") {
		s.False(e.BalanceAfter.IsNegative())
		if e.Kind == domain.EntryWithdrawal {
			withdrawals++
		}
	}
	s.Equal(n, withdrawals)

	_, err := s.ledger.AdjustBalance(s.ctx, domain.Adjustment{AccountID: "c1", Amount: dec("-1"), Kind: domain.EntryWithdrawal})
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
}

func (s *LedgerServiceTestSuite) TestStoreTimeoutIsUnavailable() {
	ledger := services.NewLedgerService(stallingStore{s.store}, services.WithStoreTimeout(10*time.Millisecond))

	_, err := ledger.AdjustBalance(s.ctx, domain.Adjustment{AccountID: "c1", Amount: dec("1"), Kind: domain.EntryDeposit})
	s.ErrorIs(err, apperrors.ErrUnavailable)

	_, err = ledger.GetAccount(s.ctx, "c1")
	s.ErrorIs(err, apperrors.ErrUnavailable)
}

func (s *LedgerServiceTestSuite) TestPaginationCoversLedgerExactlyOnce() {
	s.createParent("p1")
	s.createChild(s.ledger, "c1", "p1", "0", "0")
	for i := 1; i <= 5; i++ {
		_, err := s.ledger.AdjustBalance(s.ctx, domain.Adjustment{AccountID: "c1", Amount: decimal.NewFromInt(int64(i)), Kind: domain.EntryDeposit})
		s.Require().NoError(err)
	}

	for _, order := range []domain.SortOrder{domain.SortNewestFirst, domain.SortOldestFirst} {
		full, err := s.ledger.ListEntries(s.ctx, "c1", domain.PageRequest{Order: order})
		s.Require().NoError(err)
		s.Require().Len(full.Entries, 5)

		var paged []domain.LedgerEntry
		token := ""
		pages := 0
		for {
			page, err := s.ledger.ListEntries(s.ctx, "c1", domain.PageRequest{Limit: 2, NextToken: token, Order: order})
			s.Require().NoError(err)
			pages++
			paged = append(paged, page.Entries...)
			if page.NextToken == "" {
				break
			}
			token = page.NextToken
		}
		s.Equal(3, pages, order)
		s.Equal(full.Entries, paged, order)
	}

	newest, err := s.ledger.ListEntries(s.ctx, "c1", domain.PageRequest{Limit: 1})
	s.Require().NoError(err)
	s.True(newest.Entries[0].Amount.Equal(dec("5")))
}

func (s *LedgerServiceTestSuite) TestForeignOrCorruptTokenRejected() {
	s.createParent("p1")
	s.createChild(s.ledger, "c1", "p1", "0", "0")
	s.createChild(s.ledger, "c2", "p1", "0", "0")
	for i := 0; i < 3; i++ {
		_, err := s.ledger.AdjustBalance(s.ctx, domain.Adjustment{AccountID: "c1", Amount: dec("1"), Kind: domain.EntryDeposit})
		s.Require().NoError(err)
	}

	page, err := s.ledger.ListEntries(s.ctx, "c1", domain.PageRequest{Limit: 1})
	s.Require().NoError(err)
	s.Require().NotEmpty(page.NextToken)

	_, err = s.ledger.ListEntries(s.ctx, "c2", domain.PageRequest{Limit: 1, NextToken: page.NextToken})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.ledger.ListEntries(s.ctx, "c1", domain.PageRequest{Limit: 1, NextToken: page.NextToken, Order: domain.SortOldestFirst})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.ledger.ListEntries(s.ctx, "c1", domain.PageRequest{NextToken: "%%%not-base64"})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestListChildrenAndAllChildren() {
	s.createParent("p1")
	s.createParent("p2")
	s.createChild(s.ledger, "c1", "p1", "0", "0.05")
	s.createChild(s.ledger, "c2", "p1", "0", "0.05")
	s.createChild(s.ledger, "c3", "p2", "0", "0.05")

	children, err := s.ledger.ListChildren(s.ctx, "p1")
	s.Require().NoError(err)
	s.Len(children, 2)
	for _, c := range children {
		s.True(c.BelongsTo("p1"))
	}

	none, err := s.ledger.ListChildren(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(none)

	viaIndex, err := s.ledger.ListAllChildren(s.ctx)
	s.Require().NoError(err)
	viaScan, err := services.NewLedgerService(s.store, services.WithRoleIndex(false)).ListAllChildren(s.ctx)
	s.Require().NoError(err)
	s.Len(viaIndex, 3)
	s.ElementsMatch(viaIndex, viaScan)
}

func (s *LedgerServiceTestSuite) TestUpdateProfile() {
	s.createParent("p1")
	s.createChild(s.ledger, "c1", "p1", "0", "0.05")

	rate := dec("0.1")
	acc, err := s.ledger.UpdateProfile(s.ctx, "c1", domain.ProfileUpdate{InterestRate: &rate})
	s.Require().NoError(err)
	s.True(acc.InterestRate.Equal(rate))
	s.Equal("Child c1", acc.Name)

	_, err = s.ledger.UpdateProfile(s.ctx, "c1", domain.ProfileUpdate{})
	s.ErrorIs(err, apperrors.ErrValidation)

	bad := dec("-0.1")
	_, err = s.ledger.UpdateProfile(s.ctx, "c1", domain.ProfileUpdate{InterestRate: &bad})
	s.ErrorIs(err, apperrors.ErrValidation)

	name := "Renamed"
	_, err = s.ledger.UpdateProfile(s.ctx, "ghost", domain.ProfileUpdate{Name: &name})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func TestAdjustBalancePublishesCommittedEntries(t *testing.T) {
	ctx := context.Background()
	pub := new(MockEntryPublisher)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)
	ledger := services.NewLedgerService(memory.NewItemStore(),
		services.WithEntryPublisher(pub),
		services.WithLedgerClock(func() time.Time { return fixed }),
		services.WithEntryIDGenerator(func() string { return "entry-1" }),
	)

	_, err := ledger.CreateAccount(ctx, domain.NewAccount{AccountID: "c1", Role: domain.RoleChild, Name: "Kim", Email: "k@example.com", ParentID: "p1"})
	require.NoError(t, err)

	pub.On("PublishEntry", mock.Anything, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.EntryID == "entry-1" && e.AccountID == "c1" && e.BalanceAfter.Equal(dec("3"))
	})).Return(errors.New("broker down")).Once()

	entry, err := ledger.AdjustBalance(ctx, domain.Adjustment{AccountID: "c1", Amount: dec("3"), Kind: domain.EntryDeposit})
	require.NoError(t, err, "publish failures must not fail a committed adjustment")
	assert.Equal(t, fixed.Truncate(time.Microsecond), entry.Timestamp)
	pub.AssertExpectations(t)

	// A rejected adjustment is never published.
	_, err = ledger.AdjustBalance(ctx, domain.Adjustment{AccountID: "c1", Amount: dec("-4"), Kind: domain.EntryWithdrawal})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	pub.AssertNumberOfCalls(t, "PublishEntry", 1)
}
