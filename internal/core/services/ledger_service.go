package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/family_bank/internal/apperrors"
	"github.com/SscSPs/family_bank/internal/core/domain"
	"github.com/SscSPs/family_bank/internal/core/keys"
	portsrepo "github.com/SscSPs/family_bank/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/family_bank/internal/core/ports/services"
	"github.com/SscSPs/family_bank/internal/models"
	"github.com/SscSPs/family_bank/internal/platform/metrics"
	"github.com/SscSPs/family_bank/internal/utils/mapping"
	"github.com/SscSPs/family_bank/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// DefaultStoreTimeout bounds each keyed store call.
	DefaultStoreTimeout = 5 * time.Second

	// indexPageSize is the page size used when walking an index to exhaustion.
	indexPageSize = 100

	openingBalanceDescription = "Opening balance"
)

// ledgerService implements the LedgerSvcFacade interface over the keyed store.
// It holds no locks; concurrent adjustments are serialized by the store's
// conditional transaction.
type ledgerService struct {
	BaseService
	store        portsrepo.ItemStoreFacade
	publisher    portssvc.EntryPublisher
	now          func() time.Time
	newID        func() string
	storeTimeout time.Duration
	useRoleIndex bool
}

// LedgerOption is a functional option for configuring the ledger service
type LedgerOption func(*ledgerService)

// WithLedgerClock replaces time.Now.
func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(s *ledgerService) {
		s.now = now
	}
}

// WithEntryIDGenerator replaces the ledger entry ID generator.
func WithEntryIDGenerator(newID func() string) LedgerOption {
	return func(s *ledgerService) {
		s.newID = newID
	}
}

// WithEntryPublisher announces committed entries through p.
func WithEntryPublisher(p portssvc.EntryPublisher) LedgerOption {
	return func(s *ledgerService) {
		s.publisher = p
	}
}

// WithStoreTimeout bounds each store call.
func WithStoreTimeout(d time.Duration) LedgerOption {
	return func(s *ledgerService) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// WithRoleIndex selects whether ListAllChildren reads the role index (true)
// or scans all profiles (false).
func WithRoleIndex(enabled bool) LedgerOption {
	return func(s *ledgerService) {
		s.useRoleIndex = enabled
	}
}

// NewLedgerService creates a new ledger service with the provided options
func NewLedgerService(store portsrepo.ItemStoreFacade, options ...LedgerOption) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		store:        store,
		now:          time.Now,
		newID:        newEntryID,
		storeTimeout: DefaultStoreTimeout,
		useRoleIndex: true,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure ledgerService implements the LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// newEntryID returns a time-ordered UUID.
func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// timestamp returns the current time at the precision stored in sort keys.
func (s *ledgerService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// withStore runs fn under the store timeout. A timeout surfaces as apperrors.ErrUnavailable.
func (s *ledgerService) withStore(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	err := fn(sctx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: %s timed out after %s", apperrors.ErrUnavailable, op, s.storeTimeout)
	}
	return err
}

func (s *ledgerService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	if accountID == "" {
		return nil, fmt.Errorf("%w: account id is required", apperrors.ErrValidation)
	}
	var item *models.ProfileItem
	err := s.withStore(ctx, "get profile", func(ctx context.Context) error {
		var err error
		item, err = s.store.GetProfile(ctx, keys.Account(accountID).PK)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to read account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	acc := mapping.ToDomainAccount(*item)
	return &acc, nil
}

func (s *ledgerService) CreateAccount(ctx context.Context, req domain.NewAccount) (*domain.Account, error) {
	if err := validateNewAccount(req); err != nil {
		return nil, err
	}

	now := s.timestamp()
	acc := domain.Account{
		AccountID:    req.AccountID,
		Role:         req.Role,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Balance:      req.OpeningBalance.Round(moneyPlaces),
		InterestRate: req.InterestRate,
		ParentID:     req.ParentID,
		AuditFields:  domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	}
	if !acc.IsChild() {
		acc.InterestRate = decimal.Zero
	}

	var opening *domain.LedgerEntry
	var openingItem *models.EntryItem
	if acc.Balance.IsPositive() {
		opening = &domain.LedgerEntry{
			EntryID:      s.newID(),
			AccountID:    acc.AccountID,
			Amount:       acc.Balance,
			Kind:         domain.EntryDeposit,
			Description:  openingBalanceDescription,
			BalanceAfter: acc.Balance,
			InitiatedBy:  req.CreatedBy,
			Timestamp:    now,
		}
		item := mapping.ToEntryItem(*opening)
		openingItem = &item
	}

	err := s.withStore(ctx, "create profile", func(ctx context.Context) error {
		return s.store.CreateProfile(ctx, mapping.ToProfileItem(acc), openingItem)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogWarn(ctx, err, "Account already exists", slog.String("account_id", acc.AccountID))
		} else {
			s.LogError(ctx, err, "Failed to create account", slog.String("account_id", acc.AccountID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Account created",
		slog.String("account_id", acc.AccountID),
		slog.String("role", string(acc.Role)),
		slog.String("opening_balance", acc.Balance.StringFixed(moneyPlaces)))
	if opening != nil {
		metrics.RecordAdjustment(string(opening.Kind), "committed")
		s.publish(ctx, *opening)
	}
	return &acc, nil
}

func validateNewAccount(req domain.NewAccount) error {
	switch {
	case strings.TrimSpace(req.AccountID) == "":
		return fmt.Errorf("%w: account id is required", apperrors.ErrValidation)
	case strings.ContainsAny(req.AccountID, "#|"):
		return fmt.Errorf("%w: account id contains a reserved character", apperrors.ErrValidation)
	case !req.Role.IsValid():
		return fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, req.Role)
	case strings.TrimSpace(req.Name) == "":
		return fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	case strings.TrimSpace(req.Email) == "":
		return fmt.Errorf("%w: email is required", apperrors.ErrValidation)
	case req.Role == domain.RoleChild && req.ParentID == "":
		return fmt.Errorf("%w: child account requires a parent", apperrors.ErrValidation)
	case req.Role == domain.RoleParent && req.ParentID != "":
		return fmt.Errorf("%w: parent account cannot have a parent", apperrors.ErrValidation)
	case req.Role == domain.RoleParent && !req.OpeningBalance.IsZero():
		return fmt.Errorf("%w: parent accounts hold no balance", apperrors.ErrValidation)
	}
	if err := validateOpeningBalance(req.OpeningBalance); err != nil {
		return err
	}
	return validateInterestRate(req.InterestRate)
}

func (s *ledgerService) UpdateProfile(ctx context.Context, accountID string, upd domain.ProfileUpdate) (*domain.Account, error) {
	if upd.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", apperrors.ErrValidation)
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidation)
	}
	if upd.InterestRate != nil {
		if err := validateInterestRate(*upd.InterestRate); err != nil {
			return nil, err
		}
	}

	change := models.ProfileUpdate{InterestRate: upd.InterestRate, UpdatedAt: s.timestamp()}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		change.Name = &name
	}

	var item *models.ProfileItem
	err := s.withStore(ctx, "update profile", func(ctx context.Context) error {
		var err error
		item, err = s.store.UpdateProfile(ctx, keys.Account(accountID).PK, change)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to update profile", slog.String("account_id", accountID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Profile updated", slog.String("account_id", accountID))
	acc := mapping.ToDomainAccount(*item)
	return &acc, nil
}

// AdjustBalance applies adj and appends its ledger entry in one conditional
// transaction. The write only commits if the balance read here is still
// current; otherwise it fails with apperrors.ErrConcurrentModification and the
// caller may retry.
func (s *ledgerService) AdjustBalance(ctx context.Context, adj domain.Adjustment) (*domain.LedgerEntry, error) {
	if adj.AccountID == "" {
		return nil, fmt.Errorf("%w: account id is required", apperrors.ErrValidation)
	}
	if !adj.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown entry kind %q", apperrors.ErrValidation, adj.Kind)
	}
	if adj.Amount.IsZero() {
		return nil, fmt.Errorf("%w: amount cannot be zero", apperrors.ErrInvalidAmount)
	}
	if !hasMoneyPrecision(adj.Amount) {
		return nil, fmt.Errorf("%w: amount has more than %d decimal places", apperrors.ErrInvalidAmount, moneyPlaces)
	}

	logger := s.GetLogger(ctx).With(
		slog.String("account_id", adj.AccountID),
		slog.String("kind", string(adj.Kind)),
		slog.String("amount", adj.Amount.StringFixed(moneyPlaces)))

	pk := keys.Account(adj.AccountID).PK
	var profile *models.ProfileItem
	err := s.withStore(ctx, "get profile", func(ctx context.Context) error {
		var err error
		profile, err = s.store.GetProfile(ctx, pk)
		return err
	})
	if err != nil {
		metrics.RecordAdjustment(string(adj.Kind), "error")
		return nil, err
	}

	current := profile.Balance
	newBalance := current.Add(adj.Amount)
	if newBalance.IsNegative() {
		metrics.RecordAdjustment(string(adj.Kind), "insufficient_funds")
		logger.Warn("Adjustment would overdraw account", slog.String("balance", current.StringFixed(moneyPlaces)))
		return nil, apperrors.NewInsufficientFunds(adj.AccountID, current, adj.Amount)
	}

	now := s.timestamp()
	entry := domain.LedgerEntry{
		EntryID:      s.newID(),
		AccountID:    adj.AccountID,
		Amount:       adj.Amount,
		Kind:         adj.Kind,
		Description:  adj.Description,
		BalanceAfter: newBalance,
		InitiatedBy:  adj.InitiatedBy,
		Timestamp:    now,
	}

	err = s.withStore(ctx, "transact balance", func(ctx context.Context) error {
		return s.store.TransactBalance(ctx, models.BalanceWrite{
			PK:              pk,
			ExpectedBalance: current,
			NewBalance:      newBalance,
			UpdatedAt:       now,
			Entry:           mapping.ToEntryItem(entry),
		})
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConditionFailed) {
			metrics.RecordAdjustment(string(adj.Kind), "conflict")
			logger.Warn("Balance changed during adjustment", slog.String("expected_balance", current.StringFixed(moneyPlaces)))
			return nil, apperrors.NewConcurrentModification(adj.AccountID, current, adj.Amount)
		}
		metrics.RecordAdjustment(string(adj.Kind), "error")
		logger.Error("Failed to apply adjustment", slog.String("error", err.Error()))
		return nil, err
	}

	metrics.RecordAdjustment(string(adj.Kind), "committed")
	logger.Info("Adjustment committed",
		slog.String("entry_id", entry.EntryID),
		slog.String("balance_after", newBalance.StringFixed(moneyPlaces)))
	s.publish(ctx, entry)
	return &entry, nil
}

// publish is best effort: the entry is already committed.
func (s *ledgerService) publish(ctx context.Context, entry domain.LedgerEntry) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEntry(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to publish ledger entry",
			slog.String("account_id", entry.AccountID),
			slog.String("entry_id", entry.EntryID))
	}
}

func (s *ledgerService) ListEntries(ctx context.Context, accountID string, page domain.PageRequest) (*domain.EntryPage, error) {
	page = page.Normalize()

	var after string
	if page.NextToken != "" {
		cursor, err := pagination.DecodeLedgerToken(page.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		if cursor.AccountID != accountID || cursor.Order != string(page.Order) || !keys.IsEntrySK(cursor.LastSK) {
			return nil, fmt.Errorf("%w: pagination token does not belong to this listing", apperrors.ErrValidation)
		}
		after = cursor.LastSK
	}

	var items []models.EntryItem
	err := s.withStore(ctx, "query entries", func(ctx context.Context) error {
		var err error
		// Fetch one extra item to learn whether another page exists.
		items, err = s.store.QueryEntries(ctx, models.EntryQuery{
			PK:         keys.Account(accountID).PK,
			AfterSK:    after,
			Descending: page.Order == domain.SortNewestFirst,
			Limit:      page.Limit + 1,
		})
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list entries", slog.String("account_id", accountID))
		return nil, err
	}

	result := &domain.EntryPage{}
	if len(items) > page.Limit {
		items = items[:page.Limit]
		result.NextToken = pagination.EncodeLedgerToken(pagination.LedgerCursor{
			AccountID: accountID,
			Order:     string(page.Order),
			LastSK:    items[len(items)-1].SK,
		})
	}
	result.Entries = mapping.ToDomainEntries(items)
	return result, nil
}

func (s *ledgerService) ListChildren(ctx context.Context, parentID string) ([]domain.Account, error) {
	children, err := s.walkIndex(ctx, models.IndexParent, keys.ParentIndexPK(parentID), func(p models.ProfileItem) string { return p.GSI1SK })
	if err != nil {
		s.LogError(ctx, err, "Failed to list children", slog.String("parent_id", parentID))
		return nil, err
	}
	return children, nil
}

func (s *ledgerService) ListAllChildren(ctx context.Context) ([]domain.Account, error) {
	var children []domain.Account
	var err error
	if s.useRoleIndex {
		children, err = s.walkIndex(ctx, models.IndexRole, keys.RoleIndexPK(domain.RoleChild), func(p models.ProfileItem) string { return p.GSI2SK })
	} else {
		children, err = s.scanChildren(ctx)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to enumerate children", slog.Bool("role_index", s.useRoleIndex))
		return nil, err
	}
	return children, nil
}

func (s *ledgerService) walkIndex(ctx context.Context, index models.Index, pk string, sortKey func(models.ProfileItem) string) ([]domain.Account, error) {
	accounts := make([]domain.Account, 0)
	after := ""
	for {
		var items []models.ProfileItem
		err := s.withStore(ctx, "query index", func(ctx context.Context) error {
			var err error
			items, err = s.store.QueryIndex(ctx, models.IndexQuery{Index: index, PK: pk, AfterSK: after, Limit: indexPageSize})
			return err
		})
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, mapping.ToDomainAccounts(items)...)
		if len(items) < indexPageSize {
			return accounts, nil
		}
		after = sortKey(items[len(items)-1])
	}
}

func (s *ledgerService) scanChildren(ctx context.Context) ([]domain.Account, error) {
	children := make([]domain.Account, 0)
	after := ""
	for {
		var items []models.ProfileItem
		err := s.withStore(ctx, "scan profiles", func(ctx context.Context) error {
			var err error
			items, err = s.store.ScanProfiles(ctx, models.ScanQuery{AfterPK: after, Limit: indexPageSize})
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if item.SK == keys.ProfileSK && domain.Role(item.Role) == domain.RoleChild {
				children = append(children, mapping.ToDomainAccount(item))
			}
		}
		if len(items) < indexPageSize {
			return children, nil
		}
		after = items[len(items)-1].PK
	}
}
