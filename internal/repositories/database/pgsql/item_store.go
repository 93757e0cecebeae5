package pgsql

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/SscSPs/family_bank/internal/apperrors"
	"github.com/SscSPs/family_bank/internal/core/keys"
	portsrepo "github.com/SscSPs/family_bank/internal/core/ports/repositories"
	"github.com/SscSPs/family_bank/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxItemStore keeps profiles and ledger entries in one keyed table,
// addressed by (pk, sk) with two secondary indexes.
type PgxItemStore struct {
	BaseRepository
	q itemQueries
}

// newPgxItemStore creates a keyed store over table.
func newPgxItemStore(pool *pgxpool.Pool, table string) *PgxItemStore {
	return &PgxItemStore{
		BaseRepository: BaseRepository{Pool: pool},
		q:              buildItemQueries(table),
	}
}

// Ensure PgxItemStore implements portsrepo.ItemStoreFacade
var _ portsrepo.ItemStoreFacade = (*PgxItemStore)(nil)

func (r *PgxItemStore) GetProfile(ctx context.Context, pk string) (*models.ProfileItem, error) {
	p, err := scanProfile(r.Pool.QueryRow(ctx, r.q.getProfile, pk, keys.ProfileSK))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: profile %s", apperrors.ErrNotFound, pk)
		}
		return nil, fmt.Errorf("failed to get profile %s: %w", pk, err)
	}
	return p, nil
}

func (r *PgxItemStore) CreateProfile(ctx context.Context, profile models.ProfileItem, opening *models.EntryItem) (err error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := r.Rollback(ctx, tx); rbErr != nil && err == nil {
			err = rbErr
		}
	}()

	_, err = tx.Exec(ctx, r.q.insertProfile,
		profile.PK,
		profile.SK,
		nullIfEmpty(profile.GSI1PK),
		nullIfEmpty(profile.GSI1SK),
		nullIfEmpty(profile.GSI2PK),
		nullIfEmpty(profile.GSI2SK),
		profile.UserID,
		profile.Role,
		profile.Name,
		profile.Email,
		profile.Balance,
		profile.InterestRate,
		nullIfEmpty(profile.ParentID),
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if isPgCode(err, pgUniqueViolation) {
			return fmt.Errorf("%w: profile %s", apperrors.ErrDuplicate, profile.PK)
		}
		return fmt.Errorf("failed to insert profile %s: %w", profile.PK, err)
	}

	if opening != nil {
		if err = r.insertEntry(ctx, tx, *opening); err != nil {
			if isPgCode(err, pgUniqueViolation) {
				return fmt.Errorf("%w: entry %s", apperrors.ErrDuplicate, opening.SK)
			}
			return fmt.Errorf("failed to insert opening entry for %s: %w", profile.PK, err)
		}
	}

	return r.Commit(ctx, tx)
}

func (r *PgxItemStore) UpdateProfile(ctx context.Context, pk string, upd models.ProfileUpdate) (*models.ProfileItem, error) {
	p, err := scanProfile(r.Pool.QueryRow(ctx, r.q.updateProfile, pk, keys.ProfileSK, upd.Name, upd.InterestRate, upd.UpdatedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: profile %s", apperrors.ErrNotFound, pk)
		}
		return nil, fmt.Errorf("failed to update profile %s: %w", pk, err)
	}
	return p, nil
}

// TransactBalance moves the balance only if it still equals the expected value and
// inserts the entry in the same transaction. Under READ COMMITTED a concurrent
// writer blocks on the row lock and then re-evaluates the balance predicate, so
// exactly one of two racing writers matches.
func (r *PgxItemStore) TransactBalance(ctx context.Context, w models.BalanceWrite) (err error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := r.Rollback(ctx, tx); rbErr != nil && err == nil {
			err = rbErr
		}
	}()

	tag, err := tx.Exec(ctx, r.q.conditionalBalance, w.PK, keys.ProfileSK, w.ExpectedBalance, w.NewBalance, w.UpdatedAt)
	if err != nil {
		if isPgCode(err, pgCheckViolation) || isPgCode(err, pgSerializationFailure) {
			return fmt.Errorf("%w: balance update on %s: %v", apperrors.ErrConditionFailed, w.PK, err)
		}
		return fmt.Errorf("failed to update balance of %s: %w", w.PK, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: profile %s missing or balance changed", apperrors.ErrConditionFailed, w.PK)
	}

	if err = r.insertEntry(ctx, tx, w.Entry); err != nil {
		if isPgCode(err, pgUniqueViolation) {
			return fmt.Errorf("%w: entry %s exists", apperrors.ErrConditionFailed, w.Entry.SK)
		}
		return fmt.Errorf("failed to insert entry %s: %w", w.Entry.SK, err)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxItemStore) insertEntry(ctx context.Context, tx pgx.Tx, e models.EntryItem) error {
	_, err := tx.Exec(ctx, r.q.insertEntry,
		e.PK,
		e.SK,
		e.UserID,
		e.TransactionID,
		e.Amount,
		e.EntryType,
		e.Description,
		e.BalanceAfter,
		e.InitiatedBy,
		e.Timestamp,
	)
	return err
}

func (r *PgxItemStore) QueryEntries(ctx context.Context, q models.EntryQuery) ([]models.EntryItem, error) {
	query := r.q.entriesAsc
	if q.Descending {
		query = r.q.entriesDesc
	}
	rows, err := r.Pool.Query(ctx, query, q.PK, keys.EntrySKPrefix+"%", q.AfterSK, normalizeLimit(q.Limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query entries of %s: %w", q.PK, err)
	}
	defer rows.Close()

	entries := make([]models.EntryItem, 0)
	for rows.Next() {
		var e models.EntryItem
		if err := rows.Scan(
			&e.PK,
			&e.SK,
			&e.UserID,
			&e.TransactionID,
			&e.Amount,
			&e.EntryType,
			&e.Description,
			&e.BalanceAfter,
			&e.InitiatedBy,
			&e.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan entry of %s: %w", q.PK, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries of %s: %w", q.PK, err)
	}
	return entries, nil
}

func (r *PgxItemStore) QueryIndex(ctx context.Context, q models.IndexQuery) ([]models.ProfileItem, error) {
	var query string
	switch q.Index {
	case models.IndexParent:
		query = r.q.parentIndex
	case models.IndexRole:
		query = r.q.roleIndex
	default:
		return nil, fmt.Errorf("%w: unknown index %q", apperrors.ErrValidation, q.Index)
	}
	return r.queryProfiles(ctx, query, q.PK, q.AfterSK, normalizeLimit(q.Limit))
}

func (r *PgxItemStore) ScanProfiles(ctx context.Context, q models.ScanQuery) ([]models.ProfileItem, error) {
	return r.queryProfiles(ctx, r.q.scanProfiles, keys.ProfileSK, q.AfterPK, normalizeLimit(q.Limit))
}

func (r *PgxItemStore) queryProfiles(ctx context.Context, query string, args ...any) ([]models.ProfileItem, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]models.ProfileItem, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}
	return profiles, nil
}

func scanProfile(row pgx.Row) (*models.ProfileItem, error) {
	var p models.ProfileItem
	err := row.Scan(
		&p.PK,
		&p.SK,
		&p.GSI1PK,
		&p.GSI1SK,
		&p.GSI2PK,
		&p.GSI2SK,
		&p.UserID,
		&p.Role,
		&p.Name,
		&p.Email,
		&p.Balance,
		&p.InterestRate,
		&p.ParentID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return math.MaxInt32
	}
	return limit
}
