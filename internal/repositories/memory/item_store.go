package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/SscSPs/family_bank/internal/apperrors"
	"github.com/SscSPs/family_bank/internal/core/keys"
	portsrepo "github.com/SscSPs/family_bank/internal/core/ports/repositories"
	"github.com/SscSPs/family_bank/internal/models"
)

// ItemStore is an in-memory implementation of the keyed store.
// Every write runs under one mutex, which gives each transaction all-or-nothing semantics.
type ItemStore struct {
	mu       sync.RWMutex
	profiles map[string]models.ProfileItem // by partition key
	entries  map[string][]models.EntryItem // by partition key, sorted by sort key
}

// NewItemStore creates an empty ItemStore.
func NewItemStore() *ItemStore {
	return &ItemStore{
		profiles: make(map[string]models.ProfileItem),
		entries:  make(map[string][]models.EntryItem),
	}
}

var _ portsrepo.ItemStoreFacade = (*ItemStore)(nil)

func (s *ItemStore) GetProfile(ctx context.Context, pk string) (*models.ProfileItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[pk]
	if !ok {
		return nil, fmt.Errorf("%w: profile %s", apperrors.ErrNotFound, pk)
	}
	return &p, nil
}

func (s *ItemStore) CreateProfile(ctx context.Context, profile models.ProfileItem, opening *models.EntryItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[profile.PK]; exists {
		return fmt.Errorf("%w: profile %s", apperrors.ErrDuplicate, profile.PK)
	}
	if opening != nil && s.hasEntry(opening.PK, opening.SK) {
		return fmt.Errorf("%w: entry %s", apperrors.ErrDuplicate, opening.SK)
	}
	s.profiles[profile.PK] = profile
	if opening != nil {
		s.insertEntry(*opening)
	}
	return nil
}

func (s *ItemStore) UpdateProfile(ctx context.Context, pk string, upd models.ProfileUpdate) (*models.ProfileItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[pk]
	if !ok {
		return nil, fmt.Errorf("%w: profile %s", apperrors.ErrNotFound, pk)
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.InterestRate != nil {
		p.InterestRate = *upd.InterestRate
	}
	p.UpdatedAt = upd.UpdatedAt
	s.profiles[pk] = p
	return &p, nil
}

func (s *ItemStore) TransactBalance(ctx context.Context, w models.BalanceWrite) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.Entry.PK != w.PK || !keys.IsEntrySK(w.Entry.SK) {
		return fmt.Errorf("%w: entry key %s/%s outside partition %s", apperrors.ErrValidation, w.Entry.PK, w.Entry.SK, w.PK)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[w.PK]
	if !ok {
		return fmt.Errorf("%w: profile %s does not exist", apperrors.ErrConditionFailed, w.PK)
	}
	if !p.Balance.Equal(w.ExpectedBalance) {
		return fmt.Errorf("%w: balance of %s changed", apperrors.ErrConditionFailed, w.PK)
	}
	if s.hasEntry(w.Entry.PK, w.Entry.SK) {
		return fmt.Errorf("%w: entry %s exists", apperrors.ErrConditionFailed, w.Entry.SK)
	}

	p.Balance = w.NewBalance
	p.UpdatedAt = w.UpdatedAt
	s.profiles[w.PK] = p
	s.insertEntry(w.Entry)
	return nil
}

func (s *ItemStore) QueryEntries(ctx context.Context, q models.EntryQuery) ([]models.EntryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.entries[q.PK]
	result := make([]models.EntryItem, 0, min(q.Limit, len(all)))
	if q.Descending {
		for i := len(all) - 1; i >= 0 && len(result) < q.Limit; i-- {
			if q.AfterSK != "" && all[i].SK >= q.AfterSK {
				continue
			}
			result = append(result, all[i])
		}
		return result, nil
	}
	for i := 0; i < len(all) && len(result) < q.Limit; i++ {
		if q.AfterSK != "" && all[i].SK <= q.AfterSK {
			continue
		}
		result = append(result, all[i])
	}
	return result, nil
}

func (s *ItemStore) QueryIndex(ctx context.Context, q models.IndexQuery) ([]models.ProfileItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	matched := make([]models.ProfileItem, 0)
	for _, p := range s.profiles {
		pk, sk := indexKeys(p, q.Index)
		if pk == q.PK && sk > q.AfterSK {
			matched = append(matched, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		_, a := indexKeys(matched[i], q.Index)
		_, b := indexKeys(matched[j], q.Index)
		return a < b
	})
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (s *ItemStore) ScanProfiles(ctx context.Context, q models.ScanQuery) ([]models.ProfileItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	matched := make([]models.ProfileItem, 0, len(s.profiles))
	for pk, p := range s.profiles {
		if pk > q.AfterPK {
			matched = append(matched, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].PK < matched[j].PK })
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func indexKeys(p models.ProfileItem, idx models.Index) (string, string) {
	switch idx {
	case models.IndexParent:
		return p.GSI1PK, p.GSI1SK
	case models.IndexRole:
		return p.GSI2PK, p.GSI2SK
	}
	return "", ""
}

// hasEntry must be called with s.mu held.
func (s *ItemStore) hasEntry(pk, sk string) bool {
	list := s.entries[pk]
	i := sort.Search(len(list), func(i int) bool { return list[i].SK >= sk })
	return i < len(list) && list[i].SK == sk
}

// insertEntry must be called with s.mu held.
func (s *ItemStore) insertEntry(e models.EntryItem) {
	list := s.entries[e.PK]
	i := sort.Search(len(list), func(i int) bool { return list[i].SK >= e.SK })
	list = append(list, models.EntryItem{})
	copy(list[i+1:], list[i:])
	list[i] = e
	s.entries[e.PK] = list
}
