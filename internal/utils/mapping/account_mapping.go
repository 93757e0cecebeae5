package mapping

import (
	"github.com/SscSPs/family_bank/internal/core/domain"
	"github.com/SscSPs/family_bank/internal/core/keys"
	"github.com/SscSPs/family_bank/internal/models"
)

// ToProfileItem converts a domain.Account to its stored item, deriving all keys.
func ToProfileItem(a domain.Account) models.ProfileItem {
	pk := keys.Account(a.AccountID)
	idx := keys.ForAccount(a)
	return models.ProfileItem{
		PK:           pk.PK,
		SK:           pk.SK,
		GSI1PK:       idx.ParentPK,
		GSI1SK:       idx.ParentSK,
		GSI2PK:       idx.RolePK,
		GSI2SK:       idx.RoleSK,
		UserID:       a.AccountID,
		Role:         string(a.Role),
		Name:         a.Name,
		Email:        a.Email,
		Balance:      a.Balance,
		InterestRate: a.InterestRate,
		ParentID:     a.ParentID,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// ToDomainAccount converts a stored profile item to domain.Account.
func ToDomainAccount(m models.ProfileItem) domain.Account {
	return domain.Account{
		AccountID:    m.UserID,
		Role:         domain.Role(m.Role),
		Name:         m.Name,
		Email:        m.Email,
		Balance:      m.Balance,
		InterestRate: m.InterestRate,
		ParentID:     m.ParentID,
		AuditFields: domain.AuditFields{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

// ToDomainAccounts converts a slice of profile items.
func ToDomainAccounts(items []models.ProfileItem) []domain.Account {
	out := make([]domain.Account, len(items))
	for i, m := range items {
		out[i] = ToDomainAccount(m)
	}
	return out
}
