package mapping

import (
	"testing"
	"time"

	"github.com/SscSPs/family_bank/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToProfileItemDerivesIndexKeys(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	child := domain.Account{
		AccountID:    "c1",
		Role:         domain.RoleChild,
		Name:         "Kid",
		Email:        "kid@example.com",
		Balance:      decimal.RequireFromString("12.50"),
		InterestRate: decimal.RequireFromString("0.05"),
		ParentID:     "p1",
		AuditFields:  domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	}

	item := ToProfileItem(child)
	assert.Equal(t, "USER#c1", item.PK)
	assert.Equal(t, "PROFILE", item.SK)
	assert.Equal(t, "PARENT#p1", item.GSI1PK)
	assert.Equal(t, "CHILD#c1", item.GSI1SK)
	assert.Equal(t, "ROLE#child", item.GSI2PK)
	assert.Equal(t, "USER#c1", item.GSI2SK)

	back := ToDomainAccount(item)
	assert.Equal(t, child.AccountID, back.AccountID)
	assert.True(t, child.Balance.Equal(back.Balance))
	assert.Equal(t, child.ParentID, back.ParentID)

	parentItem := ToProfileItem(domain.Account{AccountID: "p1", Role: domain.RoleParent})
	assert.Empty(t, parentItem.GSI1PK)
	assert.Empty(t, parentItem.GSI2PK)
}

func TestToEntryItemKey(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	item := ToEntryItem(domain.LedgerEntry{EntryID: "e1", AccountID: "c1", Timestamp: ts, Kind: domain.EntryDeposit})
	assert.Equal(t, "USER#c1", item.PK)
	assert.Equal(t, "TRANS#2024-05-01T12:00:00.000000Z#e1", item.SK)
	assert.Equal(t, domain.EntryDeposit, ToDomainEntry(item).Kind)
}
