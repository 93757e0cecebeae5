package domain

import (
	"github.com/shopspring/decimal"
)

// Role is the immutable role of an account.
type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleParent || r == RoleChild
}

// DefaultInterestRate is applied to children created without an explicit rate.
var DefaultInterestRate = decimal.RequireFromString("0.05")

// Account is a parent or child profile.
// Balance is never negative; only an atomic adjustment changes it.
type Account struct {
	AccountID    string          `json:"userId"`
	Role         Role            `json:"role"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Balance      decimal.Decimal `json:"balance"`
	InterestRate decimal.Decimal `json:"interestRate"`
	ParentID     string          `json:"parentId,omitempty"` // set iff Role is RoleChild
	AuditFields
}

// IsChild reports whether the account is a child account.
func (a Account) IsChild() bool {
	return a.Role == RoleChild
}

// BelongsTo reports whether the account is a child of parentID.
func (a Account) BelongsTo(parentID string) bool {
	return a.IsChild() && a.ParentID != "" && a.ParentID == parentID
}

// NewAccount describes an account to be created.
type NewAccount struct {
	AccountID      string
	Role           Role
	Name           string
	Email          string
	InterestRate   decimal.Decimal
	ParentID       string
	OpeningBalance decimal.Decimal
	CreatedBy      string
}

// ProfileUpdate lists the mutable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name         *string
	InterestRate *decimal.Decimal
}

// IsEmpty reports whether the update changes nothing.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Name == nil && u.InterestRate == nil
}
