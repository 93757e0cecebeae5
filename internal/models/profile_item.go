package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProfileItem is an account profile as stored in the keyed table.
// Index key fields are empty for parents.
type ProfileItem struct {
	PK           string          `db:"pk"`
	SK           string          `db:"sk"`
	GSI1PK       string          `db:"gsi1pk"`
	GSI1SK       string          `db:"gsi1sk"`
	GSI2PK       string          `db:"gsi2pk"`
	GSI2SK       string          `db:"gsi2sk"`
	UserID       string          `db:"user_id"`
	Role         string          `db:"role"`
	Name         string          `db:"name"`
	Email        string          `db:"email"`
	Balance      decimal.Decimal `db:"balance"`
	InterestRate decimal.Decimal `db:"interest_rate"`
	ParentID     string          `db:"parent_id"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

// ProfileUpdate holds the profile attributes to overwrite. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name         *string
	InterestRate *decimal.Decimal
	UpdatedAt    time.Time
}
