package dto

import (
	"time"

	"github.com/SscSPs/family_bank/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Empty is the body of operations that take no input.
type Empty struct{}

// UserResponse defines the data returned for an account profile.
// Money and rates are rendered as fixed-point strings.
type UserResponse struct {
	UserID       string      `json:"userId"`
	Role         domain.Role `json:"role"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Balance      string      `json:"balance"`
	InterestRate string      `json:"interestRate,omitempty"`
	ParentID     string      `json:"parentId,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// RegisterParentRequest defines the data needed to register the caller as a parent.
type RegisterParentRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// UpdateUserRequest defines the data allowed for updating a profile.
// Pointers distinguish fields not provided from zero values.
type UpdateUserRequest struct {
	UserID       string           `json:"userId"` // Optional: defaults to the caller
	Name         *string          `json:"name"`
	InterestRate *decimal.Decimal `json:"interestRate"`
}

// ToUserResponse converts a domain.Account to UserResponse DTO.
func ToUserResponse(acc *domain.Account) UserResponse {
	resp := UserResponse{
		UserID:    acc.AccountID,
		Role:      acc.Role,
		Name:      acc.Name,
		Email:     acc.Email,
		Balance:   acc.Balance.StringFixed(2),
		ParentID:  acc.ParentID,
		CreatedAt: acc.CreatedAt,
		UpdatedAt: acc.UpdatedAt,
	}
	if acc.IsChild() {
		resp.InterestRate = acc.InterestRate.String()
	}
	return resp
}

// ToUserResponses converts a slice of accounts.
func ToUserResponses(accs []domain.Account) []UserResponse {
	out := make([]UserResponse, len(accs))
	for i := range accs {
		out[i] = ToUserResponse(&accs[i])
	}
	return out
}
