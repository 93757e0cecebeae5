package dto

import (
	"github.com/shopspring/decimal"
)

// CreateChildRequest defines the data needed to create a child account.
type CreateChildRequest struct {
	ChildID        string           `json:"childId"` // Optional: identity-provider subject of the child
	Name           string           `json:"name" binding:"required"`
	Email          string           `json:"email" binding:"required,email"`
	InitialBalance *decimal.Decimal `json:"initialBalance"`
	InterestRate   *decimal.Decimal `json:"interestRate"`
}

// ListChildrenResponse lists a parent's children.
type ListChildrenResponse struct {
	Children []UserResponse `json:"children"`
	Count    int            `json:"count"`
}

// ChildSummaryRequest identifies the child to summarize.
type ChildSummaryRequest struct {
	ChildID string `uri:"childId" binding:"required"`
}

// ChildSummaryResponse holds a child profile and its most recent transactions.
type ChildSummaryResponse struct {
	Child              UserResponse          `json:"child"`
	RecentTransactions []TransactionResponse `json:"recentTransactions"`
}

// AdjustBalanceRequest defines a parent-initiated balance change.
// Amount is signed: positive credits the child, negative debits.
type AdjustBalanceRequest struct {
	ChildID     string          `json:"childId" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"type"` // Optional: deposit, withdrawal or adjustment
	Description string          `json:"description"`
}

// AdjustBalanceResponse reports the committed adjustment.
type AdjustBalanceResponse struct {
	Message     string              `json:"message"`
	Transaction TransactionResponse `json:"transaction"`
	NewBalance  string              `json:"newBalance"`
}
