package dto

import (
	"time"

	"github.com/SscSPs/family_bank/internal/core/domain"
)

// TransactionResponse defines the data returned for a ledger entry.
type TransactionResponse struct {
	TransactionID string           `json:"transactionId"`
	UserID        string           `json:"userId"`
	Amount        string           `json:"amount"`
	Type          domain.EntryKind `json:"type"`
	Description   string           `json:"description"`
	BalanceAfter  string           `json:"balanceAfter"`
	InitiatedBy   string           `json:"initiatedBy"`
	Timestamp     time.Time        `json:"timestamp"`
}

// ListTransactionsRequest defines the query of a ledger listing.
type ListTransactionsRequest struct {
	UserID    string `form:"userId"` // Optional: defaults to the caller
	Limit     int    `form:"limit"`
	NextToken string `form:"nextToken"`
	Order     string `form:"order" binding:"omitempty,oneof=asc desc"`
}

// ListTransactionsResponse is one page of a ledger listing.
type ListTransactionsResponse struct {
	UserID       string                `json:"userId"`
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
	NextToken    string                `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.LedgerEntry to TransactionResponse DTO.
func ToTransactionResponse(e *domain.LedgerEntry) TransactionResponse {
	return TransactionResponse{
		TransactionID: e.EntryID,
		UserID:        e.AccountID,
		Amount:        e.Amount.StringFixed(2),
		Type:          e.Kind,
		Description:   e.Description,
		BalanceAfter:  e.BalanceAfter.StringFixed(2),
		InitiatedBy:   e.InitiatedBy,
		Timestamp:     e.Timestamp,
	}
}

// ToTransactionResponses converts a slice of ledger entries.
func ToTransactionResponses(entries []domain.LedgerEntry) []TransactionResponse {
	out := make([]TransactionResponse, len(entries))
	for i := range entries {
		out[i] = ToTransactionResponse(&entries[i])
	}
	return out
}
