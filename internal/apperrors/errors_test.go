package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestKindAndStatus(t *testing.T) {
	cases := []struct {
		err    error
		kind   string
		status int
	}{
		{fmt.Errorf("%w: user x", ErrNotFound), "NotFound", http.StatusNotFound},
		{fmt.Errorf("%w: name required", ErrValidation), "Validation", http.StatusBadRequest},
		{ErrMissingToken, "MissingToken", http.StatusUnauthorized},
		{ErrForbidden, "Forbidden", http.StatusForbidden},
		{ErrInvalidAmount, "InvalidAmount", http.StatusBadRequest},
		{NewInsufficientFunds("a", decimal.NewFromInt(10), decimal.NewFromInt(-20)), "InsufficientFunds", http.StatusBadRequest},
		{NewConcurrentModification("a", decimal.NewFromInt(10), decimal.NewFromInt(-5)), "ConcurrentModification", http.StatusConflict},
		{fmt.Errorf("store: %w", ErrUnavailable), "Unavailable", http.StatusServiceUnavailable},
		{errors.New("boom"), "Internal", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.kind, Kind(tc.err), tc.err.Error())
		assert.Equal(t, tc.status, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestBalanceErrorCarriesContext(t *testing.T) {
	err := fmt.Errorf("adjust: %w", NewInsufficientFunds("child-1", decimal.RequireFromString("12.5"), decimal.RequireFromString("-20")))

	var balErr *BalanceError
	assert.True(t, errors.As(err, &balErr))
	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	assert.False(t, errors.Is(err, ErrConcurrentModification))
	assert.Equal(t, "child-1", balErr.AccountID)
	assert.True(t, balErr.CurrentBalance.Equal(decimal.RequireFromString("12.50")))
	assert.Contains(t, err.Error(), "balance 12.50, requested -20.00")
}

func TestAppErrorStatusFallback(t *testing.T) {
	err := NewAppError(http.StatusBadGateway, "upstream failed", errors.New("eof"))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(err))
	assert.Equal(t, "upstream failed: eof", err.Error())
}
