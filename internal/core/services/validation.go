package services

import (
	"fmt"

	"github.com/SscSPs/family_bank/internal/apperrors"
	"github.com/shopspring/decimal"
)

// moneyPlaces is the precision of balances and amounts.
const moneyPlaces = 2

var maxInterestRate = decimal.NewFromInt(1)

func hasMoneyPrecision(d decimal.Decimal) bool {
	return d.Equal(d.Round(moneyPlaces))
}

func validateInterestRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(maxInterestRate) {
		return fmt.Errorf("%w: interest rate must be between 0 and 1, got %s", apperrors.ErrValidation, rate)
	}
	return nil
}

func validateOpeningBalance(balance decimal.Decimal) error {
	if balance.IsNegative() {
		return fmt.Errorf("%w: initial balance cannot be negative", apperrors.ErrInvalidAmount)
	}
	if !hasMoneyPrecision(balance) {
		return fmt.Errorf("%w: initial balance has more than %d decimal places", apperrors.ErrInvalidAmount, moneyPlaces)
	}
	return nil
}
