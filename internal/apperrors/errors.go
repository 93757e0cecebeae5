package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the operation cannot run in the resource's current state.
var ErrConflict = errors.New("conflict")

// ErrMissingToken indicates the call carried no bearer token.
var ErrMissingToken = errors.New("missing token")

// ErrUnauthenticated indicates the caller's identity could not be established.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrForbidden indicates the caller is authenticated but not allowed to perform the operation.
var ErrForbidden = errors.New("forbidden")

// Token verification failures. The authorization gate collapses these into ErrUnauthenticated.
var (
	ErrKeyNotFound        = errors.New("signing key not found")
	ErrInvalidSignature   = errors.New("invalid token signature")
	ErrTokenExpired       = errors.New("token expired")
	ErrWrongAudienceOrUse = errors.New("token audience or use mismatch")
)

// Ledger failures.
var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrConcurrentModification = errors.New("concurrent modification")
)

// ErrConditionFailed is returned by the keyed store when a conditional write did not apply.
var ErrConditionFailed = errors.New("conditional write failed")

// ErrUnavailable indicates a transient failure, such as a store timeout. Callers may retry.
var ErrUnavailable = errors.New("service unavailable")

// ErrInternal indicates an unexpected failure.
var ErrInternal = errors.New("internal error")

// BalanceError is returned when an adjustment is rejected because of the account's balance.
// It unwraps to ErrInsufficientFunds or ErrConcurrentModification.
type BalanceError struct {
	Kind           error
	AccountID      string
	CurrentBalance decimal.Decimal
	Requested      decimal.Decimal
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("%s: account %s has balance %s, requested %s",
		e.Kind, e.AccountID, e.CurrentBalance.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *BalanceError) Unwrap() error {
	return e.Kind
}

// NewInsufficientFunds builds a BalanceError of kind ErrInsufficientFunds.
func NewInsufficientFunds(accountID string, current, requested decimal.Decimal) error {
	return &BalanceError{Kind: ErrInsufficientFunds, AccountID: accountID, CurrentBalance: current, Requested: requested}
}

// NewConcurrentModification builds a BalanceError of kind ErrConcurrentModification.
func NewConcurrentModification(accountID string, current, requested decimal.Decimal) error {
	return &BalanceError{Kind: ErrConcurrentModification, AccountID: accountID, CurrentBalance: current, Requested: requested}
}

// AppError pairs an HTTP status with a message and the underlying cause.
type AppError struct {
	Status  int
	Message string
	Err     error
}

// NewAppError creates an AppError.
func NewAppError(status int, message string, err error) *AppError {
	return &AppError{Status: status, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

type kindEntry struct {
	err    error
	name   string
	status int
}

// kinds is ordered so that more specific sentinels win.
var kinds = []kindEntry{
	{ErrMissingToken, "MissingToken", http.StatusUnauthorized},
	{ErrUnauthenticated, "Unauthenticated", http.StatusUnauthorized},
	{ErrKeyNotFound, "KeyNotFound", http.StatusUnauthorized},
	{ErrInvalidSignature, "InvalidSignature", http.StatusUnauthorized},
	{ErrTokenExpired, "Expired", http.StatusUnauthorized},
	{ErrWrongAudienceOrUse, "WrongAudienceOrUse", http.StatusUnauthorized},
	{ErrForbidden, "Forbidden", http.StatusForbidden},
	{ErrNotFound, "NotFound", http.StatusNotFound},
	{ErrInvalidAmount, "InvalidAmount", http.StatusBadRequest},
	{ErrInsufficientFunds, "InsufficientFunds", http.StatusBadRequest},
	{ErrConcurrentModification, "ConcurrentModification", http.StatusConflict},
	{ErrDuplicate, "Duplicate", http.StatusConflict},
	{ErrConflict, "Conflict", http.StatusConflict},
	{ErrValidation, "Validation", http.StatusBadRequest},
	{ErrUnavailable, "Unavailable", http.StatusServiceUnavailable},
	{ErrInternal, "Internal", http.StatusInternalServerError},
}

// Kind returns the stable name of the error's kind, or "Internal" when none applies.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}

// HTTPStatus maps an error to the status code the transport layer should return.
func HTTPStatus(err error) int {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status
		}
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
