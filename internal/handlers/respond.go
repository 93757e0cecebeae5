package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/family_bank/internal/apperrors"
	"github.com/SscSPs/family_bank/internal/auth"
	"github.com/SscSPs/family_bank/internal/dto"
	"github.com/SscSPs/family_bank/internal/middleware"
	"github.com/gin-gonic/gin"
)

// newCall normalizes an inbound request into a gate call.
func newCall[T any](c *gin.Context, body T) auth.Call[T] {
	hints := map[string]string{"route": c.FullPath()}
	if id, ok := middleware.GetRequestIDFromCtx(c.Request.Context()); ok {
		hints["request_id"] = id
	}
	return auth.Call[T]{
		Token: middleware.BearerToken(c),
		Body:  body,
		Hints: hints,
	}
}

// serve runs a guarded operation for body and writes its result with status.
func serve[T, R any](c *gin.Context, op auth.Guarded[T, R], body T, status int) {
	resp, err := op(c.Request.Context(), newCall(c, body))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, resp)
}

// writeBindError reports a malformed request body or query.
func writeBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: dto.ErrorBody{
		Kind:    "Validation",
		Message: "Invalid request format: " + err.Error(),
	}})
}

// writeError maps err to its status and error body. Causes of 5xx and
// authentication failures are logged, not returned.
func writeError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := apperrors.HTTPStatus(err)
	body := dto.ErrorBody{Kind: apperrors.Kind(err), Message: err.Error()}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("Request failed", slog.String("error", err.Error()), slog.Int("status", status))
		if status == http.StatusInternalServerError {
			body.Message = "Internal server error"
		}
	case status == http.StatusUnauthorized:
		body.Message = "Unauthorized"
	default:
		logger.Warn("Request rejected", slog.String("error", err.Error()), slog.Int("status", status))
	}

	var balErr *apperrors.BalanceError
	if errors.As(err, &balErr) {
		body.Details = map[string]string{
			"userId":          balErr.AccountID,
			"currentBalance":  balErr.CurrentBalance.StringFixed(2),
			"requestedAmount": balErr.Requested.StringFixed(2),
		}
	}

	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: body})
}
