package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/family_bank/internal/apperrors"
	"github.com/SscSPs/family_bank/internal/core/domain"
	portssvc "github.com/SscSPs/family_bank/internal/core/ports/services"
	"github.com/SscSPs/family_bank/internal/middleware"
)

// Call is an inbound invocation normalized by the routing layer.
type Call[T any] struct {
	Token string
	Body  T
	Hints map[string]string // router-supplied identity hints, logged only
}

// Operation is business logic that runs for a verified, admitted caller.
type Operation[T, R any] func(ctx context.Context, caller domain.Principal, body T) (R, error)

// Guarded is an Operation wrapped by Guard.
type Guarded[T, R any] func(ctx context.Context, call Call[T]) (R, error)

// Guard wraps op so that it only runs for callers whose token verifies and who
// satisfy allow. Verification failures surface as apperrors.ErrUnauthenticated
// without their cause; the cause is logged.
func Guard[T, R any](verifier portssvc.TokenVerifier, allow Predicate, op Operation[T, R]) Guarded[T, R] {
	return func(ctx context.Context, call Call[T]) (R, error) {
		var zero R
		logger := middleware.GetLoggerFromCtx(ctx)

		if call.Token == "" {
			return zero, apperrors.ErrMissingToken
		}

		principal, err := verifier.Verify(ctx, call.Token)
		if err != nil {
			logger.Warn("Token verification failed",
				slog.String("kind", apperrors.Kind(err)),
				slog.String("error", err.Error()))
			return zero, apperrors.ErrUnauthenticated
		}

		logger = logger.With(slog.String("user_id", principal.SubjectID))
		for k, v := range call.Hints {
			logger = logger.With(slog.String("hint_"+k, v))
		}
		ctx = middleware.WithLogger(ctx, logger)

		if !allow(*principal) {
			logger.Warn("Caller not permitted", slog.Any("groups", principal.Groups))
			return zero, fmt.Errorf("%w: caller lacks a required group", apperrors.ErrForbidden)
		}

		return op(ctx, *principal, call.Body)
	}
}
