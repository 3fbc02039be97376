package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/npkumar/social-coder/internal/models"
	"github.com/npkumar/social-coder/internal/observability"
	"github.com/npkumar/social-coder/internal/repository"

	"go.opentelemetry.io/otel/trace"
)

const conflictMessage = "Post was modified concurrently, retry"

// storeError maps a repository error onto the AppError reported to clients.
// notFound is the message used when the record does not exist.
func storeError(err error, notFound string) error {
	var appErr *models.AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return models.NewNotFoundError(notFound)
	case errors.Is(err, repository.ErrConflict):
		return models.NewConflictError(conflictMessage)
	case errors.Is(err, repository.ErrUnavailable):
		return models.NewStoreUnavailableError(err)
	default:
		return models.NewInternalError(err)
	}
}

// outcome labels err for the operations counter.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return strings.ToLower(appErr.Code)
	}
	return "error"
}

// traced starts a service span; the returned func records the operation
// outcome and ends the span.
func traced(ctx context.Context, svc, method string) (context.Context, func(error)) {
	ctx, span := observability.GetTraceLayer().TraceServiceMethod(ctx, svc, method)
	start := time.Now()
	return ctx, func(err error) {
		finishSpan(span, err)
		fields := map[string]interface{}{"duration_ms": time.Since(start).Milliseconds()}
		if err != nil {
			fields["status"] = models.StatusFor(err)
		}
		observability.LogServiceCall(ctx, svc, method, fields)
	}
}

func finishSpan(span trace.Span, err error) {
	// Client errors are expected outcomes, not span failures.
	if err != nil && models.StatusFor(err) < 500 {
		span.End()
		return
	}
	observability.EndSpan(span, err)
}
