package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aussiebroadwan/tokengate/internal/auth/service"

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// finishSpan ends span, marking it failed for errors other than the
// expected client-side outcomes.
func finishSpan(span trace.Span, err error) {
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case isClientError(err):
		span.SetAttributes(attribute.String("auth.outcome", err.Error()))
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func isClientError(err error) bool {
	for _, target := range []error{
		ErrInvalidRequest,
		ErrInvalidExpiration,
		ErrAuthenticationFailed,
		ErrTokenNotFound,
		ErrInsufficientScope,
		ErrTenantMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
