package service

import (
	"context"
	"errors"

	"github.com/nikolayk812/storefront/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/nikolayk812/storefront/internal/service")

// Recorder receives workflow outcomes for metrics.
type Recorder interface {
	CheckoutCompleted(outcome string)
	OrderShipped()
}

type nopRecorder struct{}

func (nopRecorder) CheckoutCompleted(string) {}
func (nopRecorder) OrderShipped()            {}

// Checkout outcomes reported to the Recorder.
const (
	OutcomeSuccess            = "success"
	OutcomeEmptyCart          = "empty_cart"
	OutcomeProductUnavailable = "product_unavailable"
	OutcomeForbidden          = "forbidden"
	OutcomeConflict           = "conflict"
	OutcomeError              = "error"
)

func checkoutOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrEmptyCart):
		return OutcomeEmptyCart
	case errors.Is(err, domain.ErrProductUnavailable):
		return OutcomeProductUnavailable
	case errors.Is(err, domain.ErrForbidden):
		return OutcomeForbidden
	case errors.Is(err, domain.ErrConflict):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}

// readError turns a storage failure outside a unit of work into a PersistenceError.
func readError(op string, err error) error {
	if err == nil || domain.IsKnown(err) {
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}
