package telemetry

import (
	"context"
	"errors"

	"github.com/laundrydesk/backend/internal/domain/ledger"
	"github.com/laundrydesk/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer used for ledger spans
const TracerName = "laundry-ledger"

// Span attributes set by the ledger services
var (
	SpanAttrOrderID       = attribute.Key("ledger.order_id")
	SpanAttrPartnerID     = attribute.Key("ledger.partner_id")
	SpanAttrPaymentID     = attribute.Key("ledger.payment_id")
	SpanAttrPaymentCode   = attribute.Key("ledger.payment_code")
	SpanAttrPaymentMethod = attribute.Key("ledger.payment_method")
	SpanAttrPaymentStatus = attribute.Key("ledger.payment_status")
	SpanAttrAmount        = attribute.Key("ledger.amount")
	SpanAttrAllocated     = attribute.Key("ledger.allocated")
	SpanAttrResidual      = attribute.Key("ledger.residual")
	SpanAttrOrderCount    = attribute.Key("ledger.order_count")
	SpanAttrSuperAdmin    = attribute.Key("ledger.super_admin")
	SpanAttrCacheHit      = attribute.Key("ledger.cache_hit")
	SpanAttrErrorCode     = attribute.Key("ledger.error_code")
)

// StartSpan starts a span on the ledger tracer. The caller must call span.End().
//
//	ctx, span := telemetry.StartSpan(ctx, "event.payment.allocated")
//	defer span.End()
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartServiceSpan starts a span named {service}.{method}
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, service+"."+method, attrs...)
}

// RecordError attaches err to span. A rejection carrying a domain code only
// tags the span with the code; the span fails for consistency faults and
// infrastructure errors.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	if domainErr, ok := shared.AsDomainError(err); ok {
		span.SetAttributes(SpanAttrErrorCode.String(domainErr.Code))
		return
	}
	var fault *ledger.ConsistencyError
	if errors.As(err, &fault) {
		span.SetAttributes(SpanAttrErrorCode.String(fault.Code))
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
