package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/laundrydesk/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing opens a server span per request, named after the route pattern.
// When disabled it only passes the request on.
func Tracing(serviceName string, enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(serviceName)
}

// SpanCaller tags the request span with the request id and the caller's
// tenant. It runs after Authenticate.
func SpanCaller() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if requestID := c.GetString(RequestIDKey); requestID != "" {
				span.SetAttributes(attribute.String("request_id", requestID))
			}
			if caller, ok := GetCaller(c); ok {
				span.SetAttributes(
					attribute.String("tenant_id", caller.TenantID.String()),
					attribute.String("user_id", caller.UserID.String()),
					telemetry.SpanAttrSuperAdmin.Bool(caller.SuperAdmin),
				)
			}
		}
		c.Next()
	}
}

// SpanOutcome records the response on the request span. A rejected payment
// keeps the span unset and only carries its ledger error code; 5xx
// responses, consistency faults among them, fail the span.
func SpanOutcome() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		status := c.Writer.Status()
		span.SetAttributes(attrHTTPStatusCode.Int(status))
		if last := c.Errors.Last(); last != nil {
			telemetry.RecordError(span, last.Err)
		}
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
