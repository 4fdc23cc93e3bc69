package shared

import (
	"context"

	"github.com/google/uuid"
)

// Caller is the authenticated principal on whose behalf an operation runs.
// TenantID is the caller's company; SuperAdmin bypasses tenant scoping.
type Caller struct {
	TenantID   uuid.UUID
	UserID     uuid.UUID
	SuperAdmin bool
}

// CanAccess reports whether the caller may touch data owned by tenantID
func (c Caller) CanAccess(tenantID uuid.UUID) bool {
	return c.SuperAdmin || c.TenantID == tenantID
}

type callerKey struct{}

// WithCaller stores the caller in the context
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext returns the caller stored in ctx, if any
func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(Caller)
	return caller, ok
}
