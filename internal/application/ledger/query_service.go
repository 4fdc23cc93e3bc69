package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/ledger"
	"github.com/laundrydesk/backend/internal/domain/shared"
	"github.com/laundrydesk/backend/internal/infrastructure/logger"
	"github.com/laundrydesk/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// QueryRepositories are the read-side collaborators of QueryService
type QueryRepositories struct {
	Orders   ledger.OrderRepository
	Payments ledger.PaymentRepository
	Entries  ledger.AllocationEntryRepository
	Views    ledger.PaymentQueryRepository
}

// QueryService serves read-only projections. Balances are recomputed from
// the ledger, never read from the stored order columns.
type QueryService struct {
	repos           QueryRepositories
	cache           ledger.BalanceCache
	guard           ledger.TenantGuard
	defaultPageSize int
	maxPageSize     int
}

// NewQueryService creates a new QueryService. A nil cache disables caching.
func NewQueryService(repos QueryRepositories, cache ledger.BalanceCache, defaultPageSize, maxPageSize int) *QueryService {
	if defaultPageSize <= 0 {
		defaultPageSize = 20
	}
	if maxPageSize < defaultPageSize {
		maxPageSize = defaultPageSize
	}
	return &QueryService{
		repos:           repos,
		cache:           cache,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// GetOrderBalance returns an order's paid amount, residual and status,
// reading through the balance cache
func (s *QueryService) GetOrderBalance(ctx context.Context, orderID uuid.UUID) (*ledger.OrderBalance, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger_query", "get_order_balance")
	defer span.End()
	span.SetAttributes(telemetry.SpanAttrOrderID.String(orderID.String()))

	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	if cached := s.cachedBalance(ctx, orderID); cached != nil {
		if err := s.guard.Check(caller, cached.TenantID); err != nil {
			return nil, err
		}
		span.SetAttributes(telemetry.SpanAttrCacheHit.Bool(true))
		return cached, nil
	}

	order, err := s.repos.Orders.FindByID(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if err := s.guard.Order(caller, order); err != nil {
		return nil, err
	}
	entries, err := s.repos.Entries.FindByOrder(ctx, order.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load ledger entries: %w", err)
	}

	balance := ledger.NewOrderBalance(order, order.Totals(entries))
	if s.cache != nil {
		if err := s.cache.Set(ctx, balance); err != nil {
			logger.L(ctx).Warn("Failed to cache order balance",
				zap.String("order_id", orderID.String()), zap.Error(err))
		}
	}
	return balance, nil
}

// cachedBalance returns the cached balance or nil. Cache failures degrade to
// a recomputation.
func (s *QueryService) cachedBalance(ctx context.Context, orderID uuid.UUID) *ledger.OrderBalance {
	if s.cache == nil {
		return nil
	}
	balance, err := s.cache.Get(ctx, orderID)
	if err != nil {
		logger.L(ctx).Warn("Balance cache read failed",
			zap.String("order_id", orderID.String()), zap.Error(err))
		return nil
	}
	return balance
}

// GetPayment returns one payment with its display fields
func (s *QueryService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger_query", "get_payment")
	defer span.End()

	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	view, err := s.repos.Views.GetView(ctx, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if view == nil {
		return nil, ledger.ErrPaymentNotFound
	}
	if err := s.guard.Payment(caller, &view.Payment); err != nil {
		return nil, err
	}

	resp := ToPaymentResponse(view)
	return &resp, nil
}

// ListPayments returns a page of payments visible to the caller
func (s *QueryService) ListPayments(ctx context.Context, q ListPaymentsQuery) (*shared.Paginated[PaymentResponse], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger_query", "list_payments")
	defer span.End()

	if _, err := callerFrom(ctx); err != nil {
		return nil, err
	}

	filter := ledger.PaymentFilter{
		Filter: shared.Filter{
			Page:     max(q.Page, 1),
			PageSize: s.pageSize(q.PageSize),
			OrderBy:  q.OrderBy,
			OrderDir: q.OrderDir,
		},
		TenantID:  q.TenantID,
		OrderID:   q.OrderID,
		PartnerID: q.PartnerID,
		Method:    q.Method,
		DateFrom:  q.DateFrom,
		DateTo:    q.DateTo,
	}
	if filter.Method != nil && !filter.Method.IsValid() {
		return nil, ledger.ErrInvalidPaymentMethod
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, ledger.ErrInvalidDateRange
	}

	views, total, err := s.repos.Views.List(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		if _, ok := shared.AsDomainError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	items := make([]PaymentResponse, len(views))
	for i := range views {
		items[i] = ToPaymentResponse(&views[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *QueryService) pageSize(requested int) int {
	switch {
	case requested <= 0:
		return s.defaultPageSize
	case requested > s.maxPageSize:
		return s.maxPageSize
	default:
		return requested
	}
}

// ListOrderEntries returns an order's ledger in creation order
func (s *QueryService) ListOrderEntries(ctx context.Context, orderID uuid.UUID) ([]EntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger_query", "list_order_entries")
	defer span.End()

	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	order, err := s.repos.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if err := s.guard.Order(caller, order); err != nil {
		return nil, err
	}

	entries, err := s.repos.Entries.FindByOrder(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load ledger entries: %w", err)
	}
	return ToEntryResponses(entries), nil
}

// ListPaymentEntries returns a payment's ledger in creation order
func (s *QueryService) ListPaymentEntries(ctx context.Context, paymentID uuid.UUID) ([]EntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger_query", "list_payment_entries")
	defer span.End()

	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	payment, err := s.repos.Payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if err := s.guard.Payment(caller, payment); err != nil {
		return nil, err
	}

	entries, err := s.repos.Entries.FindByPayment(ctx, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load ledger entries: %w", err)
	}
	return ToEntryResponses(entries), nil
}
