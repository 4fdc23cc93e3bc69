package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/laundrydesk/backend/internal/application/ledger"
	"github.com/laundrydesk/backend/internal/domain/ledger"
	"github.com/laundrydesk/backend/internal/domain/shared"
	"github.com/laundrydesk/backend/internal/interfaces/http/dto"
)

// PaymentAllocator records payments against orders
type PaymentAllocator interface {
	AllocatePayment(ctx context.Context, cmd ledgerapp.AllocatePaymentCommand) (*ledgerapp.AllocationResult, error)
}

// PaymentCanceller reverses payment allocations
type PaymentCanceller interface {
	CancelPayment(ctx context.Context, cmd ledgerapp.CancelPaymentCommand) (*ledgerapp.CancellationResult, error)
}

// PaymentEraser runs the administrative hard delete
type PaymentEraser interface {
	HardDeletePayment(ctx context.Context, paymentID uuid.UUID) (*ledgerapp.HardDeleteResult, error)
}

// LedgerReader serves balances, payments and audit trails
type LedgerReader interface {
	GetOrderBalance(ctx context.Context, orderID uuid.UUID) (*ledger.OrderBalance, error)
	GetPayment(ctx context.Context, paymentID uuid.UUID) (*ledgerapp.PaymentResponse, error)
	ListPayments(ctx context.Context, q ledgerapp.ListPaymentsQuery) (*shared.Paginated[ledgerapp.PaymentResponse], error)
	ListOrderEntries(ctx context.Context, orderID uuid.UUID) ([]ledgerapp.EntryResponse, error)
	ListPaymentEntries(ctx context.Context, paymentID uuid.UUID) ([]ledgerapp.EntryResponse, error)
}

// LedgerHandler exposes the payment allocation ledger over HTTP
type LedgerHandler struct {
	BaseHandler
	allocator PaymentAllocator
	canceller PaymentCanceller
	eraser    PaymentEraser
	reader    LedgerReader
	now       func() time.Time
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(allocator PaymentAllocator, canceller PaymentCanceller, eraser PaymentEraser, reader LedgerReader) *LedgerHandler {
	return &LedgerHandler{
		allocator: allocator,
		canceller: canceller,
		eraser:    eraser,
		reader:    reader,
		now:       time.Now,
	}
}

// AllocatePayment handles POST /payments
func (h *LedgerHandler) AllocatePayment(c *gin.Context) {
	var req AllocatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.allocator.AllocatePayment(c.Request.Context(), req.ToCommand(h.now()))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// CancelPayment handles POST /payments/:id/cancel. The body is optional.
func (h *LedgerHandler) CancelPayment(c *gin.Context) {
	paymentID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req CancelPaymentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			h.bindError(c, err)
			return
		}
	}

	result, err := h.canceller.CancelPayment(c.Request.Context(), ledgerapp.CancelPaymentCommand{
		PaymentID: paymentID,
		Reason:    req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// HardDeletePayment handles DELETE /payments/:id
func (h *LedgerHandler) HardDeletePayment(c *gin.Context) {
	paymentID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	result, err := h.eraser.HardDeletePayment(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetPayment handles GET /payments/:id
func (h *LedgerHandler) GetPayment(c *gin.Context) {
	paymentID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	payment, err := h.reader.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// ListPayments handles GET /payments
func (h *LedgerHandler) ListPayments(c *gin.Context) {
	var req ListPaymentsRequest
	if !h.BindQuery(c, &req) {
		return
	}

	page, err := h.reader.ListPayments(c.Request.Context(), req.ToQuery())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(*page))
}

// ListPaymentEntries handles GET /payments/:id/entries
func (h *LedgerHandler) ListPaymentEntries(c *gin.Context) {
	paymentID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	entries, err := h.reader.ListPaymentEntries(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// GetOrderBalance handles GET /orders/:id/balance
func (h *LedgerHandler) GetOrderBalance(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	balance, err := h.reader.GetOrderBalance(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// ListOrderEntries handles GET /orders/:id/entries
func (h *LedgerHandler) ListOrderEntries(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	entries, err := h.reader.ListOrderEntries(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}
