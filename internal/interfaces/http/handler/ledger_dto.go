package handler

import (
	"time"

	"github.com/google/uuid"
	ledgerapp "github.com/laundrydesk/backend/internal/application/ledger"
	"github.com/laundrydesk/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// AllocatePaymentRequest is the body of POST /payments
type AllocatePaymentRequest struct {
	OrderID     string               `json:"order_id" binding:"required,uuid"`
	PartnerID   string               `json:"partner_id" binding:"required,uuid"`
	Amount      decimal.Decimal      `json:"amount" binding:"required,decimal_positive"`
	Method      ledger.PaymentMethod `json:"method" binding:"required,payment_method"`
	PaymentDate *time.Time           `json:"payment_date"`
	Note        string               `json:"note" binding:"max=1000"`
}

// ToCommand converts the request, defaulting the payment date to now
func (r AllocatePaymentRequest) ToCommand(now time.Time) ledgerapp.AllocatePaymentCommand {
	cmd := ledgerapp.AllocatePaymentCommand{
		OrderID:     uuid.MustParse(r.OrderID),
		PartnerID:   uuid.MustParse(r.PartnerID),
		Amount:      r.Amount,
		Method:      r.Method,
		PaymentDate: now,
		Note:        r.Note,
	}
	if r.PaymentDate != nil {
		cmd.PaymentDate = *r.PaymentDate
	}
	return cmd
}

// CancelPaymentRequest is the optional body of POST /payments/:id/cancel
type CancelPaymentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ListPaymentsRequest holds the query parameters of GET /payments
type ListPaymentsRequest struct {
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1"`
	OrderBy   string     `form:"order_by" binding:"omitempty,oneof=created_at payment_date payment_code amount method"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	TenantID  string     `form:"tenant_id" binding:"omitempty,uuid"`
	OrderID   string     `form:"order_id" binding:"omitempty,uuid"`
	PartnerID string     `form:"partner_id" binding:"omitempty,uuid"`
	Method    string     `form:"method" binding:"omitempty,payment_method"`
	DateFrom  *time.Time `form:"date_from" time_format:"2006-01-02" time_utc:"1"`
	DateTo    *time.Time `form:"date_to" time_format:"2006-01-02" time_utc:"1"`
}

// ToQuery converts the validated request into the service query
func (r ListPaymentsRequest) ToQuery() ledgerapp.ListPaymentsQuery {
	q := ledgerapp.ListPaymentsQuery{
		Page:      r.Page,
		PageSize:  r.PageSize,
		OrderBy:   r.OrderBy,
		OrderDir:  r.OrderDir,
		TenantID:  parseOptionalUUID(r.TenantID),
		OrderID:   parseOptionalUUID(r.OrderID),
		PartnerID: parseOptionalUUID(r.PartnerID),
		DateFrom:  r.DateFrom,
	}
	if r.Method != "" {
		m := ledger.PaymentMethod(r.Method)
		q.Method = &m
	}
	if r.DateTo != nil {
		// date_to is inclusive
		end := r.DateTo.AddDate(0, 0, 1).Add(-time.Nanosecond)
		q.DateTo = &end
	}
	return q
}

func parseOptionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
