// Package router mounts the ledger API on a gin engine.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/laundrydesk/backend/internal/interfaces/http/handler"
	"github.com/laundrydesk/backend/internal/interfaces/http/middleware"
)

// APIPrefix is the versioned root of every ledger route
const APIPrefix = "/api/v1"

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

func ledgerRoutes(h *handler.LedgerHandler) []route {
	return []route{
		{http.MethodPost, "/payments", []gin.HandlerFunc{h.AllocatePayment}},
		{http.MethodGet, "/payments", []gin.HandlerFunc{h.ListPayments}},
		{http.MethodGet, "/payments/:id", []gin.HandlerFunc{h.GetPayment}},
		{http.MethodGet, "/payments/:id/entries", []gin.HandlerFunc{h.ListPaymentEntries}},
		{http.MethodPost, "/payments/:id/cancel", []gin.HandlerFunc{h.CancelPayment}},
		{http.MethodDelete, "/payments/:id", []gin.HandlerFunc{middleware.RequireSuperAdmin(), h.HardDeletePayment}},
		{http.MethodGet, "/orders/:id/balance", []gin.HandlerFunc{h.GetOrderBalance}},
		{http.MethodGet, "/orders/:id/entries", []gin.HandlerFunc{h.ListOrderEntries}},
	}
}

// Setup mounts the payment and order routes under APIPrefix behind the
// given middleware. Routes registered directly on engine, such as /health,
// do not pass through it. Hard delete is limited to super-admins.
func Setup(engine *gin.Engine, h *handler.LedgerHandler, mw ...gin.HandlerFunc) {
	api := engine.Group(APIPrefix, mw...)
	for _, r := range ledgerRoutes(h) {
		api.Handle(r.method, r.path, r.handlers...)
	}
}
