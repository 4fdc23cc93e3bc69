package dto

import (
	"net/http"

	"github.com/laundrydesk/backend/internal/domain/ledger"
)

// Transport-level error codes, produced by the middleware and handlers
// rather than by the ledger itself
const (
	ErrCodeInternal            = "ERR_INTERNAL"
	ErrCodeInvalidJSON         = "ERR_INVALID_JSON"
	ErrCodeValidation          = "ERR_VALIDATION"
	ErrCodeValidationFormat    = "ERR_VALIDATION_FORMAT"
	ErrCodeRequestTooLarge     = "ERR_REQUEST_TOO_LARGE"
	ErrCodeUnauthorized        = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired        = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid        = "ERR_TOKEN_INVALID"
	ErrCodeForbidden           = "ERR_FORBIDDEN"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// sharedCodes rewrites the generic codes of shared.DomainError into the
// transport form. Ledger codes are part of the public contract and pass
// through unchanged.
var sharedCodes = map[string]string{
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
}

// statusGroups lists every code the API can return, by HTTP status
var statusGroups = []struct {
	status int
	codes  []string
}{
	{http.StatusBadRequest, []string{
		ErrCodeInvalidJSON, ErrCodeValidation, ErrCodeValidationFormat,
		ledger.CodeInvalidAmount, ledger.CodeInvalidPaymentMethod,
		ledger.CodeInvalidPaymentCode, ledger.CodeInvalidDateRange,
	}},
	{http.StatusUnauthorized, []string{ErrCodeUnauthorized, ErrCodeTokenExpired, ErrCodeTokenInvalid}},
	{http.StatusForbidden, []string{ErrCodeForbidden, ledger.CodeTenantMismatch, ledger.CodeHardDeleteDisabled}},
	{http.StatusNotFound, []string{ledger.CodeOrderNotFound, ledger.CodePartnerNotFound, ledger.CodePaymentNotFound}},
	{http.StatusConflict, []string{ErrCodeConcurrencyConflict, ledger.CodePaymentAlreadyCancelled}},
	{http.StatusRequestEntityTooLarge, []string{ErrCodeRequestTooLarge}},
	{http.StatusUnprocessableEntity, []string{ledger.CodeOrderAlreadyPaid, ledger.CodeNoPaymentToCancel}},
	// consistency faults are deliberately indistinguishable from other 500s
	{http.StatusInternalServerError, []string{
		ErrCodeInternal, ledger.CodeOrderCompanyMismatch, ledger.CodeLedgerInconsistent,
	}},
}

var statusByCode = func() map[string]int {
	index := make(map[string]int)
	for _, group := range statusGroups {
		for _, code := range group.codes {
			index[code] = group.status
		}
	}
	return index
}()

// GetHTTPStatus returns the HTTP status for an error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode maps shared domain codes to their transport form and
// returns any other code as-is
func NormalizeErrorCode(code string) string {
	if mapped, ok := sharedCodes[code]; ok {
		return mapped
	}
	return code
}
