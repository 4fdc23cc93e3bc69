package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/laundrydesk/backend/internal/domain/ledger"
	"github.com/laundrydesk/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// RequestIDKey is the context key for request ID
const RequestIDKey = "X-Request-ID"

// Custom validation tags
const (
	TagDecimalPositive = "decimal_positive"
	TagPaymentMethod   = "payment_method"
)

// SetupValidator configures gin's validator with JSON field names and the
// ledger's custom tags
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return RegisterValidators(v)
}

// RegisterValidators installs the tag name func, the decimal type func and
// the custom tags on v
func RegisterValidators(v *validator.Validate) error {
	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	// decimal.Decimal is a struct; validate its string form
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation(TagDecimalPositive, validateDecimalPositive); err != nil {
		return err
	}
	return v.RegisterValidation(TagPaymentMethod, validatePaymentMethod)
}

func validateDecimalPositive(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.IsPositive()
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return ledger.PaymentMethod(fl.Field().String()).IsValid()
}

// HandleValidationError answers 400 with one detail per failed field of err
func HandleValidationError(c *gin.Context, err error) {
	var details []dto.ValidationDetail
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, e := range fieldErrs {
			details = append(details, dto.ValidationDetail{Field: e.Field(), Message: validationMessage(e)})
		}
	}
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		getRequestIDFromContext(c),
		details,
	))
}

func getRequestIDFromContext(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

// validationMessages covers the tags used by the ledger request bodies and
// list filters
var validationMessages = map[string]func(e validator.FieldError) string{
	"required": func(validator.FieldError) string { return "This field is required" },
	"uuid":     func(validator.FieldError) string { return "Invalid UUID format" },
	"oneof":    func(e validator.FieldError) string { return "Must be one of: " + e.Param() },
	"min":      func(e validator.FieldError) string { return "Must be at least " + e.Param() },
	"max": func(e validator.FieldError) string {
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	},
	TagDecimalPositive: func(validator.FieldError) string { return "Must be a positive amount" },
	TagPaymentMethod: func(validator.FieldError) string {
		methods := make([]string, 0, len(ledger.AllPaymentMethods()))
		for _, m := range ledger.AllPaymentMethods() {
			methods = append(methods, m.String())
		}
		return "Must be one of: " + strings.Join(methods, " ")
	},
}

func validationMessage(e validator.FieldError) string {
	if msg, ok := validationMessages[e.Tag()]; ok {
		return msg(e)
	}
	return "Invalid value"
}
