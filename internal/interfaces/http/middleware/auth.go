package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/laundrydesk/backend/internal/domain/shared"
	"github.com/laundrydesk/backend/internal/infrastructure/auth"
	"github.com/laundrydesk/backend/internal/infrastructure/logger"
	"github.com/laundrydesk/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// CallerKey holds the shared.Caller of an authenticated request
const CallerKey = "ledger_caller"

const bearerScheme = "Bearer "

// TokenVerifier validates access tokens issued by the identity service
type TokenVerifier interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

var tokenRejections = []struct {
	err     error
	code    string
	message string
}{
	{auth.ErrExpiredToken, dto.ErrCodeTokenExpired, "Token has expired"},
	{auth.ErrTokenNotYetValid, dto.ErrCodeTokenInvalid, "Token is not yet valid"},
	{auth.ErrInvalidTokenType, dto.ErrCodeTokenInvalid, "Invalid token type"},
	{auth.ErrMissingTenantID, dto.ErrCodeTokenInvalid, "Token carries no tenant"},
}

// Authenticate resolves the bearer token into the shared.Caller every ledger
// operation is scoped to. A request without a valid token stops with 401.
func Authenticate(tokens TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		claims, caller, err := verifyBearer(tokens, c.GetHeader("Authorization"))
		if err != nil {
			code, message := tokenRejection(err)
			logger.Enrich(c.Request.Context(), log).Warn("Request rejected",
				zap.String("code", code),
				zap.String("route", c.FullPath()),
				zap.Error(err),
			)
			abortWithError(c, http.StatusUnauthorized, code, message)
			return
		}

		c.Set(CallerKey, caller)
		ctx := shared.WithCaller(c.Request.Context(), caller)
		ctx = logger.WithTenantID(ctx, claims.TenantID)
		ctx = logger.WithUserID(ctx, claims.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func verifyBearer(tokens TokenVerifier, header string) (*auth.Claims, shared.Caller, error) {
	token, ok := strings.CutPrefix(header, bearerScheme)
	if !ok || token == "" {
		return nil, shared.Caller{}, auth.ErrInvalidToken
	}
	claims, err := tokens.ValidateAccessToken(token)
	if err != nil {
		return nil, shared.Caller{}, err
	}
	caller, err := claims.Caller()
	if err != nil {
		return nil, shared.Caller{}, err
	}
	return claims, caller, nil
}

func tokenRejection(err error) (code, message string) {
	for _, r := range tokenRejections {
		if errors.Is(err, r.err) {
			return r.code, r.message
		}
	}
	return dto.ErrCodeTokenInvalid, "Invalid token"
}

// GetCaller returns the caller Authenticate attached to c
func GetCaller(c *gin.Context) (shared.Caller, bool) {
	if v, ok := c.Get(CallerKey); ok {
		if caller, ok := v.(shared.Caller); ok {
			return caller, true
		}
	}
	return shared.CallerFromContext(c.Request.Context())
}

// RequireSuperAdmin guards the hard-delete route
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		switch {
		case !ok:
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		case !caller.SuperAdmin:
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Super administrator access required")
		default:
			c.Next()
		}
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, getRequestIDFromContext(c)))
}
