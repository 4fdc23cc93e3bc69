package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/shared"
	"github.com/laundrydesk/backend/internal/infrastructure/auth"
	"github.com/laundrydesk/backend/internal/infrastructure/config"
	"github.com/laundrydesk/backend/internal/infrastructure/logger"
	"github.com/laundrydesk/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret-key-at-least-32-chars"

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                testSecret,
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	})
}

func newTestToken(t *testing.T, jwtService *auth.JWTService, superAdmin bool) (string, auth.GenerateTokenInput) {
	t.Helper()
	input := auth.GenerateTokenInput{
		TenantID:   uuid.New(),
		UserID:     uuid.New(),
		Username:   "counter-clerk",
		SuperAdmin: superAdmin,
	}
	token, _, err := jwtService.GenerateAccessToken(input)
	require.NoError(t, err)
	return token, input
}

func bearer(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func TestAuthenticate_AttachesCaller(t *testing.T) {
	jwtService := newTestJWTService()
	token, input := newTestToken(t, jwtService, false)

	router := gin.New()
	router.Use(Authenticate(jwtService, nil))
	router.GET("/orders/:id/balance", func(c *gin.Context) {
		caller, ok := GetCaller(c)
		require.True(t, ok)
		assert.Equal(t, input.TenantID, caller.TenantID)
		assert.Equal(t, input.UserID, caller.UserID)
		assert.False(t, caller.SuperAdmin)

		fromCtx, ok := shared.CallerFromContext(c.Request.Context())
		require.True(t, ok)
		assert.Equal(t, caller, fromCtx)
		assert.Equal(t, input.TenantID.String(), logger.GetTenantID(c.Request.Context()))
		assert.Equal(t, input.UserID.String(), logger.GetUserID(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	rec := bearer(router, http.MethodGet, "/orders/42/balance", "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticate_Rejections(t *testing.T) {
	jwtService := newTestJWTService()
	expiredToken, _ := newTestToken(t, auth.NewJWTService(config.JWTConfig{
		Secret:                testSecret,
		AccessTokenExpiration: -time.Minute,
		Issuer:                "test-issuer",
	}), false)
	foreignToken, _ := newTestToken(t, auth.NewJWTService(config.JWTConfig{
		Secret:                "another-secret-key-at-least-32-chars",
		AccessTokenExpiration: time.Minute,
		Issuer:                "test-issuer",
	}), false)

	// signed with the right key but the tenant is not a uuid
	badTenant, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		TenantID:  "front-desk",
		UserID:    uuid.NewString(),
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		wantCode    string
		wantMessage string
	}{
		{"missing header", "", dto.ErrCodeTokenInvalid, "Invalid token"},
		{"basic scheme", "Basic dXNlcjpwYXNz", dto.ErrCodeTokenInvalid, "Invalid token"},
		{"empty bearer", "Bearer ", dto.ErrCodeTokenInvalid, "Invalid token"},
		{"garbage", "Bearer not.a.jwt", dto.ErrCodeTokenInvalid, "Invalid token"},
		{"expired", "Bearer " + expiredToken, dto.ErrCodeTokenExpired, "Token has expired"},
		{"wrong secret", "Bearer " + foreignToken, dto.ErrCodeTokenInvalid, "Invalid token"},
		{"tenant not a uuid", "Bearer " + badTenant, dto.ErrCodeTokenInvalid, "Invalid token"},
	}

	core, logs := observer.New(zap.WarnLevel)
	router := gin.New()
	router.Use(Authenticate(jwtService, zap.New(core)))
	router.GET("/orders/:id/balance", func(c *gin.Context) {
		t.Fatal("handler must not run")
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := bearer(router, http.MethodGet, "/orders/42/balance", tt.header)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			resp := decodeBody(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
		})
	}

	rejected := logs.FilterMessage("Request rejected").All()
	require.Len(t, rejected, len(tests))
	assert.Equal(t, "/orders/:id/balance", rejected[0].ContextMap()["route"])
}

func TestRequireSuperAdmin(t *testing.T) {
	jwtService := newTestJWTService()
	adminToken, _ := newTestToken(t, jwtService, true)
	clerkToken, _ := newTestToken(t, jwtService, false)

	router := gin.New()
	router.Use(Authenticate(jwtService, nil))
	router.DELETE("/payments/:id", RequireSuperAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"super admin", adminToken, http.StatusNoContent},
		{"tenant user", clerkToken, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := bearer(router, http.MethodDelete, "/payments/"+uuid.NewString(), "Bearer "+tt.token)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireSuperAdmin_NoCaller(t *testing.T) {
	router := gin.New()
	router.DELETE("/payments/:id", RequireSuperAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := bearer(router, http.MethodDelete, "/payments/"+uuid.NewString(), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
