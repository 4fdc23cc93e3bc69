package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
)

// ====== CORS Tests

func corsRouter(origins []string) *gin.Engine {
	router := gin.New()
	router.Use(CORS(origins))
	router.POST("/payments", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return router
}

func TestCORS(t *testing.T) {
	const counter = "https://counter.laundry.example"

	tests := []struct {
		name        string
		origins     []string
		method      string
		origin      string
		wantStatus  int
		wantOrigin  string
		wantCreds   string
		wantMethods string
	}{
		{"empty list sends no headers", nil, http.MethodPost, counter, http.StatusCreated, "", "", ""},
		{"empty list still answers preflight", nil, http.MethodOptions, counter, http.StatusNoContent, "", "", ""},
		{"allowed origin", []string{counter}, http.MethodPost, counter, http.StatusCreated,
			counter, "true", corsAllowMethods},
		{"allowed preflight", []string{counter}, http.MethodOptions, counter, http.StatusNoContent,
			counter, "true", corsAllowMethods},
		{"other origin", []string{counter}, http.MethodPost, "https://evil.example", http.StatusCreated, "", "", ""},
		{"wildcard never sends credentials", []string{"*"}, http.MethodPost, "https://anywhere.example",
			http.StatusCreated, "*", "", corsAllowMethods},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/payments", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			corsRouter(tt.origins).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCreds, w.Header().Get("Access-Control-Allow-Credentials"))
			assert.Equal(t, tt.wantMethods, w.Header().Get("Access-Control-Allow-Methods"))
		})
	}
}

func TestCORS_AllowsRequestIDHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/payments", nil)
	req.Header.Set("Origin", "https://office.laundry.example")
	w := httptest.NewRecorder()
	corsRouter([]string{"https://office.laundry.example"}).ServeHTTP(w, req)

	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), RequestIDKey)
	assert.Equal(t, RequestIDKey, w.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
}

// ====== RequestID Tests

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		assert.Equal(t, c.GetString(RequestIDKey), logger.GetRequestID(c.Request.Context()))
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	t.Run("generates request ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		_, err := uuid.Parse(w.Header().Get(RequestIDKey))
		assert.NoError(t, err)
		assert.Equal(t, w.Header().Get(RequestIDKey), w.Body.String())
	})

	t.Run("uses provided request ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDKey, "test-request-id")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "test-request-id", w.Header().Get(RequestIDKey))
		assert.Equal(t, "test-request-id", w.Body.String())
	})

	t.Run("replaces oversized request ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDKey, strings.Repeat("x", maxRequestIDLength+1))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		_, err := uuid.Parse(w.Header().Get(RequestIDKey))
		assert.NoError(t, err)
	})
}

// ====== Secure Tests

func TestSecure(t *testing.T) {
	tests := []struct {
		name     string
		hsts     time.Duration
		wantHSTS string
	}{
		{"without HSTS", 0, ""},
		{"with HSTS", 365 * 24 * time.Hour, "max-age=31536000; includeSubDomains"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Secure(tt.hsts))
			router.GET("/payments", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/payments", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", w.Header().Get("Content-Security-Policy"))
			assert.Equal(t, tt.wantHSTS, w.Header().Get("Strict-Transport-Security"))
		})
	}
}
