package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Wanderfund/config"
	"Wanderfund/internal/middleware"
	"Wanderfund/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiterWindow(t *testing.T) {
	rl := middleware.NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := middleware.NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	router := gin.New()
	router.GET("/ping", middleware.RateLimit(rl), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, want, w.Code, "request %d", i)
	}
}

func TestAuthMiddleware(t *testing.T) {
	jwtSvc, err := middleware.NewJwtService(config.JWTConfig{Secret: "test-secret", Issuer: "wanderfund"})
	require.NoError(t, err)

	userID := pkg.GenerateULIDObject().String()
	valid, err := jwtSvc.GenerateToken(userID, time.Hour)
	require.NoError(t, err)
	expired, err := jwtSvc.GenerateToken(userID, -time.Hour)
	require.NoError(t, err)
	other, err := middleware.NewJwtService(config.JWTConfig{Secret: "other", Issuer: "wanderfund"})
	require.NoError(t, err)
	forged, err := other.GenerateToken(userID, time.Hour)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/me", middleware.AuthMiddleware(jwtSvc), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(middleware.UserIDKey))
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized},
		{"foreign signature", "Bearer " + forged, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, userID, w.Body.String())
			}
		})
	}
}

func TestInternalToken(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		sent       string
		want       int
	}{
		{"matching token", "s3cret", "s3cret", http.StatusOK},
		{"wrong token", "s3cret", "nope", http.StatusForbidden},
		{"endpoint closed without token", "", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/run", middleware.InternalToken(tt.configured), func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodPost, "/run", nil)
			req.Header.Set("X-Internal-Token", tt.sent)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
