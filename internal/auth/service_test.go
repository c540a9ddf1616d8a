package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"founder-portal/ops-portal/ops-portal-backend/internal/config"
	"founder-portal/ops-portal/ops-portal-backend/internal/middleware"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	return NewService(config.SecurityConfig{
		JWTSecret:           "test-secret",
		TokenTTL:            time.Hour,
		FounderEmail:        "founder@example.com",
		FounderPasswordHash: string(hash),
	})
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Login(" Founder@Example.com ", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.NotEmpty(t, token.AccessToken)

	_, err = svc.Login("founder@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("someone@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_NotConfigured(t *testing.T) {
	svc := NewService(config.SecurityConfig{})
	_, err := svc.Login("a", "b")
	assert.Error(t, err)
}

func TestIssuedTokenPassesMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestService(t)
	token, err := svc.Login("founder@example.com", "hunter2")
	require.NoError(t, err)

	router := gin.New()
	protected := router.Group("/", middleware.RequireAuth([]byte("test-secret")))
	NewHandler(svc, zap.NewNop()).RegisterProtectedRoutes(protected)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "founder@example.com")

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
