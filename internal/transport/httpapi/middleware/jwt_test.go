package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annuksk07-cloud/xpenseflow/internal/transport/httpapi/middleware"
)

const testSecret = "test-secret-key-that-is-long-enough!"

func TestJWTService_RoundTrip(t *testing.T) {
	svc := middleware.NewJWTService(testSecret)

	token, err := svc.GenerateToken("user-42")
	require.NoError(t, err)

	identity, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", identity)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	token, err := middleware.NewJWTService(testSecret).GenerateToken("user-42")
	require.NoError(t, err)

	_, err = middleware.NewJWTService("another-secret-key-also-long-enough").ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	_, err := middleware.NewJWTService(testSecret).ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestJWTMiddleware(t *testing.T) {
	svc := middleware.NewJWTService(testSecret)
	token, err := svc.GenerateToken("user-42")
	require.NoError(t, err)

	var gotIdentity string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdentity, _ = middleware.GetIdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	wrapped := middleware.JWTMiddleware(svc)(next)

	t.Run("valid token resolves identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()

		wrapped.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "user-42", gotIdentity)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()

		wrapped.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", token)
		rr := httptest.NewRecorder()

		wrapped.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rr := httptest.NewRecorder()

		wrapped.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
