package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"records-service/common/logger"
	"records-service/internal/auth"
	"records-service/internal/teacher"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var summary = teacher.Summary{
	ID:         "4b1d2c43-8a51-4a0c-9c56-1f3b6f0f6a11",
	Email:      "teacher@school.edu",
	FirstName:  "Demo",
	LastName:   "Teacher",
	Department: "General Education",
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour)

	token, expiresAt, err := tm.Issue(summary)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, summary.ID, claims.TeacherID())
	assert.Equal(t, summary.Email, claims.Email)
}

func TestTokenManager_Rejects(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour)

	t.Run("Empty", func(t *testing.T) {
		_, err := tm.Validate("")
		assert.ErrorIs(t, err, auth.ErrMissingToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tm.Validate("not.a.jwt")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := auth.NewTokenManager("other-secret", time.Hour)
		token, _, err := other.Issue(summary)
		require.NoError(t, err)

		_, err = tm.Validate(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		expired := auth.NewTokenManager("test-secret", -time.Minute)
		token, _, err := expired.Issue(summary)
		require.NoError(t, err)

		_, err = tm.Validate(token)
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("NoneAlgorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: summary.ID})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = tm.Validate(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestExtractBearerToken(t *testing.T) {
	assert.Equal(t, "abc", auth.ExtractBearerToken("Bearer abc"))
	assert.Equal(t, "abc", auth.ExtractBearerToken("bearer abc"))
	assert.Equal(t, "", auth.ExtractBearerToken("Basic abc"))
	assert.Equal(t, "", auth.ExtractBearerToken(""))
}

func TestMiddleware(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour)
	token, _, err := tm.Issue(summary)
	require.NoError(t, err)

	protected := auth.Middleware(tm, logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.GetTeacherID(r.Context())
		require.True(t, ok)
		email, _ := auth.GetEmail(r.Context())
		w.Header().Set("X-Teacher", id+"|"+email)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("NoToken", func(t *testing.T) {
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/students", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
	})

	t.Run("Cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, summary.ID+"|"+summary.Email, w.Header().Get("X-Teacher"))
	})

	t.Run("BearerHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("TamperedToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
		req.Header.Set("Authorization", "Bearer "+token+"x")
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
