package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/fabsketch-backend/internal/platform/ctxutil"
	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
)

const testSecret = "test-signing-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key any, subject string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func protectedRouter(t *testing.T) (*gin.Engine, *uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	am, err := NewAuthMiddleware(logger.NewNop(), testSecret, "")
	require.NoError(t, err)

	var seen uuid.UUID
	r := gin.New()
	r.Use(AttachRequestContext())
	r.GET("/api/me", am.RequireAuth(), func(c *gin.Context) {
		seen = ctxutil.GetRequestData(c.Request.Context()).UserID
		c.Status(http.StatusOK)
	})
	return r, &seen
}

func doGet(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	r, seen := protectedRouter(t)
	uid := uuid.New()

	rec := doGet(r, signToken(t, jwt.SigningMethodHS256, []byte(testSecret), uid.String(), time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uid, *seen)
}

func TestRequireAuthRejects(t *testing.T) {
	r, _ := protectedRouter(t)
	uid := uuid.NewString()

	cases := []struct {
		name   string
		token  string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
		{"wrong key", signToken(t, jwt.SigningMethodHS256, []byte("other"), uid, time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"expired", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), uid, time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"wrong alg", signToken(t, jwt.SigningMethodHS512, []byte(testSecret), uid, time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"bad subject", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), "admin", time.Now().Add(time.Hour)), http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doGet(r, tc.token)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code"`)
		})
	}
}

func TestNewAuthMiddlewareRequiresSecret(t *testing.T) {
	_, err := NewAuthMiddleware(logger.NewNop(), " ", "")
	assert.Error(t, err)
}

func TestRequireAuthIgnoresQueryToken(t *testing.T) {
	r, seen := protectedRouter(t)
	tok := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), uuid.NewString(), time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/me?token="+tok, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, uuid.Nil, *seen)
}
