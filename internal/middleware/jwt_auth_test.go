package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/asfak07/blognest/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func signToken(t *testing.T, secret string, userID uint, expiresAt time.Time) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID: userID,
		Email:  "test@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func runMiddleware(t *testing.T, secret, authHeader string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JWTAuthMiddleware(secret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return c, handler(c)
}

func TestValidTokenSetsClaims(t *testing.T) {
	token := signToken(t, "test-secret", 42, time.Now().Add(time.Hour))

	c, err := runMiddleware(t, "test-secret", "Bearer "+token)
	assert.NoError(t, err)

	userID, ok := UserIDFromContext(c)
	assert.True(t, ok)
	assert.Equal(t, uint(42), userID)
}

func TestMissingHeaderRejected(t *testing.T) {
	_, err := runMiddleware(t, "test-secret", "")

	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestMalformedHeaderRejected(t *testing.T) {
	_, err := runMiddleware(t, "test-secret", "Token abc.def.ghi")

	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestWrongSecretRejected(t *testing.T) {
	token := signToken(t, "some-other-secret", 42, time.Now().Add(time.Hour))

	_, err := runMiddleware(t, "test-secret", "Bearer "+token)

	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestExpiredTokenRejected(t *testing.T) {
	token := signToken(t, "test-secret", 42, time.Now().Add(-time.Hour))

	_, err := runMiddleware(t, "test-secret", "Bearer "+token)

	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAnonymousContextHasNoUserID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, ok := UserIDFromContext(c)
	assert.False(t, ok)
}
