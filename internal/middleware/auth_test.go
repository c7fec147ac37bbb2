package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"messaging-service/pkg/config"
	"messaging-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authChain() echo.HandlerFunc {
	return AuthMiddleware(RequireTenantContext(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}))
}

func doAuth(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, authChain()(c))
	return rec, c
}

func TestAuthMiddleware(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	t.Run("valid token with tenant passes through", func(t *testing.T) {
		tenantID := uint(7)
		token, err := jwtutil.GenerateToken("owner@glowsalon.com", 1, &tenantID, "Glow Salon", "admin")
		require.NoError(t, err)

		rec, c := doAuth(t, "Bearer "+token)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, uint(7), c.Get("tenant_id"))
		assert.Equal(t, "Glow Salon", c.Get("tenant_name"))
	})

	t.Run("token without tenant is forbidden", func(t *testing.T) {
		token, err := jwtutil.GenerateToken("admin@example.com", 2, nil, "", "superadmin")
		require.NoError(t, err)

		rec, _ := doAuth(t, "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		rec, _ := doAuth(t, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header is unauthorized", func(t *testing.T) {
		rec, _ := doAuth(t, "Token abc")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		rec, _ := doAuth(t, "Bearer not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another key is unauthorized", func(t *testing.T) {
		tenantID := uint(7)
		jwtutil.Initialize(&config.JWTConfig{SigningKey: "other-key", ExpirationHours: 1})
		token, err := jwtutil.GenerateToken("owner@glowsalon.com", 1, &tenantID, "Glow Salon", "admin")
		require.NoError(t, err)

		jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
		rec, _ := doAuth(t, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
