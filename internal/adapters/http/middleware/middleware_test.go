package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"barangaylink/internal/config"
	"barangaylink/internal/core/domain"
	"barangaylink/internal/pkg/jwt"
	"barangaylink/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = &config.Config{AppMode: "dev", JWT: config.JWTConfig{Secret: "mw-secret"}}

func token(t *testing.T, role domain.Role, minutes int) string {
	t.Helper()
	tok, err := jwt.GenerateAccessToken(7, "juan@example.com", string(role), testCfg.JWT.Secret, minutes)
	require.NoError(t, err)
	return tok
}

func whoami(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"userID": c.Locals("userID"), "role": c.Locals("role")})
}

func get(t *testing.T, app *fiber.App, path string, header map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/me", AuthMiddleware(testCfg), whoami)

	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", nil).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", map[string]string{"Authorization": "Bearer junk"}).StatusCode)
	assert.Equal(t, http.StatusUnauthorized,
		get(t, app, "/me", map[string]string{"Authorization": "Bearer " + token(t, domain.RoleMember, -1)}).StatusCode)

	resp := get(t, app, "/me", map[string]string{"Authorization": "Bearer " + token(t, domain.RoleMember, 5)})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// cookie fallback
	resp = get(t, app, "/me", map[string]string{"Cookie": "access_token=" + token(t, domain.RoleMember, 5)})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestQueryTokenAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/ws", QueryTokenAuth(testCfg), whoami)

	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/ws", nil).StatusCode)
	assert.Equal(t, http.StatusOK, get(t, app, "/ws?token="+token(t, domain.RoleMember, 5), nil).StatusCode)
}

func TestRoleMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/staff", AuthMiddleware(testCfg), StaffOnly(), whoami)
	app.Get("/admin", AuthMiddleware(testCfg), AdminOnly(), whoami)

	cases := []struct {
		role           domain.Role
		path           string
		expectedStatus int
	}{
		{domain.RoleMember, "/staff", http.StatusForbidden},
		{domain.RoleVolunteer, "/staff", http.StatusForbidden},
		{domain.RoleModerator, "/staff", http.StatusOK},
		{domain.RoleAdmin, "/staff", http.StatusOK},
		{domain.RoleModerator, "/admin", http.StatusForbidden},
		{domain.RoleAdmin, "/admin", http.StatusOK},
	}
	for _, tc := range cases {
		resp := get(t, app, tc.path, map[string]string{"Authorization": "Bearer " + token(t, tc.role, 5)})
		assert.Equal(t, tc.expectedStatus, resp.StatusCode, "%s %s", tc.role, tc.path)
	}
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	app := fiber.New()
	app.Get("/", OptionalAuth(testCfg), whoami)

	assert.Equal(t, http.StatusOK, get(t, app, "/", nil).StatusCode)
	assert.Equal(t, http.StatusOK, get(t, app, "/", map[string]string{"Authorization": "Bearer junk"}).StatusCode)
}

func TestCacheHeaders(t *testing.T) {
	app := fiber.New()
	app.Get("/cached", CacheControl(time.Minute), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", CacheControl(time.Minute), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) })
	app.Get("/private", NoStore(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	assert.Equal(t, "public, max-age=60", get(t, app, "/cached", nil).Header.Get(fiber.HeaderCacheControl))
	assert.Empty(t, get(t, app, "/missing", nil).Header.Get(fiber.HeaderCacheControl))
	assert.Equal(t, "no-store", get(t, app, "/private", nil).Header.Get(fiber.HeaderCacheControl))
}

func TestAuthRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Get("/login", AuthRateLimiter(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, get(t, app, "/login", nil).StatusCode)
	}
	assert.Equal(t, http.StatusTooManyRequests, get(t, app, "/login", nil).StatusCode)
}

func TestCustomErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	resp := get(t, app, "/teapot", nil)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, get(t, app, "/nope", nil).StatusCode)
}

func TestSetupRecordsMetricsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	Setup(app, testCfg, metrics.NewCollector(reg))
	app.Get("/events/:id", func(c *fiber.Ctx) error { return c.SendString(c.Params("id")) })

	resp := get(t, app, "/events/1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
	get(t, app, "/events/2", nil)

	families, err := reg.Gather()
	require.NoError(t, err)
	var routes []string
	for _, mf := range families {
		if mf.GetName() != "barangaylink_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "route" {
					routes = append(routes, l.GetValue())
				}
			}
			assert.Equal(t, 2.0, m.GetCounter().GetValue())
		}
	}
	assert.Equal(t, []string{"/events/:id"}, routes)
}
