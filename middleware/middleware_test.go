package middleware_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meinhoongagan/household-services/auth"
	"github.com/meinhoongagan/household-services/db"
	"github.com/meinhoongagan/household-services/middleware"
	"github.com/meinhoongagan/household-services/models"
	"github.com/meinhoongagan/household-services/testutil"
)

func newApp(t *testing.T) (*fiber.App, *auth.TokenService, *auth.Denylist) {
	t.Helper()

	conn := testutil.NewDB(t)
	db.DB = conn
	_, rdb := testutil.NewRedis(t)

	tokens := auth.NewTokenService("test-secret", time.Hour)
	denylist := auth.NewDenylist(conn, rdb)

	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Get("/any", middleware.Protected(tokens, denylist), middleware.RequireRole(), func(c *fiber.Ctx) error {
		return c.SendString(middleware.CurrentUser(c).Username)
	})
	app.Get("/admin", middleware.Protected(tokens, denylist), middleware.RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/unguarded", middleware.RequireRole(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app, tokens, denylist
}

func get(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestProtectedAndRequireRole(t *testing.T) {
	app, tokens, _ := newApp(t)
	customer := testutil.CreateUser(t, db.DB, "alice", models.RoleCustomer)
	admin := testutil.CreateUser(t, db.DB, "root", models.RoleAdmin)

	customerToken, err := tokens.Issue(customer.ID, customer.Role.Name)
	require.NoError(t, err)
	adminToken, err := tokens.Issue(admin.ID, admin.Role.Name)
	require.NoError(t, err)

	assert.Equal(t, 200, get(t, app, "/any", customerToken))
	assert.Equal(t, 403, get(t, app, "/admin", customerToken))
	assert.Equal(t, 204, get(t, app, "/admin", adminToken))
	assert.Equal(t, 401, get(t, app, "/any", ""))
	assert.Equal(t, 401, get(t, app, "/unguarded", ""))
}

func TestProtected_RejectsForeignAndRevokedTokens(t *testing.T) {
	app, tokens, denylist := newApp(t)
	user := testutil.CreateUser(t, db.DB, "alice", models.RoleCustomer)

	foreign, err := auth.NewTokenService("other-secret", time.Hour).Issue(user.ID, user.Role.Name)
	require.NoError(t, err)
	assert.Equal(t, 401, get(t, app, "/any", foreign))

	expired, err := auth.NewTokenService("test-secret", -time.Minute).Issue(user.ID, user.Role.Name)
	require.NoError(t, err)
	assert.Equal(t, 401, get(t, app, "/any", expired))

	token, err := tokens.Issue(user.ID, user.Role.Name)
	require.NoError(t, err)
	claims := testutil.ParseToken(t, tokens.Secret(), token)
	require.NoError(t, denylist.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))
	assert.Equal(t, 401, get(t, app, "/any", token))
}

func TestRequireRole_DeletedUser(t *testing.T) {
	app, tokens, _ := newApp(t)
	user := testutil.CreateUser(t, db.DB, "ghost", models.RoleCustomer)
	token, err := tokens.Issue(user.ID, user.Role.Name)
	require.NoError(t, err)
	require.NoError(t, db.DB.Delete(user).Error)

	assert.Equal(t, 401, get(t, app, "/any", token))
}
