package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/meinhoongagan/household-services/auth"
	"github.com/meinhoongagan/household-services/controllers"
	"github.com/meinhoongagan/household-services/db"
	"github.com/meinhoongagan/household-services/middleware"
	"github.com/meinhoongagan/household-services/models"
	"github.com/meinhoongagan/household-services/redis"
	"github.com/meinhoongagan/household-services/routes"
	"github.com/meinhoongagan/household-services/tasks"
	"github.com/meinhoongagan/household-services/testutil"
	"github.com/meinhoongagan/household-services/utils"
)

type testEnv struct {
	app       *fiber.App
	conn      *gorm.DB
	mr        *miniredis.Miniredis
	tokens    *auth.TokenService
	queue     *tasks.Queue
	exportDir string
	uploadDir string
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	conn := testutil.NewDB(t)
	db.DB = conn
	mr, rdb := testutil.NewRedis(t)

	env := &testEnv{
		conn:      conn,
		mr:        mr,
		tokens:    auth.NewTokenService("test-secret", time.Hour),
		queue:     tasks.NewQueue(rdb, time.Hour),
		exportDir: t.TempDir(),
		uploadDir: t.TempDir(),
	}
	denylist := auth.NewDenylist(conn, rdb)

	controllers.Configure(controllers.Deps{
		Tokens:        env.tokens,
		Denylist:      denylist,
		Uploader:      utils.NewLocalUploader(env.uploadDir),
		Queue:         env.queue,
		ExportDir:     env.exportDir,
		UsersCache:    redis.NewCache[[]controllers.UserSummary](rdb, 300*time.Second),
		ServicesCache: redis.NewCache[[]models.Service](rdb, 600*time.Second),
	})

	env.app = fiber.New()
	routes.Setup(env.app, middleware.Protected(env.tokens, denylist))
	return env
}

func (e *testEnv) tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := e.tokens.Issue(u.ID, u.Role.Name)
	require.NoError(t, err)
	return token
}

func (e *testEnv) user(t *testing.T, username, role string) (*models.User, string) {
	t.Helper()
	u := testutil.CreateUser(t, e.conn, username, role)
	return u, e.tokenFor(t, u)
}

// do sends body as JSON and returns the status and raw response body.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(t, req, token)
}

func (e *testEnv) send(t *testing.T, req *http.Request, token string) (int, []byte) {
	t.Helper()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func errorOf(t *testing.T, data []byte) string {
	return decode[map[string]interface{}](t, data)["error"].(string)
}

func (e *testEnv) request(t *testing.T, customer *models.User, svc *models.Service, status models.RequestStatus, pro *models.User) *models.ServiceRequest {
	t.Helper()
	r := &models.ServiceRequest{CustomerID: customer.ID, ServiceID: svc.ID, Status: status}
	if pro != nil {
		r.ProfessionalID = &pro.ID
	}
	require.NoError(t, e.conn.Create(r).Error)
	return r
}

func (e *testEnv) reload(t *testing.T, r *models.ServiceRequest) *models.ServiceRequest {
	t.Helper()
	var fresh models.ServiceRequest
	require.NoError(t, e.conn.First(&fresh, r.ID).Error)
	return &fresh
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
