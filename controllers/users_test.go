package controllers_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meinhoongagan/household-services/controllers"
	"github.com/meinhoongagan/household-services/models"
	"github.com/meinhoongagan/household-services/testutil"
)

func TestGetUsers_AdminOnlyAndCached(t *testing.T) {
	env := setup(t)
	_, adminToken := env.user(t, "root", models.RoleAdmin)
	_, customerToken := env.user(t, "alice", models.RoleCustomer)

	pro := testutil.CreateUser(t, env.conn, "pat", models.RoleProfessional)
	svc := testutil.CreateService(t, env.conn, "Plumbing", 40)
	doc := "static/uploads/pat_example_com.pdf"
	require.NoError(t, env.conn.Model(pro).Updates(map[string]interface{}{"service_id": svc.ID, "document_path": doc}).Error)

	status, _ := env.do(t, "GET", "/api/users", nil, customerToken)
	assert.Equal(t, 403, status)

	status, body := env.do(t, "GET", "/api/users", nil, adminToken)
	require.Equal(t, 200, status, string(body))
	users := decode[[]controllers.UserSummary](t, body)
	require.Len(t, users, 3)

	byName := map[string]controllers.UserSummary{}
	for _, u := range users {
		byName[u.Username] = u
	}
	require.NotNil(t, byName["pat"].ServiceOffered)
	assert.Equal(t, "Plumbing", *byName["pat"].ServiceOffered)
	require.NotNil(t, byName["pat"].DocumentPath)
	assert.Equal(t, doc, *byName["pat"].DocumentPath)
	assert.Nil(t, byName["alice"].ServiceOffered)
	assert.True(t, env.mr.Exists("all_users"))

	// a direct insert bypasses invalidation, so the cached listing is served
	testutil.CreateUser(t, env.conn, "bob", models.RoleCustomer)
	_, body = env.do(t, "GET", "/api/users", nil, adminToken)
	assert.Len(t, decode[[]controllers.UserSummary](t, body), 3)

	env.mr.FastForward(301 * time.Second)
	_, body = env.do(t, "GET", "/api/users", nil, adminToken)
	assert.Len(t, decode[[]controllers.UserSummary](t, body), 4)
}

func TestToggleUserFlag(t *testing.T) {
	env := setup(t)
	admin, adminToken := env.user(t, "root", models.RoleAdmin)
	alice := testutil.CreateUser(t, env.conn, "alice", models.RoleCustomer)

	env.do(t, "GET", "/api/users", nil, adminToken)
	require.True(t, env.mr.Exists("all_users"))

	status, body := env.do(t, "PUT", "/api/users/"+itoa(alice.ID)+"/flag", nil, adminToken)
	require.Equal(t, 200, status, string(body))
	assert.Equal(t, true, decode[map[string]interface{}](t, body)["flagged"])
	assert.False(t, env.mr.Exists("all_users"))

	status, body = env.do(t, "PUT", "/api/users/"+itoa(alice.ID), nil, adminToken)
	require.Equal(t, 200, status)
	assert.Equal(t, false, decode[map[string]interface{}](t, body)["flagged"])

	status, body = env.do(t, "PUT", "/api/users/"+itoa(admin.ID)+"/flag", nil, adminToken)
	assert.Equal(t, 403, status)
	assert.Equal(t, "Admins cannot be flagged", errorOf(t, body))

	status, _ = env.do(t, "PUT", "/api/users/9999/flag", nil, adminToken)
	assert.Equal(t, 404, status)
}

func TestDeleteUser(t *testing.T) {
	env := setup(t)
	admin, adminToken := env.user(t, "root", models.RoleAdmin)
	alice := testutil.CreateUser(t, env.conn, "alice", models.RoleCustomer)
	bob := testutil.CreateUser(t, env.conn, "bob", models.RoleCustomer)
	pro := testutil.CreateUser(t, env.conn, "pat", models.RoleProfessional)
	svc := testutil.CreateService(t, env.conn, "Plumbing", 40)

	own := env.request(t, alice, svc, models.StatusPending, nil)
	accepted := env.request(t, bob, svc, models.StatusAccepted, pro)
	done := env.request(t, bob, svc, models.StatusCompleted, pro)

	status, body := env.do(t, "DELETE", "/api/users/"+itoa(admin.ID), nil, adminToken)
	assert.Equal(t, 403, status)
	assert.Equal(t, "Admins cannot be deleted", errorOf(t, body))

	status, _ = env.do(t, "DELETE", "/api/users/"+itoa(alice.ID), nil, adminToken)
	require.Equal(t, 200, status)
	var n int64
	env.conn.Model(&models.ServiceRequest{}).Where("id = ?", own.ID).Count(&n)
	assert.Zero(t, n)

	status, _ = env.do(t, "DELETE", "/api/users/"+itoa(pro.ID), nil, adminToken)
	require.Equal(t, 200, status)

	reverted := env.reload(t, accepted)
	assert.Equal(t, models.StatusPending, reverted.Status)
	assert.Nil(t, reverted.ProfessionalID)

	kept := env.reload(t, done)
	assert.Equal(t, models.StatusCompleted, kept.Status)
	assert.Nil(t, kept.ProfessionalID)

	status, _ = env.do(t, "DELETE", "/api/users/"+itoa(pro.ID), nil, adminToken)
	assert.Equal(t, 404, status)
}
