package controllers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meinhoongagan/household-services/controllers"
	"github.com/meinhoongagan/household-services/models"
	"github.com/meinhoongagan/household-services/testutil"
)

func TestRequestService(t *testing.T) {
	env := setup(t)
	_, token := env.user(t, "alice", models.RoleCustomer)
	_, proToken := env.user(t, "pat", models.RoleProfessional)
	svc := testutil.CreateService(t, env.conn, "Plumbing", 40)
	off := testutil.CreateService(t, env.conn, "Painting", 90)
	require.NoError(t, env.conn.Model(off).Update("available", false).Error)

	status, _ := env.do(t, "POST", "/api/request-service", map[string]uint{"service_id": svc.ID}, proToken)
	assert.Equal(t, 403, status)

	status, body := env.do(t, "POST", "/api/request-service", map[string]uint{"service_id": svc.ID}, token)
	require.Equal(t, 201, status, string(body))

	status, _ = env.do(t, "POST", "/api/request-service", map[string]uint{"service_id": 999}, token)
	assert.Equal(t, 404, status)

	status, body = env.do(t, "POST", "/api/request-service", map[string]uint{"service_id": off.ID}, token)
	assert.Equal(t, 400, status)
	assert.Equal(t, "Service is not available", errorOf(t, body))

	status, body = env.do(t, "GET", "/api/request-service", nil, token)
	require.Equal(t, 200, status)
	views := decode[[]controllers.CustomerRequestView](t, body)
	require.Len(t, views, 1)
	assert.Equal(t, "Plumbing", views[0].Service.Name)
	assert.Equal(t, "Pending", views[0].Status)
	assert.Nil(t, views[0].Professional)
	assert.Nil(t, views[0].Rating)
}

func TestCancelRequest(t *testing.T) {
	env := setup(t)
	alice, token := env.user(t, "alice", models.RoleCustomer)
	bob := testutil.CreateUser(t, env.conn, "bob", models.RoleCustomer)
	svc := testutil.CreateService(t, env.conn, "Plumbing", 40)

	mine := env.request(t, alice, svc, models.StatusPending, nil)
	theirs := env.request(t, bob, svc, models.StatusPending, nil)
	done := env.request(t, alice, svc, models.StatusCompleted, nil)

	status, _ := env.do(t, "DELETE", "/api/request-service/"+itoa(theirs.ID), nil, token)
	assert.Equal(t, 404, status)

	status, _ = env.do(t, "DELETE", "/api/request-service/"+itoa(done.ID), nil, token)
	assert.Equal(t, 400, status)

	status, _ = env.do(t, "DELETE", "/api/request-service/"+itoa(mine.ID), nil, token)
	assert.Equal(t, 200, status)
}

func TestCompleteAndRate(t *testing.T) {
	env := setup(t)
	alice, token := env.user(t, "alice", models.RoleCustomer)
	_, bobToken := env.user(t, "bob", models.RoleCustomer)
	pro := testutil.CreateUser(t, env.conn, "pat", models.RoleProfessional)
	svc := testutil.CreateService(t, env.conn, "Plumbing", 40)

	pending := env.request(t, alice, svc, models.StatusPending, nil)
	accepted := env.request(t, alice, svc, models.StatusAccepted, pro)
	path := "/api/request-service/" + itoa(accepted.ID)

	status, body := env.do(t, "PATCH", "/api/request-service/"+itoa(pending.ID)+"/complete", nil, token)
	assert.Equal(t, 404, status)
	assert.Equal(t, "Request not found or not eligible for completion", errorOf(t, body))

	status, body = env.do(t, "POST", path+"/rate", map[string]int{"rating": 5}, token)
	assert.Equal(t, 400, status)
	assert.Equal(t, "You can only rate completed services", errorOf(t, body))

	status, _ = env.do(t, "PATCH", path+"/complete", nil, bobToken)
	assert.Equal(t, 404, status)

	status, _ = env.do(t, "PATCH", path, nil, token)
	require.Equal(t, 200, status)
	assert.Equal(t, models.StatusCompleted, env.reload(t, accepted).Status)

	status, _ = env.do(t, "PATCH", path+"/complete", nil, token)
	assert.Equal(t, 404, status)

	status, _ = env.do(t, "POST", path+"/rate", map[string]int{"rating": 5}, bobToken)
	assert.Equal(t, 403, status)

	status, _ = env.do(t, "POST", path+"/rate", map[string]int{"rating": 6}, token)
	assert.Equal(t, 400, status)

	status, _ = env.do(t, "POST", path+"/rate", map[string]interface{}{}, token)
	assert.Equal(t, 400, status)

	status, _ = env.do(t, "POST", path+"/rate", map[string]int{"rating": 4}, token)
	require.Equal(t, 200, status)
	rated := env.reload(t, accepted)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, 4, *rated.Rating)

	status, body = env.do(t, "POST", path+"/rate", map[string]int{"rating": 5}, token)
	assert.Equal(t, 400, status)
	assert.Equal(t, "You have already rated this service", errorOf(t, body))

	status, _ = env.do(t, "POST", "/api/request-service/999/rate", map[string]int{"rating": 5}, token)
	assert.Equal(t, 404, status)
}

func TestProfessionalRequests(t *testing.T) {
	env := setup(t)
	alice := testutil.CreateUser(t, env.conn, "alice", models.RoleCustomer)
	require.NoError(t, env.conn.Model(alice).Update("contact_number", "5550100").Error)
	plumbing := testutil.CreateService(t, env.conn, "Plumbing", 40)
	cleaning := testutil.CreateService(t, env.conn, "Cleaning", 20)

	pro := testutil.CreateUser(t, env.conn, "pat", models.RoleProfessional)
	other := testutil.CreateUser(t, env.conn, "olly", models.RoleProfessional)
	_, idleToken := env.user(t, "ida", models.RoleProfessional)
	require.NoError(t, env.conn.Model(pro).Update("service_id", plumbing.ID).Error)
	require.NoError(t, env.conn.Model(other).Update("service_id", plumbing.ID).Error)
	token := env.tokenFor(t, pro)

	open := env.request(t, alice, plumbing, models.StatusPending, nil)
	env.request(t, alice, plumbing, models.StatusAccepted, other)
	mine := env.request(t, alice, plumbing, models.StatusCompleted, pro)
	elsewhere := env.request(t, alice, cleaning, models.StatusPending, nil)

	status, body := env.do(t, "GET", "/api/service-requests", nil, idleToken)
	assert.Equal(t, 400, status)
	assert.Equal(t, "No service assigned", errorOf(t, body))

	status, body = env.do(t, "GET", "/api/service-requests", nil, token)
	require.Equal(t, 200, status, string(body))
	views := decode[[]controllers.ProfessionalRequestView](t, body)
	require.Len(t, views, 2)
	ids := []uint{views[0].ID, views[1].ID}
	assert.ElementsMatch(t, []uint{open.ID, mine.ID}, ids)
	assert.Equal(t, "alice", views[0].CustomerName)
	require.NotNil(t, views[0].CustomerContact)
	assert.Equal(t, "5550100", *views[0].CustomerContact)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, views[0].CreatedAt)

	status, _ = env.do(t, "PUT", "/api/service-requests/"+itoa(elsewhere.ID)+"/accept", nil, token)
	assert.Equal(t, 403, status)

	status, _ = env.do(t, "PUT", "/api/service-requests/999/accept", nil, token)
	assert.Equal(t, 404, status)

	status, _ = env.do(t, "PUT", "/api/service-requests/"+itoa(open.ID)+"/accept", nil, token)
	require.Equal(t, 200, status)
	accepted := env.reload(t, open)
	assert.Equal(t, models.StatusAccepted, accepted.Status)
	require.NotNil(t, accepted.ProfessionalID)
	assert.Equal(t, pro.ID, *accepted.ProfessionalID)

	status, body = env.do(t, "PUT", "/api/service-requests/"+itoa(open.ID)+"/accept", nil, env.tokenFor(t, other))
	assert.Equal(t, 400, status)
	assert.Equal(t, "Service request already accepted", errorOf(t, body))
}
