package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meinhoongagan/household-services/auth"
	"github.com/meinhoongagan/household-services/models"
	"github.com/meinhoongagan/household-services/testutil"
)

func TestPassword(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	assert.True(t, auth.CheckPassword("s3cret", hash))
	assert.False(t, auth.CheckPassword("wrong", hash))
}

func TestTokenService_Issue(t *testing.T) {
	svc := auth.NewTokenService("test-secret", time.Hour)

	tok, err := svc.Issue(42, models.RoleCustomer)
	require.NoError(t, err)

	claims := testutil.ParseToken(t, svc.Secret(), tok)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, models.RoleCustomer, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenService_UniqueJTI(t *testing.T) {
	svc := auth.NewTokenService("test-secret", time.Hour)

	a, err := svc.Issue(1, models.RoleAdmin)
	require.NoError(t, err)
	b, err := svc.Issue(1, models.RoleAdmin)
	require.NoError(t, err)

	ca := testutil.ParseToken(t, svc.Secret(), a)
	cb := testutil.ParseToken(t, svc.Secret(), b)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestClaims_UserID(t *testing.T) {
	claims := &auth.Claims{}
	claims.Subject = "7"
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)

	for _, bad := range []string{"", "0", "abc"} {
		claims.Subject = bad
		_, err := claims.UserID()
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	}
}

func TestDenylist_RevokeAndLookup(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	mr, rdb := testutil.NewRedis(t)
	list := auth.NewDenylist(conn, rdb)

	revoked, err := list.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	exp := time.Now().Add(time.Hour)
	require.NoError(t, list.Revoke(ctx, "abc", exp))
	require.NoError(t, list.Revoke(ctx, "abc", exp))

	var count int64
	conn.Model(&models.RevokedToken{}).Where("jti = ?", "abc").Count(&count)
	assert.Equal(t, int64(1), count)
	assert.True(t, mr.Exists("revoked:abc"))

	revoked, err = list.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestDenylist_DatabaseBackfillsRedis(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	mr, rdb := testutil.NewRedis(t)
	list := auth.NewDenylist(conn, rdb)

	require.NoError(t, conn.Create(&models.RevokedToken{JTI: "from-db", ExpiresAt: time.Now().Add(time.Hour)}).Error)
	assert.False(t, mr.Exists("revoked:from-db"))

	revoked, err := list.IsRevoked(ctx, "from-db")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, mr.Exists("revoked:from-db"))
}

func TestDenylist_WithoutRedis(t *testing.T) {
	ctx := context.Background()
	list := auth.NewDenylist(testutil.NewDB(t), nil)

	require.NoError(t, list.Revoke(ctx, "xyz", time.Now().Add(time.Hour)))
	revoked, err := list.IsRevoked(ctx, "xyz")
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.ErrorIs(t, list.Revoke(ctx, "", time.Now()), auth.ErrInvalidToken)
}

func TestDenylist_Purge(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	list := auth.NewDenylist(conn, nil)

	now := time.Now()
	require.NoError(t, list.Revoke(ctx, "old", now.Add(-time.Hour)))
	require.NoError(t, list.Revoke(ctx, "fresh", now.Add(time.Hour)))

	n, err := list.Purge(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	revoked, err := list.IsRevoked(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, revoked)
}
