// Package testutil builds the in-memory database and Redis instances used by
// package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/meinhoongagan/household-services/auth"
	"github.com/meinhoongagan/household-services/models"
)

// NewDB opens a private in-memory sqlite database with the schema migrated
// and the default roles created.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(
		&models.Role{},
		&models.Service{},
		&models.User{},
		&models.ServiceRequest{},
		&models.RevokedToken{},
	))
	for _, name := range []string{models.RoleAdmin, models.RoleProfessional, models.RoleCustomer} {
		role := models.Role{Name: name}
		require.NoError(t, conn.Where("name = ?", name).FirstOrCreate(&role).Error)
	}

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

// NewRedis starts a miniredis server and returns a client connected to it.
func NewRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// CreateUser inserts a user with the given role. Password is "password".
func CreateUser(t *testing.T, conn *gorm.DB, username, roleName string) *models.User {
	t.Helper()

	var role models.Role
	require.NoError(t, conn.Where("name = ?", roleName).First(&role).Error)

	hash, err := auth.HashPassword("password")
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
		RoleID:   role.ID,
	}
	require.NoError(t, conn.Create(user).Error)
	require.NoError(t, conn.Preload("Role").First(user, user.ID).Error)
	return user
}

// CreateService inserts an available service.
func CreateService(t *testing.T, conn *gorm.DB, name string, price float64) *models.Service {
	t.Helper()

	svc := &models.Service{Name: name, Description: name + " service", Price: price, Available: true}
	require.NoError(t, conn.Create(svc).Error)
	return svc
}

// ParseToken verifies an HS256 token signed with secret and returns its claims.
func ParseToken(t *testing.T, secret []byte, token string) *auth.Claims {
	t.Helper()

	claims := &auth.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	return claims
}
