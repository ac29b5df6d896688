package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/opsdesk/internal/auth/domain"
	"github.com/smallbiznis/opsdesk/internal/auth/service"
	"github.com/smallbiznis/opsdesk/internal/clock"
	"github.com/smallbiznis/opsdesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupAuth(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.User{}, &domain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := service.New(service.Params{
		DB:    conn,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: clock.NewSystemClock(),
	})
	return svc, conn
}

func createUser(t *testing.T, svc domain.Service, email string, role domain.Role) *domain.User {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Name:     "Test User",
		Email:    email,
		Password: "s3cret-pass",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func TestCreateUserNormalizesAndValidates(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupAuth(t)

	user, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Name:     "Owner",
		Email:    "  Owner@Example.COM ",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	require.NotNil(t, user.PasswordHash)
	assert.NotEqual(t, "s3cret-pass", *user.PasswordHash)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "short@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "bad-role@example.com",
		Password: "s3cret-pass",
		Role:     domain.Role("owner"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "owner@example.com",
		Password: "s3cret-pass",
	})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestLoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupAuth(t)
	user := createUser(t, svc, "worker@example.com", domain.RoleUser)

	result, err := svc.Login(ctx, domain.LoginRequest{
		Email:     "worker@example.com",
		Password:  "s3cret-pass",
		UserAgent: "test-agent",
		IPAddress: "127.0.0.1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.RawToken)
	assert.True(t, result.ExpiresAt.After(time.Now()))
	assert.Equal(t, user.ID, result.User.ID)

	sess, err := svc.Authenticate(ctx, result.RawToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, sess.UserID)
	assert.Equal(t, "test-agent", sess.UserAgent)

	_, err = svc.Login(ctx, domain.LoginRequest{
		Email:    "worker@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{
		Email:    "absent@example.com",
		Password: "s3cret-pass",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	svc, conn := setupAuth(t)
	createUser(t, svc, "worker@example.com", domain.RoleUser)

	_, err := svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	_, err = svc.Authenticate(ctx, "not-a-real-token")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	result, err := svc.Login(ctx, domain.LoginRequest{
		Email:    "worker@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.RawToken))
	_, err = svc.Authenticate(ctx, result.RawToken)
	assert.ErrorIs(t, err, domain.ErrSessionRevoked)

	result, err = svc.Login(ctx, domain.LoginRequest{
		Email:    "worker@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	expired := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, conn.Model(&domain.Session{}).
		Where("revoked_at IS NULL").
		Update("expires_at", expired).Error)
	_, err = svc.Authenticate(ctx, result.RawToken)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestListAndDeleteUsers(t *testing.T) {
	ctx := context.Background()
	svc, conn := setupAuth(t)

	admin := createUser(t, svc, "admin@example.com", domain.RoleAdmin)
	worker := createUser(t, svc, "worker@example.com", domain.RoleUser)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	result, err := svc.Login(ctx, domain.LoginRequest{
		Email:    "worker@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, worker.ID.String()))

	_, err = svc.GetUser(ctx, worker.ID.String())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	// Deleting a user revokes their sessions with them.
	_, err = svc.Authenticate(ctx, result.RawToken)
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	var sessionCount int64
	require.NoError(t, conn.Model(&domain.Session{}).
		Where("user_id = ?", worker.ID).
		Count(&sessionCount).Error)
	assert.Zero(t, sessionCount)

	found, err := svc.GetUser(ctx, admin.ID.String())
	require.NoError(t, err)
	assert.True(t, found.IsAdmin())
}
