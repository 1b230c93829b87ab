package services

import (
	"context"
	"testing"
	"time"

	"agencyops/config"
	"agencyops/models"
	"agencyops/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builtInRole(t *testing.T, f *fixture, name string) models.Role {
	t.Helper()
	var role models.Role
	require.NoError(t, f.db.Where("name = ?", name).First(&role).Error)
	return role
}

func TestRoleCreateValidatesPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.roles.Create(ctx, RoleInput{Name: "  "})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = f.roles.Create(ctx, RoleInput{Name: "Editor", Permissions: []string{models.PermViewClients, "launch_rockets"}})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindValidation))
	assert.Contains(t, err.Error(), "launch_rockets")

	role, err := f.roles.Create(ctx, RoleInput{
		Name:        "Editor",
		Permissions: []string{models.PermViewClients, models.PermEditClient, models.PermViewClients},
	})
	require.NoError(t, err)
	assert.Equal(t, "editor", role.Name)
	assert.ElementsMatch(t, []string{models.PermViewClients, models.PermEditClient}, role.PermissionIDs)

	_, err = f.roles.Create(ctx, RoleInput{Name: "EDITOR"})
	assert.True(t, utils.IsKind(err, utils.KindConflict))
}

func TestRoleUpdateReplacesGrants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	role, err := f.roles.Create(ctx, RoleInput{Name: "editor", Permissions: []string{models.PermViewClients}})
	require.NoError(t, err)

	updated, err := f.roles.Update(ctx, role.ID, RoleInput{Name: "editor", Permissions: []string{models.PermViewTasks}})
	require.NoError(t, err)
	assert.Equal(t, []string{models.PermViewTasks}, updated.PermissionIDs)

	cleared, err := f.roles.Update(ctx, role.ID, RoleInput{Name: "editor"})
	require.NoError(t, err)
	assert.Empty(t, cleared.PermissionIDs)
	assert.NotNil(t, cleared.PermissionIDs)
}

func TestBuiltInRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := builtInRole(t, f, models.RoleAdmin)
	agent := builtInRole(t, f, models.RoleAgent)

	adminRole, err := f.roles.Get(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AllPermissionIDs(), adminRole.PermissionIDs)

	_, err = f.roles.Update(ctx, agent.ID, RoleInput{Name: "worker"})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	err = f.roles.Delete(ctx, agent.ID)
	assert.True(t, utils.IsKind(err, utils.KindDependency))
	assert.Equal(t, "Built-in roles cannot be deleted", err.Error())
}

func TestRoleDeleteWithUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	role, err := f.roles.Create(ctx, RoleInput{Name: "editor"})
	require.NoError(t, err)

	u := &models.User{Name: "Eve", Email: "eve@example.com", PasswordHash: "x", RoleID: role.ID}
	require.NoError(t, f.db.Create(u).Error)

	err = f.roles.Delete(ctx, role.ID)
	assert.True(t, utils.IsKind(err, utils.KindDependency))
	assert.Equal(t, "Cannot delete role with 1 users", err.Error())

	require.NoError(t, f.db.Delete(u).Error)
	require.NoError(t, f.roles.Delete(ctx, role.ID))
	assert.Zero(t, count(t, f.db, &models.RolePermission{}, "role_id = ?", role.ID))
}

func withJWTConfig(t *testing.T) {
	t.Helper()
	previous := config.AppConfig
	config.AppConfig.JWTSecret = "test-secret"
	config.AppConfig.JWTExpiry = time.Hour
	t.Cleanup(func() { config.AppConfig = previous })
}

func seedLoginUser(t *testing.T, f *fixture, email, password, status string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	role := builtInRole(t, f, models.RoleAgent)
	u := &models.User{Name: "Ann", Email: email, PasswordHash: hash, RoleID: role.ID, Status: status}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func TestLoginAndAuthenticate(t *testing.T) {
	withJWTConfig(t)
	f := newFixture(t)
	ctx := context.Background()
	auth := NewAuthService(f.db, f.roles, f.activity)
	user := seedLoginUser(t, f, "ann@example.com", "s3cret-pass", models.UserActive)

	session, err := auth.Login(ctx, LoginInput{Email: " Ann@Example.com ", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.Equal(t, user.ID, session.User.ID)
	assert.NotNil(t, session.User.LastLoginAt)
	assert.ElementsMatch(t, models.AgentPermissionIDs, session.Permissions)
	assert.EqualValues(t, 1, count(t, f.db, &models.ActivityLog{}, "action = ? AND user_id = ?", models.ActionLogin, user.ID))

	got, perms, err := auth.Authenticate(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.True(t, utils.HasPermission(perms, models.PermViewClients))
	assert.False(t, utils.HasPermission(perms, models.PermDeleteClient))

	_, _, err = auth.Authenticate(ctx, "not-a-token")
	assert.True(t, utils.IsKind(err, utils.KindUnauthorized))
}

func TestLoginRejections(t *testing.T) {
	withJWTConfig(t)
	f := newFixture(t)
	ctx := context.Background()
	auth := NewAuthService(f.db, f.roles, f.activity)
	seedLoginUser(t, f, "ann@example.com", "s3cret-pass", models.UserActive)
	seedLoginUser(t, f, "bob@example.com", "s3cret-pass", models.UserInactive)

	_, err := auth.Login(ctx, LoginInput{Email: "ann@example.com", Password: "wrong"})
	assert.True(t, utils.IsKind(err, utils.KindUnauthorized))
	assert.Equal(t, "Invalid email or password", err.Error())

	_, err = auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "s3cret-pass"})
	assert.Equal(t, "Invalid email or password", err.Error())

	_, err = auth.Login(ctx, LoginInput{Email: "bob@example.com", Password: "s3cret-pass"})
	assert.True(t, utils.IsKind(err, utils.KindUnauthorized))
	assert.Equal(t, "Account is not active", err.Error())

	_, err = auth.Login(ctx, LoginInput{Email: "not-an-email", Password: "x"})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}
