package config

import (
	"context"
	"fmt"
	"testing"
	"time"

	"agencyops/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

func TestSeedIsIdempotent(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	admin := AdminConfig{Email: "admin@example.com", Password: "pw-123456", Name: "Admin"}
	require.NoError(t, Seed(db, admin))
	require.NoError(t, Seed(db, admin))

	var roles, users, categories, grants int64
	require.NoError(t, db.Model(&models.Role{}).Count(&roles).Error)
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.TaskCategory{}).Count(&categories).Error)
	require.NoError(t, db.Model(&models.RolePermission{}).Count(&grants).Error)
	assert.EqualValues(t, 2, roles)
	assert.EqualValues(t, 1, users)
	assert.EqualValues(t, len(models.AssetTypeOrder), categories)
	assert.EqualValues(t, len(models.AgentPermissionIDs), grants)
}

func TestSQLiteEnforcesForeignKeys(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	err = db.Create(&models.Template{Name: "orphan", PackageID: "missing"}).Error
	assert.Error(t, err)
}

func TestPostgresMigrateAndSeed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("agencyops_test"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=user password=password dbname=agencyops_test sslmode=disable", host, port.Port())
	db, err := OpenPostgres(dsn)
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	require.NoError(t, Seed(db, AdminConfig{}))

	var roles int64
	require.NoError(t, db.Model(&models.Role{}).Count(&roles).Error)
	assert.EqualValues(t, 2, roles)

	dup := models.Role{Name: models.RoleAdmin}
	err = db.Create(&dup).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
