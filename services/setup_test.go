package services

import (
	"context"
	"testing"

	"agencyops/config"
	"agencyops/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	activity    *ActivityService
	templates   *TemplateService
	assignments *AssignmentService
	teams       *TeamService
	agents      *AgentService
	packages    *PackageService
	clients     *ClientService
	tasks       *TaskService
	roles       *RoleService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	require.NoError(t, config.Seed(db, config.AdminConfig{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	activity := NewActivityService(db, NewActivityHub())
	return &fixture{
		db:          db,
		activity:    activity,
		templates:   NewTemplateService(db, activity),
		assignments: NewAssignmentService(db, activity, 7),
		teams:       NewTeamService(db, activity),
		agents:      NewAgentService(db, activity),
		packages:    NewPackageService(db, activity),
		clients:     NewClientService(db, activity),
		tasks:       NewTaskService(db, activity),
		roles:       NewRoleService(db, activity),
	}
}

func (f *fixture) pkg(t *testing.T, id, name string) *models.Package {
	t.Helper()
	p := &models.Package{Base: models.Base{ID: id}, Name: name}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *fixture) team(t *testing.T, name string) *models.Team {
	t.Helper()
	team, err := f.teams.Create(context.Background(), TeamInput{Name: name})
	require.NoError(t, err)
	return team
}

func (f *fixture) agent(t *testing.T, name, email string) *models.User {
	t.Helper()
	var role models.Role
	require.NoError(t, f.db.Where("name = ?", models.RoleAgent).First(&role).Error)
	u := &models.User{Name: name, Email: email, PasswordHash: "x", RoleID: role.ID, Status: models.UserActive}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) client(t *testing.T, name string) *models.Client {
	t.Helper()
	c, err := f.clients.Create(context.Background(), ClientInput{Name: name})
	require.NoError(t, err)
	return c
}

func count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
