package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"agencyops/config"
	"agencyops/models"
	"agencyops/services"
	"agencyops/utils"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMailer struct {
	sent []utils.EmailData
	fail map[string]bool
}

func (m *fakeMailer) Send(data utils.EmailData) error {
	for _, to := range data.To {
		if m.fail[to] {
			return errors.New("smtp unavailable")
		}
	}
	m.sent = append(m.sent, data)
	return nil
}

func setup(t *testing.T) (*gorm.DB, *services.TaskService, *models.Client) {
	t.Helper()
	db, err := config.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	require.NoError(t, config.Migrate(db))
	require.NoError(t, config.Seed(db, config.AdminConfig{}))

	client := &models.Client{Name: "Acme", Status: models.ClientActive}
	require.NoError(t, db.Create(client).Error)
	activity := services.NewActivityService(db, nil)
	return db, services.NewTaskService(db, activity), client
}

func agent(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()
	var role models.Role
	require.NoError(t, db.Where("name = ?", models.RoleAgent).First(&role).Error)
	u := &models.User{Name: name, Email: email, PasswordHash: "x", RoleID: role.ID}
	require.NoError(t, db.Create(u).Error)
	return u
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func TestOverdueSweep(t *testing.T) {
	db, tasks, client := setup(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)
	require.NoError(t, db.Create(&[]models.Task{
		{Name: "late", ClientID: client.ID, Status: models.TaskPending, DueDate: &yesterday},
		{Name: "fine", ClientID: client.ID, Status: models.TaskPending, DueDate: &tomorrow},
	}).Error)

	w := NewOverdueWorker(tasks, 0, testLogger())
	assert.Equal(t, 15*time.Minute, w.Interval)
	w.now = func() time.Time { return now }

	assert.EqualValues(t, 1, w.Sweep(context.Background()))
	assert.EqualValues(t, 0, w.Sweep(context.Background()))

	var late models.Task
	require.NoError(t, db.Where("name = ?", "late").First(&late).Error)
	assert.Equal(t, models.TaskOverdue, late.Status)
}

func TestOverdueWorkerStopsOnCancel(t *testing.T) {
	_, tasks, _ := setup(t)
	w := NewOverdueWorker(tasks, time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestNotifyGroupsByAgent(t *testing.T) {
	db, tasks, client := setup(t)
	ann := agent(t, db, "Ann", "ann@example.com")
	bob := agent(t, db, "Bob", "bob@example.com")
	require.NoError(t, db.Create(&[]models.Task{
		{Name: "one", ClientID: client.ID, AssignedTo: &ann.ID, Status: models.TaskPending},
		{Name: "two", ClientID: client.ID, AssignedTo: &ann.ID, Status: models.TaskInProgress},
		{Name: "three", ClientID: client.ID, AssignedTo: &bob.ID, Status: models.TaskPending},
		{Name: "orphan", ClientID: client.ID, Status: models.TaskPending},
	}).Error)

	mailer := &fakeMailer{fail: map[string]bool{"bob@example.com": true}}
	n := NewTaskNotifier(tasks, mailer, "Agency Ops", 0, testLogger())

	assert.Equal(t, 1, n.Notify(context.Background()))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"ann@example.com"}, mailer.sent[0].To)
	assert.Equal(t, "task_assigned", mailer.sent[0].Template)
	assert.Contains(t, mailer.sent[0].Subject, "2 new task(s)")

	var pending int64
	require.NoError(t, db.Model(&models.Task{}).Where("notified_at IS NULL AND assigned_to IS NOT NULL").Count(&pending).Error)
	assert.EqualValues(t, 1, pending)

	mailer.fail = nil
	assert.Equal(t, 1, n.Notify(context.Background()))
	assert.Equal(t, 0, n.Notify(context.Background()))
}

func TestTaskAssignedTemplateRenders(t *testing.T) {
	body, err := utils.RenderEmail("task_assigned", map[string]interface{}{
		"Subject":   "New tasks assigned",
		"AgentName": "Ann",
		"Tasks":     []taskLine{{Name: "Post to Facebook", Client: "Acme", Priority: "high", Due: "Jun 1, 2024"}},
		"Year":      2024,
		"AppName":   "Agency Ops",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Post to Facebook")
	assert.Contains(t, body, "Acme")
}
