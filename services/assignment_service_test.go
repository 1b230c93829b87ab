package services

import (
	"context"
	"testing"
	"time"

	"agencyops/models"
	"agencyops/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTasksRoundRobin(t *testing.T) {
	assignedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tmpl := &models.Template{
		SitesAssets: []models.TemplateSiteAsset{
			{ID: 1, Type: models.AssetSocialSite, Name: "Facebook", IsRequired: true, DefaultPostingFrequency: 2, DefaultIdealDurationMinutes: 30},
			{ID: 2, Type: models.AssetWeb2Site, Name: "Blogger", IsRequired: false, DefaultPostingFrequency: 1, DefaultIdealDurationMinutes: 30},
			{ID: 3, Type: models.AssetWeb2Site, Name: "Tumblr", IsRequired: true, DefaultPostingFrequency: 1, DefaultIdealDurationMinutes: 45},
			{ID: 4, Type: models.AssetOther, Name: "Press", IsRequired: true, DefaultPostingFrequency: 1, DefaultIdealDurationMinutes: 30},
		},
		TemplateTeamMembers: []models.TemplateTeamMember{{AgentID: "a1"}, {AgentID: "a2"}},
	}
	categories := map[models.AssetType]string{models.AssetSocialSite: "cat-social"}

	tasks := GenerateTasks(tmpl, "client1", assignedAt, 7, categories)
	require.Len(t, tasks, 3)

	wantNames := []string{"Facebook", "Tumblr", "Press"}
	wantAgents := []string{"a1", "a2", "a1"}
	for i, task := range tasks {
		assert.Equal(t, wantNames[i], task.Name)
		require.NotNil(t, task.AssignedTo)
		assert.Equal(t, wantAgents[i], *task.AssignedTo)
		assert.Equal(t, "client1", task.ClientID)
		assert.Equal(t, models.TaskPending, task.Status)
		assert.Equal(t, models.PriorityMedium, task.Priority)
		require.NotNil(t, task.DueDate)
		assert.True(t, task.DueDate.Equal(assignedAt.AddDate(0, 0, 7)))
	}
	assert.Equal(t, 2, tasks[0].PostingFrequency)
	assert.Equal(t, 45, tasks[1].IdealDurationMinutes)
	require.NotNil(t, tasks[0].CategoryID)
	assert.Equal(t, "cat-social", *tasks[0].CategoryID)
	assert.Nil(t, tasks[1].CategoryID)
}

func TestGenerateTasksWithoutTeamLeavesUnassigned(t *testing.T) {
	tmpl := &models.Template{
		SitesAssets: []models.TemplateSiteAsset{{ID: 1, Name: "Facebook", IsRequired: true}},
	}
	tasks := GenerateTasks(tmpl, "client1", time.Now(), 7, nil)
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].AssignedTo)
}

func seedAssignable(t *testing.T, f *fixture) (*models.Template, *models.Client, *models.User) {
	t.Helper()
	f.pkg(t, "pkg1", "Starter")
	team := f.team(t, "Alpha")
	agent := f.agent(t, "Ann", "ann@example.com")
	client := f.client(t, "Acme")
	tmpl, err := f.templates.Create(context.Background(), TemplateInput{
		Name:      "SEO",
		PackageID: "pkg1",
		Status:    "active",
		SitesAssets: []SiteAssetInput{
			{Type: "social_site", Name: "Facebook", IsRequired: true},
			{Type: "web2_site", Name: "Blogger", IsRequired: true},
			{Type: "other_asset", Name: "Optional", IsRequired: false},
		},
		TeamMembers: []TeamMemberInput{{AgentID: agent.ID, Role: "writer", TeamID: &team.ID}},
	})
	require.NoError(t, err)
	return tmpl, client, agent
}

func TestAssignmentCreateGeneratesTasksAndTeam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tmpl, client, agent := seedAssignable(t, f)

	assignment, err := f.assignments.Create(ctx, AssignmentInput{ID: "asg1", TemplateID: tmpl.ID, ClientID: client.ID})
	require.NoError(t, err)
	assert.Equal(t, "asg1", assignment.ID)
	assert.Equal(t, models.AssignmentActive, assignment.Status)
	assert.False(t, assignment.AssignedAt.IsZero())
	assert.Len(t, assignment.GeneratedTasks, 2)

	tasks, err := f.tasks.ListByClient(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		require.NotNil(t, task.AssignedTo)
		assert.Equal(t, agent.ID, *task.AssignedTo)
		assert.NotNil(t, task.CategoryID)
	}
	assert.EqualValues(t, 1, count(t, f.db, &models.ClientTeamMember{}, "client_id = ? AND agent_id = ?", client.ID, agent.ID))

	byTemplate, err := f.assignments.ListByTemplate(ctx, tmpl.ID)
	require.NoError(t, err)
	require.Len(t, byTemplate, 1)
	require.NotNil(t, byTemplate[0].Client)
	assert.Equal(t, "Acme", byTemplate[0].Client.Name)
}

func TestAssignmentCreateRejectsDuplicatePair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tmpl, client, _ := seedAssignable(t, f)

	_, err := f.assignments.Create(ctx, AssignmentInput{TemplateID: tmpl.ID, ClientID: client.ID})
	require.NoError(t, err)

	_, err = f.assignments.Create(ctx, AssignmentInput{TemplateID: tmpl.ID, ClientID: client.ID})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindConflict))
	assert.EqualValues(t, 1, count(t, f.db, &models.Assignment{}, "template_id = ?", tmpl.ID))
	assert.EqualValues(t, 2, count(t, f.db, &models.Task{}, "client_id = ?", client.ID))
}

func TestAssignmentCreateMissingReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tmpl, client, _ := seedAssignable(t, f)

	_, err := f.assignments.Create(ctx, AssignmentInput{TemplateID: "ghost", ClientID: client.ID})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	_, err = f.assignments.Create(ctx, AssignmentInput{TemplateID: tmpl.ID, ClientID: "ghost"})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	_, err = f.assignments.Create(ctx, AssignmentInput{TemplateID: tmpl.ID, ClientID: client.ID, Status: "paused"})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	assert.Zero(t, count(t, f.db, &models.Assignment{}, "1 = 1"))
}

func TestAssignmentCreateInactiveSkipsTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tmpl, client, _ := seedAssignable(t, f)

	assignment, err := f.assignments.Create(ctx, AssignmentInput{TemplateID: tmpl.ID, ClientID: client.ID, Status: "completed"})
	require.NoError(t, err)
	assert.Empty(t, assignment.GeneratedTasks)
	assert.Zero(t, count(t, f.db, &models.Task{}, "client_id = ?", client.ID))
}

func TestAssignmentCancelCancelsPendingTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tmpl, client, _ := seedAssignable(t, f)

	assignment, err := f.assignments.Create(ctx, AssignmentInput{TemplateID: tmpl.ID, ClientID: client.ID})
	require.NoError(t, err)

	started := string(models.TaskInProgress)
	_, err = f.tasks.Update(ctx, assignment.GeneratedTasks[0].ID, TaskInput{Status: &started})
	require.NoError(t, err)

	updated, err := f.assignments.UpdateStatus(ctx, assignment.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentCancelled, updated.Status)

	assert.EqualValues(t, 1, count(t, f.db, &models.Task{}, "client_id = ? AND status = ?", client.ID, models.TaskCancelled))
	assert.EqualValues(t, 1, count(t, f.db, &models.Task{}, "client_id = ? AND status = ?", client.ID, models.TaskInProgress))

	_, err = f.assignments.UpdateStatus(ctx, assignment.ID, "nope")
	assert.True(t, utils.IsKind(err, utils.KindValidation))
	_, err = f.assignments.UpdateStatus(ctx, "ghost", "active")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestAssignmentCreateRejectsTakenID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tmpl, client, _ := seedAssignable(t, f)
	other := f.client(t, "Globex")

	_, err := f.assignments.Create(ctx, AssignmentInput{ID: "a1", TemplateID: tmpl.ID, ClientID: client.ID})
	require.NoError(t, err)

	_, err = f.assignments.Create(ctx, AssignmentInput{ID: "a1", TemplateID: tmpl.ID, ClientID: other.ID})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindConflict))
	assert.Equal(t, "Assignment id already exists", err.Error())
	assert.Zero(t, count(t, f.db, &models.Task{}, "client_id = ?", other.ID))
	assert.Zero(t, count(t, f.db, &models.Assignment{}, "client_id = ?", other.ID))
}

func TestAssignmentReactivateRegeneratesCancelledTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tmpl, client, _ := seedAssignable(t, f)

	assignment, err := f.assignments.Create(ctx, AssignmentInput{TemplateID: tmpl.ID, ClientID: client.ID})
	require.NoError(t, err)
	started := string(models.TaskInProgress)
	_, err = f.tasks.Update(ctx, assignment.GeneratedTasks[0].ID, TaskInput{Status: &started})
	require.NoError(t, err)

	_, err = f.assignments.UpdateStatus(ctx, assignment.ID, "cancelled")
	require.NoError(t, err)

	reactivated, err := f.assignments.UpdateStatus(ctx, assignment.ID, "active")
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentActive, reactivated.Status)
	require.Len(t, reactivated.GeneratedTasks, 1)
	assert.Equal(t, "Blogger", reactivated.GeneratedTasks[0].Name)

	assert.EqualValues(t, 1, count(t, f.db, &models.Task{}, "client_id = ? AND status = ?", client.ID, models.TaskPending))
	assert.EqualValues(t, 1, count(t, f.db, &models.Task{}, "client_id = ? AND status = ?", client.ID, models.TaskInProgress))

	again, err := f.assignments.UpdateStatus(ctx, assignment.ID, "active")
	require.NoError(t, err)
	assert.Empty(t, again.GeneratedTasks)
	assert.EqualValues(t, 3, count(t, f.db, &models.Task{}, "client_id = ?", client.ID))
}

func TestAssignmentCompletedToActiveGeneratesTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tmpl, client, _ := seedAssignable(t, f)

	assignment, err := f.assignments.Create(ctx, AssignmentInput{TemplateID: tmpl.ID, ClientID: client.ID, Status: "completed"})
	require.NoError(t, err)
	assert.Zero(t, count(t, f.db, &models.Task{}, "client_id = ?", client.ID))

	reactivated, err := f.assignments.UpdateStatus(ctx, assignment.ID, "active")
	require.NoError(t, err)
	assert.Len(t, reactivated.GeneratedTasks, 2)
	assert.EqualValues(t, 2, count(t, f.db, &models.Task{}, "client_id = ? AND status = ?", client.ID, models.TaskPending))
}

func TestAssignmentDeleteCancelsPendingTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tmpl, client, _ := seedAssignable(t, f)

	assignment, err := f.assignments.Create(ctx, AssignmentInput{TemplateID: tmpl.ID, ClientID: client.ID})
	require.NoError(t, err)
	done := string(models.TaskCompleted)
	_, err = f.tasks.Update(ctx, assignment.GeneratedTasks[0].ID, TaskInput{Status: &done})
	require.NoError(t, err)

	require.NoError(t, f.assignments.Delete(ctx, assignment.ID))
	assert.Zero(t, count(t, f.db, &models.Assignment{}, "id = ?", assignment.ID))
	assert.Zero(t, count(t, f.db, &models.Task{}, "client_id = ? AND status = ?", client.ID, models.TaskPending))
	assert.EqualValues(t, 1, count(t, f.db, &models.Task{}, "client_id = ? AND status = ?", client.ID, models.TaskCancelled))
	assert.EqualValues(t, 1, count(t, f.db, &models.Task{}, "client_id = ? AND status = ?", client.ID, models.TaskCompleted))

	err = f.assignments.Delete(ctx, assignment.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}
