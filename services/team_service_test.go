package services

import (
	"context"
	"testing"

	"agencyops/models"
	"agencyops/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamCreateRejectsDuplicateName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.teams.Create(ctx, TeamInput{Name: "Alpha"})
	require.NoError(t, err)

	_, err = f.teams.Create(ctx, TeamInput{Name: "  Alpha  "})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindConflict))
	assert.Equal(t, "Team name already exists", err.Error())

	_, err = f.teams.Create(ctx, TeamInput{Name: "Beta"})
	assert.NoError(t, err)

	_, err = f.teams.Create(ctx, TeamInput{Name: "   "})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestTeamUpdateRejectsTakenName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.team(t, "Alpha")
	beta := f.team(t, "Beta")

	_, err := f.teams.Update(ctx, beta.ID, TeamInput{Name: "Alpha"})
	assert.True(t, utils.IsKind(err, utils.KindConflict))

	renamed, err := f.teams.Update(ctx, beta.ID, TeamInput{Name: "Beta", Description: "same name is fine"})
	require.NoError(t, err)
	assert.Equal(t, "same name is fine", renamed.Description)

	_, err = f.teams.Update(ctx, "missing", TeamInput{Name: "Gamma"})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestTeamDeleteGuardCountsAllMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.pkg(t, "pkg1", "Starter")
	team := f.team(t, "Alpha")
	ann := f.agent(t, "Ann", "ann@example.com")
	bob := f.agent(t, "Bob", "bob@example.com")
	client := f.client(t, "Acme")

	_, err := f.templates.Create(ctx, TemplateInput{
		Name:      "SEO",
		PackageID: "pkg1",
		TeamMembers: []TeamMemberInput{
			{AgentID: ann.ID, Role: "writer", TeamID: &team.ID},
			{AgentID: bob.ID, Role: "editor", TeamID: &team.ID},
		},
	})
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&models.ClientTeamMember{
		ClientID: client.ID, AgentID: ann.ID, TeamID: &team.ID, Role: "lead",
	}).Error)

	got, err := f.teams.Get(ctx, team.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.MemberCount)

	err = f.teams.Delete(ctx, team.ID)
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindDependency))
	assert.Contains(t, err.Error(), "Cannot delete team with 3 members")
	assert.EqualValues(t, 1, count(t, f.db, &models.Team{}, "id = ?", team.ID))
}

func TestTeamDeleteEmptyTeam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	team := f.team(t, "Alpha")

	require.NoError(t, f.teams.Delete(ctx, team.ID))
	assert.Zero(t, count(t, f.db, &models.Team{}, "id = ?", team.ID))

	err := f.teams.Delete(ctx, team.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestAgentCreateRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	team := f.team(t, "Alpha")

	_, err := f.agents.Create(ctx, AgentInput{Name: "Ann", Email: "ann@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, "Team is required", err.Error())

	missing := "nope"
	_, err = f.agents.Create(ctx, AgentInput{Name: "Ann", Email: "ann@example.com", Password: "secret123", TeamID: &missing})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	agent, err := f.agents.Create(ctx, AgentInput{Name: "Ann", Email: "Ann@Example.com", Password: "secret123", TeamID: &team.ID})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", agent.Email)
	assert.True(t, utils.CheckPassword(agent.PasswordHash, "secret123"))

	_, err = f.agents.Create(ctx, AgentInput{Name: "Other", Email: "ann@example.com", Password: "secret123", TeamID: &team.ID})
	assert.True(t, utils.IsKind(err, utils.KindConflict))
	assert.Equal(t, utils.KindConflict.Status(), 400)
}

func TestAgentDeleteUnassignsTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	team := f.team(t, "Alpha")
	client := f.client(t, "Acme")
	agent, err := f.agents.Create(ctx, AgentInput{Name: "Ann", Email: "ann@example.com", Password: "secret123", TeamID: &team.ID})
	require.NoError(t, err)

	name := "Write post"
	task, err := f.tasks.Create(ctx, TaskInput{Name: &name, ClientID: &client.ID, AssignedTo: &agent.ID})
	require.NoError(t, err)

	require.NoError(t, f.agents.Delete(ctx, agent.ID))

	var reloaded models.Task
	require.NoError(t, f.db.First(&reloaded, "id = ?", task.ID).Error)
	assert.Nil(t, reloaded.AssignedTo)
	_, err = f.agents.Get(ctx, agent.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}
