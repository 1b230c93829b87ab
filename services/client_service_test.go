package services

import (
	"context"
	"testing"

	"agencyops/models"
	"agencyops/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tmpl, client, agent := seedAssignable(t, f)
	other := f.client(t, "Globex")

	_, err := f.assignments.Create(ctx, AssignmentInput{TemplateID: tmpl.ID, ClientID: client.ID})
	require.NoError(t, err)
	_, err = f.assignments.Create(ctx, AssignmentInput{TemplateID: tmpl.ID, ClientID: other.ID})
	require.NoError(t, err)
	require.EqualValues(t, 2, count(t, f.db, &models.Task{}, "client_id = ?", client.ID))
	require.EqualValues(t, 1, count(t, f.db, &models.ClientTeamMember{}, "client_id = ?", client.ID))

	require.NoError(t, f.clients.Delete(ctx, client.ID))

	assert.Zero(t, count(t, f.db, &models.Client{}, "id = ?", client.ID))
	assert.Zero(t, count(t, f.db, &models.Task{}, "client_id = ?", client.ID))
	assert.Zero(t, count(t, f.db, &models.Assignment{}, "client_id = ?", client.ID))
	assert.Zero(t, count(t, f.db, &models.ClientTeamMember{}, "client_id = ?", client.ID))

	assert.EqualValues(t, 2, count(t, f.db, &models.Task{}, "client_id = ?", other.ID))
	assert.EqualValues(t, 1, count(t, f.db, &models.Assignment{}, "client_id = ?", other.ID))
	assert.EqualValues(t, 1, count(t, f.db, &models.ClientTeamMember{}, "client_id = ? AND agent_id = ?", other.ID, agent.ID))
	assert.EqualValues(t, 1, count(t, f.db, &models.Template{}, "id = ?", tmpl.ID))

	err = f.clients.Delete(ctx, client.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}
