package services

import (
	"context"
	"testing"
	"time"

	"agencyops/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityHubFanOut(t *testing.T) {
	hub := NewActivityHub()
	a, releaseA := hub.Subscribe()
	b, releaseB := hub.Subscribe()
	defer releaseB()

	hub.Publish(models.ActivityLog{Description: "first"})
	assert.Equal(t, "first", (<-a).Description)
	assert.Equal(t, "first", (<-b).Description)

	releaseA()
	releaseA()
	_, open := <-a
	assert.False(t, open)

	hub.Publish(models.ActivityLog{Description: "second"})
	assert.Equal(t, "second", (<-b).Description)
}

func TestActivityRecordPublishesAndLists(t *testing.T) {
	f := newFixture(t)
	feed, release := f.activity.Hub().Subscribe()
	defer release()

	ctx := WithActor(context.Background(), "user-1")
	team, err := f.teams.Create(ctx, TeamInput{Name: "Growth"})
	require.NoError(t, err)

	select {
	case entry := <-feed:
		assert.Equal(t, models.ActionCreate, entry.Action)
		assert.Equal(t, team.ID, entry.EntityID)
		require.NotNil(t, entry.UserID)
		assert.Equal(t, "user-1", *entry.UserID)
	case <-time.After(time.Second):
		t.Fatal("no activity published")
	}

	_, err = f.teams.Create(context.Background(), TeamInput{Name: "Support"})
	require.NoError(t, err)

	entries, err := f.activity.List(context.Background(), ActivityFilter{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ActionLabel)

	entries, err = f.activity.List(context.Background(), ActivityFilter{EntityType: "team", Search: "SUPPORT"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].UserID)
}
