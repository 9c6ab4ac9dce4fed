package events_test

import (
	"context"
	"testing"

	"github.com/ValgulNecron/kasuki/internal/bot/events"
	"github.com/ValgulNecron/kasuki/internal/database/dbtest"
	"github.com/ValgulNecron/kasuki/internal/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGuildJoinKeepsExistingSettings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := dbtest.NewClient(t).Model()
	h := events.NewGuildEventHandler(repo.Setting(), repo.Activity(), zap.NewNop())

	require.NoError(t, h.GuildJoined(ctx, "1"))

	settings, err := repo.Setting().GetGuildSettings(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, types.DefaultLanguage, settings.Language)
	assert.True(t, settings.AniList)

	settings.Language = "fr"
	settings.AI = false
	require.NoError(t, repo.Setting().SaveGuildSettings(ctx, settings))

	require.NoError(t, h.GuildJoined(ctx, "1"))

	settings, err = repo.Setting().GetGuildSettings(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "fr", settings.Language)
	assert.False(t, settings.AI)
}

func TestGuildLeaveRemovesActivities(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := dbtest.NewClient(t).Model()
	h := events.NewGuildEventHandler(repo.Setting(), repo.Activity(), zap.NewNop())

	for _, r := range []*types.ActivityRecord{
		{SubjectID: "1", OwnerID: "left", FireAt: 10, NotifyTarget: "https://hook/a"},
		{SubjectID: "2", OwnerID: "left", FireAt: 20, NotifyTarget: "https://hook/a"},
		{SubjectID: "1", OwnerID: "stays", FireAt: 10, NotifyTarget: "https://hook/b"},
	} {
		require.NoError(t, repo.Activity().Upsert(ctx, r))
	}

	require.NoError(t, h.GuildLeft(ctx, "left"))

	all, err := repo.Activity().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "stays", all[0].OwnerID)
}
