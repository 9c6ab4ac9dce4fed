package models_test

import (
	"context"
	"testing"

	"github.com/ValgulNecron/kasuki/internal/database/dbtest"
	"github.com/ValgulNecron/kasuki/internal/database/types"
	"github.com/ValgulNecron/kasuki/internal/database/types/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingModel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	setting := dbtest.NewClient(t).Model().Setting()

	settings, err := setting.GetGuildSettings(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, types.DefaultLanguage, settings.Language)
	assert.True(t, settings.IsEnabled(enum.ModuleAI))

	settings.Language = "ja"
	settings.ActivityWebhook = "https://discord.com/api/webhooks/1/abc"
	settings.SetEnabled(enum.ModuleAI, false)
	require.NoError(t, setting.SaveGuildSettings(ctx, settings))

	settings, err = setting.GetGuildSettings(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "ja", settings.Language)
	assert.Equal(t, "https://discord.com/api/webhooks/1/abc", settings.ActivityWebhook)
	assert.False(t, settings.IsEnabled(enum.ModuleAI))
	assert.True(t, settings.IsEnabled(enum.ModuleWaifu))
	assert.True(t, settings.IsEnabled(enum.ModuleNone))

	require.NoError(t, setting.SaveGuildSettings(ctx, types.NewGuildSetting("7")))

	all, err := setting.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "42", all[0].GuildID)
	assert.Equal(t, "7", all[1].GuildID)
}

func TestSetActivityWebhook(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := dbtest.NewClient(t).Model()

	for _, r := range []*types.ActivityRecord{
		{SubjectID: "1", OwnerID: "g1", FireAt: 10, NotifyTarget: "https://hook/old"},
		{SubjectID: "2", OwnerID: "g1", FireAt: 20, NotifyTarget: "https://hook/old"},
		{SubjectID: "1", OwnerID: "g2", FireAt: 10, NotifyTarget: "https://hook/other"},
	} {
		require.NoError(t, repo.Activity().Upsert(ctx, r))
	}

	settings := types.NewGuildSetting("g1")
	settings.Language = "fr"
	require.NoError(t, repo.Setting().SaveGuildSettings(ctx, settings))

	retargeted, err := repo.Setting().SetActivityWebhook(ctx, "g1", "https://hook/new")
	require.NoError(t, err)
	assert.Equal(t, int64(2), retargeted)

	settings, err = repo.Setting().GetGuildSettings(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "https://hook/new", settings.ActivityWebhook)
	assert.Equal(t, "fr", settings.Language)

	for _, subjectID := range []string{"1", "2"} {
		record, err := repo.Activity().Get(ctx, subjectID, "g1")
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, "https://hook/new", record.NotifyTarget)
	}

	other, err := repo.Activity().Get(ctx, "1", "g2")
	require.NoError(t, err)
	require.NotNil(t, other)
	assert.Equal(t, "https://hook/other", other.NotifyTarget)

	// Guilds without a stored row get the defaults plus the webhook
	retargeted, err = repo.Setting().SetActivityWebhook(ctx, "g3", "https://hook/g3")
	require.NoError(t, err)
	assert.Zero(t, retargeted)

	settings, err = repo.Setting().GetGuildSettings(ctx, "g3")
	require.NoError(t, err)
	assert.Equal(t, "https://hook/g3", settings.ActivityWebhook)
	assert.Equal(t, types.DefaultLanguage, settings.Language)
}
