package models_test

import (
	"context"
	"testing"

	"github.com/ValgulNecron/kasuki/internal/database/dbtest"
	"github.com/ValgulNecron/kasuki/internal/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityModel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	activity := dbtest.NewClient(t).Model().Activity()

	records := []*types.ActivityRecord{
		{SubjectID: "100", OwnerID: "g1", FireAt: 1000, NotifyTarget: "https://hook/1", Episode: "1", DisplayName: "Show"},
		{SubjectID: "200", OwnerID: "g1", FireAt: 900, NotifyTarget: "https://hook/1", DelaySeconds: 30},
		{SubjectID: "100", OwnerID: "g2", FireAt: 1000, NotifyTarget: "https://hook/2"},
	}
	for _, r := range records {
		require.NoError(t, activity.Upsert(ctx, r))
	}

	due, err := activity.Due(ctx, 1000)
	require.NoError(t, err)
	assert.Len(t, due, 2)

	due, err = activity.Due(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, due)

	owned, err := activity.ListByOwner(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, "200", owned[0].SubjectID)

	updated := *records[0]
	updated.FireAt = 2000
	updated.Episode = "2"
	require.NoError(t, activity.Upsert(ctx, &updated))

	got, err := activity.Get(ctx, "100", "g1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(2000), got.FireAt)
	assert.Equal(t, "2", got.Episode)
	assert.Equal(t, "https://hook/1", got.NotifyTarget)

	deleted, err := activity.Delete(ctx, "100", "g1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = activity.Delete(ctx, "100", "g1")
	require.NoError(t, err)
	assert.False(t, deleted)

	got, err = activity.Get(ctx, "100", "g1")
	require.NoError(t, err)
	assert.Nil(t, got)

	all, err := activity.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	removed, err := activity.DeleteByOwner(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	all, err = activity.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "g2", all[0].OwnerID)
}
