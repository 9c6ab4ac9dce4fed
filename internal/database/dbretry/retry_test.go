package dbretry

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryableError(t *testing.T) {
	t.Parallel()

	assert.False(t, IsRetryableError(nil))
	assert.False(t, IsRetryableError(sql.ErrNoRows))
	assert.False(t, IsRetryableError(context.Canceled))
	assert.True(t, IsRetryableError(errors.New("database is locked (5) (SQLITE_BUSY)")))
	assert.True(t, IsRetryableError(errors.New("database table is locked")))
}

func TestOperationRetriesBusy(t *testing.T) {
	t.Parallel()

	calls := 0
	result, err := Operation(context.Background(), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("database is locked")
		}

		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
}

func TestOperationStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	calls := 0
	err := NoResult(context.Background(), func(context.Context) error {
		calls++
		return sql.ErrNoRows
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.Equal(t, 1, calls)
}
