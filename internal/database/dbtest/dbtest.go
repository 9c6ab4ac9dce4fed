// Package dbtest opens migrated throwaway databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ValgulNecron/kasuki/internal/database"
	"github.com/ValgulNecron/kasuki/internal/setup/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// NewClient returns a client backed by a fresh SQLite file in a temp directory.
func NewClient(t *testing.T) database.Client {
	t.Helper()

	client, err := database.NewConnection(context.Background(), &config.SQLite{
		Path:         filepath.Join(t.TempDir(), "kasuki.db"),
		MaxOpenConns: 4,
		BusyTimeout:  5000,
	}, zap.NewNop(), true)
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	return client
}
