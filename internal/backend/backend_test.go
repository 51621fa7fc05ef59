package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"expensetracker/internal/config"
	"expensetracker/internal/core"
)

func TestFactoryCreatesLocalOnly(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).Create(ctx, Config{Local: MemoryLocal})
	require.NoError(t, err)
	t.Cleanup(func() { res.Cleanup() })

	require.False(t, res.Dispatcher.CloudEnabled())

	adapter, err := res.Dispatcher.For(core.ModeLocal)
	require.NoError(t, err)
	require.Equal(t, res.Local, adapter)
	seeded, err := adapter.EnsureSeed(ctx, "")
	require.NoError(t, err)
	require.True(t, seeded)

	_, err = res.Dispatcher.For(core.ModeCloud)
	require.ErrorIs(t, err, core.ErrCloudUnavailable)

	_, err = res.Dispatcher.For(core.Mode("sideways"))
	require.ErrorIs(t, err, core.ErrInvalidMode)
}

func TestFactoryCreatesSQLite(t *testing.T) {
	res, err := NewFactory(nil).Create(context.Background(), Config{
		Local:       SQLiteLocal,
		LocalDBPath: filepath.Join(t.TempDir(), "local.db"),
	})
	require.NoError(t, err)
	require.NoError(t, res.Cleanup())
}

func TestConfigValidate(t *testing.T) {
	require.Error(t, Config{Local: "redis"}.Validate())
	require.Error(t, Config{Local: SQLiteLocal}.Validate())
	require.NoError(t, Config{Local: MemoryLocal}.Validate())
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{LocalBackend: "memory", CloudDatabaseURL: "postgres://x", CloudMigrate: true})
	require.NoError(t, err)
	require.Equal(t, MemoryLocal, cfg.Local)
	require.Equal(t, "postgres://x", cfg.CloudDatabaseURL)
	require.True(t, cfg.CloudMigrate)

	_, err = FromAppConfig(&config.Config{LocalBackend: "sheets"})
	require.Error(t, err)
}
