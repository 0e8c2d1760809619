package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, Load(cfg))

	assert.Equal(t, "data", cfg.DataRoot)
	assert.Equal(t, "csv", cfg.DataSource)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "backtests", cfg.OutputDir)
	assert.Equal(t, "localhost", cfg.QuestDB.Host)
	assert.Equal(t, 8812, cfg.QuestDB.Port)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATA_ROOT", "/srv/market")
	t.Setenv("DATA_SOURCE", "questdb")
	t.Setenv("QUESTDB_HOST", "db.internal")

	cfg := &Config{}
	require.NoError(t, Load(cfg))

	assert.Equal(t, "/srv/market", cfg.DataRoot)
	assert.Equal(t, "questdb", cfg.DataSource)
	assert.Equal(t, "db.internal", cfg.QuestDB.Host)
}

func TestLoadLimits(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "limits.yaml")
		require.NoError(t, os.WriteFile(path, []byte("AMETHYSTS: 20\nSTARFRUIT: 0\n"), 0o644))

		limits, err := LoadLimits(path)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"AMETHYSTS": 20, "STARFRUIT": 0}, limits)
	})

	t.Run("negative limit is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "limits.yaml")
		require.NoError(t, os.WriteFile(path, []byte("AMETHYSTS: -1\n"), 0o644))

		_, err := LoadLimits(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AMETHYSTS")
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadLimits(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "limits.yaml")
		require.NoError(t, os.WriteFile(path, []byte("not yaml: [\n"), 0o644))

		_, err := LoadLimits(path)
		assert.Error(t, err)
	})
}
