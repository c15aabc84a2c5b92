package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goopey7/brig/internal/config"
)

func writeConfig(t *testing.T, dir string, cfg config.Config) string {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	b, err := json.MarshalIndent(cfg, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

func sampleConfig() config.Config {
	return config.Config{
		Servers: []config.Server{
			{Name: "A", User: "root", Address: "10.0.0.1", Pool: "tank"},
			{Name: "B", User: "root", Address: "10.0.0.2", Pool: "tank"},
		},
		Datasets: []config.Dataset{
			{Name: "x", Owner: "ops", Server: "A", SnapshotLifetime: "7d"},
		},
	}
}

func TestLoadValid(t *testing.T) {
	path := writeConfig(t, t.TempDir(), sampleConfig())

	store, err := config.Load(path)
	require.NoError(t, err)

	ds, ok := store.FindDataset("x")
	require.True(t, ok)
	assert.Equal(t, "A", ds.Server)
}

func TestLoadRejectsUnknownServer(t *testing.T) {
	cfg := sampleConfig()
	cfg.Datasets[0].Server = "ghost"
	path := writeConfig(t, t.TempDir(), cfg)

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadLifetime(t *testing.T) {
	cfg := sampleConfig()
	cfg.Datasets[0].SnapshotLifetime = "7x"
	path := writeConfig(t, t.TempDir(), cfg)

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestMutateAndPersistRoundTrips(t *testing.T) {
	path := writeConfig(t, t.TempDir(), sampleConfig())
	store, err := config.Load(path)
	require.NoError(t, err)

	require.NoError(t, store.Mutate(func(c *config.Config) error {
		for i := range c.Datasets {
			if c.Datasets[i].Name == "x" {
				c.Datasets[i].Server = "B"
			}
		}
		return nil
	}))
	require.NoError(t, store.Persist())

	reloaded, err := config.Load(path)
	require.NoError(t, err)
	ds, ok := reloaded.FindDataset("x")
	require.True(t, ok)
	assert.Equal(t, "B", ds.Server)
}

func TestDatasetNames(t *testing.T) {
	path := writeConfig(t, t.TempDir(), sampleConfig())
	store, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, store.DatasetNames())
}
