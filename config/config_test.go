package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gtfsjson.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults when the file is absent", func(t *testing.T) {
		t.Setenv(FeedPathEnv, "")
		t.Setenv(ConnectionsEnv, "")
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"), false)
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("absent file is an error when required", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yml"), true)
		assert.Error(t, err)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		t.Setenv(FeedPathEnv, "")
		t.Setenv(ConnectionsEnv, "")
		path := writeFile(t, "feedPath: ferries\nconnections: false\n")
		cfg, err := Load(path, true)
		require.NoError(t, err)
		assert.Equal(t, Config{FeedPath: "ferries", Connections: false}, cfg)
	})

	t.Run("file keeps defaults it does not mention", func(t *testing.T) {
		t.Setenv(FeedPathEnv, "")
		t.Setenv(ConnectionsEnv, "")
		path := writeFile(t, "feedPath: ferries\n")
		cfg, err := Load(path, true)
		require.NoError(t, err)
		assert.True(t, cfg.Connections)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv(FeedPathEnv, "vta")
		t.Setenv(ConnectionsEnv, "true")
		path := writeFile(t, "feedPath: ferries\nconnections: false\n")
		cfg, err := Load(path, true)
		require.NoError(t, err)
		assert.Equal(t, Config{FeedPath: "vta", Connections: true}, cfg)
	})

	t.Run("invalid boolean in environment", func(t *testing.T) {
		t.Setenv(ConnectionsEnv, "sometimes")
		_, err := Load(filepath.Join(t.TempDir(), "missing.yml"), false)
		assert.ErrorContains(t, err, ConnectionsEnv)
	})

	t.Run("empty feed path loads but fails validation", func(t *testing.T) {
		t.Setenv(FeedPathEnv, "")
		t.Setenv(ConnectionsEnv, "")
		path := writeFile(t, "feedPath: \"\"\n")
		cfg, err := Load(path, true)
		require.NoError(t, err)
		assert.Equal(t, "", cfg.FeedPath)
		assert.ErrorContains(t, cfg.Validate(), "invalid configuration")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, "feedPath: [\n")
		_, err := Load(path, true)
		assert.Error(t, err)
	})
}
