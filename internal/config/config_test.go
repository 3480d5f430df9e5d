package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"user_id": "user-1",
		"database_url": "postgres://localhost/talentflow",
		"max_retries": 5
	}`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "user-1", cfg.UserID)
	assert.Equal(t, "postgres://localhost/talentflow", cfg.DatabaseURL)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Empty(t, cfg.APIKey)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{MaxRetries: -1}
	assert.Error(t, cfg.Validate())

	cfg = &Config{MaxFileBytes: -1}
	assert.Error(t, cfg.Validate())

	cfg = &Config{MaxRetries: 3, MaxFileBytes: 1 << 20}
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{UserID: "explicit"}
	merged := cfg.MergeWithDefaults(Config{
		UserID:     "default-user",
		APIKey:     "default-key",
		MaxRetries: 3,
	})

	assert.Equal(t, "explicit", merged.UserID)
	assert.Equal(t, "default-key", merged.APIKey)
	assert.Equal(t, 3, merged.MaxRetries)
}
