package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 10, cfg.RateLimit.Quota)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "data/cache", cfg.Cache.Path)
	assert.Equal(t, "text-embedding-3-small", cfg.Embeddings.Model)
	assert.Equal(t, "chromem", cfg.VectorIndex.Backend)
	assert.Equal(t, "emojis", cfg.VectorIndex.Chromem.Collection)
	assert.Equal(t, 100, cfg.Search.TopK)
	assert.Equal(t, 10, cfg.Search.MinResultsToCache)
	assert.Equal(t, 7*24*time.Hour, cfg.Search.SearchCacheTTL)
	assert.Equal(t, "gpt-4o-mini", cfg.Rerank.Model)
	assert.Equal(t, 10*time.Second, cfg.Rerank.Timeout)
	assert.InDelta(t, 0.1, cfg.Rerank.Temperature, 1e-9)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9999
logging:
  level: debug
  format: console
ratelimit:
  quota: 30
  window: 2m
rerank:
  model: llama3
  base_url: http://localhost:11434/v1
search:
  top_k: 50
vectorindex:
  backend: qdrant
  qdrant:
    host: qdrant.internal
    port: 6334
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 30, cfg.RateLimit.Quota)
	assert.Equal(t, 2*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "llama3", cfg.Rerank.Model)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Rerank.BaseURL)
	assert.Equal(t, 50, cfg.Search.TopK)
	assert.Equal(t, "qdrant", cfg.VectorIndex.Backend)
	assert.Equal(t, "qdrant.internal", cfg.VectorIndex.Qdrant.Host)

	// Untouched sections keep their defaults.
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "text-embedding-3-small", cfg.Embeddings.Model)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9999\n"), 0o600))

	t.Setenv("EMOJID_SERVER__PORT", "7777")
	t.Setenv("EMOJID_SEARCH__MIN_RESULTS_TO_CACHE", "5")
	t.Setenv("EMOJID_VECTORINDEX__QDRANT__HOST", "env-host")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Search.MinResultsToCache)
	assert.Equal(t, "env-host", cfg.VectorIndex.Qdrant.Host)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open config file")
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad port", "server:\n  port: 70000\n", "invalid server port"},
		{"bad log level", "logging:\n  level: shout\n", "logging"},
		{"zero quota", "ratelimit:\n  quota: -1\n", "ratelimit"},
		{"negative ttl", "search:\n  search_cache_ttl: -1h\n", "search"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
