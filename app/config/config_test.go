package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "app_name: postview\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postview", cfg.AppName)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, "sid", cfg.Server.SessionCookie)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, time.Duration(0), cfg.GraphQL.Timeout)
	assert.False(t, cfg.GraphQL.OptimisticComments)
	assert.Equal(t, uint32(3), cfg.GraphQL.Breaker.MinRequests)
	assert.Equal(t, 0.6, cfg.GraphQL.Breaker.FailureRatio)
	assert.Equal(t, int64(1e5), cfg.Cache.MaxCost)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "data/badger", cfg.Store.Path)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "text", cfg.Logger.Format)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
server:
  host: 0.0.0.0
  port: 9090
  secure_cookie: true
graphql:
  endpoint: http://backend:4000/graphql
  timeout: 2s
  optimistic_comments: true
  breaker:
    failure_ratio: 0.5
store:
  in_memory: true
rate_limit:
  rps: 0.5
logger:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.True(t, cfg.Server.SecureCookie)
	assert.Equal(t, "http://backend:4000/graphql", cfg.GraphQL.Endpoint)
	assert.Equal(t, 2*time.Second, cfg.GraphQL.Timeout)
	assert.True(t, cfg.GraphQL.OptimisticComments)
	assert.Equal(t, 0.5, cfg.GraphQL.Breaker.FailureRatio)
	assert.Equal(t, uint32(100), cfg.GraphQL.Breaker.MaxRequests)
	assert.True(t, cfg.Store.InMemory)
	assert.Equal(t, 0.5, cfg.RateLimit.RPS)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "server:\n  port: 9090\n")
	t.Setenv("POSTVIEW_SERVER_PORT", "7070")
	t.Setenv("POSTVIEW_GRAPHQL_ENDPOINT", "http://env/graphql")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "http://env/graphql", cfg.GraphQL.Endpoint)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "server: [unclosed\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoaderWatch(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "logger:\n  level: info\n")

	loader := NewLoader(path)
	cfg, err := loader.Load()
	require.NoError(t, err)
	require.Equal(t, "info", cfg.Logger.Level)

	var mu sync.Mutex
	var level string
	loader.Watch(func(c *Config) {
		mu.Lock()
		defer mu.Unlock()
		level = c.Logger.Level
	}, nil)

	writeConfig(t, dir, "logger:\n  level: debug\n")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return level == "debug"
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, "debug", loader.Current().Logger.Level)
}
