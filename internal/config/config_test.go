package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, ".lineage", cfg.Store.DataDir)
	assert.Equal(t, []string{"defaults"}, cfg.LoadedFrom)
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadYAMLThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lineage.yaml")
	content := `
environment: production
log_level: warn
store:
  backend: badger
  data_dir: /var/lib/lineage
server:
  addr: ":9090"
  shutdown_timeout: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("LINEAGE_DATA_DIR", "/tmp/override")
	t.Setenv("LINEAGE_CORS", "https://a.example, https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "badger", cfg.Store.Backend)
	assert.Equal(t, "/tmp/override", cfg.Store.DataDir)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, []string{"defaults", path, "environment"}, cfg.LoadedFrom)
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "backend", mutate: func(c *Config) { c.Store.Backend = "postgres" }, errMsg: "store backend"},
		{name: "log level", mutate: func(c *Config) { c.LogLevel = "loud" }, errMsg: "log level"},
		{name: "environment", mutate: func(c *Config) { c.Environment = "staging" }, errMsg: "environment"},
		{name: "data dir", mutate: func(c *Config) { c.Store.DataDir = " " }, errMsg: "data_dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMemoryBackendNeedsNoDataDir(t *testing.T) {
	cfg := Default()
	cfg.Store.Backend = "memory"
	cfg.Store.DataDir = ""
	assert.NoError(t, cfg.Validate())
}

func TestEnvDurationAcceptsSeconds(t *testing.T) {
	t.Setenv("LINEAGE_SHUTDOWN_TIMEOUT", "7")
	assert.Equal(t, 7*time.Second, getEnvDuration("LINEAGE_SHUTDOWN_TIMEOUT", time.Second))
}
