package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Flags("test"), nil)
	require.NoError(t, err)

	assert.True(t, cfg.Development())
	assert.True(t, cfg.MemoryStore())
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "CG", cfg.Labels.Prefix)
	assert.Equal(t, 5000, cfg.Labels.MaxCode)
	assert.Equal(t, 100, cfg.Labels.MaxBatch)
	assert.Equal(t, 12*time.Hour, cfg.JWT.TTL)
	assert.True(t, cfg.Idempotency.Enabled)
}

func TestLoad_Precedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "linksoc.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
http:
  addr: ":9000"
log:
  level: warn
labels:
  max_code: 300
`), 0o600))

	t.Setenv("LINKSOC_LOG_LEVEL", "debug")
	t.Setenv("LINKSOC_DATABASE_URL", "postgres://env")

	cfg, err := Load(Flags("test"), []string{"--config", file, "--database-url", "postgres://flag"})
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 300, cfg.Labels.MaxCode)
	assert.Equal(t, "postgres://flag", cfg.Database.URL)
	assert.False(t, cfg.MemoryStore())
}

func TestLoad_RequiresSecretInProduction(t *testing.T) {
	t.Setenv("LINKSOC_APP_ENV", "production")

	_, err := Load(Flags("test"), nil)
	require.Error(t, err)

	t.Setenv("LINKSOC_JWT_SECRET", "s3cret")
	cfg, err := Load(Flags("test"), nil)
	require.NoError(t, err)
	assert.False(t, cfg.Development())
}

func TestLoad_RejectsBadFlag(t *testing.T) {
	_, err := Load(Flags("test"), []string{"--nope"})
	require.Error(t, err)
}
