package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaults(t *testing.T) {
	c, err := Defaults()
	require.NoError(t, err)

	assert.Equal(t, "5050", c.Server.Port)
	assert.Equal(t, []string{"*"}, c.Server.CORSOrigins)
	assert.Equal(t, uint(20), c.Server.RateLimit.PerMinute)
	assert.Equal(t, "sqlite", c.Database.Driver)
	assert.Equal(t, "config/attacks.yaml", c.Catalog.Path)
	assert.Equal(t, time.Duration(0), c.Sessions.Retention)
	assert.Equal(t, time.Hour, c.Sessions.JanitorInterval)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DARKOPS_SERVER_PORT", "9090")
	t.Setenv("DARKOPS_DATABASE_DRIVER", "postgres")
	t.Setenv("DARKOPS_SESSIONS_RETENTION", "48h")

	c, err := Defaults()
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Server.Port)
	assert.Equal(t, "postgres", c.Database.Driver)
	assert.Equal(t, 48*time.Hour, c.Sessions.Retention)
}

func TestInitReadsFileAndDotenv(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "config", "config.yaml"), []byte(`
server:
  port: "7000"
catalog:
  path: /srv/attacks.yaml
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("DARKOPS_LOGGING_DIRECTORY=/var/log/darkops\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("DARKOPS_LOGGING_DIRECTORY") })

	require.NoError(t, Init(root, zap.NewNop()))
	assert.Equal(t, "7000", Conf.Server.Port)
	assert.Equal(t, "/srv/attacks.yaml", Conf.Catalog.Path)
	assert.Equal(t, "/var/log/darkops", Conf.Logging.Directory)
}

func TestInitWithoutFile(t *testing.T) {
	require.NoError(t, Init(t.TempDir(), zap.NewNop()))
	assert.Equal(t, "5050", Conf.Server.Port)
}
