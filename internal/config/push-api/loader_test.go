package push_api_config

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

	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 300, cfg.WebPush.TTL)
	assert.Equal(t, 16, cfg.Dispatch.MaxInFlight)
	assert.Equal(t, 10*time.Second, cfg.Dispatch.SendTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.OTEL.Enable)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "push-api.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  http_addr: ":9090"
webpush:
  ttl: 60
dispatch:
  max_in_flight: 4
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.HTTPAddr)
	assert.Equal(t, 60, cfg.WebPush.TTL)
	assert.Equal(t, 4, cfg.Dispatch.MaxInFlight)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("WEBPUSH_PRIVATE_KEY", "secret-key")
	t.Setenv("DB_DSN", "postgres://u:p@db:5432/levigram")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "secret-key", cfg.WebPush.PrivateKey)
	assert.Equal(t, "postgres://u:p@db:5432/levigram", cfg.DB.DSN)
}
