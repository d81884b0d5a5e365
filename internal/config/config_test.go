package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LocalBoard/internal/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":9000"
advertise = false

[client]
name = "alice"
url = "localboard://10.0.0.2:9000"
discover_wait = "500ms"

[storage]
backend = "redis"

[storage.redis]
addr = "cache:6379"
db = 2

[canvas]
width = 640
height = 480
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.False(t, cfg.Server.Advertise)
	assert.Equal(t, Default().Server.CommandRate, cfg.Server.CommandRate, "unset keys keep defaults")
	assert.Equal(t, "alice", cfg.Client.Name)
	assert.Equal(t, 500*time.Millisecond, cfg.Client.DiscoverWait.Duration)
	assert.Equal(t, Canvas{Width: 640, Height: 480}, cfg.Canvas)

	opts := cfg.StoreOptions()
	assert.Equal(t, store.BackendRedis, opts.Backend)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, store.DefaultRedisPrefix, opts.Prefix)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `[server`},
		{"unknown key", "[server]\nport = 1\n"},
		{"backend", "[storage]\nbackend = \"s3\"\n"},
		{"canvas", "[canvas]\nwidth = 0\n"},
		{"rate", "[server]\ncommand_rate = -1.0\n"},
		{"duration", "[client]\ndiscover_wait = \"soon\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestEncodeRoundTrips(t *testing.T) {
	cfg := Default()
	cfg.Client.Name = "bob"
	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))
	assert.Contains(t, buf.String(), `discover_wait = "2s"`)

	loaded, err := Load(writeConfig(t, buf.String()))
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDataDirHonoursXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_CONFIG_HOME", "/conf")
	assert.Equal(t, filepath.Join("/data", "localboard"), DataDir())
	assert.Equal(t, filepath.Join("/conf", "localboard", "config.toml"), DefaultPath())
}
