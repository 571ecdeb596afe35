package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, o := range envOverrides {
		t.Setenv(o.key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
socket_url: wss://woogles.io/ws
api_url: https://woogles.io/api
game_id: wFQ9dVbX
read_timeout: 30s
`), 0o600))
	t.Setenv("WOOGLES_GAME_ID", "xyz")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "wss://woogles.io/ws", cfg.SocketURL)
	assert.Equal(t, "https://woogles.io/api", cfg.APIURL)
	assert.Equal(t, "xyz", cfg.GameID)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("WOOGLES_API_URL", "not a url")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
