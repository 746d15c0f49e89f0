package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultConfigWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, resolved, err := Load(nil, path)
	require.NoError(t, err)
	require.Equal(t, path, resolved)
	require.Equal(t, Default(), cfg)

	_, statErr := os.Stat(path)
	require.NoError(t, statErr, "default config should be written")
}

func TestLoadReadsFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "tcp_addr: \":9000\"\nwrite_timeout: 2s\nsend_queue_size: 16\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, _, err := Load(nil, path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.TCPAddr)
	require.Equal(t, 2*time.Second, cfg.WriteTimeout)
	require.Equal(t, 16, cfg.SendQueueSize)
	require.Equal(t, Default().HTTPAddr, cfg.HTTPAddr)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_addr: \":9001\"\n"), 0o600))
	t.Setenv("LINECHAT_HTTP_ADDR", ":9002")

	cfg, _, err := Load(nil, path)
	require.NoError(t, err)
	require.Equal(t, ":9002", cfg.HTTPAddr)
}

func TestUpdateFromKeepsZeroValues(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{TCPAddr: ":1", MessageRateLimit: 30})

	require.Equal(t, ":1", cfg.TCPAddr)
	require.Equal(t, 30, cfg.MessageRateLimit)
	require.Equal(t, Default().HTTPAddr, cfg.HTTPAddr)
	require.Equal(t, Default().SendQueueSize, cfg.SendQueueSize)
}
