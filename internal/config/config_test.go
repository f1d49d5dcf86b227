package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, 16, cfg.Buffer.PoolSize)
	require.Equal(t, 2, cfg.Buffer.K)
	require.Equal(t, "main", cfg.Storage.Base)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	yaml := "buffer:\n  pool_size: 64\nstorage:\n  dir: /tmp/bptreekv\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 64, cfg.Buffer.PoolSize)
	require.Equal(t, 2, cfg.Buffer.K) // untouched by the file, keeps the default
	require.Equal(t, "/tmp/bptreekv", cfg.Storage.Dir)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
