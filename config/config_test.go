package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		vip := viper.New()
		require.NoError(t, LoadConfig("", vip))
		require.Empty(t, vip.AllKeys())
	})
	t.Run("missing file", func(t *testing.T) {
		err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"), viper.New())
		require.ErrorContains(t, err, "can't load config")
	})
	t.Run("json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"preset": "fastnet", "store": {"expire-interval": "5s"}}`), 0o600))
		vip := viper.New()
		require.NoError(t, LoadConfig(path, vip))
		require.Equal(t, "fastnet", vip.GetString("preset"))
		require.Equal(t, "5s", vip.GetString("store.expire-interval"))
	})
}

func TestDataDir(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.DataDirParent = "~/bulletin"
	require.Equal(t, filepath.Join(home, "bulletin"), cfg.DataDir())

	dir := t.TempDir()
	cfg.DataDirParent = dir
	require.Equal(t, dir, cfg.DataDir())
}
