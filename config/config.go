// Package config contains go-bulletin node configuration definitions
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/tradenet/go-bulletin/datasync"
	"github.com/tradenet/go-bulletin/p2p"
	"github.com/tradenet/go-bulletin/persist"
	"github.com/tradenet/go-bulletin/store"
)

const (
	defaultDataDirName = "go-bulletin"
	lockFileName       = "LOCK"
)

// Config defines the top level configuration for a bulletin board node.
type Config struct {
	BaseConfig `mapstructure:"main"`
	Preset     string          `mapstructure:"preset"`
	P2P        p2p.Config      `mapstructure:"p2p"`
	Store      store.Config    `mapstructure:"store"`
	DataSync   datasync.Config `mapstructure:"datasync"`
	Persist    persist.Config  `mapstructure:"persist"`
	LOGGING    LoggerConfig    `mapstructure:"logging"`
}

// DataDir returns the absolute path to use for the node's data.
func (cfg *Config) DataDir() string {
	return canonicalPath(cfg.DataDirParent)
}

// BaseConfig defines the default configuration options for the node.
type BaseConfig struct {
	DataDirParent string `mapstructure:"data-folder"`
	FileLock      string `mapstructure:"filelock"`

	// NetworkID prefixes every signed message, entries signed for another network are rejected.
	NetworkID string `mapstructure:"network-id"`

	CollectMetrics bool `mapstructure:"metrics"`
	MetricsPort    int  `mapstructure:"metrics-port"`
}

// DefaultConfig returns the default configuration for a node.
func DefaultConfig() Config {
	return Config{
		BaseConfig: defaultBaseConfig(),
		P2P:        p2p.DefaultConfig(),
		Store:      store.DefaultConfig(),
		DataSync:   datasync.DefaultConfig(),
		Persist:    persist.DefaultConfig(),
		LOGGING:    DefaultLoggingConfig(),
	}
}

func defaultBaseConfig() BaseConfig {
	dataDir := filepath.Join(homeDir(), defaultDataDirName)
	return BaseConfig{
		DataDirParent: dataDir,
		FileLock:      filepath.Join(os.TempDir(), defaultDataDirName, lockFileName),
		NetworkID:     "bulletin-mainnet",
		MetricsPort:   1010,
	}
}

// LoadConfig load the config file.
func LoadConfig(path string, vip *viper.Viper) error {
	if path == "" {
		return nil
	}
	vip.SetConfigFile(path)
	if err := vip.ReadInConfig(); err != nil {
		return fmt.Errorf("can't load config at %s: %w", path, err)
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func canonicalPath(path string) string {
	if path == "~" {
		path = homeDir()
	} else if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir(), path[2:])
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
