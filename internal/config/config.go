// Package config loads the engine's tunables — buffer pool capacity,
// the LRU-K lookback window, and storage location — from a YAML file via
// viper, the way the rest of this codebase loads configuration.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// EngineConfig holds every tunable needed to stand up a Pool and open a
// Tree against it.
type EngineConfig struct {
	Buffer struct {
		PoolSize int `mapstructure:"pool_size"`
		K        int `mapstructure:"k"`
	} `mapstructure:"buffer"`
	Storage struct {
		Dir  string `mapstructure:"dir"`
		Base string `mapstructure:"base"`
	} `mapstructure:"storage"`
}

// Default returns the configuration used when no file is supplied: a
// 16-frame pool, K=2, data under ./data.
func Default() *EngineConfig {
	cfg := &EngineConfig{}
	cfg.Buffer.PoolSize = 16
	cfg.Buffer.K = 2
	cfg.Storage.Dir = "./data"
	cfg.Storage.Base = "main"
	return cfg
}

// Load reads path as YAML and unmarshals it into an EngineConfig seeded
// with Default's values, so a config file only needs to set what it wants
// to override.
func Load(path string) (*EngineConfig, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return cfg, nil
}
