package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/docdex/docdex"
	"github.com/pelletier/go-toml/v2"
)

// fileConfig is the TOML shape of the config file: the pipeline options
// plus settings that only make sense as text.
type fileConfig struct {
	docdex.Config
	RetryDelaysMS []int `toml:"retry_delays_ms"`
}

// loadConfig loads configuration from path, or from the default
// location when path is empty. A missing default file means defaults; a
// missing explicit file is an error.
func loadConfig(path string) (docdex.Config, error) {
	cfg := docdex.DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	fc := fileConfig{Config: cfg}
	if err := toml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	cfg = fc.Config
	if len(fc.RetryDelaysMS) > 0 {
		cfg.RetryDelays = nil
		for _, ms := range fc.RetryDelaysMS {
			cfg.RetryDelays = append(cfg.RetryDelays, time.Duration(ms)*time.Millisecond)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "docdex.toml"
	}
	return filepath.Join(home, ".docdex", "config.toml")
}
