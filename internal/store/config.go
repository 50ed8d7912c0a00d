package store

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

// Config is small per-workspace configuration. Everything has a usable
// default; a missing or unreadable file behaves like an empty one.
type Config struct {
	// DefaultOpen controls whether sections start expanded in the TUI.
	DefaultOpen bool `yaml:"defaultOpen"`

	// FlashMillis is how long a just-moved row stays highlighted.
	FlashMillis int `yaml:"flashMillis"`
}

func DefaultConfig() Config {
	return Config{DefaultOpen: true, FlashMillis: 600}
}

func (s Store) configPath() string {
	return filepath.Join(s.Dir, configFileName)
}

func (s Store) LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(s.configPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return DefaultConfig(), err
	}
	if cfg.FlashMillis <= 0 {
		cfg.FlashMillis = DefaultConfig().FlashMillis
	}
	return cfg, nil
}

func (s Store) SaveConfig(cfg Config) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	tmp := s.configPath() + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.configPath())
}
