package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Environment overrides, applied after the files
const (
	EnvServer = "TASKS_SERVER"
	EnvStore  = "TASKS_STORE"
)

// Load loads and merges configuration from global and project sources
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := loadFile(GlobalConfigPath(), cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("global config: %w", err)
	}

	if cwd, err := os.Getwd(); err == nil {
		projectPath := filepath.Join(cwd, ".tasks", "config.yaml")
		if err := loadFile(projectPath, cfg); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("project config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// LoadFrom loads defaults overridden by a single explicit file
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := loadFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	applyEnv(cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvServer); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv(EnvStore); v != "" {
		cfg.Store.Path = v
	}
}

// Validate checks the values the client cannot work without
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server.base_url %q: must be an http(s) URL", c.Server.BaseURL)
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	return nil
}

// StorePath returns the store path with ~ expanded
func (c *Config) StorePath() string {
	return ExpandHome(c.Store.Path)
}

// ExpandHome replaces a leading ~ with the home directory
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// GlobalConfigPath returns the path to the global config file
func GlobalConfigPath() string {
	return filepath.Join(GlobalTasksPath(), "config.yaml")
}

// ProjectConfigPath returns the path to the project config file
func ProjectConfigPath() string {
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, ".tasks", "config.yaml")
}

// GlobalTasksPath returns the path to the global ~/.tasks directory
func GlobalTasksPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".tasks")
}
