// Package config loads the optional YAML settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"greg-hacke/photosnorm/logging"
	"greg-hacke/photosnorm/meta"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable overriding the config file location
const EnvPath = "PHOTOSNORM_CONFIG"

// Config holds the settings shared by all commands
type Config struct {
	Jobs          int    `yaml:"jobs"`
	Recursive     bool   `yaml:"recursive"`
	RenamePattern string `yaml:"rename_pattern"`
	Trim          bool   `yaml:"trim"`
	Log           Log    `yaml:"log"`
}

// Log configures the slog handler
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings used when no file is present
func Default() Config {
	return Config{
		Jobs:          runtime.NumCPU(),
		RenamePattern: meta.DefaultPattern,
		Trim:          true,
		Log:           Log{Level: "info", Format: "text"},
	}
}

// DefaultPath returns $PHOTOSNORM_CONFIG, or config.yaml in the user
// config directory. It returns "" when neither can be determined.
func DefaultPath() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "photosnorm", "config.yaml")
}

// Load reads path over the defaults. A missing file is not an error unless
// required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges
func (c Config) Validate() error {
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	if c.RenamePattern == "" {
		return errors.New("rename_pattern must not be empty")
	}
	if !logging.ValidFormat(c.Log.Format) {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
