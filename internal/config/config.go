package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/forPelevin/frankenbite/internal/domain/match"
)

const fileName = "config.yaml"

// Config is the on-disk configuration. Every field is optional.
type Config struct {
	Engine  match.Config  `yaml:"engine"`
	History HistoryConfig `yaml:"history"`
	Export  ExportConfig  `yaml:"export"`
}

type HistoryConfig struct {
	// Disabled keeps history in memory for the run only.
	Disabled bool `yaml:"disabled"`
	// Path overrides the database location. Defaults to the data dir.
	Path string `yaml:"path,omitempty"`
}

type ExportConfig struct {
	Subtitles   bool   `yaml:"subtitles"`
	CutList     bool   `yaml:"cut_list"`
	Reel        string `yaml:"reel,omitempty"`
	FFmpegPath  string `yaml:"ffmpeg_path,omitempty"`
	FFprobePath string `yaml:"ffprobe_path,omitempty"`
}

func Default() Config {
	return Config{
		Engine: match.DefaultConfig(),
		Export: ExportConfig{Subtitles: true, CutList: true, Reel: "AX"},
	}
}

// GetConfigDir returns the XDG-compliant config directory
func GetConfigDir() (string, error) {
	if override := os.Getenv("FRANKENBITE_CONFIG_DIR"); override != "" {
		return override, nil
	}
	var base string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		base = xdg
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "frankenbite"), nil
}

// GetDataDir returns the platform-specific data directory
func GetDataDir() (string, error) {
	if override := os.Getenv("FRANKENBITE_DATA_DIR"); override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "Frankenbite"), nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "frankenbite"), nil
	}
	return filepath.Join(home, ".local", "share", "frankenbite"), nil
}

// HistoryPath is where the history database lives unless overridden.
func (c Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// Path is the location of config.yaml.
func Path() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads config.yaml from the config dir. A missing file yields Default().
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(path)
}

// LoadFile reads a config file over the defaults, so omitted keys keep
// their default values.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Engine = cfg.Engine.Normalized()
	return cfg, nil
}

// Save writes the config to config.yaml in the config dir.
func (c Config) Save() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, fileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
