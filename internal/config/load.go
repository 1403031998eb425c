package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
// A --scene file replaces the scene section after the config file is read.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	if scenePath := ScenePath(); scenePath != "" {
		scene, err := LoadScene(scenePath)
		if err != nil {
			return nil, err
		}
		cfg.Scene = *scene
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadScene reads a scene file. The file holds the entities and lights
// lists at its top level, the same shape as the scene section of a config.
func LoadScene(path string) (*SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading scene from %s: %w", path, err)
	}
	var scene SceneConfig
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("loading scene from %s: %w", path, err)
	}
	return &scene, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./lumen.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Lumen")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Lumen")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "lumen")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "lumen")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
// Lists in the file replace the default lists.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
