package app

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// ProgressProfile selects the progress experience: "rich" (staged flow,
	// slow ramp) or "simple" (short ramp, no stages).
	ProgressProfile string `yaml:"progress_profile"`
	// ScreenplayType is forwarded with generation requests ("feature",
	// "short", ...). Empty lets the backend decide.
	ScreenplayType string `yaml:"screenplay_type"`
	Theme          string `yaml:"theme"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:         "http://localhost:8000",
		RequestTimeout:  120 * time.Second,
		ProgressProfile: "rich",
	}
}

// LoadConfig reads the yaml config, then lets the environment override it.
// A missing file is not an error; defaults apply.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	// .env is a development convenience; plain env vars win either way.
	_ = godotenv.Load()
	if v := os.Getenv("FIRSTDRAFT_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("FIRSTDRAFT_PROGRESS_PROFILE"); v != "" {
		cfg.ProgressProfile = v
	}
	if v := os.Getenv("FIRSTDRAFT_SCREENPLAY_TYPE"); v != "" {
		cfg.ScreenplayType = v
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 120 * time.Second
	}
	if cfg.ProgressProfile != "simple" {
		cfg.ProgressProfile = "rich"
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func DefaultConfigPath() string {
	dir := DefaultProfileDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yml")
}

// ProgressConfig maps the configured profile onto simulator parameters.
func (c Config) ProgressConfig() ProgressConfig {
	if c.ProgressProfile == "simple" {
		return SimpleProgressConfig()
	}
	return RichProgressConfig()
}
