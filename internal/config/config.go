package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/claude/liftlog/internal/units"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Log       LogConfig       `yaml:"log"`
	Notify    NotifyConfig    `yaml:"notify"`
	Units     UnitsConfig     `yaml:"units"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// LogConfig selects the log sink. With File set, output goes to a rotating
// file; otherwise stdout.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type NotifyConfig struct {
	Enabled bool   `yaml:"enabled"`
	NtfyURL string `yaml:"ntfy_url"`
	Topic   string `yaml:"topic"`
}

type UnitsConfig struct {
	Display string `yaml:"display"`
}

// DisplayUnit returns the configured display unit, defaulting to kilograms.
func (u UnitsConfig) DisplayUnit() units.Unit {
	if u.Display == string(units.Pounds) {
		return units.Pounds
	}
	return units.Kilograms
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix LIFTLOG_ and underscore-separated paths:
//
//	LIFTLOG_SERVER_HOST, LIFTLOG_SERVER_PORT, LIFTLOG_DB_PATH,
//	LIFTLOG_LOG_FILE, LIFTLOG_NOTIFY_URL, LIFTLOG_NOTIFY_TOPIC,
//	LIFTLOG_UNITS
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTLOG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIFTLOG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIFTLOG_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("LIFTLOG_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("LIFTLOG_NOTIFY_URL"); v != "" {
		cfg.Notify.NtfyURL = v
		cfg.Notify.Enabled = true
	}
	if v := os.Getenv("LIFTLOG_NOTIFY_TOPIC"); v != "" {
		cfg.Notify.Topic = v
	}
	if v := os.Getenv("LIFTLOG_UNITS"); v != "" {
		cfg.Units.Display = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Notify.Enabled {
		if c.Notify.NtfyURL == "" {
			return fmt.Errorf("notify.ntfy_url is required when notify is enabled")
		}
		if c.Notify.Topic == "" {
			return fmt.Errorf("notify.topic is required when notify is enabled")
		}
	}
	if d := c.Units.Display; d != "" && d != "kg" && d != "lb" {
		return fmt.Errorf("units.display must be kg or lb")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
