// Package config provides YAML-based configuration loading for Sprintdeck.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Sprintdeck configuration, loaded from sprintdeck.yaml.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	DB       DBConfig       `yaml:"db"`
	Velocity VelocityConfig `yaml:"velocity"`
	Planning PlanningConfig `yaml:"planning"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    int    `yaml:"port"`
	LogFile string `yaml:"log_file"`
}

// DBConfig holds database connection settings. The sqlite driver stores data
// in a local file; the mysql driver connects to a server.
type DBConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Database string `yaml:"database"`
}

// VelocityConfig controls the team-velocity defaults and the background
// refresh schedule.
type VelocityConfig struct {
	Default     int    `yaml:"default"`
	RefreshCron string `yaml:"refresh_cron"`
}

// PlanningConfig holds team-configured planning limits used by the
// recommendation engine and the effort scorer.
type PlanningConfig struct {
	MaxItemPoints    int     `yaml:"max_item_points"`
	DefaultAvgPoints float64 `yaml:"default_avg_points"`
}

// NotifyConfig names the channels that receive critical-analysis alerts.
// Tokens come from the environment, never from this file.
type NotifyConfig struct {
	SlackChannel   string `yaml:"slack_channel"`
	DiscordChannel string `yaml:"discord_channel"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.DB.Driver == "" {
		c.DB.Driver = "sqlite"
	}
	if c.DB.Path == "" {
		c.DB.Path = "sprintdeck.db"
	}
	if c.DB.Host == "" {
		c.DB.Host = "127.0.0.1"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	if c.DB.User == "" {
		c.DB.User = "root"
	}
	if c.DB.Database == "" {
		c.DB.Database = "sprintdeck"
	}
	if c.Velocity.Default == 0 {
		c.Velocity.Default = 30
	}
	if c.Velocity.RefreshCron == "" {
		c.Velocity.RefreshCron = "0 * * * *"
	}
	if c.Planning.MaxItemPoints == 0 {
		c.Planning.MaxItemPoints = 8
	}
	if c.Planning.DefaultAvgPoints == 0 {
		c.Planning.DefaultAvgPoints = 5
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.DB.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("db.driver must be sqlite or mysql, got %q", c.DB.Driver))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Velocity.Default < 1 {
		errs = append(errs, "velocity.default must be at least 1")
	}
	if c.Planning.MaxItemPoints < 1 {
		errs = append(errs, "planning.max_item_points must be at least 1")
	}
	if c.Planning.DefaultAvgPoints < 1 {
		errs = append(errs, "planning.default_avg_points must be at least 1")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
