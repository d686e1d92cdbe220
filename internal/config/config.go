// Package config provides YAML-based configuration loading for Groundwork.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Groundwork configuration, loaded from
// groundwork.yaml.
type Config struct {
	Org      string         `yaml:"org"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// DatabaseConfig holds connection settings for the relational store.
// Driver "mysql" uses host/port/database; driver "sqlite" uses path.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Path     string `yaml:"path"`
}

// ServerConfig holds settings for the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// NotifyConfig holds schedule-digest alerting settings. A platform is
// enabled when its token is present.
type NotifyConfig struct {
	// DigestCron is a 5-field cron expression for when schedule digests
	// are posted.
	DigestCron string        `yaml:"digest_cron"`
	Slack      SlackConfig   `yaml:"slack"`
	Discord    DiscordConfig `yaml:"discord"`
}

// SlackConfig holds Slack posting credentials.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// DiscordConfig holds Discord posting credentials.
type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
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

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "groundwork.db"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.Database.Database == "" && c.Org != "" {
		c.Database.Database = "groundwork_" + c.Org
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Notify.DigestCron == "" {
		// Weekday mornings.
		c.Notify.DigestCron = "0 7 * * 1-5"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Org == "" {
		errs = append(errs, "org is required")
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database driver %q is not sqlite or mysql", c.Database.Driver))
	}
	if c.Notify.Slack.BotToken != "" && c.Notify.Slack.ChannelID == "" {
		errs = append(errs, "notify.slack.channel_id is required when a slack token is set")
	}
	if c.Notify.Discord.BotToken != "" && c.Notify.Discord.ChannelID == "" {
		errs = append(errs, "notify.discord.channel_id is required when a discord token is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}
