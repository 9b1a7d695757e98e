package main

import (
	"fmt"

	"github.com/kbukum/carmarket/config"
	"github.com/kbukum/carmarket/observability"
	"github.com/kbukum/carmarket/server"
	"github.com/kbukum/carmarket/version"
)

// Config is the carmarket-api configuration, read from config.yml with
// environment overrides (SERVER_PORT, SERVER_AUTH_SECRET, METRICS_ENABLED, ...).
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Server               server.Config             `yaml:"server" mapstructure:"server"`
	Metrics              observability.MeterConfig `yaml:"metrics" mapstructure:"metrics"`
}

// ApplyDefaults fills unset fields. Development exposes error causes.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Version
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	if c.IsDevelopment() {
		c.Server.ExposeCause = true
	}

	defaults := observability.DefaultMeterConfig(c.Name)
	if c.Metrics.Exporter == "" {
		c.Metrics.Exporter = defaults.Exporter
	}
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = defaults.Endpoint
	}
	if c.Metrics.Interval <= 0 {
		c.Metrics.Interval = defaults.Interval
	}
	c.Metrics.ServiceName = c.Name
	c.Metrics.ServiceVersion = c.Version
	c.Metrics.Environment = c.Environment
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if c.Server.ExposeCause && c.Environment == "production" {
		return fmt.Errorf("server.expose_cause must be false in production")
	}
	if c.Metrics.Enabled {
		if err := c.Metrics.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func loadConfig(configFile, envFile string) (*Config, error) {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	cfg := &Config{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}
