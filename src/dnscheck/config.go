// Copyright (c) 2026 KyleSpence All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package dnscheck

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the YAML file configuration consumed by the CLI and other
// embedders. All fields are optional; zero values keep the checker
// defaults. Durations use Go syntax ("10s", "1500ms").
//
//	timeout: 5s
//	max_retries: 3
//	providers: [google, cloudflare]
//	endpoints:
//	  quad9: https://dns11.quad9.net:5053/dns-query
//	logging:
//	  level: debug
//	  format: json
type Config struct {
	Timeout        string            `yaml:"timeout"`
	MaxRetries     *int              `yaml:"max_retries"`
	RetryBaseDelay string            `yaml:"retry_base_delay"`
	Providers      []string          `yaml:"providers"`
	Endpoints      map[string]string `yaml:"endpoints"`
	Logging        LoggingConfig     `yaml:"logging"`
}

// LoggingConfig controls the CLI log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dnscheck: read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("dnscheck: parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalizes the configuration and rejects unknown providers
// and unparsable durations.
func (c *Config) Validate() error {
	if _, err := c.parseDuration(c.Timeout, "timeout"); err != nil {
		return err
	}
	if _, err := c.parseDuration(c.RetryBaseDelay, "retry_base_delay"); err != nil {
		return err
	}

	for i, name := range c.Providers {
		p := Provider(strings.ToLower(strings.TrimSpace(name)))
		if !p.Known() {
			return fmt.Errorf("dnscheck: config: unknown provider %q", name)
		}
		c.Providers[i] = string(p)
	}
	for name := range c.Endpoints {
		if !Provider(strings.ToLower(name)).Known() {
			return fmt.Errorf("dnscheck: config: endpoint for unknown provider %q", name)
		}
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	return nil
}

// Options converts the config to checker options. The config must have
// passed Validate.
func (c *Config) Options() []Option {
	var opts []Option

	if d, _ := c.parseDuration(c.Timeout, "timeout"); d > 0 {
		opts = append(opts, WithTimeout(d))
	}
	if c.MaxRetries != nil {
		opts = append(opts, WithMaxRetries(*c.MaxRetries))
	}
	if d, _ := c.parseDuration(c.RetryBaseDelay, "retry_base_delay"); d > 0 {
		opts = append(opts, WithRetryBaseDelay(d))
	}
	if len(c.Providers) > 0 {
		providers := make([]Provider, len(c.Providers))
		for i, name := range c.Providers {
			providers[i] = Provider(name)
		}
		opts = append(opts, WithProviders(providers...))
	}
	for name, endpoint := range c.Endpoints {
		opts = append(opts, WithProviderEndpoint(Provider(strings.ToLower(name)), endpoint))
	}

	return opts
}

func (c *Config) parseDuration(s, field string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("dnscheck: config: invalid %s %q: %w", field, s, err)
	}
	return d, nil
}
