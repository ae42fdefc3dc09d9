package config

import (
	"fmt"
	"strings"
)

var (
	validOutputs    = []string{"auto", "text", "json"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Catalog.Path) == "" {
		return fmt.Errorf("catalog.path is required")
	}
	if !oneOf(c.OutputFormat, validOutputs) {
		return fmt.Errorf("output must be one of %s, got %q", strings.Join(validOutputs, "|"), c.OutputFormat)
	}
	if !oneOf(strings.ToLower(c.Log.Level), validLogLevels) {
		return fmt.Errorf("log.level must be one of %s, got %q", strings.Join(validLogLevels, "|"), c.Log.Level)
	}
	if !oneOf(strings.ToLower(c.Log.Format), validLogFormats) {
		return fmt.Errorf("log.format must be one of %s, got %q", strings.Join(validLogFormats, "|"), c.Log.Format)
	}
	if c.HasPostgres() {
		if err := c.Postgres.Validate(); err != nil {
			return err
		}
	}
	if !c.S3.IsZero() {
		if err := c.S3.Validate(); err != nil {
			return fmt.Errorf("s3: %w", err)
		}
	}
	return nil
}

// HasPostgres reports whether any postgres setting was given.
func (c *Config) HasPostgres() bool {
	p := c.Postgres
	return p.Host != "" || p.Database != "" || p.User != "" || p.Port != 0
}

// NefertemCommand returns the nefertem runner command line.
func (c *Config) NefertemCommand() []string {
	return strings.Fields(c.Nefertem.Command)
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
