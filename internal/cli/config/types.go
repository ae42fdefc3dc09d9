// Package config provides configuration management for the dhub CLI.
//
// Settings come from defaults, an optional dhub.yaml file, DHUB_
// environment variables and command-line flags, in increasing order of
// precedence.
package config

import (
	"github.com/digitalhub-labs/digitalhub/pkg/adapters/postgres"
	"github.com/digitalhub-labs/digitalhub/pkg/storage"
)

// Default configuration values.
const (
	DefaultCatalogPath = ".dhub/catalog.db"
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=json
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultDBTBinary   = "dbt"
)

// CatalogConfig locates the local entity catalog.
type CatalogConfig struct {
	Path string `koanf:"path"`
}

// DBTConfig configures the dbt runtime.
type DBTConfig struct {
	Binary string `koanf:"binary"`
	// RootDir is the parent of the per-run project directories.
	RootDir string `koanf:"root_dir"`
}

// NefertemConfig configures the nefertem runtime.
type NefertemConfig struct {
	// Command is the runner command line, split on whitespace.
	Command   string `koanf:"command"`
	OutputDir string `koanf:"output_dir"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Config holds all CLI configuration options.
type Config struct {
	Catalog      CatalogConfig   `koanf:"catalog"`
	Postgres     postgres.Config `koanf:"postgres"`
	S3           storage.Config  `koanf:"s3"`
	DBT          DBTConfig       `koanf:"dbt"`
	Nefertem     NefertemConfig  `koanf:"nefertem"`
	Log          LogConfig       `koanf:"log"`
	OutputFormat string          `koanf:"output"`
	Verbose      bool            `koanf:"verbose"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Catalog:      CatalogConfig{Path: DefaultCatalogPath},
		DBT:          DBTConfig{Binary: DefaultDBTBinary},
		Log:          LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		OutputFormat: DefaultOutput,
	}
}
