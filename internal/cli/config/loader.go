package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
// This key is shared with root.go via both using the same type.
type loggerKey struct{}

// EnvPrefix is the prefix of environment variables read by the loader.
// Nested keys are separated by a double underscore: DHUB_POSTGRES__HOST.
const EnvPrefix = "DHUB_"

// configFileNames are searched in the working directory when no explicit
// config file is given.
var configFileNames = []string{"dhub.yaml", "dhub.yml"}

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"catalog":    "catalog.path",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// findConfigFile finds the config file to use.
// Priority: explicit path > dhub.yaml > dhub.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")
	def := Default()

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"catalog.path": def.Catalog.Path,
		"dbt.binary":   def.DBT.Binary,
		"log.level":    def.Log.Level,
		"log.format":   def.Log.Format,
		"output":       def.OutputFormat,
		"verbose":      false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Load config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (DHUB_ prefix)
	// Transform: DHUB_POSTGRES__HOST -> postgres.host
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			if key, ok := flagKeys[f.Name]; ok {
				return key, posflag.FlagVal(flags, f)
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	expandSecrets(&cfg)

	// Relative paths in a config file are resolved against its directory.
	if configFileUsed != "" && cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			base := filepath.Dir(abs)
			if flags == nil || !flags.Changed("catalog") {
				cfg.Catalog.Path = resolvePathRelativeTo(cfg.Catalog.Path, base)
			}
			cfg.DBT.RootDir = resolvePathRelativeTo(cfg.DBT.RootDir, base)
			cfg.Nefertem.OutputDir = resolvePathRelativeTo(cfg.Nefertem.OutputDir, base)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty, already absolute or ":memory:".
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandSecrets expands environment variables in connection settings.
func expandSecrets(cfg *Config) {
	cfg.Postgres.Host = expandEnvVars(cfg.Postgres.Host)
	cfg.Postgres.Database = expandEnvVars(cfg.Postgres.Database)
	cfg.Postgres.User = expandEnvVars(cfg.Postgres.User)
	cfg.Postgres.Password = expandEnvVars(cfg.Postgres.Password)
	cfg.S3.Endpoint = expandEnvVars(cfg.S3.Endpoint)
	cfg.S3.AccessKey = expandEnvVars(cfg.S3.AccessKey)
	cfg.S3.SecretKey = expandEnvVars(cfg.S3.SecretKey)
}
