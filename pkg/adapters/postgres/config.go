package postgres

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultSchema is used when Config.Schema is empty.
const DefaultSchema = "public"

// Config holds connection settings for the Postgres target.
type Config struct {
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	Database string            `koanf:"database"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Schema   string            `koanf:"schema"`
	Options  map[string]string `koanf:"options"`
}

// SchemaName returns the configured schema or DefaultSchema.
func (c Config) SchemaName() string {
	if c.Schema == "" {
		return DefaultSchema
	}
	return c.Schema
}

// HostName returns the configured host or localhost.
func (c Config) HostName() string {
	if c.Host == "" {
		return "localhost"
	}
	return c.Host
}

// PortNumber returns the configured port or 5432.
func (c Config) PortNumber() int {
	if c.Port == 0 {
		return 5432
	}
	return c.Port
}

// Validate checks that the configuration can be used to connect.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return errors.New("postgres database is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("postgres port %d out of range", c.Port)
	}
	return nil
}

// buildDSN constructs a key=value PostgreSQL connection string.
func buildDSN(cfg Config) string {
	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		quoteDSNValue(cfg.HostName()), cfg.PortNumber(), quoteDSNValue(cfg.Database), quoteDSNValue(sslmode))

	if cfg.User != "" {
		dsn += " user=" + quoteDSNValue(cfg.User)
	}
	if cfg.Password != "" {
		dsn += " password=" + quoteDSNValue(cfg.Password)
	}
	if cfg.Schema != "" {
		dsn += " search_path=" + quoteDSNValue(cfg.Schema)
	}
	return dsn
}

// quoteDSNValue quotes a key=value connection string value when it is empty
// or contains whitespace, a quote or a backslash.
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\n\r'\\") {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
