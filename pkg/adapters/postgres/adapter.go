// Package postgres provides the PostgreSQL target used by SQL runtimes.
//
// Connections go through database/sql with the pgx stdlib driver. COPY
// support reaches for the underlying pgx connection.
package postgres

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// Adapter wraps a connection pool to the Postgres target.
type Adapter struct {
	db     *sql.DB
	cfg    Config
	logger *slog.Logger
}

// Open connects to PostgreSQL and verifies the connection.
// If logger is nil, a discard logger is used.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("connecting to postgres",
		slog.String("host", cfg.HostName()),
		slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return &Adapter{db: db, cfg: cfg, logger: logger}, nil
}

// NewWithDB wraps an already opened pool.
func NewWithDB(db *sql.DB, cfg Config, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{db: db, cfg: cfg, logger: logger}
}

// DB returns the underlying pool.
func (a *Adapter) DB() *sql.DB {
	return a.db
}

// Config returns the connection settings.
func (a *Adapter) Config() Config {
	return a.cfg
}

// Close releases the pool.
func (a *Adapter) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Qualify returns the quoted schema-qualified name of a table in the
// configured schema.
func (a *Adapter) Qualify(table string) string {
	return pgx.Identifier{a.cfg.SchemaName(), table}.Sanitize()
}

// Relation returns the full reference of a table in the configured schema.
func (a *Adapter) Relation(table string) Relation {
	return Relation{Database: a.cfg.Database, Schema: a.cfg.SchemaName(), Table: table}
}

// CopyTable replaces dst in the configured schema with the contents of src.
func (a *Adapter) CopyTable(ctx context.Context, src Relation, dst string) error {
	if a.db == nil {
		return fmt.Errorf("database connection not established")
	}
	if src.Database != "" && src.Database != a.cfg.Database {
		return fmt.Errorf("cannot copy %s across databases (target database %s)", src.Path(), a.cfg.Database)
	}

	target := a.Qualify(dst)
	if _, err := a.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+target); err != nil {
		return fmt.Errorf("failed to drop %s: %w", target, err)
	}
	source := pgx.Identifier{src.Schema, src.Table}.Sanitize()
	if _, err := a.db.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s", target, source)); err != nil {
		return fmt.Errorf("failed to copy %s into %s: %w", source, target, err)
	}

	a.logger.Debug("table copied", slog.String("source", source), slog.String("target", target))
	return nil
}

// LoadCSV replaces table with the contents of a CSV file using COPY FROM STDIN.
// All columns are created as TEXT.
func (a *Adapter) LoadCSV(ctx context.Context, table string, filePath string) error {
	if a.db == nil {
		return fmt.Errorf("database connection not established")
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	file, err := os.Open(absPath) //nolint:gosec // path comes from the runtime working directory
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	headers, err := csv.NewReader(file).Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	if err := a.createTextTable(ctx, table, headers); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to reset file: %w", err)
	}
	if err := a.copyFromCSV(ctx, table, file); err != nil {
		return fmt.Errorf("failed to copy data: %w", err)
	}
	return nil
}

// ExportCSV writes the contents of rel to w as CSV with a header line,
// using COPY TO STDOUT.
func (a *Adapter) ExportCSV(ctx context.Context, rel Relation, w io.Writer) error {
	if a.db == nil {
		return fmt.Errorf("database connection not established")
	}
	if rel.Database != "" && rel.Database != a.cfg.Database {
		return fmt.Errorf("cannot export %s from another database (target database %s)", rel.Path(), a.cfg.Database)
	}

	conn, err := a.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	source := pgx.Identifier{rel.Schema, rel.Table}.Sanitize()
	copySQL := fmt.Sprintf("COPY %s TO STDOUT WITH (FORMAT csv, HEADER true)", source)
	return conn.Raw(func(driverConn any) error {
		sc, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("COPY requires the pgx driver, got %T", driverConn)
		}
		tag, err := sc.Conn().PgConn().CopyTo(ctx, w, copySQL)
		if err != nil {
			return fmt.Errorf("failed to export %s: %w", source, err)
		}
		a.logger.Debug("csv exported", slog.String("source", source), slog.Int64("rows", tag.RowsAffected()))
		return nil
	})
}

// DropTables drops the given tables of the configured schema. Every table
// is attempted; the first error is returned.
func (a *Adapter) DropTables(ctx context.Context, tables ...string) error {
	if a.db == nil {
		return fmt.Errorf("database connection not established")
	}
	var first error
	for _, t := range tables {
		name := a.Qualify(t)
		if _, err := a.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
			a.logger.Warn("failed to drop table", slog.String("table", name), slog.String("error", err.Error()))
			if first == nil {
				first = fmt.Errorf("failed to drop %s: %w", name, err)
			}
		}
	}
	return first
}

// createTextTable creates or replaces a table with all TEXT columns.
func (a *Adapter) createTextTable(ctx context.Context, table string, columns []string) error {
	name := a.Qualify(table)
	if _, err := a.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return err
	}

	colDefs := make([]string, len(columns))
	for i, col := range columns {
		colDefs[i] = pgx.Identifier{sanitizeColumn(col)}.Sanitize() + " TEXT"
	}
	_, err := a.db.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(colDefs, ", ")))
	return err
}

// copyFromCSV streams the file through the raw pgx connection.
func (a *Adapter) copyFromCSV(ctx context.Context, table string, r io.Reader) error {
	conn, err := a.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	copySQL := fmt.Sprintf("COPY %s FROM STDIN WITH (FORMAT csv, HEADER true)", a.Qualify(table))
	return conn.Raw(func(driverConn any) error {
		sc, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("COPY requires the pgx driver, got %T", driverConn)
		}
		tag, err := sc.Conn().PgConn().CopyFrom(ctx, r, copySQL)
		if err != nil {
			return err
		}
		a.logger.Debug("csv loaded", slog.String("table", table), slog.Int64("rows", tag.RowsAffected()))
		return nil
	})
}

// sanitizeColumn normalizes a CSV header into a column name.
func sanitizeColumn(name string) string {
	safe := strings.TrimSpace(name)
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = strings.ReplaceAll(safe, "-", "_")
	return safe
}
