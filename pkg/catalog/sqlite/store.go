// Package sqlite implements catalog.Catalog on a local SQLite database.
//
// Entities are stored as JSON documents next to the columns used for
// lookups. The schema is managed by goose migrations embedded in the binary.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/digitalhub-labs/digitalhub/pkg/catalog"
	"github.com/digitalhub-labs/digitalhub/pkg/core"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// Store is a SQLite-backed catalog.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var _ catalog.Catalog = (*Store)(nil)

// Open opens the database at path and applies migrations.
// Use ":memory:" for an in-memory database.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// An in-memory database lives on a single connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("catalog opened", slog.String("path", path))
	return &Store{db: db, path: path, logger: logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// --- DataItem operations ---

// SaveDataItem inserts or replaces one dataitem version.
func (s *Store) SaveDataItem(ctx context.Context, item *core.DataItem) (*core.DataItem, error) {
	if item == nil {
		return nil, fmt.Errorf("dataitem is nil")
	}
	saved := *item
	saved.Metadata.Updated = time.Now().UTC()
	if saved.Status.State == core.StateCreated || saved.Status.State == "" {
		saved.Status.State = core.StateReady
	}

	if err := s.upsert(ctx, "dataitems", saved.Project, saved.Name, saved.ID, saved.Kind, saved.Metadata.Created, &saved); err != nil {
		return nil, fmt.Errorf("failed to save dataitem %s: %w", saved.Name, err)
	}
	s.logger.Debug("dataitem saved", slog.String("key", saved.Key().String()))
	return &saved, nil
}

// GetDataItem returns the most recently inserted version of a dataitem.
func (s *Store) GetDataItem(ctx context.Context, project, name string) (*core.DataItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT body FROM dataitems WHERE project = ? AND name = ? ORDER BY seq DESC LIMIT 1`,
		project, name,
	)
	item := &core.DataItem{}
	if err := scanBody(row, item); err != nil {
		return nil, lookupError(err, core.EntityDataItem, project+"/"+name)
	}
	return item, nil
}

// GetDataItemByKey returns the dataitem version identified by key.
func (s *Store) GetDataItemByKey(ctx context.Context, key string) (*core.DataItem, error) {
	k, err := core.ParseKey(key)
	if err != nil {
		return nil, err
	}
	if k.Type != core.EntityDataItem {
		return nil, fmt.Errorf("key %s does not reference a dataitem", key)
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT body FROM dataitems WHERE project = ? AND name = ? AND id = ?`,
		k.Project, k.Name, k.ID,
	)
	item := &core.DataItem{}
	if err := scanBody(row, item); err != nil {
		return nil, lookupError(err, core.EntityDataItem, key)
	}
	return item, nil
}

// ListDataItems returns every dataitem version of a project, newest first.
func (s *Store) ListDataItems(ctx context.Context, project string) ([]*core.DataItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM dataitems WHERE project = ? ORDER BY seq DESC`,
		project,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list dataitems: %w", err)
	}
	defer rows.Close()

	var items []*core.DataItem
	for rows.Next() {
		item := &core.DataItem{}
		if err := scanBody(rows, item); err != nil {
			return nil, fmt.Errorf("failed to scan dataitem: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// DeleteDataItem removes one dataitem version.
func (s *Store) DeleteDataItem(ctx context.Context, project, name, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM dataitems WHERE project = ? AND name = ? AND id = ?`,
		project, name, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete dataitem: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete dataitem: %w", err)
	}
	if n == 0 {
		return &catalog.NotFoundError{Type: core.EntityDataItem, Ref: project + "/" + name + ":" + id}
	}
	return nil
}

// --- Artifact operations ---

// SaveArtifact inserts or replaces one artifact version.
func (s *Store) SaveArtifact(ctx context.Context, artifact *core.Artifact) (*core.Artifact, error) {
	if artifact == nil {
		return nil, fmt.Errorf("artifact is nil")
	}
	saved := *artifact
	saved.Metadata.Updated = time.Now().UTC()
	if saved.Status.State == core.StateCreated || saved.Status.State == "" {
		saved.Status.State = core.StateReady
	}

	if err := s.upsert(ctx, "artifacts", saved.Project, saved.Name, saved.ID, saved.Kind, saved.Metadata.Created, &saved); err != nil {
		return nil, fmt.Errorf("failed to save artifact %s: %w", saved.Name, err)
	}
	s.logger.Debug("artifact saved", slog.String("key", saved.Key().String()))
	return &saved, nil
}

// ListArtifacts returns every artifact version of a project, newest first.
func (s *Store) ListArtifacts(ctx context.Context, project string) ([]*core.Artifact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM artifacts WHERE project = ? ORDER BY seq DESC`,
		project,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*core.Artifact
	for rows.Next() {
		a := &core.Artifact{}
		if err := scanBody(rows, a); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// --- Run operations ---

// SaveRun inserts or replaces a run.
func (s *Store) SaveRun(ctx context.Context, run *core.Run) error {
	if run == nil {
		return fmt.Errorf("run is nil")
	}
	run.Metadata.Updated = time.Now().UTC()
	body, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (project, id, kind, state, created, body) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (project, id) DO UPDATE SET kind = excluded.kind, state = excluded.state, body = excluded.body`,
		run.Project, run.ID, run.Kind, string(run.Status.State), formatTime(run.Metadata.Created), string(body),
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, project, id string) (*core.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT body FROM runs WHERE project = ? AND id = ?`,
		project, id,
	)
	run := &core.Run{}
	if err := scanBody(row, run); err != nil {
		return nil, lookupError(err, core.EntityRun, project+"/"+id)
	}
	return run, nil
}

// --- helpers ---

func (s *Store) upsert(ctx context.Context, table, project, name, id, kind string, created time.Time, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode: %w", err)
	}
	// table is one of the fixed names above.
	query := fmt.Sprintf(
		`INSERT INTO %s (project, name, id, kind, created, body) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (project, name, id) DO UPDATE SET kind = excluded.kind, body = excluded.body`,
		table,
	)
	_, err = s.db.ExecContext(ctx, query, project, name, id, kind, formatTime(created), string(body))
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBody(sc scanner, dst any) error {
	var body string
	if err := sc.Scan(&body); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return fmt.Errorf("failed to decode: %w", err)
	}
	return nil
}

func lookupError(err error, typ core.EntityType, ref string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &catalog.NotFoundError{Type: typ, Ref: ref}
	}
	return fmt.Errorf("failed to get %s %s: %w", typ, ref, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
