package nefertem

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/digitalhub-labs/digitalhub/pkg/adapters/postgres"
	"github.com/digitalhub-labs/digitalhub/pkg/catalog"
	"github.com/digitalhub-labs/digitalhub/pkg/core"
	"github.com/digitalhub-labs/digitalhub/pkg/storage"
)

// inputWriter writes input dataitems as local CSV files.
type inputWriter struct {
	catalog   catalog.Catalog
	store     storage.ObjectStore
	connector postgres.Connector
	logger    *slog.Logger
}

// write fetches the latest version of every named input and writes it to
// {dir}/{name}.csv.
func (w *inputWriter) write(ctx context.Context, project string, names []string, dir string) ([]LocalInput, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create input directory: %w", err)
	}

	inputs := make([]LocalInput, 0, len(names))
	for _, name := range names {
		w.logger.Info("getting dataitem", slog.String("name", name))
		item, err := w.catalog.GetDataItem(ctx, project, name)
		if err != nil {
			return nil, fmt.Errorf("error getting dataitem %s: %w", name, err)
		}

		local := filepath.Join(dir, name+".csv")
		w.logger.Info("persisting dataitem locally", slog.String("name", name), slog.String("path", local))
		if err := w.persist(ctx, item, local); err != nil {
			return nil, fmt.Errorf("error during dataitem %s collection: %w", name, err)
		}
		inputs = append(inputs, LocalInput{Name: name, Path: local})
	}
	return inputs, nil
}

func (w *inputWriter) persist(ctx context.Context, item *core.DataItem, local string) error {
	path := item.Spec.Path
	switch {
	case strings.HasPrefix(path, storage.Scheme):
		if w.store == nil {
			return fmt.Errorf("object storage is not configured for %s", path)
		}
		if !strings.EqualFold(filepath.Ext(path), ".csv") {
			return fmt.Errorf("unsupported object format %s: only csv can be read", path)
		}
		return w.store.Download(ctx, path, local)

	case strings.HasPrefix(path, postgres.SQLScheme):
		rel, err := postgres.ParseRelation(path)
		if err != nil {
			return err
		}
		adp, err := w.connector.Connect(ctx)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer func() { _ = adp.Close() }()

		f, err := os.Create(local) //nolint:gosec // path is inside the run directory
		if err != nil {
			return err
		}
		if err := adp.ExportCSV(ctx, rel, f); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}
	return fmt.Errorf("unsupported dataitem path %q", path)
}
