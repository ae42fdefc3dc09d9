package dbt

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

// inputCollector materializes input dataitems as versioned tables of the
// relational target.
type inputCollector struct {
	catalog catalog.Catalog
	store   storage.ObjectStore
	logger  *slog.Logger
}

// materialized records the input tables created for a run.
type materialized struct {
	models []ModelInput
	tables []string
}

// collect fetches the latest version of every named input and writes it to
// {name}_v{id}. A table is reported before it is written, so a partial write
// is still dropped on cleanup.
func (c *inputCollector) collect(ctx context.Context, adp *postgres.Adapter, project string, names []string, workDir string) (materialized, error) {
	var out materialized
	for _, name := range names {
		c.logger.Info("getting dataitem", slog.String("name", name))
		item, err := c.catalog.GetDataItem(ctx, project, name)
		if err != nil {
			return out, fmt.Errorf("dataitem %s not found: %w", name, err)
		}

		table := VersionedTable(name, item.ID)
		c.logger.Info("materializing dataitem", slog.String("name", name), slog.String("table", table))
		out.tables = append(out.tables, table)
		if err := c.write(ctx, adp, item, table, workDir); err != nil {
			return out, fmt.Errorf("failed to materialize dataitem %s: %w", name, err)
		}
		out.models = append(out.models, ModelInput{Name: item.Name, ID: item.ID})
	}
	return out, nil
}

func (c *inputCollector) write(ctx context.Context, adp *postgres.Adapter, item *core.DataItem, table, workDir string) error {
	path := item.Spec.Path
	switch {
	case strings.HasPrefix(path, postgres.SQLScheme):
		rel, err := postgres.ParseRelation(path)
		if err != nil {
			return err
		}
		return adp.CopyTable(ctx, rel, table)

	case strings.HasPrefix(path, storage.Scheme):
		if c.store == nil {
			return fmt.Errorf("object storage is not configured for %s", path)
		}
		if !strings.EqualFold(filepath.Ext(path), ".csv") {
			return fmt.Errorf("unsupported object format %s: only csv can be materialized", path)
		}
		local := filepath.Join(workDir, "inputs", table+".csv")
		if err := os.MkdirAll(filepath.Dir(local), 0o750); err != nil {
			return err
		}
		if err := c.store.Download(ctx, path, local); err != nil {
			return err
		}
		return adp.LoadCSV(ctx, table, local)
	}
	return fmt.Errorf("unsupported dataitem path %q", path)
}
