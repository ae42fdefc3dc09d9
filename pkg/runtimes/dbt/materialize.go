package dbt

import (
	"context"
	"log/slog"

	"github.com/digitalhub-labs/digitalhub/pkg/catalog"
	"github.com/digitalhub-labs/digitalhub/pkg/core"
	"github.com/digitalhub-labs/digitalhub/pkg/preview"
)

// Materializer turns a parsed result into a persisted dataitem.
type Materializer struct {
	fetcher *SampleFetcher
	catalog catalog.Catalog
	logger  *slog.Logger
}

// NewMaterializer creates a materializer. If logger is nil, a discard logger is used.
func NewMaterializer(fetcher *SampleFetcher, cat catalog.Catalog, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Materializer{fetcher: fetcher, catalog: cat, logger: logger}
}

// Materialize samples the versioned output table and saves a dataitem
// carrying its schema, preview and code lineage. A failure after the
// catalog write leaves the saved entry in place.
func (m *Materializer) Materialize(ctx context.Context, parsed ParsedResult, project, version string) (*core.DataItem, error) {
	sample, err := m.fetcher.Fetch(ctx, parsed.Name, version)
	if err != nil {
		return nil, newError(ErrMaterialization, "", err)
	}

	item, err := core.NewDataItem(core.DataItemConfig{
		Project:      project,
		Name:         parsed.Name,
		Kind:         core.DataItemKindDataItem,
		ID:           version,
		Path:         parsed.StoragePath,
		Schema:       SchemaOf(sample.Columns),
		RawCode:      core.Encoded(parsed.RawCode),
		CompiledCode: core.Encoded(parsed.CompiledCode),
	})
	if err != nil {
		return nil, newError(ErrMaterialization, "", err)
	}
	item.Status.Preview = preview.Build(sample.ColumnNames(), sample.Rows)

	saved, err := m.catalog.SaveDataItem(ctx, item)
	if err != nil {
		return nil, newError(ErrMaterialization, "", err)
	}
	m.logger.Info("dataitem created",
		slog.String("key", saved.Key().String()),
		slog.Int("rows", len(sample.Rows)))
	return saved, nil
}

// SchemaOf maps column descriptors to a schema in column order.
func SchemaOf(columns []ColumnDescriptor) *core.Schema {
	fields := make([]core.SchemaField, len(columns))
	for i, c := range columns {
		fields[i] = core.SchemaField{Name: c.Name, Type: MapType(c.TypeCode)}
	}
	return &core.Schema{Fields: fields}
}
