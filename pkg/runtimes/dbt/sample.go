package dbt

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/digitalhub-labs/digitalhub/pkg/adapters/postgres"
)

// SampleLimit is the number of rows fetched for a preview.
const SampleLimit = 10

// ColumnDescriptor describes one column of a sample.
type ColumnDescriptor struct {
	Name     string
	TypeCode uint32
}

// Sample is a bounded set of rows read from a table.
type Sample struct {
	Columns []ColumnDescriptor
	Rows    [][]any
}

// ColumnNames returns the column names in order.
func (s Sample) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// VersionedTable returns the table name of a model version.
func VersionedTable(base, version string) string {
	return base + "_v" + version
}

// SampleFetcher reads preview rows from versioned output tables.
type SampleFetcher struct {
	connector postgres.Connector
	logger    *slog.Logger
}

// NewSampleFetcher creates a fetcher. If logger is nil, a discard logger is used.
func NewSampleFetcher(connector postgres.Connector, logger *slog.Logger) *SampleFetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SampleFetcher{connector: connector, logger: logger}
}

// Fetch reads up to SampleLimit rows of {tableBase}_v{version}. The
// connection is released before Fetch returns on every path.
func (f *SampleFetcher) Fetch(ctx context.Context, tableBase, version string) (Sample, error) {
	table := VersionedTable(tableBase, version)

	adp, err := f.connector.Connect(ctx)
	if err != nil {
		return Sample{}, newError(ErrFetch, "failed to connect to postgres", err)
	}
	defer func() {
		f.logger.Debug("closing connection to postgres")
		if err := adp.Close(); err != nil {
			f.logger.Warn("failed to close postgres connection", slog.String("error", err.Error()))
		}
	}()

	f.logger.Info("fetching data sample", slog.String("table", table))
	query := fmt.Sprintf("SELECT * FROM %s LIMIT $1", adp.Qualify(table))
	rows, err := adp.DB().QueryContext(ctx, query, SampleLimit)
	if err != nil {
		return Sample{}, newError(ErrFetch, fmt.Sprintf("failed to query %s", table), err)
	}
	defer func() { _ = rows.Close() }()

	types, err := rows.ColumnTypes()
	if err != nil {
		return Sample{}, newError(ErrFetch, "failed to read column types", err)
	}
	columns := make([]ColumnDescriptor, len(types))
	for i, t := range types {
		columns[i] = ColumnDescriptor{Name: t.Name(), TypeCode: ResolveOID(t.DatabaseTypeName())}
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return Sample{}, newError(ErrFetch, "failed to scan row", err)
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return Sample{}, newError(ErrFetch, "failed to read rows", err)
	}
	return Sample{Columns: columns, Rows: data}, nil
}
