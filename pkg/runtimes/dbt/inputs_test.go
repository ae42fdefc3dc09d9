package dbt

import (
	"context"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/digitalhub-labs/digitalhub/internal/testutil"
	"github.com/digitalhub-labs/digitalhub/pkg/adapters/postgres"
	"github.com/digitalhub-labs/digitalhub/pkg/catalog"
	"github.com/digitalhub-labs/digitalhub/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	downloads map[string]string
	content   string
}

func (f *fakeStore) Upload(context.Context, string, string, string) (string, error) {
	return "", nil
}

func (f *fakeStore) Download(_ context.Context, url, localPath string) error {
	if f.downloads == nil {
		f.downloads = map[string]string{}
	}
	f.downloads[url] = localPath
	return os.WriteFile(localPath, []byte(f.content), 0o600)
}

func saveInput(t *testing.T, cat catalog.Catalog, name, id, path string) {
	t.Helper()
	item, err := core.NewDataItem(core.DataItemConfig{Project: "p", Name: name, ID: id, Path: path})
	require.NoError(t, err)
	_, err = cat.SaveDataItem(context.Background(), item)
	require.NoError(t, err)
}

func TestInputCollector_SQL(t *testing.T) {
	ctx := context.Background()
	cat := newTestCatalog(t)
	saveInput(t, cat, "raw", "7", "sql://db/landing/raw_orders")

	target := newMockTarget(t)
	target.mock.ExpectExec(`DROP TABLE IF EXISTS "public"."raw_v7"`).WillReturnResult(sqlmock.NewResult(0, 0))
	target.mock.ExpectExec(`CREATE TABLE "public"."raw_v7" AS SELECT * FROM "landing"."raw_orders"`).
		WillReturnResult(sqlmock.NewResult(0, 10))
	adp, err := target.Connect(ctx)
	require.NoError(t, err)

	c := &inputCollector{catalog: cat, logger: testutil.NewTestLogger(t)}
	got, err := c.collect(ctx, adp, "p", []string{"raw"}, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []ModelInput{{Name: "raw", ID: "7"}}, got.models)
	assert.Equal(t, []string{"raw_v7"}, got.tables)
	assert.NoError(t, target.mock.ExpectationsWereMet())
}

func TestInputCollector_CSV(t *testing.T) {
	ctx := context.Background()
	cat := newTestCatalog(t)
	saveInput(t, cat, "raw", "7", "s3://datalake/p/raw.csv")

	target := newMockTarget(t)
	target.mock.ExpectExec(`DROP TABLE IF EXISTS "public"."raw_v7"`).WillReturnResult(sqlmock.NewResult(0, 0))
	target.mock.ExpectExec(`CREATE TABLE "public"."raw_v7" ("id" TEXT, "name" TEXT)`).WillReturnResult(sqlmock.NewResult(0, 0))
	adp, err := target.Connect(ctx)
	require.NoError(t, err)

	store := &fakeStore{content: "id,name\n1,alice\n"}
	c := &inputCollector{catalog: cat, store: store, logger: testutil.NewTestLogger(t)}
	got, err := c.collect(ctx, adp, "p", []string{"raw"}, t.TempDir())

	// sqlmock cannot serve COPY; the download and table creation happened.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires the pgx driver")
	assert.Contains(t, store.downloads, "s3://datalake/p/raw.csv")
	assert.Equal(t, []string{"raw_v7"}, got.tables, "a table created before a failed COPY must be cleaned up")
	assert.Empty(t, got.models)
	assert.NoError(t, target.mock.ExpectationsWereMet())
}

func TestInputCollector_Errors(t *testing.T) {
	ctx := context.Background()
	cat := newTestCatalog(t)
	saveInput(t, cat, "parquet", "1", "s3://datalake/p/data.parquet")
	saveInput(t, cat, "local", "1", "/tmp/data.csv")
	saveInput(t, cat, "remote", "1", "s3://datalake/p/data.csv")

	adp := postgres.NewWithDB(nil, targetConfig, nil)

	tests := []struct {
		name   string
		store  *fakeStore
		input  string
		errMsg string
		tables []string
	}{
		{"missing dataitem", &fakeStore{}, "missing", "dataitem missing not found", nil},
		{"non csv object", &fakeStore{}, "parquet", "only csv", []string{"parquet_v1"}},
		{"unsupported scheme", &fakeStore{}, "local", "unsupported dataitem path", []string{"local_v1"}},
		{"no storage", nil, "remote", "object storage is not configured", []string{"remote_v1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &inputCollector{catalog: cat, logger: testutil.NewTestLogger(t)}
			if tt.store != nil {
				c.store = tt.store
			}
			got, err := c.collect(ctx, adp, "p", []string{tt.input}, t.TempDir())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Equal(t, tt.tables, got.tables)
			assert.Empty(t, got.models)
		})
	}
}
