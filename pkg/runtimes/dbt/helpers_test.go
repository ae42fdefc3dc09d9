package dbt

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/digitalhub-labs/digitalhub/internal/testutil"
	"github.com/digitalhub-labs/digitalhub/pkg/adapters/postgres"
	"github.com/digitalhub-labs/digitalhub/pkg/catalog/sqlite"
	"github.com/stretchr/testify/require"
)

var targetConfig = postgres.Config{Host: "localhost", Database: "db", User: "dbt", Password: "secret", Schema: "public"}

// mockTarget is a Connector serving adapters over a sqlmock database.
type mockTarget struct {
	t        *testing.T
	db       *sql.DB
	mock     sqlmock.Sqlmock
	connects int
	err      error
}

func newMockTarget(t *testing.T) *mockTarget {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &mockTarget{t: t, db: db, mock: mock}
}

func (m *mockTarget) Connect(context.Context) (*postgres.Adapter, error) {
	m.connects++
	if m.err != nil {
		return nil, m.err
	}
	return postgres.NewWithDB(m.db, targetConfig, testutil.NewTestLogger(m.t)), nil
}

// expectSample registers the preview query of the customers fixture.
func (m *mockTarget) expectSample(table string) {
	rows := m.mock.NewRowsWithColumnDefinition(
		m.mock.NewColumn("id").OfType("INT4", int64(0)),
		m.mock.NewColumn("name").OfType("VARCHAR", ""),
	).
		AddRow(int64(1), "alice").
		AddRow(int64(2), "bob").
		AddRow(int64(3), "carol")
	m.mock.ExpectQuery(`SELECT * FROM "public"."` + table + `" LIMIT $1`).
		WithArgs(SampleLimit).
		WillReturnRows(rows)
}

func newTestCatalog(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), ":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}
