package dbt

import (
	"context"
	"testing"

	"github.com/digitalhub-labs/digitalhub/internal/testutil"
	"github.com/digitalhub-labs/digitalhub/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsedCustomers() ParsedResult {
	return ParsedResult{
		Name:         "customers",
		StoragePath:  "sql://db/public/customers_v1",
		RawCode:      core.EncodeString("select * from raw"),
		CompiledCode: core.EncodeString(`select * from "db"."public"."raw"`),
	}
}

func TestMaterializer_Materialize(t *testing.T) {
	ctx := context.Background()
	target := newMockTarget(t)
	target.expectSample("customers_v1")
	target.mock.ExpectClose()
	cat := newTestCatalog(t)
	logger := testutil.NewTestLogger(t)

	m := NewMaterializer(NewSampleFetcher(target, logger), cat, logger)
	item, err := m.Materialize(ctx, parsedCustomers(), "my-project", "1")
	require.NoError(t, err)

	assert.Equal(t, "my-project", item.Project)
	assert.Equal(t, "customers", item.Name)
	assert.Equal(t, core.DataItemKindDataItem, item.Kind)
	assert.Equal(t, "1", item.ID)
	assert.Equal(t, "sql://db/public/customers_v1", item.Spec.Path)
	assert.Equal(t, []core.SchemaField{
		{Name: "id", Type: "integer"},
		{Name: "name", Type: "string"},
	}, item.Spec.Schema.Fields)
	assert.Equal(t, parsedCustomers().RawCode, item.Spec.RawCode)
	assert.Equal(t, parsedCustomers().CompiledCode, item.Spec.CompiledCode)
	assert.Equal(t, []core.PreviewColumn{
		{Name: "id", Value: []any{int64(1), int64(2), int64(3)}},
		{Name: "name", Value: []any{"alice", "bob", "carol"}},
	}, item.Status.Preview)

	stored, err := cat.GetDataItem(ctx, "my-project", "customers")
	require.NoError(t, err)
	assert.Equal(t, "1", stored.ID)
	assert.Equal(t, core.StateReady, stored.Status.State)
	assert.Len(t, stored.Status.Preview, 2)
	assert.NoError(t, target.mock.ExpectationsWereMet())
}

func TestMaterializer_NewVersionPerCall(t *testing.T) {
	ctx := context.Background()
	cat := newTestCatalog(t)

	for _, version := range []string{"1", "2"} {
		target := newMockTarget(t)
		target.expectSample("customers_v" + version)
		target.mock.ExpectClose()
		_, err := NewMaterializer(NewSampleFetcher(target, nil), cat, nil).
			Materialize(ctx, parsedCustomers(), "p", version)
		require.NoError(t, err)
	}

	items, err := cat.ListDataItems(ctx, "p")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "2", items[0].ID)
	assert.Equal(t, "1", items[1].ID)
}

func TestMaterializer_FetchError(t *testing.T) {
	target := newMockTarget(t)
	target.err = assert.AnError
	cat := newTestCatalog(t)

	_, err := NewMaterializer(NewSampleFetcher(target, nil), cat, nil).
		Materialize(context.Background(), parsedCustomers(), "p", "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaterialization)
	assert.ErrorIs(t, err, ErrFetch)

	items, err := cat.ListDataItems(context.Background(), "p")
	require.NoError(t, err)
	assert.Empty(t, items, "nothing is written when the sample cannot be read")
}

func TestMaterializer_InvalidItem(t *testing.T) {
	target := newMockTarget(t)
	target.expectSample("customers_v1")
	target.mock.ExpectClose()

	parsed := parsedCustomers()
	parsed.StoragePath = ""
	_, err := NewMaterializer(NewSampleFetcher(target, nil), newTestCatalog(t), nil).
		Materialize(context.Background(), parsed, "p", "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaterialization)
	var fe *core.FieldError
	assert.ErrorAs(t, err, &fe)
}

func TestMaterializer_SaveError(t *testing.T) {
	target := newMockTarget(t)
	target.expectSample("customers_v1")
	target.mock.ExpectClose()
	cat := newTestCatalog(t)
	require.NoError(t, cat.Close())

	_, err := NewMaterializer(NewSampleFetcher(target, nil), cat, nil).
		Materialize(context.Background(), parsedCustomers(), "p", "1")
	assert.ErrorIs(t, err, ErrMaterialization)
}

func TestSchemaOf(t *testing.T) {
	schema := SchemaOf([]ColumnDescriptor{
		{Name: "id", TypeCode: 23},
		{Name: "id", TypeCode: 1043},
		{Name: "blob", TypeCode: 17},
	})
	assert.Equal(t, []core.SchemaField{
		{Name: "id", Type: TypeInteger},
		{Name: "id", Type: TypeString},
		{Name: "blob", Type: TypeAny},
	}, schema.Fields)
}
