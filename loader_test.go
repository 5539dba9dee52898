package loader

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/catalog"
	"github.com/apache/iceberg-go/table"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	existing      map[string]bool
	namespaces    []string
	created       []string
	createdSchema *iceberg.Schema
	createErr     error
}

func (f *fakeCatalog) CreateNamespace(_ context.Context, ns table.Identifier, _ iceberg.Properties) error {
	f.namespaces = append(f.namespaces, strings.Join(ns, "."))
	return nil
}

func (f *fakeCatalog) LoadTable(_ context.Context, ident table.Identifier, _ iceberg.Properties) (*table.Table, error) {
	if f.existing[strings.Join(ident, ".")] {
		return &table.Table{}, nil
	}
	return nil, catalog.ErrNoSuchTable
}

func (f *fakeCatalog) CreateTable(_ context.Context, ident table.Identifier, schema *iceberg.Schema, _ ...catalog.CreateTableOpt) (*table.Table, error) {
	f.created = append(f.created, strings.Join(ident, "."))
	f.createdSchema = schema
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &table.Table{}, nil
}

func TestLoaderNoFiles(t *testing.T) {
	cat := &fakeCatalog{}
	ldr := NewLoader(cat, nil)

	_, err := ldr.Load(context.Background(), nil, "public", "trips")
	require.ErrorIs(t, err, ErrNoFiles)

	// no catalog call may happen before the empty-set check
	require.Empty(t, cat.namespaces)
	require.Empty(t, cat.created)
}

func TestLoaderTableExists(t *testing.T) {
	cat := &fakeCatalog{existing: map[string]bool{"public.trips": true}}
	ldr := NewLoader(cat, nil)

	_, err := ldr.Load(context.Background(), []string{"a.parquet"}, "public", "trips")
	require.ErrorIs(t, err, ErrTableExists)

	require.Equal(t, []string{"public"}, cat.namespaces)
	require.Empty(t, cat.created)
}

func TestLoaderRegistersInInputOrder(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.parquet")
	bPath := filepath.Join(dir, "b.parquet")
	writeTestParquet(t, aPath, lowPrecisionSchema(), buildLowPrecisionRows)
	writeTestParquet(t, bPath, lowPrecisionSchema(), buildLowPrecisionRows)

	cat := &fakeCatalog{}
	ldr := NewLoader(cat, nil)

	var calls []string
	ldr.normalize = func(_ context.Context, path string) (bool, error) {
		calls = append(calls, "normalize "+filepath.Base(path))
		return true, nil
	}
	ldr.register = func(_ context.Context, tbl *table.Table, path string) (*table.Table, error) {
		calls = append(calls, "register "+filepath.Base(path))
		return tbl, nil
	}

	_, err := ldr.Load(context.Background(), []string{aPath, bPath}, "public", "trips")
	require.NoError(t, err)

	// every file, the first included, is normalized right before it is
	// registered, and registration order equals input order
	require.Equal(t, []string{
		"normalize a.parquet",
		"register a.parquet",
		"normalize b.parquet",
		"register b.parquet",
	}, calls)
}

func TestLoaderStopsAtFirstRegistrationFailure(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.parquet")
	bPath := filepath.Join(dir, "b.parquet")
	writeTestParquet(t, aPath, lowPrecisionSchema(), buildLowPrecisionRows)
	writeTestParquet(t, bPath, lowPrecisionSchema(), buildLowPrecisionRows)

	errStub := errors.New("stub")
	cat := &fakeCatalog{}
	ldr := NewLoader(cat, nil)

	var registered []string
	ldr.normalize = func(context.Context, string) (bool, error) { return false, nil }
	ldr.register = func(_ context.Context, tbl *table.Table, path string) (*table.Table, error) {
		if filepath.Base(path) == "b.parquet" {
			return nil, errStub
		}
		registered = append(registered, filepath.Base(path))
		return tbl, nil
	}

	_, err := ldr.Load(context.Background(), []string{aPath, bPath}, "public", "trips")
	require.ErrorIs(t, err, errStub)

	// a failure partway through leaves earlier registrations in place and
	// retries nothing
	require.Equal(t, []string{"a.parquet"}, registered)
}

func TestLoaderCreatesTableFromFirstFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.parquet")
	writeTestParquet(t, path, lowPrecisionSchema(), buildLowPrecisionRows)

	errStub := errors.New("stub")
	cat := &fakeCatalog{createErr: errStub}
	ldr := NewLoader(cat, nil)

	_, err := ldr.Load(context.Background(), []string{path}, "public", "trips")
	require.ErrorIs(t, err, errStub)

	require.Equal(t, []string{"public"}, cat.namespaces)
	require.Equal(t, []string{"public.trips"}, cat.created)

	require.NotNil(t, cat.createdSchema)
	fields := cat.createdSchema.Fields()
	require.Len(t, fields, 2)
	require.Equal(t, "id", fields[0].Name)
	require.Equal(t, iceberg.PrimitiveTypes.Int64, fields[0].Type)
	require.Equal(t, "amount", fields[1].Name)
	require.Equal(t, iceberg.DecimalTypeOf(10, 2), fields[1].Type)
}
