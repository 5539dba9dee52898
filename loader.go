package loader

import (
	"context"
	"errors"
	"time"

	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/catalog"
	"github.com/apache/iceberg-go/catalog/rest"
	"github.com/apache/iceberg-go/table"
	"github.com/goccy/go-json"
	"go.ytsaurus.tech/library/go/core/xerrors"

	"github.com/transferia/parquet2iceberg/logger"
)

// Catalog is the subset of catalog.Catalog the loader needs.
type Catalog interface {
	CreateNamespace(ctx context.Context, namespace table.Identifier, props iceberg.Properties) error
	LoadTable(ctx context.Context, identifier table.Identifier, props iceberg.Properties) (*table.Table, error)
	CreateTable(ctx context.Context, identifier table.Identifier, schema *iceberg.Schema, opts ...catalog.CreateTableOpt) (*table.Table, error)
}

// To verify the catalog contract implementation
var _ Catalog = (*rest.Catalog)(nil)

// Loader registers parquet files as data files of a new Iceberg table.
type Loader struct {
	catalog   Catalog
	props     iceberg.Properties
	timeout   time.Duration
	normalize func(ctx context.Context, path string) (bool, error)
	register  func(ctx context.Context, tbl *table.Table, path string) (*table.Table, error)
}

func NewLoader(cat Catalog, props iceberg.Properties) *Loader {
	l := &Loader{
		catalog: cat,
		props:   props,
		timeout: 5 * time.Minute,
	}
	l.normalize = FixDecimalPhysicalType
	l.register = l.registerFile
	return l
}

func NewRestLoader(ctx context.Context, cfg *Config) (*Loader, error) {
	cat, err := rest.NewCatalog(ctx, "iceberg", cfg.Endpoint,
		rest.WithOAuthToken(cfg.Token),
		rest.WithWarehouseLocation(cfg.Warehouse),
	)
	if err != nil {
		return nil, xerrors.Errorf("unable to init catalog: %w", err)
	}
	return NewLoader(cat, nil), nil
}

// Load creates namespace.tableName from the first file's schema and registers
// every file, in input order, as a data file of the table. It fails with
// ErrNoFiles on an empty set and with ErrTableExists when the table is
// already in the catalog. A failure partway through registration leaves the
// files registered so far in place; nothing is retried.
func (l *Loader) Load(ctx context.Context, files []string, namespace, tableName string) (*table.Table, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	opCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	nsIdent := table.Identifier{namespace}
	tblIdent := table.Identifier{namespace, tableName}

	if err := l.catalog.CreateNamespace(opCtx, nsIdent, l.props); err != nil && !errors.Is(err, catalog.ErrNamespaceAlreadyExists) {
		return nil, xerrors.Errorf("create namespace %s: %w", namespace, err)
	}
	logger.Log.Infof("namespace %q created", namespace)

	// load table to emulate check for existence
	if _, err := l.catalog.LoadTable(opCtx, tblIdent, l.props); err == nil {
		return nil, xerrors.Errorf("table %s.%s: %w", namespace, tableName, ErrTableExists)
	}

	schema, err := ReadParquetSchema(files[0])
	if err != nil {
		return nil, xerrors.Errorf("read schema of first file: %w", err)
	}
	icebergSchema, err := ConvertToIcebergSchema(schema)
	if err != nil {
		return nil, xerrors.Errorf("converting to IcebergSchema: %w", err)
	}

	tbl, err := l.catalog.CreateTable(opCtx, tblIdent, icebergSchema)
	if err != nil {
		return nil, xerrors.Errorf("create table %s.%s: %w", namespace, tableName, err)
	}
	logger.Log.Infof("table %s.%s created with schema from %s", namespace, tableName, files[0])
	if js, err := json.Marshal(icebergSchema); err != nil {
		logger.Log.Warnf("marshal table schema: %v", err)
	} else {
		logger.Log.Debugf("table schema: %s", js)
	}

	for _, f := range files {
		if _, err := l.normalize(ctx, f); err != nil {
			return nil, xerrors.Errorf("normalize %s: %w", f, err)
		}
		tbl, err = l.register(ctx, tbl, f)
		if err != nil {
			return nil, xerrors.Errorf("register %s: %w", f, err)
		}
		logger.Log.Infof("appended %s to table %s.%s", f, namespace, tableName)
	}

	return tbl, nil
}

func (l *Loader) registerFile(ctx context.Context, tbl *table.Table, path string) (*table.Table, error) {
	opCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	tx := tbl.NewTransaction()
	if err := tx.AddFiles([]string{path}, l.props, false); err != nil {
		return nil, xerrors.Errorf("add files: %w", err)
	}
	updated, err := tx.Commit(opCtx)
	if err != nil {
		return nil, xerrors.Errorf("commit transaction: %w", err)
	}
	return updated, nil
}
