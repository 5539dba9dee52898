package loader

import (
	"context"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/google/uuid"
	"go.ytsaurus.tech/library/go/core/xerrors"

	"github.com/transferia/parquet2iceberg/logger"
)

// Decimals up to this precision fit an integer physical encoding; some
// writers store them that way, which the catalog's add-files path rejects.
const maxIntegerBackedDecimalPrecision = 18

// FixDecimalPhysicalType rewrites the parquet file in place when it carries
// decimal columns of precision <= 18, so that those columns end up with the
// fixed-len-byte-array physical type the catalog expects. Files without such
// columns are left untouched. Reports whether the file was rewritten.
func FixDecimalPhysicalType(ctx context.Context, path string) (bool, error) {
	mem := memory.NewGoAllocator()

	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return false, xerrors.Errorf("open parquet file %s: %w", path, err)
	}

	arrRdr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		rdr.Close()
		return false, xerrors.Errorf("create arrow reader for %s: %w", path, err)
	}

	schema, err := arrRdr.Schema()
	if err != nil {
		rdr.Close()
		return false, xerrors.Errorf("read schema of %s: %w", path, err)
	}

	var fixed []string
	for _, f := range schema.Fields() {
		if dec, ok := f.Type.(arrow.DecimalType); ok && dec.GetPrecision() <= maxIntegerBackedDecimalPrecision {
			fixed = append(fixed, f.Name)
		}
	}
	if len(fixed) == 0 {
		rdr.Close()
		return false, nil
	}

	logger.Log.Infof("rewriting %s to fix physical type of decimal columns %v", path, fixed)

	tbl, err := arrRdr.ReadTable(ctx)
	if err != nil {
		rdr.Close()
		return false, xerrors.Errorf("read table from %s: %w", path, err)
	}
	defer tbl.Release()
	if err := rdr.Close(); err != nil {
		return false, xerrors.Errorf("close reader for %s: %w", path, err)
	}

	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := writeParquetFile(tmp, tbl, mem); err != nil {
		os.Remove(tmp)
		return false, err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return false, xerrors.Errorf("replace %s: %w", path, err)
	}
	return true, nil
}

func writeParquetFile(path string, tbl arrow.Table, mem memory.Allocator) error {
	f, err := os.Create(path)
	if err != nil {
		return xerrors.Errorf("create %s: %w", path, err)
	}

	props := parquet.NewWriterProperties(parquet.WithAllocator(mem))
	// The legacy int96 flag forces a full re-encode on the rewrite path;
	// decimals come back out as fixed-len byte arrays. pqarrow has no
	// per-column physical type override.
	arrProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithDeprecatedInt96Timestamps(true),
		pqarrow.WithAllocator(mem),
	)

	chunkSize := tbl.NumRows()
	if chunkSize == 0 {
		chunkSize = 1
	}
	// pqarrow.WriteTable closes the sink itself; a second Close would fail
	// with os.ErrClosed, so only best-effort close on the error path.
	if err := pqarrow.WriteTable(tbl, f, chunkSize, props, arrProps); err != nil {
		f.Close()
		return xerrors.Errorf("write parquet %s: %w", path, err)
	}
	return nil
}
