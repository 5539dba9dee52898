package loader

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/apache/iceberg-go"
	"go.ytsaurus.tech/library/go/core/xerrors"
)

// ReadParquetSchema returns the arrow schema embedded in a parquet file.
func ReadParquetSchema(path string) (*arrow.Schema, error) {
	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, xerrors.Errorf("open parquet file %s: %w", path, err)
	}
	defer rdr.Close()

	arrRdr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, xerrors.Errorf("create arrow reader for %s: %w", path, err)
	}
	schema, err := arrRdr.Schema()
	if err != nil {
		return nil, xerrors.Errorf("read schema of %s: %w", path, err)
	}
	return schema, nil
}

// ConvertToIcebergSchema converts an arrow schema to iceberg.Schema
func ConvertToIcebergSchema(schema *arrow.Schema) (*iceberg.Schema, error) {
	if schema == nil {
		return nil, xerrors.New("schema is nil")
	}

	var fields []iceberg.NestedField

	nextID := 1 // probably shall use schema registry

	for _, f := range schema.Fields() {
		var fieldType iceberg.Type
		switch f.Type.ID() {
		case arrow.BOOL:
			fieldType = iceberg.PrimitiveTypes.Bool
		case arrow.INT8, arrow.INT16, arrow.INT32, arrow.UINT8, arrow.UINT16:
			fieldType = iceberg.PrimitiveTypes.Int32
		case arrow.INT64, arrow.UINT32, arrow.UINT64:
			fieldType = iceberg.PrimitiveTypes.Int64
		case arrow.FLOAT32:
			fieldType = iceberg.PrimitiveTypes.Float32
		case arrow.FLOAT64:
			fieldType = iceberg.PrimitiveTypes.Float64
		case arrow.STRING, arrow.LARGE_STRING:
			fieldType = iceberg.PrimitiveTypes.String
		case arrow.BINARY, arrow.LARGE_BINARY:
			fieldType = iceberg.PrimitiveTypes.Binary
		case arrow.FIXED_SIZE_BINARY:
			fieldType = iceberg.FixedTypeOf(f.Type.(*arrow.FixedSizeBinaryType).ByteWidth)
		case arrow.DECIMAL128, arrow.DECIMAL256:
			dec := f.Type.(arrow.DecimalType)
			fieldType = iceberg.DecimalTypeOf(int(dec.GetPrecision()), int(dec.GetScale()))
		case arrow.DATE32, arrow.DATE64:
			fieldType = iceberg.PrimitiveTypes.Date
		case arrow.TIME32, arrow.TIME64:
			fieldType = iceberg.PrimitiveTypes.Time
		case arrow.TIMESTAMP:
			if f.Type.(*arrow.TimestampType).TimeZone == "" {
				fieldType = iceberg.PrimitiveTypes.Timestamp
			} else {
				fieldType = iceberg.PrimitiveTypes.TimestampTz
			}
		default:
			// JSON-based string
			fieldType = iceberg.PrimitiveTypes.String
		}

		fields = append(fields, iceberg.NestedField{
			ID:       nextID,
			Name:     f.Name,
			Type:     fieldType,
			Required: !f.Nullable,
		})
		nextID++
	}

	// for now all schemas have version 1
	return iceberg.NewSchema(1, fields...), nil
}
