package loader

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/iceberg-go"
	"github.com/stretchr/testify/require"
)

func TestConvertToIcebergSchema(t *testing.T) {
	arrSchema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "small", Type: arrow.PrimitiveTypes.Int16, Nullable: true},
		{Name: "ratio", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "raw", Type: arrow.BinaryTypes.Binary, Nullable: true},
		{Name: "amount", Type: &arrow.Decimal128Type{Precision: 10, Scale: 2}, Nullable: true},
		{Name: "day", Type: arrow.FixedWidthTypes.Date32, Nullable: true},
		{Name: "at", Type: &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}, Nullable: true},
		{Name: "local_at", Type: &arrow.TimestampType{Unit: arrow.Microsecond}, Nullable: true},
	}, nil)

	got, err := ConvertToIcebergSchema(arrSchema)
	require.NoError(t, err)

	fields := got.Fields()
	require.Len(t, fields, 9)

	wantTypes := []iceberg.Type{
		iceberg.PrimitiveTypes.Int64,
		iceberg.PrimitiveTypes.Int32,
		iceberg.PrimitiveTypes.Float64,
		iceberg.PrimitiveTypes.String,
		iceberg.PrimitiveTypes.Binary,
		iceberg.DecimalTypeOf(10, 2),
		iceberg.PrimitiveTypes.Date,
		iceberg.PrimitiveTypes.TimestampTz,
		iceberg.PrimitiveTypes.Timestamp,
	}
	for i, f := range fields {
		require.Equal(t, wantTypes[i], f.Type, "field %s", f.Name)
		require.Equal(t, i+1, f.ID)
	}

	require.True(t, fields[0].Required)
	require.False(t, fields[1].Required)
}

func TestConvertToIcebergSchemaNil(t *testing.T) {
	_, err := ConvertToIcebergSchema(nil)
	require.Error(t, err)
}
