package loader

import (
	"fmt"

	"go.ytsaurus.tech/library/go/core/xerrors"
)

var (
	// ErrNoFiles is returned when the resolved source yields no parquet files.
	ErrNoFiles = xerrors.New("no parquet files found on storage/directory")

	// ErrTableExists is returned when the destination table is already
	// registered in the catalog. The tool never appends to existing tables.
	ErrTableExists = xerrors.New("catalog table already exists")
)

// ValidationError reports a missing or contradictory command line option.
type ValidationError struct {
	Option string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid arguments: --%s: %s", e.Option, e.Reason)
}
