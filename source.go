package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.ytsaurus.tech/library/go/core/xerrors"
)

const parquetExtension = ".parquet"

// FileSource produces the set of parquet files to ingest, in source order.
type FileSource interface {
	Files(ctx context.Context) ([]string, error)
}

// To verify source contract implementation
var (
	_ FileSource = (*LocalSource)(nil)
	_ FileSource = (*S3DownloadSource)(nil)
)

// LocalSource lists parquet files directly under Dir, non-recursively.
type LocalSource struct {
	Dir string
}

func (l *LocalSource) Files(ctx context.Context) ([]string, error) {
	return localParquetFiles(l.Dir)
}

func localParquetFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, xerrors.Errorf("read directory %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), parquetExtension) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}
