package loader

import (
	"os"

	"go.ytsaurus.tech/library/go/core/xerrors"
)

// Staging is the directory downloaded parquet files land in. When created by
// NewStaging it is removed on Close; a caller-supplied directory is kept.
type Staging struct {
	dir   string
	owned bool
}

func NewStaging(dir string) (*Staging, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, xerrors.Errorf("create staging directory %s: %w", dir, err)
		}
		return &Staging{dir: dir}, nil
	}
	tmp, err := os.MkdirTemp("", "parquet2iceberg-*")
	if err != nil {
		return nil, xerrors.Errorf("create temporary staging directory: %w", err)
	}
	return &Staging{dir: tmp, owned: true}, nil
}

func (s *Staging) Dir() string {
	return s.dir
}

func (s *Staging) Close() error {
	if !s.owned {
		return nil
	}
	return os.RemoveAll(s.dir)
}
