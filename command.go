package loader

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/transferia/parquet2iceberg/logger"
)

func NewCommand() *cobra.Command {
	cfg := &Config{}

	cmd := &cobra.Command{
		Use:           "parquet2iceberg",
		Short:         "Load parquet files from S3 or a local directory into an Iceberg REST catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&cfg.LocalPath, "local-path", "L", "", "local directory containing parquet files to load; overrides --bucket and --prefix")
	fl.StringVarP(&cfg.Bucket, "bucket", "b", "", "source S3 bucket")
	fl.StringVarP(&cfg.Prefix, "prefix", "p", "", "source S3 key prefix")
	fl.StringVarP(&cfg.Endpoint, "endpoint", "E", "", "catalog endpoint")
	fl.StringVarP(&cfg.Token, "token", "T", "", "catalog token")
	fl.StringVarP(&cfg.Warehouse, "warehouse", "w", "", "catalog warehouse name")
	fl.StringVarP(&cfg.Namespace, "namespace", "N", "", "target namespace")
	fl.StringVarP(&cfg.TableName, "table-name", "t", "", "target table name")
	fl.StringVarP(&cfg.Directory, "directory", "d", "", "directory for downloaded parquet files; a temporary directory is used if not set")
	fl.BoolVarP(&cfg.ListOnly, "list-only", "l", false, "list parquet files in the bucket/prefix without downloading or processing them")

	return cmd
}

// Execute runs the command and returns the process exit code.
func Execute() int {
	if err := NewCommand().Execute(); err != nil {
		logger.Log.Errorf("%v", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *Config, out io.Writer) error {
	if cfg.ListOnly {
		src, err := NewS3Source(ctx, cfg.Bucket, cfg.Prefix)
		if err != nil {
			return err
		}
		uris, err := src.List(ctx)
		if err != nil {
			return err
		}
		logger.Log.Infof("found %d parquet files in s3://%s/%s", len(uris), cfg.Bucket, cfg.Prefix)
		for _, uri := range uris {
			fmt.Fprintln(out, uri)
		}
		return nil
	}

	ldr, err := NewRestLoader(ctx, cfg)
	if err != nil {
		return err
	}

	var src FileSource
	if cfg.LocalPath != "" {
		src = &LocalSource{Dir: cfg.LocalPath}
	} else {
		staging, err := NewStaging(cfg.Directory)
		if err != nil {
			return err
		}
		defer func() {
			if err := staging.Close(); err != nil {
				logger.Log.Warnf("remove staging directory: %v", err)
			}
		}()
		s3src, err := NewS3Source(ctx, cfg.Bucket, cfg.Prefix)
		if err != nil {
			return err
		}
		src = &S3DownloadSource{Source: s3src, Dir: staging.Dir()}
	}

	files, err := src.Files(ctx)
	if err != nil {
		return err
	}

	_, err = ldr.Load(ctx, files, cfg.Namespace, cfg.TableName)
	return err
}
