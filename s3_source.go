package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.ytsaurus.tech/library/go/core/xerrors"

	"github.com/transferia/parquet2iceberg/logger"
)

const defaultRegion = "us-east-1"

// s3API is the subset of the S3 client the source needs.
type s3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// To verify the client contract implementation
var _ s3API = (*s3.Client)(nil)

// S3Source lists and downloads parquet objects under a bucket/prefix using
// anonymous (unsigned) requests.
type S3Source struct {
	client s3API
	bucket string
	prefix string
}

func NewS3Source(ctx context.Context, bucket, prefix string) (*S3Source, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}),
	}
	if os.Getenv("AWS_REGION") == "" && os.Getenv("AWS_DEFAULT_REGION") == "" {
		opts = append(opts, awsconfig.WithRegion(defaultRegion))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, xerrors.Errorf("load AWS config: %w", err)
	}
	return &S3Source{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// List returns the s3:// URIs of all parquet objects under the prefix.
// Nothing is downloaded.
func (s *S3Source) List(ctx context.Context) ([]string, error) {
	var uris []string
	err := s.walk(ctx, func(key string) error {
		if strings.HasSuffix(key, parquetExtension) {
			uris = append(uris, s3URI(s.bucket, key))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uris, nil
}

// Download fetches matching objects into dir, keeping only the base file
// name, and returns every parquet file present in dir afterwards.
func (s *S3Source) Download(ctx context.Context, dir string) ([]string, error) {
	// TODO: List accepts any key under the prefix while Download requires a
	// "<prefix>/" path boundary, so non-directory-like prefixes download
	// fewer files than List reports. Confirm which filter is intended
	// before unifying.
	boundary := s.prefix + "/"
	err := s.walk(ctx, func(key string) error {
		if !strings.HasSuffix(key, parquetExtension) || !strings.HasPrefix(key, boundary) {
			return nil
		}
		localPath := filepath.Join(dir, path.Base(key))
		if err := s.downloadObject(ctx, key, localPath); err != nil {
			return err
		}
		logger.Log.Infof("downloaded %s -> %s", s3URI(s.bucket, key), localPath)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return localParquetFiles(dir)
}

func (s *S3Source) walk(ctx context.Context, fn func(key string) error) error {
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return xerrors.Errorf("list objects in bucket %s: %w", s.bucket, err)
		}
		for _, obj := range out.Contents {
			if err := fn(aws.ToString(obj.Key)); err != nil {
				return err
			}
		}
		if !aws.ToBool(out.IsTruncated) {
			return nil
		}
		token = out.NextContinuationToken
	}
}

func (s *S3Source) downloadObject(ctx context.Context, key, localPath string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return xerrors.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return xerrors.Errorf("create %s: %w", localPath, err)
	}
	if _, err := io.Copy(f, out.Body); err != nil {
		f.Close()
		return xerrors.Errorf("write %s: %w", localPath, err)
	}
	return f.Close()
}

func s3URI(bucket, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, key)
}

// S3DownloadSource adapts an S3Source to the FileSource contract by staging
// objects into Dir.
type S3DownloadSource struct {
	Source *S3Source
	Dir    string
}

func (s *S3DownloadSource) Files(ctx context.Context) ([]string, error) {
	return s.Source.Download(ctx, s.Dir)
}
