package contentstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Options configures an S3-compatible content store.
type S3Options struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	Secure    bool
}

// S3 serves content from an S3-compatible bucket. Object key prefixes
// ending in "/" are treated as directories.
type S3 struct {
	client *minio.Client
	bucket string
}

// NewS3 creates an S3 store. It does not contact the endpoint.
func NewS3(opts S3Options) (*S3, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 store requires a bucket")
	}
	c, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.Secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &S3{client: c, bucket: opts.Bucket}, nil
}

// HealthCheck verifies the bucket is reachable.
func (s *S3) HealthCheck(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("s3 health check: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: bucket %s", ErrNotExist, s.bucket)
	}
	return nil
}

func (s *S3) List(ctx context.Context, dir string) ([]Entry, error) {
	prefix := cleanPath(dir)
	if prefix != "" {
		prefix += "/"
	}

	var entries []Entry
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", dir, obj.Err)
		}
		if obj.Key == prefix {
			continue
		}
		if strings.HasSuffix(obj.Key, "/") {
			p := strings.TrimSuffix(obj.Key, "/")
			entries = append(entries, Entry{Type: TypeDir, Name: path.Base(p), Path: p})
			continue
		}
		entries = append(entries, Entry{
			Type:        TypeFile,
			Name:        path.Base(obj.Key),
			Path:        obj.Key,
			DownloadURL: fmt.Sprintf("s3://%s/%s", s.bucket, obj.Key),
		})
	}

	if len(entries) == 0 && prefix != "" {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, dir)
	}
	return entries, nil
}

func (s *S3) Fetch(ctx context.Context, p string) ([]byte, error) {
	key := cleanPath(p)
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.wrap(err, p)
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.wrap(err, p)
	}
	return data, nil
}

func (s *S3) wrap(err error, p string) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %s", ErrNotExist, p)
	}
	return fmt.Errorf("fetch %s: %w", p, err)
}
