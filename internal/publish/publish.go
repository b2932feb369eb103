// Package publish uploads generated sheets and WebVTT files to
// S3-compatible object storage.
package publish

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config selects the storage endpoint and destination.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Prefix    string // key prefix, e.g. "thumbs/2024"
}

// objectStore is the subset of *minio.Client used here.
type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts miniogo.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucket, object, filePath string, opts miniogo.PutObjectOptions) (miniogo.UploadInfo, error)
}

// Uploader puts files into one bucket under a fixed prefix.
type Uploader struct {
	store  objectStore
	bucket string
	prefix string
}

// NewUploader creates a MinIO client for cfg.
func NewUploader(cfg Config) (*Uploader, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &Uploader{store: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// EnsureBucket creates the bucket if it does not exist.
func (u *Uploader) EnsureBucket(ctx context.Context) error {
	exists, err := u.store.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", u.bucket, err)
	}
	if !exists {
		if err := u.store.MakeBucket(ctx, u.bucket, miniogo.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", u.bucket, err)
		}
	}
	return nil
}

// Upload puts each file under prefix/<basename> and returns the object
// keys in order. The sheet and its VTT keep their basenames so the VTT's
// relative "#xywh" references stay valid in the bucket.
func (u *Uploader) Upload(ctx context.Context, files ...string) ([]string, error) {
	keys := make([]string, 0, len(files))
	for _, f := range files {
		key := u.Key(f)
		_, err := u.store.FPutObject(ctx, u.bucket, key, f, miniogo.PutObjectOptions{
			ContentType: ContentType(f),
		})
		if err != nil {
			return keys, fmt.Errorf("upload %s: %w", filepath.Base(f), err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Key returns the object key for a local file.
func (u *Uploader) Key(file string) string {
	base := filepath.Base(file)
	p := strings.Trim(u.prefix, "/")
	if p == "" {
		return base
	}
	return path.Join(p, base)
}

// ContentType maps output extensions to MIME types.
func ContentType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".png":
		return "image/png"
	case ".vtt":
		return "text/vtt"
	default:
		return "application/octet-stream"
	}
}
