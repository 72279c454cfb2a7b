package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig encapsulates the connection info for MinIO / S3-compatible
// storage.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// MinioClient implements ObjectStorage on top of the MinIO SDK.
type MinioClient struct {
	client *minio.Client
	bucket string
}

func NewMinioClient(cfg MinioConfig) (*MinioClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket must be provided")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &MinioClient{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// EnsureBucket creates the configured bucket if it does not exist yet.
func (c *MinioClient) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", c.bucket, err)
	}
	if exists {
		return nil
	}
	if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", c.bucket, err)
	}
	return nil
}

// ListObjects lists all objects for a given prefix.
func (c *MinioClient) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	for obj := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("storage list failed: %w", obj.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:  obj.Key,
			Size: obj.Size,
		})
	}
	return objects, nil
}

// DownloadObject fetches an object into a local file, creating parent
// directories as needed.
func (c *MinioClient) DownloadObject(ctx context.Context, key string, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	if err := c.client.FGetObject(ctx, c.bucket, key, destPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("storage download of %s failed: %w", key, err)
	}
	return nil
}

// UploadObject stores raw bytes under the given key.
func (c *MinioClient) UploadObject(ctx context.Context, key string, data []byte) error {
	reader := bytes.NewReader(data)
	_, err := c.client.PutObject(ctx, c.bucket, key, reader, int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("storage upload of %s failed: %w", key, err)
	}
	return nil
}

// UploadFile stores a local file under the given key.
func (c *MinioClient) UploadFile(ctx context.Context, key string, srcPath string) error {
	_, err := c.client.FPutObject(ctx, c.bucket, key, srcPath, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("storage upload of %s failed: %w", key, err)
	}
	return nil
}
