package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"tradepost/internal/config"
)

// BlobStorage stores attachment files reachable by a generated URL.
type BlobStorage interface {
	Upload(ctx context.Context, objectName, contentType string, data io.Reader, size int64) (string, error)
	Remove(ctx context.Context, objectName string) error
	ObjectName(fileURL string) string
}

type MinIOStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
	log       *zap.Logger
}

func NewMinIOStorage(cfg config.MinIO, log *zap.Logger) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	ctx := context.Background()
	if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		exists, existsErr := client.BucketExists(ctx, cfg.Bucket)
		if existsErr != nil || !exists {
			return nil, fmt.Errorf("failed to make or verify bucket %s: %w", cfg.Bucket, err)
		}
	}

	log.Info("minio storage ready",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket))

	return &MinIOStorage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
		log:       log,
	}, nil
}

func (s *MinIOStorage) Upload(ctx context.Context, objectName, contentType string, data io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, data, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", objectName, s.bucket, err)
	}

	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectName), nil
}

func (s *MinIOStorage) Remove(ctx context.Context, objectName string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s from bucket %s: %w", objectName, s.bucket, err)
	}
	return nil
}

// ObjectName maps a stored file URL back to its object name inside the
// bucket, accepting both this instance's public URLs and bare names.
func (s *MinIOStorage) ObjectName(fileURL string) string {
	prefix := s.publicURL + "/" + s.bucket + "/"
	if strings.HasPrefix(fileURL, prefix) {
		return strings.TrimPrefix(fileURL, prefix)
	}
	if idx := strings.Index(fileURL, "/"+s.bucket+"/"); idx >= 0 {
		return fileURL[idx+len(s.bucket)+2:]
	}
	return fileURL
}
