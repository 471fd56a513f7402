package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"KPlayer/config"
	"KPlayer/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore is the blob store: audio files under songs/ and cover images.
type MinioStore struct {
	client        *minio.Client
	bucketName    string
	presignExpiry time.Duration
}

// NewMinioStore connects to MinIO and makes sure the configured bucket exists.
func NewMinioStore(ctx context.Context, cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("Created bucket", logger.String("bucket", cfg.MinioBucket))
	}

	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}

	return &MinioStore{
		client:        client,
		bucketName:    cfg.MinioBucket,
		presignExpiry: expiry,
	}, nil
}

// Bucket returns the bucket the store writes to.
func (m *MinioStore) Bucket() string {
	return m.bucketName
}

// PresignedURL returns a time-limited GET URL for objectPath.
// The object must exist; a missing object is an error rather than a dead link.
func (m *MinioStore) PresignedURL(ctx context.Context, objectPath string) (string, error) {
	if _, err := m.client.StatObject(ctx, m.bucketName, objectPath, minio.StatObjectOptions{}); err != nil {
		return "", fmt.Errorf("stat object %s: %w", objectPath, err)
	}

	u, err := m.client.PresignedGetObject(ctx, m.bucketName, objectPath, m.presignExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", objectPath, err)
	}
	return u.String(), nil
}

// Upload writes r to objectPath. size may be -1 when unknown.
func (m *MinioStore) Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := m.client.PutObject(ctx, m.bucketName, objectPath, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload object %s: %w", objectPath, err)
	}
	return nil
}
