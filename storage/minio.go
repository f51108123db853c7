package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"mediaq/config"
)

// MinIO stages inputs from and publishes artifacts to an S3-compatible
// object store. Source paths are "object" names in the input bucket (or
// "bucket/object" to override); published paths are "bucket/object".
type MinIO struct {
	client    *minio.Client
	inBucket  string
	outBucket string
	tempDir   string
}

func NewMinIO(cfg *config.Config) (*MinIO, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio connection: %w", err)
	}

	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	return &MinIO{
		client:    client,
		inBucket:  cfg.MinioInBucket,
		outBucket: cfg.MinioOutBucket,
		tempDir:   tempDir,
	}, nil
}

func (m *MinIO) Fetch(ctx context.Context, source string) (string, func(), error) {
	bucket, object := m.inBucket, source
	if i := strings.IndexByte(source, '/'); i > 0 {
		bucket, object = source[:i], source[i+1:]
	}

	localPath := filepath.Join(m.tempDir, fmt.Sprintf("mediaq_in_%s", filepath.Base(object)))
	cleanup := func() { os.Remove(localPath) }

	if err := m.client.FGetObject(ctx, bucket, object, localPath, minio.GetObjectOptions{}); err != nil {
		return "", cleanup, fmt.Errorf("fetch %s/%s: %w", bucket, object, err)
	}
	return localPath, cleanup, nil
}

func (m *MinIO) Publish(ctx context.Context, localPath string) (string, error) {
	object := filepath.Base(localPath)
	if _, err := m.client.FPutObject(ctx, m.outBucket, object, localPath, minio.PutObjectOptions{
		ContentType: contentTypeFor(object),
	}); err != nil {
		return "", fmt.Errorf("publish %s: %w", object, err)
	}
	return fmt.Sprintf("%s/%s", m.outBucket, object), nil
}

func contentTypeFor(object string) string {
	switch strings.ToLower(filepath.Ext(object)) {
	case ".mp4":
		return "video/mp4"
	case ".m4a":
		return "audio/mp4"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
