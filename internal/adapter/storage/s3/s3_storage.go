package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const objectPrefix = "properties/"

type S3Storage struct {
	client    *minio.Client
	bucket    string
	publicURL string
	log       *logger.Logger
}

// NewS3Storage connects to MinIO and makes sure the bucket exists.
func NewS3Storage(ctx context.Context, cfg config.MinioConfig, log *logger.Logger) (*S3Storage, error) {
	log = log.Named("s3_storage")
	log.Info("Initializing S3 MinIO storage", zap.String("endpoint", cfg.Endpoint), zap.String("bucket", cfg.Bucket), zap.Bool("use_ssl", cfg.UseSSL))

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		exists, errExists := client.BucketExists(ctx, cfg.Bucket)
		if errExists != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", cfg.Bucket, err, errExists)
		}
		log.Info("Bucket already exists", zap.String("bucket", cfg.Bucket))
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = client.EndpointURL().String()
	}
	return &S3Storage{client: client, bucket: cfg.Bucket, publicURL: publicURL, log: log}, nil
}

// ObjectKey names a stored image, keeping the original extension.
func ObjectKey(fileName string) string {
	return objectPrefix + uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
}

func (s *S3Storage) Upload(ctx context.Context, fileName string, data []byte) (string, string, error) {
	objectKey := ObjectKey(fileName)
	info, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  http.DetectContentType(data),
		UserMetadata: map[string]string{"original-filename": filepath.Base(fileName)},
	})
	if err != nil {
		s.log.Error("PutObject failed", zap.String("key", objectKey), zap.Error(err))
		return "", "", fmt.Errorf("failed to upload object %s to bucket %s: %w", objectKey, s.bucket, err)
	}
	s.log.Debug("object uploaded", zap.String("key", info.Key), zap.Int64("size", info.Size))
	return objectKey, fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectKey), nil
}
