package s3

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// S3Storage keeps listing media in a MinIO bucket. Object keys are
// random, with the original extension preserved for content sniffers.
type S3Storage struct {
	client *minio.Client
	bucket string
	logger *logger.Logger
}

func NewS3Storage(endpoint, accessKey, secretKey, bucket string, useSSL bool, log *logger.Logger) (*S3Storage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client for %s: %w", endpoint, err)
	}

	err = client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{})
	if err != nil {
		exists, existsErr := client.BucketExists(context.Background(), bucket)
		if existsErr != nil || !exists {
			return nil, fmt.Errorf("make/verify bucket %s: %w", bucket, err)
		}
	}
	log.Info("media storage ready", zap.String("endpoint", endpoint), zap.String("bucket", bucket))

	return &S3Storage{client: client, bucket: bucket, logger: log}, nil
}

func (s *S3Storage) Upload(ctx context.Context, fileName, contentType string, data []byte) (string, string, error) {
	objectKey := fmt.Sprintf("listings/%s%s", uuid.NewString(), filepath.Ext(fileName))

	_, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error("media upload failed",
			zap.String("bucket", s.bucket),
			zap.String("object_key", objectKey),
			zap.Error(err))
		return "", "", fmt.Errorf("upload object %s: %w", objectKey, err)
	}

	url := fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, objectKey)
	return objectKey, url, nil
}

func (s *S3Storage) Remove(ctx context.Context, objectKey string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}
