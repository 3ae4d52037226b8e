// internal/adapter/storage/s3/s3_adapter.go
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// S3Storage implements domain.ObjectStorage on a MinIO/S3 bucket.
type S3Storage struct {
	client *minio.Client
	bucket string // one bucket holds every owner's images
	logger *logger.Logger
}

func NewS3Storage(ctx context.Context, endpoint, accessKey, secretKey, bucketName string, useSSL bool, log *logger.Logger) (*S3Storage, error) {
	log.Info("Initializing S3 MinIO Storage",
		zap.String("endpoint", endpoint), zap.String("bucket", bucketName), zap.Bool("use_ssl", useSSL))

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	// Create bucket if it doesn't exist
	if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
		exists, errBucketExists := client.BucketExists(ctx, bucketName)
		if errBucketExists != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", bucketName, err, errBucketExists)
		}
		log.Info("S3Storage: Bucket already exists", zap.String("bucket", bucketName))
	} else {
		log.Info("S3Storage: Bucket created", zap.String("bucket", bucketName))
	}

	return &S3Storage{client: client, bucket: bucketName, logger: log}, nil
}

func (s *S3Storage) Put(ctx context.Context, path string, data []byte, contentType string, metadata map[string]string) (domain.Locator, error) {
	info, err := s.client.PutObject(ctx, s.bucket, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		s.logger.Error("S3Storage.Put: PutObject failed", zap.String("key", path), zap.Error(err))
		return domain.Locator{}, s.wrap("put", path, err)
	}
	s.logger.Debug("S3Storage.Put: object stored",
		zap.String("key", info.Key), zap.String("etag", info.ETag), zap.Int64("size", info.Size))

	return domain.Locator{
		Path: path,
		URL:  fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, path), // unsigned, display goes through SignedURL
	}, nil
}

func (s *S3Storage) Copy(ctx context.Context, srcPath, dstPath string) error {
	// Server-side copy; an existing destination is overwritten.
	_, err := s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: s.bucket, Object: dstPath},
		minio.CopySrcOptions{Bucket: s.bucket, Object: srcPath},
	)
	if err != nil {
		return s.wrap("copy "+srcPath+" to", dstPath, err)
	}
	return nil
}

// Delete stats the object first so that it can report whether anything was
// removed; S3 deletes of missing keys succeed silently.
func (s *S3Storage) Delete(ctx context.Context, path string) (bool, error) {
	if _, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, s.wrap("stat", path, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return false, s.wrap("delete", path, err)
	}
	return true, nil
}

func (s *S3Storage) List(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	// Recursive, since a prefix spans owner and container segments.
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, s.wrap("list", prefix, obj.Err)
		}
		out = append(out, obj.Key)
	}
	return out, nil
}

func (s *S3Storage) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, path, ttl, nil)
	if err != nil {
		return "", s.wrap("presign", path, err)
	}
	return u.String(), nil
}

func (s *S3Storage) wrap(op, path string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%w: %s %s/%s", domain.ErrNotFound, op, s.bucket, path)
	}
	return fmt.Errorf("%w: %s %s/%s: %v", domain.ErrStorage, op, s.bucket, path, err)
}

func isNotFound(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
	}
	return false
}
