package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/pkg/errors"
)

// StorageService is the write side of mailbox object storage
type StorageService interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

// LocalStorageService implements StorageService using local filesystem
type LocalStorageService struct {
	basePath string
}

func NewLocalStorageService(basePath string) (*LocalStorageService, error) {
	// Create base directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, errors.Wrapf(err, "create storage dir %s", basePath)
	}
	return &LocalStorageService{basePath: basePath}, nil
}

func (s *LocalStorageService) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))

	// Create directory if needed
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	return os.WriteFile(fullPath, data, 0644)
}

// S3StorageService implements StorageService using AWS S3
type S3StorageService struct {
	client *s3.Client
	bucket string
}

func NewS3StorageService(ctx context.Context, bucket string, traced bool) (*S3StorageService, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	if traced {
		// Instrument AWS SDK v2 with X-Ray for automatic S3 operation tracing
		awsv2.AWSV2Instrumentor(&cfg.APIOptions)
	}

	client := s3.NewFromConfig(cfg)
	return &S3StorageService{client: client, bucket: bucket}, nil
}

func (s *S3StorageService) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	return errors.Wrapf(err, "put s3://%s/%s", s.bucket, key)
}

// NewStorageService creates appropriate storage service based on configuration
func NewStorageService(ctx context.Context, storageType, pathOrBucket string, traced bool) (StorageService, error) {
	switch storageType {
	case "s3":
		return NewS3StorageService(ctx, pathOrBucket, traced)
	case "local":
		return NewLocalStorageService(pathOrBucket)
	default:
		return nil, errors.Errorf("unknown storage type: %s", storageType)
	}
}
