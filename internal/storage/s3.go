package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3ClientConfig struct {
	EndpointURL     string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
}

// S3ObjectStore stores objects in a single S3 (or MinIO) bucket.
type S3ObjectStore struct {
	client     *s3.Client
	downloader *manager.Downloader
	uploader   *manager.Uploader
	bucket     string
}

var _ ObjectStore = (*S3ObjectStore)(nil)

func NewS3ObjectStore(cfg S3ClientConfig) (*S3ObjectStore, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) { // nolint:staticcheck
		if cfg.EndpointURL != "" {
			return aws.Endpoint{ // nolint:staticcheck
				PartitionID:       "aws",
				URL:               cfg.EndpointURL,
				HostnameImmutable: true, // Important for MinIO
			}, nil
		}
		// fallback to default AWS endpoint resolution
		return aws.Endpoint{}, &aws.EndpointNotFoundError{} // nolint:staticcheck
	})

	opts := []func(*aws_config.LoadOptions) error{
		aws_config.WithEndpointResolverWithOptions(resolver),
		aws_config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true // Use path-style addressing (needed for MinIO)
	})

	return &S3ObjectStore{
		client:     client,
		downloader: manager.NewDownloader(client),
		uploader:   manager.NewUploader(client),
		bucket:     cfg.Bucket,
	}, nil
}

func (s *S3ObjectStore) CreateBucket(ctx context.Context) error {
	_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var existErr *types.BucketAlreadyExists
		var ownedErr *types.BucketAlreadyOwnedByYou
		if errors.As(err, &existErr) || errors.As(err, &ownedErr) {
			slog.Info("bucket already exists", "bucket", s.bucket)
			return nil
		}

		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}

	slog.Info("bucket created successfully", "bucket", s.bucket)
	return nil
}

func (s *S3ObjectStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer(nil)
	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrObjectNotFound, s.bucket, key)
		}
		return nil, fmt.Errorf("failed to download object s3://%s/%s: %w", s.bucket, key, err)
	}
	return buf.Bytes(), nil
}

func (s *S3ObjectStore) PutObject(ctx context.Context, key string, data io.Reader) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   data,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object to s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *S3ObjectStore) DeleteObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *S3ObjectStore) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in s3://%s/%s: %w", s.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
	}

	return keys, nil
}
