package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/binay-das/cloudify/config"
	"github.com/binay-das/cloudify/logger"
	"github.com/binay-das/cloudify/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

type S3Store struct {
	client *s3.Client
	cfg    config.StorageConfig
}

func s3Endpoint(cfg config.StorageConfig) string {
	if cfg.Endpoint == "" {
		return ""
	}
	if strings.HasPrefix(cfg.Endpoint, "http://") || strings.HasPrefix(cfg.Endpoint, "https://") {
		return cfg.Endpoint
	}
	if cfg.UseSSL {
		return "https://" + cfg.Endpoint
	}
	return "http://" + cfg.Endpoint
}

func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := s3Endpoint(cfg)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	store := &S3Store{client: client, cfg: cfg}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	start := time.Now()
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.cfg.Bucket)})
	if err == nil {
		metrics.RecordObjectStoreOperation("head_bucket", time.Since(start), true)
		return nil
	}
	if _, createErr := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.cfg.Bucket)}); createErr != nil {
		metrics.RecordObjectStoreOperation("create_bucket", time.Since(start), false)
		return fmt.Errorf("bucket %s does not exist and cannot create: %w", s.cfg.Bucket, createErr)
	}
	metrics.RecordObjectStoreOperation("create_bucket", time.Since(start), true)
	logger.Info("created S3 bucket", zap.String("bucket", s.cfg.Bucket))
	return nil
}

func (s *S3Store) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	start := time.Now()
	key := ObjectKey(in.Folder, in.FileName)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   in.Body,
	}
	if in.Size > 0 {
		input.ContentLength = aws.Int64(in.Size)
	}
	if in.ContentType != "" {
		input.ContentType = aws.String(in.ContentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		metrics.RecordObjectStoreOperation("put_object", time.Since(start), false)
		return UploadResult{}, fmt.Errorf("put object %s: %w", key, err)
	}
	metrics.RecordObjectStoreOperation("put_object", time.Since(start), true)
	logger.Debug("S3 put object", zap.String("key", key), zap.Int64("size", in.Size))

	return UploadResult{
		ObjectID: key,
		Name:     in.FileName,
		FilePath: key,
		URL:      PublicURL(s.cfg, key),
	}, nil
}

func (s *S3Store) FindByName(ctx context.Context, folder, name string) ([]ObjectInfo, error) {
	prefix, err := listPrefix(folder)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.cfg.Bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			metrics.RecordObjectStoreOperation("list_objects", time.Since(start), false)
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if matchesName(key, name) {
				metrics.RecordObjectStoreOperation("list_objects", time.Since(start), true)
				return []ObjectInfo{{ObjectID: key, Name: name, Size: aws.ToInt64(obj.Size)}}, nil
			}
		}
	}
	metrics.RecordObjectStoreOperation("list_objects", time.Since(start), true)
	return nil, nil
}

func (s *S3Store) Delete(ctx context.Context, objectID string) error {
	start := time.Now()
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(objectID),
	})
	if err != nil {
		metrics.RecordObjectStoreOperation("delete_object", time.Since(start), false)
		return fmt.Errorf("delete object %s: %w", objectID, err)
	}
	metrics.RecordObjectStoreOperation("delete_object", time.Since(start), true)
	logger.Debug("S3 delete object", zap.String("key", objectID))
	return nil
}
