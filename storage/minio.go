package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/binay-das/cloudify/config"
	"github.com/binay-das/cloudify/logger"
	"github.com/binay-das/cloudify/metrics"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type MinioStore struct {
	client *minio.Client
	cfg    config.StorageConfig
}

func NewMinioStore(ctx context.Context, cfg config.StorageConfig) (*MinioStore, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	store := &MinioStore{client: client, cfg: cfg}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	start := time.Now()
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		metrics.RecordObjectStoreOperation("bucket_exists", time.Since(start), false)
		return fmt.Errorf("check bucket %s: %w", s.cfg.Bucket, err)
	}
	if exists {
		metrics.RecordObjectStoreOperation("bucket_exists", time.Since(start), true)
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
		metrics.RecordObjectStoreOperation("make_bucket", time.Since(start), false)
		return fmt.Errorf("create bucket %s: %w", s.cfg.Bucket, err)
	}
	metrics.RecordObjectStoreOperation("make_bucket", time.Since(start), true)
	logger.Info("created bucket", zap.String("bucket", s.cfg.Bucket))
	return nil
}

func (s *MinioStore) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	start := time.Now()
	key := ObjectKey(in.Folder, in.FileName)

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key, in.Body, in.Size, minio.PutObjectOptions{
		ContentType: in.ContentType,
	})
	if err != nil {
		metrics.RecordObjectStoreOperation("put_object", time.Since(start), false)
		return UploadResult{}, fmt.Errorf("put object %s: %w", key, err)
	}
	metrics.RecordObjectStoreOperation("put_object", time.Since(start), true)
	logger.Debug("minio put object", zap.String("key", key), zap.Int64("size", in.Size))

	return UploadResult{
		ObjectID: key,
		Name:     in.FileName,
		FilePath: key,
		URL:      PublicURL(s.cfg, key),
	}, nil
}

// FindByName lists the direct children of folder for an object whose last
// key segment equals name. At most one match is returned.
func (s *MinioStore) FindByName(ctx context.Context, folder, name string) ([]ObjectInfo, error) {
	prefix, err := listPrefix(folder)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := s.client.ListObjects(ctx, s.cfg.Bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	})
	for obj := range objects {
		if obj.Err != nil {
			metrics.RecordObjectStoreOperation("list_objects", time.Since(start), false)
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		if matchesName(obj.Key, name) {
			metrics.RecordObjectStoreOperation("list_objects", time.Since(start), true)
			return []ObjectInfo{{ObjectID: obj.Key, Name: name, Size: obj.Size}}, nil
		}
	}
	metrics.RecordObjectStoreOperation("list_objects", time.Since(start), true)
	return nil, nil
}

func (s *MinioStore) Delete(ctx context.Context, objectID string) error {
	start := time.Now()
	if err := s.client.RemoveObject(ctx, s.cfg.Bucket, objectID, minio.RemoveObjectOptions{}); err != nil {
		metrics.RecordObjectStoreOperation("delete_object", time.Since(start), false)
		return fmt.Errorf("delete object %s: %w", objectID, err)
	}
	metrics.RecordObjectStoreOperation("delete_object", time.Since(start), true)
	logger.Debug("minio delete object", zap.String("key", objectID))
	return nil
}
