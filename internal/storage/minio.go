package storage

import (
	"Go_Site/config"
	"Go_Site/utils"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioStore implements Store with a MinIO client.
type MinioStore struct {
	client *minio.Client
}

// NewMinioStore builds a Store from a MinIO client.
func NewMinioStore(client *minio.Client) *MinioStore {
	return &MinioStore{client: client}
}

// PutObject uploads an object to MinIO.
func (s *MinioStore) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts PutOptions) error {
	_, err := s.client.PutObject(ctx, bucket, object, reader, size, minio.PutObjectOptions{
		ContentType: opts.ContentType,
	})
	return err
}

// StatObject returns object metadata, mapping NoSuchKey to ErrObjectNotFound.
func (s *MinioStore) StatObject(ctx context.Context, bucket, object string) (ObjectInfo, error) {
	stat, err := s.client.StatObject(ctx, bucket, object, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ObjectInfo{}, ErrObjectNotFound
		}
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		ObjectName:  object,
		Size:        stat.Size,
		ContentType: stat.ContentType,
	}, nil
}

// RemoveObject deletes an object from MinIO.
func (s *MinioStore) RemoveObject(ctx context.Context, bucket, object string) error {
	return s.client.RemoveObject(ctx, bucket, object, minio.RemoveObjectOptions{})
}

// CopyObject performs a server-side copy.
func (s *MinioStore) CopyObject(ctx context.Context, dest CopyDest, src CopySource) error {
	_, err := s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: dest.Bucket, Object: dest.Object},
		minio.CopySrcOptions{Bucket: src.Bucket, Object: src.Object},
	)
	if err != nil && minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrObjectNotFound
	}
	return err
}

// InitStorage sets Default according to STORAGE_DRIVER.
func InitStorage() {
	if config.AppConfig.StorageDriver == "memory" {
		utils.Log.Warn("using in-memory media storage; objects are lost on restart")
		Default = NewMemoryStore()
		return
	}
	InitMinio()
}

// InitMinio initializes MinIO client and bucket.
func InitMinio() {
	client, err := minio.New(fmt.Sprintf("%s:%s", config.AppConfig.MinioHost, config.AppConfig.MinioPort), &minio.Options{
		Creds:  credentials.NewStaticV4(config.AppConfig.MinioUsername, config.AppConfig.MinioPassword, ""),
		Secure: config.AppConfig.MinioUseSSL,
	})
	if err != nil {
		utils.Log.Fatal("minio error", zap.Error(err))
	}
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, config.AppConfig.BucketName)
	if err != nil {
		utils.Log.Fatal("check bucket fail", zap.Error(err))
	}
	if !exists { // 不需要人工去 minio 建立 bucket 直接后端进行操作
		if err := client.MakeBucket(ctx, config.AppConfig.BucketName, minio.MakeBucketOptions{}); err != nil {
			utils.Log.Fatal("create bucket fail", zap.Error(err))
		}
	}
	utils.Log.Info("init minio success", zap.String("bucket", config.AppConfig.BucketName))
	Default = NewMinioStore(client)
}

// DefaultLocator builds the Locator for the configured bucket and CDN.
func DefaultLocator() Locator {
	return Locator{
		Bucket:  config.AppConfig.BucketName,
		Prefix:  config.Media().ObjectPrefix,
		BaseURL: config.AppConfig.CDNBaseURL,
	}
}
