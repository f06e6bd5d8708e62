package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// UploadResult is the public location of an uploaded object and its key in the bucket.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL overrides the scheme://endpoint prefix of returned URLs (CDN, reverse proxy).
	PublicURL string
}

// MinioUploader stores files in a MinIO/S3 compatible bucket.
type MinioUploader struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioUploader connects to MinIO and ensures the bucket exists.
func NewMinioUploader(ctx context.Context, cfg Config) (*MinioUploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &MinioUploader{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL(cfg),
	}, nil
}

// Upload puts data under folder/fileName and returns its public URL.
func (u *MinioUploader) Upload(ctx context.Context, data []byte, fileName, folder string) (*UploadResult, error) {
	key := ObjectKey(folder, fileName)

	_, err := u.client.PutObject(ctx, u.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: http.DetectContentType(data),
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	return &UploadResult{
		URL: ObjectURL(u.baseURL, u.bucket, key),
		Key: key,
	}, nil
}

func (u *MinioUploader) Delete(ctx context.Context, key string) error {
	if err := u.client.RemoveObject(ctx, u.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// ObjectKey joins folder and file name into a bucket key without leading slashes.
func ObjectKey(folder, fileName string) string {
	return strings.TrimPrefix(path.Join(folder, fileName), "/")
}

// ObjectURL builds the path-style URL of key in bucket.
func ObjectURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + key
}

func baseURL(cfg Config) string {
	if cfg.PublicURL != "" {
		return cfg.PublicURL
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint
}
