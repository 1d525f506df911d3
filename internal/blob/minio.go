package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/jengzang/greenguardian-backend-go/internal/apperr"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioConfig holds connection settings for the S3-compatible backend
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Location  string `yaml:"location"`
	Secure    bool   `yaml:"secure"`
}

// MinioStore keeps blobs as objects in one bucket.
// Returned paths have the form "s3://<bucket>/<name>".
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects and makes sure the bucket exists
func NewMinioStore(ctx context.Context, cfg MinioConfig, log *zap.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Location}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		log.Info("Created bucket", zap.String("bucket", cfg.Bucket))
	}

	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinioStore) objectPath(name string) string {
	return "s3://" + s.bucket + "/" + name
}

// objectName accepts either a bare key or an "s3://bucket/key" path.
// Paths naming another bucket are refused.
func (s *MinioStore) objectName(op, p string) (string, error) {
	if !strings.HasPrefix(p, "s3://") {
		return p, nil
	}
	name := strings.TrimPrefix(p, "s3://"+s.bucket+"/")
	if name == p || name == "" {
		return "", &apperr.Error{Kind: apperr.KindValidation, Op: op, Msg: p, Err: ErrOutsideStore}
	}
	return name, nil
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// CopyFrom uploads a local file, or copies an object already in the bucket
func (s *MinioStore) CopyFrom(ctx context.Context, src, name string) (string, error) {
	var err error
	if strings.HasPrefix(src, "s3://") {
		from, nameErr := s.objectName("blob.copy", src)
		if nameErr != nil {
			return "", nameErr
		}
		_, err = s.client.CopyObject(ctx,
			minio.CopyDestOptions{Bucket: s.bucket, Object: name},
			minio.CopySrcOptions{Bucket: s.bucket, Object: from})
	} else {
		_, err = s.client.FPutObject(ctx, s.bucket, name, strings.TrimPrefix(src, "file://"),
			minio.PutObjectOptions{ContentType: contentType(name)})
	}
	if err != nil {
		return "", apperr.Storage("blob.copy", err)
	}
	return s.objectPath(name), nil
}

func (s *MinioStore) Write(ctx context.Context, name string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType(name)})
	if err != nil {
		return "", apperr.Storage("blob.write", err)
	}
	return s.objectPath(name), nil
}

func (s *MinioStore) Read(ctx context.Context, p string) ([]byte, error) {
	name, err := s.objectName("blob.read", p)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperr.Storage("blob.read", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, apperr.Storage("blob.read", err)
	}
	return data, nil
}

func (s *MinioStore) Delete(ctx context.Context, p string) error {
	name, err := s.objectName("blob.delete", p)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return apperr.Storage("blob.delete", err)
	}
	return nil
}
