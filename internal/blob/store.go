package blob

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

// Store is the partition-file contract the pipeline consumes. Containers map
// to buckets; paths are object keys within the container.
type Store interface {
	Exists(ctx context.Context, container, path string) (bool, error)
	Download(ctx context.Context, container, path string) ([]byte, error)
	Upload(ctx context.Context, container, path string, data []byte) error
	Delete(ctx context.Context, container, path string) error
	EnsureContainer(ctx context.Context, container string) error
}

type StoreOpts func(c *storeConfig)

type storeConfig struct {
	endpoint        string
	accessKey       string
	secretAccessKey string
	useSSL          bool
}

func WithEndpoint(endpoint string) StoreOpts {
	return func(c *storeConfig) {
		c.endpoint = endpoint
	}
}

func WithAccessKey(accessKey string) StoreOpts {
	return func(c *storeConfig) {
		c.accessKey = accessKey
	}
}

func WithSecretKey(secretKey string) StoreOpts {
	return func(c *storeConfig) {
		c.secretAccessKey = secretKey
	}
}

func WithSSL(useSSL bool) StoreOpts {
	return func(c *storeConfig) {
		c.useSSL = useSSL
	}
}

type minioStore struct {
	client *minio.Client
}

var _ Store = (*minioStore)(nil)

func NewMinioStore(opts ...StoreOpts) (Store, error) {
	cfg := &storeConfig{}
	for _, o := range opts {
		o(cfg)
	}

	client, err := minio.New(cfg.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.accessKey, cfg.secretAccessKey, ""),
		Secure: cfg.useSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "initializing blob client")
	}
	return &minioStore{client: client}, nil
}

func (s *minioStore) Exists(ctx context.Context, container, path string) (bool, error) {
	_, err := s.client.StatObject(ctx, container, path, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *minioStore) Download(ctx context.Context, container, path string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, container, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, errors.Wrapf(err, "downloading %s/%s", container, path)
	}
	return data, nil
}

func (s *minioStore) Upload(ctx context.Context, container, path string, data []byte) error {
	_, err := s.client.PutObject(ctx, container, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

// Delete is idempotent: removing an absent object is not an error.
func (s *minioStore) Delete(ctx context.Context, container, path string) error {
	err := s.client.RemoveObject(ctx, container, path, minio.RemoveObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" {
			return nil
		}
	}
	return err
}

func (s *minioStore) EnsureContainer(ctx context.Context, container string) error {
	exists, err := s.client.BucketExists(ctx, container)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, container, minio.MakeBucketOptions{})
}
