package datalayer

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/reverb-bot/reverb/internal/config"
)

type PutOptions struct {
	Size        int64
	ContentType string
}

// BlobStorage stores and retrieves opaque objects by key.
type BlobStorage interface {
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

type MinioStorage struct {
	client *minio.Client
	bucket string
}

func NewMinioStorageFromEnv() (*MinioStorage, error) {
	cfg, err := config.NewMinioConfigFromEnv()
	if err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Username, cfg.Password, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}

	return &MinioStorage{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

func (s *MinioStorage) EnsureBucket(ctx context.Context) error {
	err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	// If the bucket is already owned, succeed
	if err != nil {
		if minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
			return nil
		}
		return err
	}
	return nil
}

var _ BlobStorage = (*MinioStorage)(nil)

func (s *MinioStorage) Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, data, opts.Size, minio.PutObjectOptions{
		ContentType: opts.ContentType,
	})
	return err
}

func (s *MinioStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; surface missing objects here rather than on the
	// first read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}

func (s *MinioStorage) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// SoundStore keys encoded sound frames by sound ID under a fixed prefix.
type SoundStore struct {
	storage BlobStorage
	prefix  string
}

func NewSoundStore(storage BlobStorage) *SoundStore {
	return &SoundStore{storage: storage, prefix: "sounds"}
}

func (s *SoundStore) key(soundID string) string {
	return s.prefix + "/" + soundID
}

func (s *SoundStore) Put(ctx context.Context, soundID string, data io.Reader, size int64) error {
	return s.storage.Put(ctx, s.key(soundID), data, PutOptions{
		Size:        size,
		ContentType: "application/octet-stream",
	})
}

// Fetch returns the stored length-prefixed Opus frames for a sound.
func (s *SoundStore) Fetch(ctx context.Context, soundID string) (io.ReadCloser, error) {
	body, err := s.storage.Get(ctx, s.key(soundID))
	if err != nil {
		return nil, fmt.Errorf("fetch sound %s: %w", soundID, err)
	}
	return body, nil
}

func (s *SoundStore) Remove(ctx context.Context, soundID string) error {
	return s.storage.Remove(ctx, s.key(soundID))
}
