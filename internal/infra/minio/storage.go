package minio

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/videoplat/video-processing-service/internal/domain/port"
)

// Storage is the object-store adapter for processed artifacts. Bucket
// creation is an explicit step (EnsureBuckets), never a constructor side
// effect.
type Storage struct {
	client    *miniogo.Client
	zipBucket string
	zipper    port.Zipper
	tempDir   string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	ZipBucket string
	TempDir   string
}

func NewStorage(cfg StorageConfig, zipper port.Zipper) (*Storage, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &Storage{
		client:    client,
		zipBucket: cfg.ZipBucket,
		zipper:    zipper,
		tempDir:   cfg.TempDir,
	}, nil
}

func (s *Storage) EnsureBuckets(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.zipBucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.zipBucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.zipBucket, miniogo.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.zipBucket, err)
		}
	}
	return nil
}

// UploadFrames zips the frame directory and uploads the archive under
// <userID>/<videoID>_frames.zip.
func (s *Storage) UploadFrames(ctx context.Context, framesDir, userID string, videoID uuid.UUID) (string, int64, error) {
	frames, err := filepath.Glob(filepath.Join(framesDir, "*"))
	if err != nil {
		return "", 0, fmt.Errorf("list frames: %w", err)
	}
	if len(frames) == 0 {
		return "", 0, fmt.Errorf("no frames found in %s", framesDir)
	}

	zipPath := filepath.Join(s.tempDir, fmt.Sprintf("%s_frames.zip", videoID))
	size, err := s.zipper.CreateZip(ctx, frames, zipPath)
	if err != nil {
		return "", 0, fmt.Errorf("create zip: %w", err)
	}
	defer os.Remove(zipPath)

	key := fmt.Sprintf("%s/%s_frames.zip", userID, videoID)
	_, err = s.client.FPutObject(ctx, s.zipBucket, key, zipPath, miniogo.PutObjectOptions{
		ContentType: "application/zip",
	})
	if err != nil {
		return "", 0, fmt.Errorf("upload zip: %w", err)
	}
	return key, size, nil
}

func (s *Storage) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.zipBucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}

func (s *Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.zipBucket, key, miniogo.StatObjectOptions{})
	if err != nil {
		if resp := miniogo.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", key, err)
	}
	return true, nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.zipBucket, key, miniogo.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
