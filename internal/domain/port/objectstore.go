package port

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ObjectStore holds processed artifacts and mints time-limited download
// URLs.
type ObjectStore interface {
	// UploadFrames packages the frame directory into a zip and uploads it,
	// returning the storage key and the archive size in bytes.
	UploadFrames(ctx context.Context, framesDir, userID string, videoID uuid.UUID) (string, int64, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}
