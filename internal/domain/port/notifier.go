package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/videoplat/video-processing-service/internal/domain/entity"
)

// Notifier is fire-and-forget from the worker's perspective: failures are
// logged by the caller, never propagated.
type Notifier interface {
	NotifyProcessingComplete(ctx context.Context, userID string, videoID uuid.UUID, downloadURL string, user *entity.UserProfile) error
	NotifyProcessingFailed(ctx context.Context, userID string, videoID uuid.UUID, errMsg string, user *entity.UserProfile) error
}
