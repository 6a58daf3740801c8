package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/videoplat/video-processing-service/internal/domain/entity"
)

// VideoFilter narrows owner-scoped listings. An empty Status means all
// statuses.
type VideoFilter struct {
	Status entity.VideoStatus
	Limit  int
	Offset int
}

type VideoRepository interface {
	Create(ctx context.Context, video *entity.Video) error
	Update(ctx context.Context, video *entity.Video) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Video, error)
	FindByUser(ctx context.Context, userID string, filter VideoFilter) ([]entity.Video, error)
	CountByUser(ctx context.Context, userID string, status entity.VideoStatus) (int64, error)
	FindByStatus(ctx context.Context, status entity.VideoStatus, limit int) ([]entity.Video, error)

	// TransitionStatus performs a compare-and-swap status write and reports
	// whether any row matched. A false return means the video was not in one
	// of the expected states, which the worker treats as a duplicate
	// delivery.
	TransitionStatus(ctx context.Context, id uuid.UUID, from []entity.VideoStatus, to entity.VideoStatus) (bool, error)
}

type JobRepository interface {
	Create(ctx context.Context, job *entity.ProcessingJob) error
	Update(ctx context.Context, job *entity.ProcessingJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ProcessingJob, error)
	FindByVideo(ctx context.Context, videoID uuid.UUID) ([]entity.ProcessingJob, error)
}
