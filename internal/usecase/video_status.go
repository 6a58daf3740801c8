package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/videoplat/video-processing-service/internal/domain/apperr"
	"github.com/videoplat/video-processing-service/internal/domain/entity"
	"github.com/videoplat/video-processing-service/internal/domain/port"
)

const downloadURLTTL = time.Hour

// VideoPage is one page of an owner-scoped listing.
type VideoPage struct {
	Videos []entity.Video
	Total  int64
	Page   int
	Limit  int
}

type VideoStatusUseCase struct {
	videos port.VideoRepository
	store  port.ObjectStore
	logger *zap.Logger
}

func NewVideoStatusUseCase(videos port.VideoRepository, store port.ObjectStore, logger *zap.Logger) *VideoStatusUseCase {
	return &VideoStatusUseCase{videos: videos, store: store, logger: logger}
}

// GetVideoByID returns the caller's video. Absent and not-owned are the same
// NotFound so existence never leaks across owners.
func (uc *VideoStatusUseCase) GetVideoByID(ctx context.Context, videoID uuid.UUID, userID string) (*entity.Video, error) {
	video, err := uc.videos.FindByID(ctx, videoID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("video not found")
		}
		return nil, apperr.Wrap("failed to load video", err)
	}
	if video.UserID != userID {
		return nil, apperr.NotFound("video not found")
	}

	uc.attachDownloadURL(ctx, video)
	return video, nil
}

// GetUserVideos lists the caller's videos with page/limit pagination.
// Per-item URL minting is best-effort; one bad presign does not fail the
// page.
func (uc *VideoStatusUseCase) GetUserVideos(ctx context.Context, userID string, status entity.VideoStatus, page, limit int) (*VideoPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	videos, err := uc.videos.FindByUser(ctx, userID, port.VideoFilter{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, apperr.Wrap("failed to list videos", err)
	}

	total, err := uc.videos.CountByUser(ctx, userID, status)
	if err != nil {
		return nil, apperr.Wrap("failed to list videos", err)
	}

	for i := range videos {
		uc.attachDownloadURL(ctx, &videos[i])
	}

	return &VideoPage{Videos: videos, Total: total, Page: page, Limit: limit}, nil
}

// GetVideosByStatus is the operational listing used by background tooling;
// it is not owner-scoped.
func (uc *VideoStatusUseCase) GetVideosByStatus(ctx context.Context, status entity.VideoStatus, limit int) ([]entity.Video, error) {
	videos, err := uc.videos.FindByStatus(ctx, status, limit)
	if err != nil {
		return nil, apperr.Wrap("failed to list videos by status", err)
	}
	return videos, nil
}

// DownloadURL mints a fresh presigned URL for a completed video. Unlike the
// listing paths this is not best-effort: a download request with no URL is an
// error.
func (uc *VideoStatusUseCase) DownloadURL(ctx context.Context, videoID uuid.UUID, userID string) (string, error) {
	video, err := uc.videos.FindByID(ctx, videoID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return "", apperr.NotFound("video not found")
		}
		return "", apperr.Wrap("failed to load video", err)
	}
	if video.UserID != userID {
		return "", apperr.NotFound("video not found")
	}
	if video.Status != entity.VideoStatusCompleted || video.S3Key == "" {
		return "", apperr.Validation("video is not ready for download")
	}
	url, err := uc.store.PresignedURL(ctx, video.S3Key, downloadURLTTL)
	if err != nil {
		return "", apperr.Wrap("failed to generate download url", err)
	}
	return url, nil
}

func (uc *VideoStatusUseCase) attachDownloadURL(ctx context.Context, video *entity.Video) {
	if video.Status != entity.VideoStatusCompleted || video.S3Key == "" {
		return
	}
	url, err := uc.store.PresignedURL(ctx, video.S3Key, downloadURLTTL)
	if err != nil {
		uc.logger.Warn("failed to generate download url",
			zap.String("video_id", video.ID.String()),
			zap.Error(err),
		)
		video.DownloadURL = ""
		return
	}
	video.DownloadURL = url
}
