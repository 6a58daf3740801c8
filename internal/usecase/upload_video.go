package usecase

import (
	"context"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/videoplat/video-processing-service/internal/domain/apperr"
	"github.com/videoplat/video-processing-service/internal/domain/entity"
	"github.com/videoplat/video-processing-service/internal/domain/policy"
	"github.com/videoplat/video-processing-service/internal/domain/port"
)

// UploadInput carries one multipart upload into the use case.
type UploadInput struct {
	Filename string
	MimeType string
	Size     int64
	Content  io.Reader
}

type UploadVideoUseCase struct {
	videos    port.VideoRepository
	files     port.FileStore
	extractor port.FrameExtractor
	logger    *zap.Logger

	maxSizeBytes int64
	allowedTypes []string
}

type UploadVideoConfig struct {
	MaxSizeBytes int64
	AllowedTypes []string
}

func NewUploadVideoUseCase(
	videos port.VideoRepository,
	files port.FileStore,
	extractor port.FrameExtractor,
	logger *zap.Logger,
	cfg UploadVideoConfig,
) *UploadVideoUseCase {
	return &UploadVideoUseCase{
		videos:       videos,
		files:        files,
		extractor:    extractor,
		logger:       logger,
		maxSizeBytes: cfg.MaxSizeBytes,
		allowedTypes: cfg.AllowedTypes,
	}
}

// Execute validates the upload, stores the file, probes metadata best-effort
// and records the video in PENDING. A rejected upload never touches the file
// store.
func (uc *UploadVideoUseCase) Execute(ctx context.Context, in UploadInput, userID string) (*entity.Video, error) {
	if v := policy.ValidateVideoForUpload(in.Filename, in.MimeType, in.Size, uc.maxSizeBytes, uc.allowedTypes); !v.Valid {
		return nil, apperr.Validation(v.Reason)
	}

	storedName := uuid.NewString() + filepath.Ext(in.Filename)
	savedName, err := uc.files.Save(ctx, in.Content, userID, storedName)
	if err != nil {
		return nil, apperr.Wrap("failed to upload video", err)
	}

	video := entity.NewVideo(userID, savedName, in.Filename, in.MimeType, in.Size)

	// Metadata probing is best-effort: an upload must not fail because
	// ffprobe could not read the file.
	if meta, err := uc.extractor.Probe(ctx, uc.files.Path(userID, savedName)); err != nil {
		uc.logger.Warn("metadata probe failed, storing video without metadata",
			zap.String("video_id", video.ID.String()),
			zap.Error(err),
		)
	} else {
		video.Metadata = meta
		d := meta.Duration
		video.Duration = &d
	}

	if err := uc.videos.Create(ctx, video); err != nil {
		return nil, apperr.Wrap("failed to upload video", err)
	}

	uc.logger.Info("video uploaded",
		zap.String("video_id", video.ID.String()),
		zap.String("user_id", userID),
		zap.Int64("size", in.Size),
	)

	return video, nil
}
