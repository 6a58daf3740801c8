package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/videoplat/video-processing-service/internal/domain/apperr"
	"github.com/videoplat/video-processing-service/internal/domain/entity"
	"github.com/videoplat/video-processing-service/internal/domain/policy"
	"github.com/videoplat/video-processing-service/internal/domain/port"
)

// ProcessRequest is one explicit processing request from the API.
type ProcessRequest struct {
	VideoID uuid.UUID
	UserID  string
	Tier    policy.Tier
	User    *entity.UserProfile
	Options entity.JobOptions
}

type ProcessVideoUseCase struct {
	videos port.VideoRepository
	jobs   port.JobRepository
	queue  port.TaskQueue
	files  port.FileStore
	logger *zap.Logger
}

func NewProcessVideoUseCase(
	videos port.VideoRepository,
	jobs port.JobRepository,
	queue port.TaskQueue,
	files port.FileStore,
	logger *zap.Logger,
) *ProcessVideoUseCase {
	return &ProcessVideoUseCase{
		videos: videos,
		jobs:   jobs,
		queue:  queue,
		files:  files,
		logger: logger,
	}
}

// Execute accepts a processing request: ownership and eligibility are checked
// up front, exactly one job row is created, the work message is enqueued at
// the computed priority, and the video moves to QUEUED.
func (uc *ProcessVideoUseCase) Execute(ctx context.Context, req ProcessRequest) (*entity.Video, error) {
	video, err := uc.videos.FindByID(ctx, req.VideoID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("video not found")
		}
		return nil, apperr.Wrap("failed to load video", err)
	}

	if video.UserID != req.UserID {
		return nil, apperr.Unauthorized("unauthorized to process this video")
	}

	if !policy.CanVideoBeProcessed(video) {
		return nil, apperr.Validation(fmt.Sprintf(
			"video cannot be processed (status: %s, attempts: %d)",
			video.Status, video.ProcessingAttempts,
		))
	}

	inputPath := uc.files.Path(req.UserID, video.Filename)
	job := policy.NewJobDraft(video.ID, req.UserID, inputPath, 0, req.Options)

	if err := uc.jobs.Create(ctx, job); err != nil {
		return nil, apperr.Wrap("failed to process video", err)
	}

	priority := policy.ProcessingPriority(video, req.Tier)
	job.Priority = priority

	task := entity.ProcessingTask{
		JobID:     job.ID,
		VideoID:   video.ID,
		UserID:    req.UserID,
		User:      req.User,
		InputPath: inputPath,
		Options:   job.Options,
	}
	if err := uc.queue.EnqueueProcessing(ctx, task, port.EnqueueOptions{
		Priority:    priority,
		MaxAttempts: job.MaxAttempts,
	}); err != nil {
		return nil, apperr.Wrap("failed to process video", err)
	}

	video.QueueForProcessing()
	if err := uc.videos.Update(ctx, video); err != nil {
		return nil, apperr.Wrap("failed to process video", err)
	}

	uc.logger.Info("video queued for processing",
		zap.String("video_id", video.ID.String()),
		zap.String("job_id", job.ID.String()),
		zap.Int("priority", priority),
	)

	return video, nil
}
