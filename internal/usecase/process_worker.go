package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/videoplat/video-processing-service/internal/domain/entity"
	"github.com/videoplat/video-processing-service/internal/domain/policy"
	"github.com/videoplat/video-processing-service/internal/domain/port"
	"github.com/videoplat/video-processing-service/internal/infra/metrics"
)

// ProcessWorker consumes one work message per invocation and drives the
// Video/Job pair through processing. Every path out of Execute leaves both
// entities in COMPLETED or FAILED; a returned error tells the queue to retry
// with backoff.
type ProcessWorker struct {
	videos    port.VideoRepository
	jobs      port.JobRepository
	extractor port.FrameExtractor
	store     port.ObjectStore
	status    port.StatusPublisher
	dlq       port.DLQPublisher
	notifier  port.Notifier
	logger    *zap.Logger
	tempDir   string
}

type ProcessWorkerConfig struct {
	TempDir string
}

func NewProcessWorker(
	videos port.VideoRepository,
	jobs port.JobRepository,
	extractor port.FrameExtractor,
	store port.ObjectStore,
	status port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.Notifier,
	logger *zap.Logger,
	cfg ProcessWorkerConfig,
) *ProcessWorker {
	return &ProcessWorker{
		videos:    videos,
		jobs:      jobs,
		extractor: extractor,
		store:     store,
		status:    status,
		dlq:       dlq,
		notifier:  notifier,
		logger:    logger,
		tempDir:   cfg.TempDir,
	}
}

// Execute handles one delivery. A nil return acks the message; an error
// nacks it back to the queue for retry.
func (w *ProcessWorker) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("worker")
	ctx, span := tracer.Start(ctx, "ProcessWorker.Execute")
	defer span.End()

	totalTimer := time.Now()

	var task entity.ProcessingTask
	if err := json.Unmarshal(rawMsg, &task); err != nil {
		w.logger.Error("failed to unmarshal task", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = w.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}
	if err := task.Validate(); err != nil {
		w.logger.Error("invalid task message", zap.Error(err))
		_ = w.dlq.PublishToDLQ(ctx, rawMsg, "invalid_task: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", task.JobID.String()),
		attribute.String("video.id", task.VideoID.String()),
	)

	log := w.logger.With(
		zap.String("job_id", task.JobID.String()),
		zap.String("video_id", task.VideoID.String()),
	)

	job, err := w.jobs.FindByID(ctx, task.JobID)
	if err != nil {
		log.Error("failed to load job", zap.Error(err))
		return fmt.Errorf("load job: %w", err)
	}

	if job.Status == entity.JobStatusCompleted {
		log.Warn("job already completed, dropping duplicate delivery")
		return nil
	}
	if job.Status == entity.JobStatusProcessing {
		// The broker redelivers unacked messages, so a PROCESSING job here
		// means a worker died mid-run. Fail both entities and let the
		// requeue drive the retry; leaving them PROCESSING would wedge the
		// video forever.
		log.Warn("job still marked PROCESSING on redelivery, treating interrupted run as failed")
		return w.handleFailure(ctx, job, task, rawMsg, "processing interrupted", log)
	}
	if !job.CanBeProcessed() {
		log.Warn("job exhausted retries, sending to DLQ")
		return w.handlePermanentFailure(ctx, job, task, rawMsg, "max retries exceeded", log)
	}

	// Fencing: the CAS write is the only gate against a concurrent run for
	// the same video. A miss means someone else already moved it on.
	fenced, err := w.videos.TransitionStatus(ctx, task.VideoID,
		[]entity.VideoStatus{entity.VideoStatusQueued, entity.VideoStatusFailed},
		entity.VideoStatusProcessing,
	)
	if err != nil {
		log.Error("failed to transition video to PROCESSING", zap.Error(err))
		return fmt.Errorf("transition video: %w", err)
	}
	if !fenced {
		log.Warn("video not in a processable state, dropping duplicate delivery")
		return nil
	}

	w.markStarted(ctx, job, task, log)

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := w.runPipeline(ctx, job, task, rawMsg, log); err != nil {
		return err
	}

	metrics.JobsProcessedTotal.WithLabelValues("completed").Inc()
	metrics.JobProcessingDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())
	return nil
}

// markStarted records the PROCESSING state on both entities. Best-effort:
// bookkeeping failures are logged, the pipeline still runs.
func (w *ProcessWorker) markStarted(ctx context.Context, job *entity.ProcessingJob, task entity.ProcessingTask, log *zap.Logger) {
	job.StartProcessing()
	if err := w.jobs.Update(ctx, job); err != nil {
		log.Error("failed to update job to PROCESSING", zap.Error(err))
	}

	video, err := w.videos.FindByID(ctx, task.VideoID)
	if err != nil {
		log.Error("failed to load video for attempt bookkeeping", zap.Error(err))
		return
	}
	video.StartProcessing()
	if err := w.videos.Update(ctx, video); err != nil {
		log.Error("failed to update video attempt counter", zap.Error(err))
	}
}

func (w *ProcessWorker) runPipeline(
	ctx context.Context,
	job *entity.ProcessingJob,
	task entity.ProcessingTask,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("worker")
	pipelineStart := time.Now()

	workDir := filepath.Join(w.tempDir, job.ID.String())
	framesDir := filepath.Join(workDir, "frames")
	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return w.handleFailure(ctx, job, task, rawMsg, "create workdir: "+err.Error(), log)
	}
	defer os.RemoveAll(workDir)

	exStart := time.Now()
	exCtx, exSpan := tracer.Start(ctx, "extract_frames")
	extracted, err := w.extractor.ExtractFrames(exCtx, task.InputPath, framesDir, port.ExtractOptions{
		FramesPerSecond: task.Options.FramesPerSecond,
		OutputFormat:    task.Options.OutputFormat,
		MaxWidth:        task.Options.MaxWidth,
		MaxHeight:       task.Options.MaxHeight,
	})
	exSpan.End()
	if err != nil {
		log.Error("frame extraction failed", zap.Error(err))
		return w.handleFailure(ctx, job, task, rawMsg, "extract_frames: "+err.Error(), log)
	}
	metrics.JobProcessingDuration.WithLabelValues("extract").Observe(time.Since(exStart).Seconds())
	metrics.FramesExtractedTotal.Add(float64(extracted.TotalFrames))

	upStart := time.Now()
	upCtx, upSpan := tracer.Start(ctx, "upload_frames")
	zipKey, zipSize, err := w.store.UploadFrames(upCtx, framesDir, task.UserID, task.VideoID)
	upSpan.End()
	if err != nil {
		log.Error("frame upload failed", zap.Error(err))
		return w.handleFailure(ctx, job, task, rawMsg, "upload_frames: "+err.Error(), log)
	}
	metrics.JobProcessingDuration.WithLabelValues("upload").Observe(time.Since(upStart).Seconds())

	result := entity.ProcessingResult{
		Success:         true,
		TotalFrames:     extracted.TotalFrames,
		ProcessedFrames: extracted.TotalFrames,
		OutputPath:      zipKey,
		OutputSize:      zipSize,
		ProcessingTime:  time.Since(pipelineStart),
	}
	if v := policy.ValidateResult(result); !v.Valid {
		log.Error("processing result rejected", zap.String("reason", v.Reason))
		return w.handleFailure(ctx, job, task, rawMsg, "invalid_result: "+v.Reason, log)
	}

	var duration *float64
	if extracted.VideoDuration > 0 {
		duration = &extracted.VideoDuration
	}

	video, err := w.videos.FindByID(ctx, task.VideoID)
	if err != nil {
		return w.handleFailure(ctx, job, task, rawMsg, "load video: "+err.Error(), log)
	}
	video.CompleteProcessing(zipKey, "", duration)
	if err := w.videos.Update(ctx, video); err != nil {
		return w.handleFailure(ctx, job, task, rawMsg, "persist video: "+err.Error(), log)
	}

	job.CompleteProcessing(entity.JobResult{
		TotalFrames:     extracted.TotalFrames,
		ProcessedFrames: extracted.TotalFrames,
		OutputSize:      zipSize,
		Duration:        extracted.VideoDuration,
		ZipKey:          zipKey,
	})
	if err := w.jobs.Update(ctx, job); err != nil {
		log.Error("failed to update job to COMPLETED", zap.Error(err))
		return fmt.Errorf("update job completed: %w", err)
	}

	w.publishStatus(ctx, job, task, log)
	w.notifyCompletion(ctx, task, zipKey, log)

	log.Info("job completed",
		zap.Int("frame_count", extracted.TotalFrames),
		zap.Float64("duration_secs", extracted.VideoDuration),
		zap.String("zip_key", zipKey),
	)
	return nil
}

// notifyCompletion mints a download URL and notifies the user. Both steps
// are best-effort; their failure never fails a completed job.
func (w *ProcessWorker) notifyCompletion(ctx context.Context, task entity.ProcessingTask, zipKey string, log *zap.Logger) {
	downloadURL, err := w.store.PresignedURL(ctx, zipKey, downloadURLTTL)
	if err != nil {
		log.Warn("failed to generate download url for notification", zap.Error(err))
	}
	if err := w.notifier.NotifyProcessingComplete(ctx, task.UserID, task.VideoID, downloadURL, task.User); err != nil {
		log.Warn("failed to send completion notification", zap.Error(err))
	}
}

// handleFailure records the failure on both entities, notifies the user and
// decides between requeue and DLQ.
func (w *ProcessWorker) handleFailure(
	ctx context.Context,
	job *entity.ProcessingJob,
	task entity.ProcessingTask,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	job.FailProcessing(errMsg)
	if err := w.jobs.Update(ctx, job); err != nil {
		log.Error("failed to persist job failure", zap.Error(err))
	}

	if video, err := w.videos.FindByID(ctx, task.VideoID); err != nil {
		log.Error("failed to load video for failure bookkeeping", zap.Error(err))
	} else {
		video.FailProcessing(errMsg)
		if err := w.videos.Update(ctx, video); err != nil {
			log.Error("failed to persist video failure", zap.Error(err))
		}
	}

	// The permanent path sends its own notification; notifying here too
	// would tell the owner about the same terminal failure twice.
	if job.HasExceededMaxAttempts() {
		return w.handlePermanentFailure(ctx, job, task, rawMsg, errMsg, log)
	}

	if err := w.notifier.NotifyProcessingFailed(ctx, task.UserID, task.VideoID, errMsg, task.User); err != nil {
		log.Warn("failed to send failure notification", zap.Error(err))
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempts)).Inc()
	w.publishStatus(ctx, job, task, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", job.Attempts, job.MaxAttempts, errMsg)
}

// handlePermanentFailure parks the message on the DLQ and acks. The job is
// only eligible again through an explicit new Process request.
func (w *ProcessWorker) handlePermanentFailure(
	ctx context.Context,
	job *entity.ProcessingJob,
	task entity.ProcessingTask,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	if job.Status != entity.JobStatusFailed {
		job.FailProcessing(errMsg)
		if err := w.jobs.Update(ctx, job); err != nil {
			log.Error("failed to persist job failure", zap.Error(err))
		}
	}

	_ = w.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	w.publishStatus(ctx, job, task, log)
	metrics.JobsProcessedTotal.WithLabelValues("dlq").Inc()

	if err := w.notifier.NotifyProcessingFailed(ctx, task.UserID, task.VideoID, errMsg, task.User); err != nil {
		log.Warn("failed to send permanent failure notification", zap.Error(err))
	}

	return nil
}

func (w *ProcessWorker) publishStatus(ctx context.Context, job *entity.ProcessingJob, task entity.ProcessingTask, log *zap.Logger) {
	msg := entity.JobStatusMessage{
		JobID:        job.ID,
		VideoID:      job.VideoID,
		UserID:       job.UserID,
		Status:       job.Status,
		ErrorMessage: job.ErrorMessage,
		Attempt:      job.Attempts,
		MaxAttempts:  job.MaxAttempts,
	}
	if job.Result != nil {
		msg.ZipKey = job.Result.ZipKey
		msg.FrameCount = job.Result.TotalFrames
		msg.Duration = job.Result.Duration
	}
	if err := w.status.PublishStatus(ctx, msg); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
