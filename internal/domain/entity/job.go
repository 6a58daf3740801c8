package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
	JobStatusDelayed    JobStatus = "DELAYED"
)

// JobOptions are the per-job frame extraction parameters. Zero values are
// filled with defaults by the policy layer before the job is persisted.
type JobOptions struct {
	FramesPerSecond    int    `json:"frames_per_second"`
	OutputFormat       string `json:"output_format"`
	CompressionQuality int    `json:"compression_quality"`
	MaxWidth           int    `json:"max_width"`
	MaxHeight          int    `json:"max_height"`
}

// JobResult is the summary written once when a job completes.
type JobResult struct {
	TotalFrames     int     `json:"total_frames"`
	ProcessedFrames int     `json:"processed_frames"`
	OutputSize      int64   `json:"output_size"`
	Duration        float64 `json:"duration_seconds"`
	ZipKey          string  `json:"zip_key"`
}

// ProcessingJob is one queued unit of work against a video. Retries mutate
// the same job row; a new Process request for the same video creates a new
// job. Attempts is the authoritative retry counter.
type ProcessingJob struct {
	ID           uuid.UUID
	VideoID      uuid.UUID
	UserID       string
	InputPath    string
	OutputPath   string
	Priority     int
	Attempts     int
	MaxAttempts  int
	Status       JobStatus
	StartedAt    *time.Time
	CompletedAt  *time.Time
	FailedAt     *time.Time
	ScheduledFor *time.Time
	ErrorMessage string
	Options      JobOptions
	Result       *JobResult
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewProcessingJob(videoID uuid.UUID, userID, inputPath string, priority int, opts JobOptions, maxAttempts int) *ProcessingJob {
	now := time.Now().UTC()
	return &ProcessingJob{
		ID:          uuid.New(),
		VideoID:     videoID,
		UserID:      userID,
		InputPath:   inputPath,
		Priority:    priority,
		MaxAttempts: maxAttempts,
		Status:      JobStatusPending,
		Options:     opts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CanBeProcessed reports whether the job may run: fresh, or failed with
// attempts remaining.
func (j *ProcessingJob) CanBeProcessed() bool {
	if j.Status == JobStatusPending {
		return true
	}
	return j.Status == JobStatusFailed && j.Attempts < j.MaxAttempts
}

func (j *ProcessingJob) StartProcessing() {
	now := time.Now().UTC()
	j.Status = JobStatusProcessing
	j.Attempts++
	j.StartedAt = &now
	j.ErrorMessage = ""
	j.UpdatedAt = now
}

func (j *ProcessingJob) CompleteProcessing(result JobResult) {
	now := time.Now().UTC()
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
	j.Result = &result
	j.UpdatedAt = now
}

func (j *ProcessingJob) FailProcessing(errMsg string) {
	now := time.Now().UTC()
	j.Status = JobStatusFailed
	j.FailedAt = &now
	j.ErrorMessage = errMsg
	j.UpdatedAt = now
}

// Delay parks the job until the given time. Promotion back to PENDING is the
// queue's responsibility, not an in-process scheduler's.
func (j *ProcessingJob) Delay(until time.Time) {
	j.Status = JobStatusDelayed
	j.ScheduledFor = &until
	j.UpdatedAt = time.Now().UTC()
}

func (j *ProcessingJob) HasExceededMaxAttempts() bool {
	return j.Attempts >= j.MaxAttempts
}

// NextRetryDelay is the exponential backoff consumed by the queue's retry
// scheduling: 2^attempts seconds.
func (j *ProcessingJob) NextRetryDelay() time.Duration {
	return time.Duration(math.Pow(2, float64(j.Attempts))) * time.Second
}
