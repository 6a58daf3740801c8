package entity

import (
	"time"

	"github.com/google/uuid"
)

type VideoStatus string

const (
	VideoStatusPending    VideoStatus = "PENDING"
	VideoStatusQueued     VideoStatus = "QUEUED"
	VideoStatusProcessing VideoStatus = "PROCESSING"
	VideoStatusCompleted  VideoStatus = "COMPLETED"
	VideoStatusFailed     VideoStatus = "FAILED"
)

// DefaultMaxProcessingAttempts bounds how often a video may be re-submitted
// for processing before operator intervention is required.
const DefaultMaxProcessingAttempts = 3

// Video is one uploaded media asset tracked through the processing lifecycle.
// Status transitions happen only through the methods below; the repository
// persists whatever state the owning use case produced.
type Video struct {
	ID                 uuid.UUID
	UserID             string
	Filename           string
	OriginalName       string
	MimeType           string
	Size               int64
	Duration           *float64
	Status             VideoStatus
	ProcessedAt        *time.Time
	ErrorMessage       string
	DownloadURL        string
	S3Key              string
	ProcessingAttempts int
	Metadata           *VideoMetadata
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func NewVideo(userID, filename, originalName, mimeType string, size int64) *Video {
	now := time.Now().UTC()
	return &Video{
		ID:           uuid.New(),
		UserID:       userID,
		Filename:     filename,
		OriginalName: originalName,
		MimeType:     mimeType,
		Size:         size,
		Status:       VideoStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CanBeProcessed reports whether the video is in a state that accepts a new
// processing request. Attempt ceilings are checked separately by the policy
// layer.
func (v *Video) CanBeProcessed() bool {
	return v.Status == VideoStatusPending || v.Status == VideoStatusFailed
}

func (v *Video) QueueForProcessing() {
	v.Status = VideoStatusQueued
	v.UpdatedAt = time.Now().UTC()
}

// StartProcessing moves the video to PROCESSING, bumps the attempt counter
// and clears any error left over from a previous run. The counter never
// decreases.
func (v *Video) StartProcessing() {
	v.Status = VideoStatusProcessing
	v.ProcessingAttempts++
	v.ErrorMessage = ""
	v.UpdatedAt = time.Now().UTC()
}

func (v *Video) CompleteProcessing(s3Key, downloadURL string, duration *float64) {
	now := time.Now().UTC()
	v.Status = VideoStatusCompleted
	v.S3Key = s3Key
	v.DownloadURL = downloadURL
	v.ProcessedAt = &now
	if duration != nil {
		v.Duration = duration
	}
	v.UpdatedAt = now
}

func (v *Video) FailProcessing(errMsg string) {
	v.Status = VideoStatusFailed
	v.ErrorMessage = errMsg
	v.UpdatedAt = time.Now().UTC()
}

func (v *Video) HasExceededMaxAttempts(maxAttempts int) bool {
	return v.ProcessingAttempts >= maxAttempts
}
