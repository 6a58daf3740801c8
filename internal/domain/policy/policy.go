// Package policy holds the pure decision functions of the processing domain:
// upload validation, eligibility, queue priority, cost estimation and result
// acceptance. Nothing here performs I/O.
package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/videoplat/video-processing-service/internal/domain/entity"
)

const (
	DefaultMaxUploadBytes = 100 * 1024 * 1024

	defaultFramesPerSecond    = 1
	defaultOutputFormat       = "png"
	defaultCompressionQuality = 95
	defaultMaxWidth           = 1920
	defaultMaxHeight          = 1080

	// minResultEfficiency is the lowest acceptable processed/total frame
	// ratio before a run is rejected as degenerate.
	minResultEfficiency = 50.0
)

// DefaultAllowedMimeTypes mirrors the upload allow-list of the platform.
// application/octet-stream is accepted because some clients do not sniff
// video MIME types on multipart uploads.
var DefaultAllowedMimeTypes = []string{
	"video/mp4",
	"video/avi",
	"video/mov",
	"video/mkv",
	"application/octet-stream",
}

type Tier string

const (
	TierBasic      Tier = "basic"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

// Validation is the outcome of a pure gate: either valid, or invalid with a
// human-readable reason.
type Validation struct {
	Valid  bool
	Reason string
}

func invalid(format string, args ...any) Validation {
	return Validation{Valid: false, Reason: fmt.Sprintf(format, args...)}
}

// CanVideoBeProcessed combines the state-machine guard with the attempt
// ceiling.
func CanVideoBeProcessed(v *entity.Video) bool {
	return v.CanBeProcessed() && !v.HasExceededMaxAttempts(entity.DefaultMaxProcessingAttempts)
}

// ShouldRetryProcessing reports whether a failed video still has attempts
// left for an explicit re-submission.
func ShouldRetryProcessing(v *entity.Video, maxAttempts int) bool {
	return v.Status == entity.VideoStatusFailed && v.ProcessingAttempts < maxAttempts
}

// ValidateVideoForUpload gates an upload before any storage write happens.
func ValidateVideoForUpload(filename, mimeType string, size int64, maxSizeBytes int64, allowedTypes []string) Validation {
	if len(allowedTypes) == 0 {
		allowedTypes = DefaultAllowedMimeTypes
	}
	if maxSizeBytes <= 0 {
		maxSizeBytes = DefaultMaxUploadBytes
	}

	allowed := false
	for _, t := range allowedTypes {
		if t == mimeType {
			allowed = true
			break
		}
	}
	if !allowed {
		return invalid("unsupported file type: %s (allowed: %s)", mimeType, strings.Join(allowedTypes, ", "))
	}

	if size > maxSizeBytes {
		return invalid("file size exceeds maximum allowed size of %dMB", maxSizeBytes/(1024*1024))
	}
	if size == 0 {
		return invalid("file is empty")
	}

	return Validation{Valid: true}
}

// NewJobDraft builds a ProcessingJob with option defaults applied wherever
// the caller left them unset.
func NewJobDraft(videoID uuid.UUID, userID, inputPath string, priority int, opts entity.JobOptions) *entity.ProcessingJob {
	if opts.FramesPerSecond <= 0 {
		opts.FramesPerSecond = defaultFramesPerSecond
	}
	if opts.OutputFormat == "" {
		opts.OutputFormat = defaultOutputFormat
	}
	if opts.CompressionQuality <= 0 {
		opts.CompressionQuality = defaultCompressionQuality
	}
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = defaultMaxWidth
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = defaultMaxHeight
	}
	return entity.NewProcessingJob(videoID, userID, inputPath, priority, opts, entity.DefaultMaxProcessingAttempts)
}

// ProcessingPriority scores a video for queue dispatch: tier base, small-file
// bonus, attempt penalty, floored at 1.
func ProcessingPriority(v *entity.Video, tier Tier) int {
	priority := 0

	switch tier {
	case TierEnterprise:
		priority += 100
	case TierPremium:
		priority += 50
	default:
		priority += 10
	}

	switch {
	case v.Size < 10*1024*1024:
		priority += 20
	case v.Size < 50*1024*1024:
		priority += 10
	}

	priority -= v.ProcessingAttempts * 5

	if priority < 1 {
		priority = 1
	}
	return priority
}

// EstimateProcessingTime is advisory only: duration x fps frames at a
// per-frame cost scaled by resolution and compression quality.
func EstimateProcessingTime(meta entity.VideoMetadata, opts entity.JobOptions) time.Duration {
	fps := opts.FramesPerSecond
	if fps <= 0 {
		fps = defaultFramesPerSecond
	}
	totalFrames := meta.Duration * float64(fps)

	perFrame := 100.0 // ms
	if meta.Is4K() {
		perFrame *= 4
	} else if meta.IsFullHD() {
		perFrame *= 2
	}

	quality := opts.CompressionQuality
	if quality <= 0 {
		quality = defaultCompressionQuality
	}
	perFrame *= float64(quality) / 100

	return time.Duration(totalFrames*perFrame) * time.Millisecond
}

// ValidateResult refuses degenerate pipeline outcomes so a job is never
// marked COMPLETED over an empty or mostly-failed extraction.
func ValidateResult(r entity.ProcessingResult) Validation {
	if !r.IsSuccessful() {
		reason := r.Error
		if reason == "" {
			reason = "processing failed"
		}
		return invalid("%s", reason)
	}
	if r.ProcessedFrames == 0 {
		return invalid("no frames were processed")
	}
	if eff := r.Efficiency(); eff < minResultEfficiency {
		return invalid("processing efficiency too low: %.1f%%", eff)
	}
	if r.OutputSize == 0 {
		return invalid("output file is empty")
	}
	return Validation{Valid: true}
}
