package port

import (
	"context"
	"time"

	"github.com/videoplat/video-processing-service/internal/domain/entity"
)

type EnqueueOptions struct {
	Priority    int
	Delay       time.Duration
	MaxAttempts int
}

// TaskQueue dispatches processing work to the background workers.
type TaskQueue interface {
	EnqueueProcessing(ctx context.Context, task entity.ProcessingTask, opts EnqueueOptions) error
}

// StatusPublisher fans job state changes out to interested services.
type StatusPublisher interface {
	PublishStatus(ctx context.Context, msg entity.JobStatusMessage) error
}

// DLQPublisher parks messages that must not be retried.
type DLQPublisher interface {
	PublishToDLQ(ctx context.Context, body []byte, reason string) error
}
