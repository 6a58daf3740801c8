package entity

import (
	"errors"

	"github.com/google/uuid"
)

// UserProfile is the identity-service projection carried alongside queue
// messages so notification delivery does not depend on the auth service
// being reachable. Degraded marks a synthesized placeholder record.
type UserProfile struct {
	ID       string                  `json:"id"`
	Email    string                  `json:"email"`
	Name     string                  `json:"name"`
	IsActive bool                    `json:"is_active"`
	Degraded bool                    `json:"degraded,omitempty"`
	Prefs    NotificationPreferences `json:"preferences"`
}

type NotificationPreferences struct {
	Email bool `json:"email_notifications"`
	Push  bool `json:"push_notifications"`
	SMS   bool `json:"sms_notifications"`
}

// ProcessingTask is the inbound message on the video.processing queue. Every
// field the worker relies on is explicit; the schema is validated at the
// queue boundary rather than passed through as a loose bag.
type ProcessingTask struct {
	JobID     uuid.UUID    `json:"job_id"`
	VideoID   uuid.UUID    `json:"video_id"`
	UserID    string       `json:"user_id"`
	User      *UserProfile `json:"user,omitempty"`
	InputPath string       `json:"input_path"`
	Options   JobOptions   `json:"processing_options"`
}

func (t ProcessingTask) Validate() error {
	if t.JobID == uuid.Nil {
		return errors.New("processing task: missing job_id")
	}
	if t.VideoID == uuid.Nil {
		return errors.New("processing task: missing video_id")
	}
	if t.UserID == "" {
		return errors.New("processing task: missing user_id")
	}
	if t.InputPath == "" {
		return errors.New("processing task: missing input_path")
	}
	return nil
}

// JobStatusMessage is published to the video.status queue on every terminal
// or retry transition.
type JobStatusMessage struct {
	JobID        uuid.UUID `json:"job_id"`
	VideoID      uuid.UUID `json:"video_id"`
	UserID       string    `json:"user_id"`
	Status       JobStatus `json:"status"`
	ZipKey       string    `json:"zip_key,omitempty"`
	FrameCount   int       `json:"frame_count,omitempty"`
	Duration     float64   `json:"duration_seconds,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Attempt      int       `json:"attempt"`
	MaxAttempts  int       `json:"max_attempts"`
}

type NotificationType string

const (
	NotificationProcessingComplete NotificationType = "VIDEO_PROCESSING_COMPLETE"
	NotificationProcessingFailed   NotificationType = "VIDEO_PROCESSING_FAILED"
)

// NotificationMessage is published to the notifications queue; the
// notification service fans it out to email and push channels.
type NotificationMessage struct {
	UserID       string           `json:"user_id"`
	User         *UserProfile     `json:"user,omitempty"`
	Type         NotificationType `json:"type"`
	VideoID      uuid.UUID        `json:"video_id"`
	DownloadURL  string           `json:"download_url,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
}

func (n NotificationMessage) Validate() error {
	if n.UserID == "" {
		return errors.New("notification: missing user_id")
	}
	if n.Type != NotificationProcessingComplete && n.Type != NotificationProcessingFailed {
		return errors.New("notification: unknown type")
	}
	if n.VideoID == uuid.Nil {
		return errors.New("notification: missing video_id")
	}
	return nil
}
