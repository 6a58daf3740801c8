package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJob() *ProcessingJob {
	return NewProcessingJob(uuid.New(), "user-1", "/uploads/user-1/a.mp4", 30, JobOptions{
		FramesPerSecond: 1,
		OutputFormat:    "png",
	}, 3)
}

func TestJobLifecycle(t *testing.T) {
	job := newTestJob()
	require.Equal(t, JobStatusPending, job.Status)
	require.True(t, job.CanBeProcessed())

	job.StartProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	assert.Equal(t, 1, job.Attempts)
	require.NotNil(t, job.StartedAt)

	job.CompleteProcessing(JobResult{
		TotalFrames:     42,
		ProcessedFrames: 42,
		OutputSize:      1024,
		Duration:        42.0,
		ZipKey:          "user-1/vid_frames.zip",
	})
	assert.Equal(t, JobStatusCompleted, job.Status)
	require.NotNil(t, job.CompletedAt)
	require.NotNil(t, job.Result)
	assert.Equal(t, 42, job.Result.TotalFrames)
	assert.False(t, job.CanBeProcessed())
}

func TestJobRetryEligibility(t *testing.T) {
	job := newTestJob()

	job.StartProcessing()
	job.FailProcessing("extract_frames: exit status 1")
	assert.Equal(t, JobStatusFailed, job.Status)
	require.NotNil(t, job.FailedAt)
	assert.True(t, job.CanBeProcessed(), "one failure leaves attempts on the table")

	job.StartProcessing()
	assert.Empty(t, job.ErrorMessage, "a new attempt clears the previous error")
	job.FailProcessing("extract_frames: exit status 1")
	assert.True(t, job.CanBeProcessed())

	job.StartProcessing()
	job.FailProcessing("extract_frames: exit status 1")
	assert.False(t, job.CanBeProcessed(), "exhausted after MaxAttempts failures")
	assert.True(t, job.HasExceededMaxAttempts())
}

func TestJobDelay(t *testing.T) {
	job := newTestJob()
	until := time.Now().Add(4 * time.Second)

	job.Delay(until)
	assert.Equal(t, JobStatusDelayed, job.Status)
	require.NotNil(t, job.ScheduledFor)
	assert.Equal(t, until, *job.ScheduledFor)
	assert.False(t, job.CanBeProcessed(), "delayed jobs run only after promotion")
}

func TestJobNextRetryDelayIsExponential(t *testing.T) {
	job := newTestJob()

	job.Attempts = 1
	assert.Equal(t, 2*time.Second, job.NextRetryDelay())
	job.Attempts = 2
	assert.Equal(t, 4*time.Second, job.NextRetryDelay())
	job.Attempts = 3
	assert.Equal(t, 8*time.Second, job.NextRetryDelay())
}

func TestProcessingTaskValidate(t *testing.T) {
	valid := ProcessingTask{
		JobID:     uuid.New(),
		VideoID:   uuid.New(),
		UserID:    "user-1",
		InputPath: "/uploads/user-1/a.mp4",
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*ProcessingTask)
	}{
		{"missing job id", func(m *ProcessingTask) { m.JobID = uuid.Nil }},
		{"missing video id", func(m *ProcessingTask) { m.VideoID = uuid.Nil }},
		{"missing user id", func(m *ProcessingTask) { m.UserID = "" }},
		{"missing input path", func(m *ProcessingTask) { m.InputPath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid
			tt.mutate(&m)
			assert.Error(t, m.Validate())
		})
	}
}

func TestNotificationMessageValidate(t *testing.T) {
	valid := NotificationMessage{
		UserID:  "user-1",
		Type:    NotificationProcessingComplete,
		VideoID: uuid.New(),
	}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.Type = "SOMETHING_ELSE"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.UserID = ""
	assert.Error(t, bad.Validate())
}
