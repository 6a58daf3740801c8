package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/videoplat/video-processing-service/internal/domain/apperr"
	"github.com/videoplat/video-processing-service/internal/domain/entity"
	"github.com/videoplat/video-processing-service/internal/domain/policy"
)

func seedVideo(videos *mockVideoRepo, userID string, status entity.VideoStatus, size int64) *entity.Video {
	v := entity.NewVideo(userID, "stored.mp4", "holiday.mp4", "video/mp4", size)
	v.Status = status
	videos.videos[v.ID] = v
	return v
}

func TestProcessVideo(t *testing.T) {
	videos := newMockVideoRepo()
	jobs := newMockJobRepo()
	queue := &mockTaskQueue{}
	uc := NewProcessVideoUseCase(videos, jobs, queue, &mockFileStore{}, zap.NewNop())

	v := seedVideo(videos, "user-1", entity.VideoStatusPending, 5*1024*1024)

	got, err := uc.Execute(context.Background(), ProcessRequest{
		VideoID: v.ID,
		UserID:  "user-1",
		Tier:    policy.TierPremium,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.VideoStatusQueued, got.Status)
	require.Len(t, jobs.jobs, 1)
	require.Len(t, queue.enqueued, 1)

	enq := queue.enqueued[0]
	assert.Equal(t, v.ID, enq.task.VideoID)
	assert.Equal(t, "user-1", enq.task.UserID)
	assert.Equal(t, "/uploads/user-1/stored.mp4", enq.task.InputPath)
	// premium base 50 + small-file bonus 20
	assert.Equal(t, 70, enq.opts.Priority)
	assert.Equal(t, entity.DefaultMaxProcessingAttempts, enq.opts.MaxAttempts)

	stored := videos.videos[v.ID]
	assert.Equal(t, entity.VideoStatusQueued, stored.Status)
}

func TestProcessVideoNotFound(t *testing.T) {
	uc := NewProcessVideoUseCase(newMockVideoRepo(), newMockJobRepo(), &mockTaskQueue{}, &mockFileStore{}, zap.NewNop())

	_, err := uc.Execute(context.Background(), ProcessRequest{
		VideoID: uuid.New(),
		UserID:  "user-1",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestProcessVideoRepoOutageIsNotNotFound(t *testing.T) {
	videos := newMockVideoRepo()
	videos.findErr = assert.AnError
	uc := NewProcessVideoUseCase(videos, newMockJobRepo(), &mockTaskQueue{}, &mockFileStore{}, zap.NewNop())

	_, err := uc.Execute(context.Background(), ProcessRequest{
		VideoID: uuid.New(),
		UserID:  "user-1",
	})
	require.Error(t, err)
	assert.False(t, apperr.IsNotFound(err), "a transient repository error must not read as a missing video")
}

func TestProcessVideoWrongOwner(t *testing.T) {
	videos := newMockVideoRepo()
	uc := NewProcessVideoUseCase(videos, newMockJobRepo(), &mockTaskQueue{}, &mockFileStore{}, zap.NewNop())

	v := seedVideo(videos, "owner", entity.VideoStatusPending, 1024)

	_, err := uc.Execute(context.Background(), ProcessRequest{
		VideoID: v.ID,
		UserID:  "intruder",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsUnauthorized(err))
}

func TestProcessVideoIneligibleStates(t *testing.T) {
	for _, status := range []entity.VideoStatus{
		entity.VideoStatusQueued,
		entity.VideoStatusProcessing,
		entity.VideoStatusCompleted,
	} {
		t.Run(string(status), func(t *testing.T) {
			videos := newMockVideoRepo()
			jobs := newMockJobRepo()
			queue := &mockTaskQueue{}
			uc := NewProcessVideoUseCase(videos, jobs, queue, &mockFileStore{}, zap.NewNop())

			v := seedVideo(videos, "user-1", status, 1024)

			_, err := uc.Execute(context.Background(), ProcessRequest{VideoID: v.ID, UserID: "user-1"})
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
			assert.Empty(t, jobs.jobs)
			assert.Empty(t, queue.enqueued)
		})
	}
}

func TestProcessVideoFailedIsReprocessable(t *testing.T) {
	videos := newMockVideoRepo()
	jobs := newMockJobRepo()
	queue := &mockTaskQueue{}
	uc := NewProcessVideoUseCase(videos, jobs, queue, &mockFileStore{}, zap.NewNop())

	v := seedVideo(videos, "user-1", entity.VideoStatusFailed, 1024)
	v.ProcessingAttempts = 1

	got, err := uc.Execute(context.Background(), ProcessRequest{VideoID: v.ID, UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, entity.VideoStatusQueued, got.Status)
	assert.Len(t, jobs.jobs, 1)
}

func TestProcessVideoExhaustedAttempts(t *testing.T) {
	videos := newMockVideoRepo()
	queue := &mockTaskQueue{}
	uc := NewProcessVideoUseCase(videos, newMockJobRepo(), queue, &mockFileStore{}, zap.NewNop())

	v := seedVideo(videos, "user-1", entity.VideoStatusFailed, 1024)
	v.ProcessingAttempts = entity.DefaultMaxProcessingAttempts

	_, err := uc.Execute(context.Background(), ProcessRequest{VideoID: v.ID, UserID: "user-1"})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Empty(t, queue.enqueued)
}

func TestProcessVideoEnqueueFailure(t *testing.T) {
	videos := newMockVideoRepo()
	queue := &mockTaskQueue{enqueueErr: assert.AnError}
	uc := NewProcessVideoUseCase(videos, newMockJobRepo(), queue, &mockFileStore{}, zap.NewNop())

	v := seedVideo(videos, "user-1", entity.VideoStatusPending, 1024)

	_, err := uc.Execute(context.Background(), ProcessRequest{VideoID: v.ID, UserID: "user-1"})
	require.Error(t, err)

	stored := videos.videos[v.ID]
	assert.Equal(t, entity.VideoStatusPending, stored.Status, "a failed enqueue leaves the video untouched")
}
