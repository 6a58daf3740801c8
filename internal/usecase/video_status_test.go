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
)

func TestGetVideoByID(t *testing.T) {
	videos := newMockVideoRepo()
	store := &mockObjectStore{presigned: "https://minio.example/signed"}
	uc := NewVideoStatusUseCase(videos, store, zap.NewNop())

	v := seedVideo(videos, "user-1", entity.VideoStatusCompleted, 1024)
	v.S3Key = "user-1/vid_frames.zip"

	got, err := uc.GetVideoByID(context.Background(), v.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)
	assert.Equal(t, "https://minio.example/signed", got.DownloadURL)
}

func TestGetVideoByIDHidesOtherOwners(t *testing.T) {
	videos := newMockVideoRepo()
	uc := NewVideoStatusUseCase(videos, &mockObjectStore{}, zap.NewNop())

	v := seedVideo(videos, "owner", entity.VideoStatusPending, 1024)

	_, missingErr := uc.GetVideoByID(context.Background(), uuid.New(), "owner")
	_, foreignErr := uc.GetVideoByID(context.Background(), v.ID, "intruder")

	require.Error(t, missingErr)
	require.Error(t, foreignErr)
	assert.True(t, apperr.IsNotFound(missingErr))
	assert.True(t, apperr.IsNotFound(foreignErr))
	// An intruder cannot distinguish "exists" from "does not exist".
	assert.Equal(t, missingErr.Error(), foreignErr.Error())
}

func TestGetVideoByIDRepoOutageIsNotNotFound(t *testing.T) {
	videos := newMockVideoRepo()
	videos.findErr = assert.AnError
	uc := NewVideoStatusUseCase(videos, &mockObjectStore{}, zap.NewNop())

	_, err := uc.GetVideoByID(context.Background(), uuid.New(), "user-1")
	require.Error(t, err)
	assert.False(t, apperr.IsNotFound(err), "a transient repository error must not read as a missing video")
}

func TestGetVideoByIDPresignFailureIsNonFatal(t *testing.T) {
	videos := newMockVideoRepo()
	store := &mockObjectStore{presignErr: assert.AnError}
	uc := NewVideoStatusUseCase(videos, store, zap.NewNop())

	v := seedVideo(videos, "user-1", entity.VideoStatusCompleted, 1024)
	v.S3Key = "user-1/vid_frames.zip"

	got, err := uc.GetVideoByID(context.Background(), v.ID, "user-1")
	require.NoError(t, err)
	assert.Empty(t, got.DownloadURL, "status stays readable when the object store is down")
	assert.Equal(t, entity.VideoStatusCompleted, got.Status)
}

func TestGetUserVideosPaginationDefaults(t *testing.T) {
	videos := newMockVideoRepo()
	uc := NewVideoStatusUseCase(videos, &mockObjectStore{}, zap.NewNop())

	seedVideo(videos, "user-1", entity.VideoStatusPending, 1024)
	seedVideo(videos, "user-1", entity.VideoStatusCompleted, 1024)
	seedVideo(videos, "other", entity.VideoStatusPending, 1024)

	page, err := uc.GetUserVideos(context.Background(), "user-1", "", 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, page.Page, "page clamps to 1")
	assert.Equal(t, 10, page.Limit, "limit defaults to 10")
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Videos, 2)
}

func TestGetUserVideosOffsetLaw(t *testing.T) {
	videos := newMockVideoRepo()
	uc := NewVideoStatusUseCase(videos, &mockObjectStore{}, zap.NewNop())

	_, err := uc.GetUserVideos(context.Background(), "user-1", "", 3, 25)
	require.NoError(t, err)

	assert.Equal(t, 25, videos.lastFilter.Limit)
	assert.Equal(t, 50, videos.lastFilter.Offset, "offset is (page-1)*limit")
}

func TestGetUserVideosStatusFilter(t *testing.T) {
	videos := newMockVideoRepo()
	uc := NewVideoStatusUseCase(videos, &mockObjectStore{}, zap.NewNop())

	seedVideo(videos, "user-1", entity.VideoStatusPending, 1024)
	seedVideo(videos, "user-1", entity.VideoStatusCompleted, 1024)

	page, err := uc.GetUserVideos(context.Background(), "user-1", entity.VideoStatusCompleted, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Videos, 1)
	assert.Equal(t, entity.VideoStatusCompleted, page.Videos[0].Status)
	assert.Equal(t, int64(1), page.Total)
}

func TestGetVideosByStatusSpansOwners(t *testing.T) {
	videos := newMockVideoRepo()
	uc := NewVideoStatusUseCase(videos, &mockObjectStore{}, zap.NewNop())

	seedVideo(videos, "user-1", entity.VideoStatusProcessing, 1024)
	seedVideo(videos, "user-2", entity.VideoStatusProcessing, 1024)
	seedVideo(videos, "user-1", entity.VideoStatusCompleted, 1024)

	got, err := uc.GetVideosByStatus(context.Background(), entity.VideoStatusProcessing, 50)
	require.NoError(t, err)
	require.Len(t, got, 2, "the operational view is not owner-scoped")
	for _, v := range got {
		assert.Equal(t, entity.VideoStatusProcessing, v.Status)
	}
}

func TestDownloadURL(t *testing.T) {
	videos := newMockVideoRepo()
	store := &mockObjectStore{presigned: "https://minio.example/signed"}
	uc := NewVideoStatusUseCase(videos, store, zap.NewNop())

	v := seedVideo(videos, "user-1", entity.VideoStatusCompleted, 1024)
	v.S3Key = "user-1/vid_frames.zip"

	url, err := uc.DownloadURL(context.Background(), v.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "https://minio.example/signed", url)
}

func TestDownloadURLNotReady(t *testing.T) {
	videos := newMockVideoRepo()
	uc := NewVideoStatusUseCase(videos, &mockObjectStore{}, zap.NewNop())

	v := seedVideo(videos, "user-1", entity.VideoStatusProcessing, 1024)

	_, err := uc.DownloadURL(context.Background(), v.ID, "user-1")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestDownloadURLPresignFailurePropagates(t *testing.T) {
	videos := newMockVideoRepo()
	store := &mockObjectStore{presignErr: assert.AnError}
	uc := NewVideoStatusUseCase(videos, store, zap.NewNop())

	v := seedVideo(videos, "user-1", entity.VideoStatusCompleted, 1024)
	v.S3Key = "user-1/vid_frames.zip"

	_, err := uc.DownloadURL(context.Background(), v.ID, "user-1")
	require.Error(t, err, "an explicit download with no URL is an error, not a silent blank")
}
