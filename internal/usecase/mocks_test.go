package usecase

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/videoplat/video-processing-service/internal/domain/apperr"
	"github.com/videoplat/video-processing-service/internal/domain/entity"
	"github.com/videoplat/video-processing-service/internal/domain/port"
)

var errNotFound = apperr.NotFound("not found")

// mockVideoRepo keeps videos in a map and counts writes so tests can assert
// on persistence behaviour without a database.
type mockVideoRepo struct {
	videos     map[uuid.UUID]*entity.Video
	createErr  error
	updateErr  error
	findErr    error
	updates    int
	transFails bool
	lastFilter port.VideoFilter
}

func newMockVideoRepo() *mockVideoRepo {
	return &mockVideoRepo{videos: make(map[uuid.UUID]*entity.Video)}
}

func (m *mockVideoRepo) Create(ctx context.Context, v *entity.Video) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *v
	m.videos[v.ID] = &cp
	return nil
}

func (m *mockVideoRepo) Update(ctx context.Context, v *entity.Video) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates++
	cp := *v
	m.videos[v.ID] = &cp
	return nil
}

func (m *mockVideoRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Video, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	v, ok := m.videos[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *mockVideoRepo) FindByUser(ctx context.Context, userID string, filter port.VideoFilter) ([]entity.Video, error) {
	m.lastFilter = filter
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []entity.Video
	for _, v := range m.videos {
		if v.UserID != userID {
			continue
		}
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (m *mockVideoRepo) CountByUser(ctx context.Context, userID string, status entity.VideoStatus) (int64, error) {
	if m.findErr != nil {
		return 0, m.findErr
	}
	var n int64
	for _, v := range m.videos {
		if v.UserID == userID && (status == "" || v.Status == status) {
			n++
		}
	}
	return n, nil
}

func (m *mockVideoRepo) FindByStatus(ctx context.Context, status entity.VideoStatus, limit int) ([]entity.Video, error) {
	var out []entity.Video
	for _, v := range m.videos {
		if v.Status == status {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (m *mockVideoRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from []entity.VideoStatus, to entity.VideoStatus) (bool, error) {
	if m.transFails {
		return false, nil
	}
	v, ok := m.videos[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if v.Status == f {
			v.Status = to
			return true, nil
		}
	}
	return false, nil
}

type mockJobRepo struct {
	jobs      map[uuid.UUID]*entity.ProcessingJob
	createErr error
	updateErr error
}

func newMockJobRepo() *mockJobRepo {
	return &mockJobRepo{jobs: make(map[uuid.UUID]*entity.ProcessingJob)}
}

func (m *mockJobRepo) Create(ctx context.Context, j *entity.ProcessingJob) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *j
	m.jobs[j.ID] = &cp
	return nil
}

func (m *mockJobRepo) Update(ctx context.Context, j *entity.ProcessingJob) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	cp := *j
	m.jobs[j.ID] = &cp
	return nil
}

func (m *mockJobRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.ProcessingJob, error) {
	j, ok := m.jobs[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *mockJobRepo) FindByVideo(ctx context.Context, videoID uuid.UUID) ([]entity.ProcessingJob, error) {
	var out []entity.ProcessingJob
	for _, j := range m.jobs {
		if j.VideoID == videoID {
			out = append(out, *j)
		}
	}
	return out, nil
}

type mockFileStore struct {
	saveErr error
	saves   int
}

func (m *mockFileStore) Save(ctx context.Context, r io.Reader, userID, filename string) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.saves++
	io.Copy(io.Discard, r)
	return filename, nil
}

func (m *mockFileStore) Path(userID, filename string) string {
	return filepath.Join("/uploads", userID, filename)
}

func (m *mockFileStore) Exists(userID, filename string) (bool, error) { return true, nil }
func (m *mockFileStore) Delete(userID, filename string) error         { return nil }
func (m *mockFileStore) URL(userID, filename string) string           { return "" }

type mockExtractor struct {
	meta       *entity.VideoMetadata
	probeErr   error
	extract    *port.ExtractResult
	extractErr error
}

func (m *mockExtractor) ExtractFrames(ctx context.Context, videoPath, outputDir string, opts port.ExtractOptions) (*port.ExtractResult, error) {
	if m.extractErr != nil {
		return nil, m.extractErr
	}
	return m.extract, nil
}

func (m *mockExtractor) Probe(ctx context.Context, videoPath string) (*entity.VideoMetadata, error) {
	if m.probeErr != nil {
		return nil, m.probeErr
	}
	return m.meta, nil
}

type mockObjectStore struct {
	zipKey     string
	zipSize    int64
	uploadErr  error
	presignErr error
	presigned  string
}

func (m *mockObjectStore) UploadFrames(ctx context.Context, framesDir, userID string, videoID uuid.UUID) (string, int64, error) {
	if m.uploadErr != nil {
		return "", 0, m.uploadErr
	}
	return m.zipKey, m.zipSize, nil
}

func (m *mockObjectStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if m.presignErr != nil {
		return "", m.presignErr
	}
	return m.presigned, nil
}

func (m *mockObjectStore) Exists(ctx context.Context, key string) (bool, error) { return true, nil }
func (m *mockObjectStore) Delete(ctx context.Context, key string) error         { return nil }

type enqueuedTask struct {
	task entity.ProcessingTask
	opts port.EnqueueOptions
}

type mockTaskQueue struct {
	enqueued   []enqueuedTask
	enqueueErr error
}

func (m *mockTaskQueue) EnqueueProcessing(ctx context.Context, task entity.ProcessingTask, opts port.EnqueueOptions) error {
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	m.enqueued = append(m.enqueued, enqueuedTask{task: task, opts: opts})
	return nil
}

type mockStatusPublisher struct {
	published  []entity.JobStatusMessage
	publishErr error
}

func (m *mockStatusPublisher) PublishStatus(ctx context.Context, msg entity.JobStatusMessage) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, msg)
	return nil
}

type dlqEntry struct {
	body   []byte
	reason string
}

type mockDLQPublisher struct {
	entries []dlqEntry
}

func (m *mockDLQPublisher) PublishToDLQ(ctx context.Context, body []byte, reason string) error {
	m.entries = append(m.entries, dlqEntry{body: body, reason: reason})
	return nil
}

type mockNotifier struct {
	completions int
	failures    int
	notifyErr   error
	lastURL     string
	lastErrMsg  string
}

func (m *mockNotifier) NotifyProcessingComplete(ctx context.Context, userID string, videoID uuid.UUID, downloadURL string, user *entity.UserProfile) error {
	m.completions++
	m.lastURL = downloadURL
	return m.notifyErr
}

func (m *mockNotifier) NotifyProcessingFailed(ctx context.Context, userID string, videoID uuid.UUID, errMsg string, user *entity.UserProfile) error {
	m.failures++
	m.lastErrMsg = errMsg
	return m.notifyErr
}
