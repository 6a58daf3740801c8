package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/videoplat/video-processing-service/internal/domain/apperr"
	"github.com/videoplat/video-processing-service/internal/domain/entity"
	"github.com/videoplat/video-processing-service/internal/domain/policy"
	"github.com/videoplat/video-processing-service/internal/domain/port"
	"github.com/videoplat/video-processing-service/internal/infra/metrics"
	"github.com/videoplat/video-processing-service/internal/usecase"
)

type VideoHandler struct {
	upload   *usecase.UploadVideoUseCase
	process  *usecase.ProcessVideoUseCase
	status   *usecase.VideoStatusUseCase
	identity port.IdentityClient
	logger   *zap.Logger
}

func NewVideoHandler(
	upload *usecase.UploadVideoUseCase,
	process *usecase.ProcessVideoUseCase,
	status *usecase.VideoStatusUseCase,
	identity port.IdentityClient,
	logger *zap.Logger,
) *VideoHandler {
	return &VideoHandler{
		upload:   upload,
		process:  process,
		status:   status,
		identity: identity,
		logger:   logger,
	}
}

// Upload handles POST /video/upload (multipart field "video").
func (h *VideoHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		respondError(c, apperr.Validation("video file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		respondError(c, apperr.Wrap("failed to read upload", err))
		return
	}
	defer file.Close()

	video, err := h.upload.Execute(c.Request.Context(), usecase.UploadInput{
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Size:     fileHeader.Size,
		Content:  file,
	}, authUserID(c))
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		respondError(c, err)
		return
	}

	metrics.UploadsTotal.WithLabelValues("accepted").Inc()
	respondOK(c, http.StatusCreated, toVideoResponse(video))
}

// Process handles POST /video/:id/process.
func (h *VideoHandler) Process(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid video id"))
		return
	}

	var req ProcessVideoRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperr.Validation("malformed request body"))
			return
		}
	}

	userID := authUserID(c)

	// Profile lookup is best-effort; a degraded profile still lets the
	// notification land.
	user, err := h.identity.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		h.logger.Warn("profile lookup failed", zap.String("user_id", userID), zap.Error(err))
	}

	video, err := h.process.Execute(c.Request.Context(), usecase.ProcessRequest{
		VideoID: videoID,
		UserID:  userID,
		Tier:    tierFromClaims(c),
		User:    user,
		Options: entity.JobOptions{
			FramesPerSecond:    req.FramesPerSecond,
			OutputFormat:       req.OutputFormat,
			CompressionQuality: req.CompressionQuality,
			MaxWidth:           req.MaxWidth,
			MaxHeight:          req.MaxHeight,
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusAccepted, toVideoResponse(video))
}

// Status handles GET /video/:id/status.
func (h *VideoHandler) Status(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid video id"))
		return
	}

	video, err := h.status.GetVideoByID(c.Request.Context(), videoID, authUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, toVideoResponse(video))
}

// UserVideos handles GET /video/user/:userId. Callers may only list their
// own videos.
func (h *VideoHandler) UserVideos(c *gin.Context) {
	if c.Param("userId") != authUserID(c) {
		respondError(c, apperr.Unauthorized("cannot list another user's videos"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	status := entity.VideoStatus(c.Query("status"))

	result, err := h.status.GetUserVideos(c.Request.Context(), authUserID(c), status, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	videos := make([]VideoResponse, 0, len(result.Videos))
	for i := range result.Videos {
		videos = append(videos, toVideoResponse(&result.Videos[i]))
	}
	respondOK(c, http.StatusOK, VideoListResponse{
		Videos: videos,
		Total:  result.Total,
		Page:   result.Page,
		Limit:  result.Limit,
	})
}

// VideosByStatus handles GET /admin/videos. It is the operational view of
// the pipeline and is not owner-scoped, so it lives outside the /video group.
func (h *VideoHandler) VideosByStatus(c *gin.Context) {
	status := entity.VideoStatus(c.Query("status"))
	switch status {
	case entity.VideoStatusPending, entity.VideoStatusQueued, entity.VideoStatusProcessing,
		entity.VideoStatusCompleted, entity.VideoStatusFailed:
	default:
		respondError(c, apperr.Validation("invalid status filter"))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 500 {
		limit = 50
	}

	result, err := h.status.GetVideosByStatus(c.Request.Context(), status, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	videos := make([]VideoResponse, 0, len(result))
	for i := range result {
		videos = append(videos, toVideoResponse(&result[i]))
	}
	respondOK(c, http.StatusOK, VideoListResponse{
		Videos: videos,
		Total:  int64(len(videos)),
		Page:   1,
		Limit:  limit,
	})
}

// Download handles GET /video/:id/download.
func (h *VideoHandler) Download(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid video id"))
		return
	}

	url, err := h.status.DownloadURL(c.Request.Context(), videoID, authUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, DownloadResponse{DownloadURL: url, ExpiresIn: 3600})
}

// DownloadRedirect handles GET /video/:id/download-redirect with a 302 to
// the presigned URL.
func (h *VideoHandler) DownloadRedirect(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid video id"))
		return
	}

	url, err := h.status.DownloadURL(c.Request.Context(), videoID, authUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

func tierFromClaims(c *gin.Context) policy.Tier {
	switch authTier(c) {
	case string(policy.TierEnterprise):
		return policy.TierEnterprise
	case string(policy.TierPremium):
		return policy.TierPremium
	default:
		return policy.TierBasic
	}
}
