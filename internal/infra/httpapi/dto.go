package httpapi

import (
	"time"

	"github.com/videoplat/video-processing-service/internal/domain/entity"
)

type VideoResponse struct {
	ID                 string                `json:"id"`
	UserID             string                `json:"userId"`
	Filename           string                `json:"filename"`
	OriginalName       string                `json:"originalName"`
	MimeType           string                `json:"mimeType"`
	Size               int64                 `json:"size"`
	Duration           *float64              `json:"duration,omitempty"`
	Status             string                `json:"status"`
	ProcessedAt        *time.Time            `json:"processedAt,omitempty"`
	ErrorMessage       string                `json:"errorMessage,omitempty"`
	DownloadURL        string                `json:"downloadUrl,omitempty"`
	ProcessingAttempts int                   `json:"processingAttempts"`
	Metadata           *entity.VideoMetadata `json:"metadata,omitempty"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
}

func toVideoResponse(v *entity.Video) VideoResponse {
	return VideoResponse{
		ID:                 v.ID.String(),
		UserID:             v.UserID,
		Filename:           v.Filename,
		OriginalName:       v.OriginalName,
		MimeType:           v.MimeType,
		Size:               v.Size,
		Duration:           v.Duration,
		Status:             string(v.Status),
		ProcessedAt:        v.ProcessedAt,
		ErrorMessage:       v.ErrorMessage,
		DownloadURL:        v.DownloadURL,
		ProcessingAttempts: v.ProcessingAttempts,
		Metadata:           v.Metadata,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}

type VideoListResponse struct {
	Videos []VideoResponse `json:"videos"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

type ProcessVideoRequest struct {
	FramesPerSecond    int    `json:"framesPerSecond"`
	OutputFormat       string `json:"outputFormat"`
	CompressionQuality int    `json:"compressionQuality"`
	MaxWidth           int    `json:"maxWidth"`
	MaxHeight          int    `json:"maxHeight"`
}

type DownloadResponse struct {
	DownloadURL string `json:"downloadUrl"`
	ExpiresIn   int    `json:"expiresInSeconds"`
}
