package port

import (
	"context"

	"github.com/videoplat/video-processing-service/internal/domain/entity"
)

type ExtractOptions struct {
	FramesPerSecond int
	OutputFormat    string
	MaxWidth        int
	MaxHeight       int
}

type ExtractResult struct {
	FramePaths    []string
	TotalFrames   int
	VideoDuration float64
}

type FrameExtractor interface {
	ExtractFrames(ctx context.Context, videoPath, outputDir string, opts ExtractOptions) (*ExtractResult, error)

	// Probe reads the container/stream metadata of a video file. Callers
	// treat failures as non-fatal.
	Probe(ctx context.Context, videoPath string) (*entity.VideoMetadata, error)
}
