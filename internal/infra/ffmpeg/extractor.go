package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/videoplat/video-processing-service/internal/domain/entity"
	"github.com/videoplat/video-processing-service/internal/domain/port"
)

type Extractor struct {
	ffmpegPath  string
	ffprobePath string
	logger      *zap.Logger
}

func NewExtractor(ffmpegPath, ffprobePath string, logger *zap.Logger) *Extractor {
	return &Extractor{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath, logger: logger}
}

func (e *Extractor) ExtractFrames(ctx context.Context, videoPath, outputDir string, opts port.ExtractOptions) (*port.ExtractResult, error) {
	fps := opts.FramesPerSecond
	if fps <= 0 {
		fps = 1
	}
	format := opts.OutputFormat
	if format == "" {
		format = "png"
	}

	vf := fmt.Sprintf("fps=%d", fps)
	if opts.MaxWidth > 0 && opts.MaxHeight > 0 {
		vf += fmt.Sprintf(",scale='min(%d,iw)':'min(%d,ih)':force_original_aspect_ratio=decrease",
			opts.MaxWidth, opts.MaxHeight)
	}

	framePattern := filepath.Join(outputDir, fmt.Sprintf("frame_%%04d.%s", format))
	cmd := exec.CommandContext(ctx, e.ffmpegPath,
		"-i", videoPath,
		"-vf", vf,
		"-y",
		framePattern,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg error: %w, output: %s", err, string(output))
	}

	frames, err := filepath.Glob(filepath.Join(outputDir, fmt.Sprintf("*.%s", format)))
	if err != nil {
		return nil, fmt.Errorf("glob frames: %w", err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames extracted from video")
	}

	var duration float64
	if meta, err := e.Probe(ctx, videoPath); err != nil {
		e.logger.Warn("could not probe video duration", zap.Error(err))
	} else {
		duration = meta.Duration
	}

	e.logger.Info("frames extracted",
		zap.Int("count", len(frames)),
		zap.Float64("video_duration", duration),
	)

	return &port.ExtractResult{
		FramePaths:    frames,
		TotalFrames:   len(frames),
		VideoDuration: duration,
	}, nil
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width,omitempty"`
		Height     int    `json:"height,omitempty"`
		RFrameRate string `json:"r_frame_rate,omitempty"`
		BitRate    string `json:"bit_rate,omitempty"`
	} `json:"streams"`
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
}

// Probe reads container and stream metadata via ffprobe's JSON output.
func (e *Extractor) Probe(ctx context.Context, videoPath string) (*entity.VideoMetadata, error) {
	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}

	var probed ffprobeOutput
	if err := json.Unmarshal(output, &probed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	meta := &entity.VideoMetadata{Format: probed.Format.FormatName}
	meta.Duration, _ = strconv.ParseFloat(probed.Format.Duration, 64)
	meta.Bitrate, _ = strconv.Atoi(probed.Format.BitRate)

	for _, stream := range probed.Streams {
		if stream.CodecType != "video" {
			continue
		}
		meta.Width = stream.Width
		meta.Height = stream.Height
		meta.Codec = stream.CodecName
		meta.FrameRate = parseFrameRate(stream.RFrameRate)
		if meta.Bitrate == 0 {
			meta.Bitrate, _ = strconv.Atoi(stream.BitRate)
		}
		break
	}

	if meta.Width == 0 && meta.Height == 0 {
		return nil, fmt.Errorf("no video stream found in %s", videoPath)
	}
	return meta, nil
}

// parseFrameRate converts ffprobe's rational frame rate ("30000/1001") to a
// float.
func parseFrameRate(raw string) float64 {
	parts := strings.SplitN(raw, "/", 2)
	if len(parts) != 2 {
		f, _ := strconv.ParseFloat(raw, 64)
		return f
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}
