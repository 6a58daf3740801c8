package entity

import (
	"fmt"
	"time"
)

// ProcessingResult is produced once by the worker at the end of a pipeline
// run and consumed by the result gate before a job may be marked COMPLETED.
type ProcessingResult struct {
	Success         bool
	TotalFrames     int
	ProcessedFrames int
	OutputPath      string
	OutputSize      int64
	ProcessingTime  time.Duration
	Error           string
}

func (r ProcessingResult) IsSuccessful() bool {
	return r.Success && r.Error == ""
}

// Efficiency is the processed/total frame ratio as a percentage.
func (r ProcessingResult) Efficiency() float64 {
	if r.TotalFrames == 0 {
		return 0
	}
	return float64(r.ProcessedFrames) / float64(r.TotalFrames) * 100
}

// Rate is frames processed per second of wall time.
func (r ProcessingResult) Rate() float64 {
	if r.ProcessingTime == 0 {
		return 0
	}
	return float64(r.ProcessedFrames) / r.ProcessingTime.Seconds()
}

// CompressionRatio is the percentage saved relative to the original size.
func (r ProcessingResult) CompressionRatio(originalSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return (1 - float64(r.OutputSize)/float64(originalSize)) * 100
}

func (r ProcessingResult) Summary() string {
	if !r.Success {
		return fmt.Sprintf("processing failed: %s", r.Error)
	}
	return fmt.Sprintf("processed %d/%d frames in %.2fs",
		r.ProcessedFrames, r.TotalFrames, r.ProcessingTime.Seconds())
}
