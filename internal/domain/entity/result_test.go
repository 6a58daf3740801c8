package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProcessingResultEfficiency(t *testing.T) {
	r := ProcessingResult{TotalFrames: 200, ProcessedFrames: 150}
	assert.Equal(t, 75.0, r.Efficiency())

	empty := ProcessingResult{}
	assert.Equal(t, 0.0, empty.Efficiency())
}

func TestProcessingResultIsSuccessful(t *testing.T) {
	assert.True(t, ProcessingResult{Success: true}.IsSuccessful())
	assert.False(t, ProcessingResult{Success: true, Error: "late failure"}.IsSuccessful())
	assert.False(t, ProcessingResult{Success: false}.IsSuccessful())
}

func TestProcessingResultRate(t *testing.T) {
	r := ProcessingResult{ProcessedFrames: 30, ProcessingTime: 10 * time.Second}
	assert.Equal(t, 3.0, r.Rate())

	assert.Equal(t, 0.0, ProcessingResult{ProcessedFrames: 30}.Rate())
}

func TestProcessingResultCompressionRatio(t *testing.T) {
	r := ProcessingResult{OutputSize: 250}
	assert.Equal(t, 75.0, r.CompressionRatio(1000))
	assert.Equal(t, 0.0, r.CompressionRatio(0))
}

func TestVideoMetadataClassification(t *testing.T) {
	sd := VideoMetadata{Width: 640, Height: 480}
	assert.Equal(t, "SD", sd.SizeCategory())
	assert.Equal(t, "4:3", sd.AspectRatio())

	hd := VideoMetadata{Width: 1280, Height: 720}
	assert.Equal(t, "HD", hd.SizeCategory())

	fullHD := VideoMetadata{Width: 1920, Height: 1080}
	assert.Equal(t, "Full HD", fullHD.SizeCategory())
	assert.Equal(t, "16:9", fullHD.AspectRatio())

	fourK := VideoMetadata{Width: 3840, Height: 2160}
	assert.Equal(t, "4K", fourK.SizeCategory())
	assert.Equal(t, "3840x2160", fourK.Resolution())
}
