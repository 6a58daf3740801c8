package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videoplat_jobs_processed_total",
		Help: "Total number of jobs processed, by status",
	}, []string{"status"})

	JobProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "videoplat_job_processing_duration_seconds",
		Help:    "Duration of video processing pipeline",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	FramesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videoplat_frames_extracted_total",
		Help: "Total number of frames extracted across all jobs",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "videoplat_active_workers",
		Help: "Number of currently active workers processing jobs",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videoplat_retry_total",
		Help: "Total number of retries",
	}, []string{"attempt"})

	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videoplat_uploads_total",
		Help: "Total number of upload requests, by outcome",
	}, []string{"outcome"})
)
