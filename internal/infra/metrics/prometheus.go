package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TasksProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "r2s_tasks_processed_total",
		Help: "Total number of conversion tasks processed, by status",
	}, []string{"status"})

	TaskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "r2s_task_duration_seconds",
		Help:    "Duration of the conversion pipeline",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	FramesAlignedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "r2s_frames_aligned_total",
		Help: "Total number of frames aligned across all tasks",
	})

	CanvasHeightPixels = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "r2s_canvas_height_pixels",
		Help:    "Height in pixels of stitched output canvases",
		Buckets: []float64{1000, 2000, 5000, 10000, 20000, 65000, 130000},
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "r2s_active_workers",
		Help: "Number of currently active workers converting videos",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "r2s_retry_total",
		Help: "Total number of retries",
	}, []string{"attempt"})
)
