// Package metrics records run counters as Prometheus metrics and exports
// them in the node-exporter textfile format, so a scheduled run on a NAS
// can be scraped after the fact.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/backmassage/synothumb/internal/pipeline"
)

const namespace = "synothumb"

// Recorder is a pipeline.Observer backed by its own registry.
type Recorder struct {
	pipeline.NopObserver

	reg *prometheus.Registry

	Candidates   prometheus.Counter
	Created      prometheus.Counter
	Skipped      prometheus.Counter
	Repaired     prometheus.Counter
	Errors       *prometheus.CounterVec
	FileDuration prometheus.Histogram
	RunDuration  prometheus.Gauge
	LastRun      prometheus.Gauge
}

// NewRecorder registers every metric on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		Candidates: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_total",
			Help:      "Video files that finished processing",
		}),
		Created: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnails_created_total",
			Help:      "Thumbnails successfully written",
		}),
		Skipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnails_skipped_total",
			Help:      "Files skipped because a thumbnail already existed",
		}),
		Repaired: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_repaired_total",
			Help:      "Files successfully repaired by stream copy",
		}),
		Errors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Files that ended in error, by failure kind",
		}, []string{"kind"}),
		FileDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_duration_seconds",
			Help:      "Wall time spent per video file",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
		}),
		RunDuration: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last run",
		}),
		LastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
}

func (r *Recorder) OnFileDone(res pipeline.FileResult) {
	r.Candidates.Inc()
	r.FileDuration.Observe(res.Duration.Seconds())
	if res.Repaired {
		r.Repaired.Inc()
	}
	switch res.Outcome {
	case pipeline.OutcomeProcessed:
		r.Created.Inc()
	case pipeline.OutcomeSkipped:
		r.Skipped.Inc()
	default:
		kind := "unknown"
		if res.Err != nil {
			kind = res.Err.Kind.String()
		}
		r.Errors.WithLabelValues(kind).Inc()
	}
}

func (r *Recorder) OnFinish(_ pipeline.RunStats, elapsed time.Duration) {
	r.RunDuration.Set(elapsed.Seconds())
	r.LastRun.SetToCurrentTime()
}

// WriteTextfile writes all metrics to path. The file is replaced
// atomically so a concurrent scrape never sees a partial write.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
