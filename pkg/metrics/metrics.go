package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "allyscheduler"

// Recorder holds the apply metrics on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	commands  *prometheus.CounterVec
	latency   prometheus.Histogram
	lastApply prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Schedule commands published, by status and failure reason",
			},
			[]string{"status", "reason"},
		),
		latency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "publish_duration_seconds",
				Help:      "Time spent publishing one command",
				Buckets:   prometheus.DefBuckets,
			},
		),
		lastApply: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_apply_timestamp_seconds",
				Help:      "Unix time the last apply run finished",
			},
		),
	}
	r.registry.MustRegister(r.commands, r.latency, r.lastApply)
	return r
}

// ObserveCommand counts one publish. reason is empty for applied commands.
func (r *Recorder) ObserveCommand(status, reason string, took time.Duration) {
	if r == nil {
		return
	}
	r.commands.WithLabelValues(status, reason).Inc()
	r.latency.Observe(took.Seconds())
}

func (r *Recorder) ApplyFinished(at time.Time) {
	if r == nil {
		return
	}
	r.lastApply.Set(float64(at.Unix()))
}

func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the metrics in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
