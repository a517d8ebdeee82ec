package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PollCycles counts completed poll cycles per dashboard.
	PollCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mikrochart",
			Name:      "poll_cycles_total",
			Help:      "Total number of completed poll cycles",
		},
		[]string{"dashboard"},
	)

	// FetchErrors counts failed metric fetches per device.
	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mikrochart",
			Name:      "fetch_errors_total",
			Help:      "Total number of failed device metric fetches",
		},
		[]string{"dashboard", "device"},
	)

	// PersistFailures counts history writes that storage rejected.
	PersistFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mikrochart",
			Name:      "history_persist_failures_total",
			Help:      "Total number of history writes that failed",
		},
		[]string{"device"},
	)

	// RenderDuration observes how long one chart takes to render and save.
	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mikrochart",
			Name:      "chart_render_seconds",
			Help:      "Chart render and export duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"field"},
	)

	// DeviceMetric exposes the most recent sample of every device.
	DeviceMetric = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mikrochart",
			Name:      "device_metric",
			Help:      "Most recent sampled value per device and field",
		},
		[]string{"dashboard", "device", "field"},
	)

	// HistoryLength is the number of retained samples per device.
	HistoryLength = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mikrochart",
			Name:      "history_entries",
			Help:      "Number of samples retained per device",
		},
		[]string{"dashboard", "device"},
	)
)
