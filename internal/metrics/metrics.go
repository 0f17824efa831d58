// Package metrics tracks pipeline throughput counters and exposes them via Prometheus.
package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics.
type Metrics struct {
	// Capture counters
	FramesCaptured atomic.Uint64
	CaptureErrors  atomic.Uint64

	// Streaming counters
	FramesStreamed atomic.Uint64
	StreamErrors   atomic.Uint64
	EncodeErrors   atomic.Uint64

	// Session gauges
	ActiveCameras atomic.Int64
	ActiveStreams atomic.Int64

	registry *prometheus.Registry
}

// New creates a new Metrics instance with Prometheus collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}
	m.registerCollectors()
	return m
}

func (m *Metrics) registerCollectors() {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "moveright_frames_captured_total",
			Help: "Total frames read from capture devices",
		},
		func() float64 { return float64(m.FramesCaptured.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "moveright_capture_errors_total",
			Help: "Total failed device reads",
		},
		func() float64 { return float64(m.CaptureErrors.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "moveright_frames_streamed_total",
			Help: "Total annotated frames pushed to clients",
		},
		func() float64 { return float64(m.FramesStreamed.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "moveright_stream_errors_total",
			Help: "Total stream tick failures",
		},
		func() float64 { return float64(m.StreamErrors.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "moveright_encode_errors_total",
			Help: "Total frame encoding failures",
		},
		func() float64 { return float64(m.EncodeErrors.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "moveright_active_cameras",
			Help: "Number of running capture agents",
		},
		func() float64 { return float64(m.ActiveCameras.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "moveright_active_streams",
			Help: "Number of active stream tasks",
		},
		func() float64 { return float64(m.ActiveStreams.Load()) },
	))
}

// Handler returns the Prometheus HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
