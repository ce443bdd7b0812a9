// Package telemetry exports playback snapshots and acquisition outcomes as
// Prometheus metrics.
package telemetry

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/playstate/playstate/acquire"
	"github.com/playstate/playstate/constant"
	"github.com/playstate/playstate/engine"
	"github.com/playstate/playstate/log"
	"github.com/playstate/playstate/network"
	"github.com/playstate/playstate/state"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
)

var statusKinds = []state.Kind{
	state.KindIdle,
	state.KindPreparing,
	state.KindReady,
	state.KindPlaying,
	state.KindPaused,
	state.KindFinished,
	state.KindFailed,
}

var bufferingStates = []state.BufferingState{
	state.BufferingUnknown,
	state.Buffering,
	state.BufferingReady,
}

// Metrics holds the gauges and counters of one process.
type Metrics struct {
	registry *prometheus.Registry

	status      *prometheus.GaugeVec
	buffering   *prometheus.GaugeVec
	transitions *prometheus.CounterVec
	snapshots   prometheus.Counter
	rate        prometheus.Gauge
	position    prometheus.Gauge
	duration    prometheus.Gauge
	progress    prometheus.Gauge
	muted       prometheus.Gauge

	acquisitions *prometheus.CounterVec
	attempts     prometheus.Histogram

	last    state.PlaybackStatus
	started bool
}

// New creates and registers the metrics on a private registry.
func New() *Metrics {
	namespace := constant.App

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "playback_status",
			Help:      "1 for the current playback status, 0 otherwise",
		}, []string{"status"}),
		buffering: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "buffering_state",
			Help:      "1 for the current buffering state, 0 otherwise",
		}, []string{"state"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Playback status changes by target status",
		}, []string{"to"}),
		snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "Snapshots received from the engine",
		}),
		rate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "playback_rate",
			Help:      "Current playback rate",
		}),
		position: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "position_seconds",
			Help:      "Current playback position",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duration_seconds",
			Help:      "Duration of the current item, 0 when unknown",
		}),
		progress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "progress_ratio",
			Help:      "Position over duration, clamped to [0, 1]",
		}),
		muted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "muted",
			Help:      "1 when audio is muted",
		}),
		acquisitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acquisitions_total",
			Help:      "Stream acquisitions by outcome",
		}, []string{"outcome"}),
		attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "acquisition_attempts",
			Help:      "Attempts used per acquisition",
			Buckets:   []float64{1, 2, 3, 5, 8},
		}),
	}

	m.registry.MustRegister(
		m.status,
		m.buffering,
		m.transitions,
		m.snapshots,
		m.rate,
		m.position,
		m.duration,
		m.progress,
		m.muted,
		m.acquisitions,
		m.attempts,
	)

	// zero series so dashboards see every label from the start
	for _, k := range statusKinds {
		m.status.WithLabelValues(k.String())
	}
	for _, b := range bufferingStates {
		m.buffering.WithLabelValues(b.String())
	}

	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Observe records one snapshot. It is not safe for concurrent use; Follow
// calls it from a single goroutine.
func (m *Metrics) Observe(s state.PlayerState) {
	m.snapshots.Inc()

	kind := s.PlaybackStatus.Kind
	for _, k := range statusKinds {
		m.status.WithLabelValues(k.String()).Set(lo.Ternary(k == kind, 1.0, 0.0))
	}
	for _, b := range bufferingStates {
		m.buffering.WithLabelValues(b.String()).Set(lo.Ternary(b == s.BufferingState, 1.0, 0.0))
	}

	if !m.started || m.last.Kind != kind {
		m.transitions.WithLabelValues(kind.String()).Inc()
	}
	m.last, m.started = s.PlaybackStatus, true

	m.rate.Set(s.Rate)
	m.position.Set(s.CurrentTime.SecondsOrZero())
	m.duration.Set(lo.Ternary(s.Duration.IsValidFinite(), s.Duration.SecondsOrZero(), 0))
	m.progress.Set(s.NormalizedProgress())
	m.muted.Set(lo.Ternary(s.IsMuted, 1.0, 0.0))
}

// ObserveAcquire records the result of an acquisition.
func (m *Metrics) ObserveAcquire(r acquire.Result) {
	m.acquisitions.WithLabelValues(r.Outcome.String()).Inc()
	m.attempts.Observe(float64(r.Attempts))
}

// Follow records every snapshot of sub until the subscription ends or ctx
// is done. The subscription is closed on return.
func (m *Metrics) Follow(ctx context.Context, sub *engine.Subscription) {
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-sub.C():
			if !ok {
				return
			}
			m.Observe(s)
		}
	}
}

// Router mounts Handler at GET /metrics.
func (m *Metrics) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/metrics", m.Handler().ServeHTTP)
	return r
}

// Serve exposes Handler at /metrics on addr until ctx is done. It returns
// the bound address and a function that waits for the server to stop.
func (m *Metrics) Serve(ctx context.Context, addr string) (string, func() error, error) {
	bound, wait, err := network.Serve(ctx, addr, m.Router())
	if err != nil {
		return "", nil, err
	}

	log.Infof("telemetry: serving metrics on http://%s/metrics", bound)
	return bound, wait, nil
}
