// Package metrics exposes prometheus collectors for game activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "simon"

// Metrics groups the collectors updated by the engine and its transports.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	GamesStarted      prometheus.Counter
	RoundsCompleted   prometheus.Counter
	GamesOver         *prometheus.CounterVec
	Scores            prometheus.Histogram
	RemoteInputs      *prometheus.CounterVec
	ScoresSaved       prometheus.Counter
	ScoreSaveFailures prometheus.Counter
	DroppedEvents     prometheus.Counter
	ConnectedClients  prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Total number of game sessions started",
		}),
		RoundsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_completed_total",
			Help:      "Total number of rounds reproduced correctly",
		}),
		GamesOver: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_over_total",
			Help:      "Total number of finished games by difficulty",
		}, []string{"difficulty"}),
		Scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "score",
			Help:      "Distribution of final scores",
			Buckets:   prometheus.LinearBuckets(1, 2, 10),
		}),
		RemoteInputs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_inputs_total",
			Help:      "Total number of remote inputs by outcome",
		}, []string{"outcome"}),
		ScoresSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scores_saved_total",
			Help:      "Total number of scores persisted",
		}),
		ScoreSaveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_save_failures_total",
			Help:      "Total number of scores that could not be persisted",
		}),
		DroppedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_events_total",
			Help:      "Total number of presentation events dropped for slow observers",
		}),
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "Number of connected websocket observers",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.GamesStarted,
			m.RoundsCompleted,
			m.GamesOver,
			m.Scores,
			m.RemoteInputs,
			m.ScoresSaved,
			m.ScoreSaveFailures,
			m.DroppedEvents,
			m.ConnectedClients,
		)
	}
	return m
}

func (m *Metrics) GameStarted() {
	if m == nil {
		return
	}
	m.GamesStarted.Inc()
}

func (m *Metrics) RoundCompleted() {
	if m == nil {
		return
	}
	m.RoundsCompleted.Inc()
}

func (m *Metrics) GameOver(difficulty string, score int) {
	if m == nil {
		return
	}
	m.GamesOver.WithLabelValues(difficulty).Inc()
	m.Scores.Observe(float64(score))
}

// RemoteInput counts an inbound remote input as accepted or rejected.
func (m *Metrics) RemoteInput(accepted bool) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	m.RemoteInputs.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ScoreSaved(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ScoreSaveFailures.Inc()
		return
	}
	m.ScoresSaved.Inc()
}

func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}
	m.DroppedEvents.Inc()
}

func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.ConnectedClients.Inc()
}

func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.ConnectedClients.Dec()
}
