// Package metrics exposes game counters in the Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gridsnake/game"
)

// Metrics holds the collectors on a private registry so that several
// instances (tests, embedded servers) never collide.
type Metrics struct {
	registry *prometheus.Registry

	gamesStarted   prometheus.Counter
	gamesEnded     *prometheus.CounterVec
	foodEaten      prometheus.Counter
	finalScore     prometheus.Histogram
	roundDuration  prometheus.Histogram
	highScore      prometheus.Gauge
	activeSessions prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snake_games_started_total",
			Help: "Total number of rounds started",
		}),
		gamesEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "snake_games_ended_total",
			Help: "Total number of rounds ended, by reason",
		}, []string{"reason"}),
		foodEaten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snake_food_eaten_total",
			Help: "Total number of food items eaten",
		}),
		finalScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "snake_final_score",
			Help:    "Histogram of scores at the end of a round",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 200},
		}),
		roundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "snake_round_duration_seconds",
			Help:    "Histogram of round durations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		highScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "snake_high_score",
			Help: "Current process-wide high score",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "snake_active_sessions",
			Help: "Current number of connected web sessions",
		}),
	}
	m.registry.MustRegister(
		m.gamesStarted,
		m.gamesEnded,
		m.foodEaten,
		m.finalScore,
		m.roundDuration,
		m.highScore,
		m.activeSessions,
	)
	return m
}

// HandleEvent updates the collectors from a game lifecycle event.
func (m *Metrics) HandleEvent(ev game.Event) {
	switch ev.Kind {
	case game.EventStarted:
		m.gamesStarted.Inc()
		m.highScore.Set(float64(ev.HighScore))
	case game.EventAte:
		m.foodEaten.Inc()
	case game.EventEnded:
		m.gamesEnded.WithLabelValues(ev.Reason.String()).Inc()
		m.finalScore.Observe(float64(ev.Score))
		m.roundDuration.Observe(ev.Duration().Seconds())
		m.highScore.Set(float64(ev.HighScore))
	}
}

func (m *Metrics) SessionOpened() { m.activeSessions.Inc() }

func (m *Metrics) SessionClosed() { m.activeSessions.Dec() }

// Handler serves the registry on /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
