// Package metrics exposes Prometheus collectors for inference and games.
//
// A Metrics value satisfies knowledge.Observer, so a single instance can be
// shared by every knowledge base in a benchmark run. All operations are safe
// for concurrent use.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sweeper"

// Metrics holds the collectors for one registry.
type Metrics struct {
	// RoundsTotal counts completed inference rounds.
	RoundsTotal prometheus.Counter

	// SentencesDerivedTotal counts sentences added by subset inference.
	SentencesDerivedTotal prometheus.Counter

	// CellsResolvedTotal counts cells newly proven.
	// Labels: kind (mine, safe)
	CellsResolvedTotal *prometheus.CounterVec

	// ContradictionsTotal counts knowledge bases poisoned by inconsistent input.
	ContradictionsTotal prometheus.Counter

	// GamesTotal counts finished games.
	// Labels: outcome (won, lost, stalled, error)
	GamesTotal *prometheus.CounterVec

	// MovesPerGame is the distribution of moves per finished game.
	// Labels: kind (safe, random)
	MovesPerGame *prometheus.HistogramVec

	// GameDurationSeconds is the wall time of a finished game.
	GameDurationSeconds prometheus.Histogram
}

// New registers all collectors with reg. Passing a fresh registry per test
// avoids duplicate registration panics.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RoundsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inference",
			Name:      "rounds_total",
			Help:      "Inference rounds completed.",
		}),
		SentencesDerivedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inference",
			Name:      "sentences_derived_total",
			Help:      "Sentences derived by subset inference.",
		}),
		CellsResolvedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inference",
			Name:      "cells_resolved_total",
			Help:      "Cells proven to be mines or safe.",
		}, []string{"kind"}),
		ContradictionsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inference",
			Name:      "contradictions_total",
			Help:      "Observations that left the knowledge base inconsistent.",
		}),
		GamesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "games_total",
			Help:      "Finished games by outcome.",
		}, []string{"outcome"}),
		MovesPerGame: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "moves",
			Help:      "Moves per finished game.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"kind"}),
		GameDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "duration_seconds",
			Help:      "Wall time per finished game.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}
}

func (m *Metrics) RoundCompleted()  { m.RoundsTotal.Inc() }
func (m *Metrics) SentenceDerived() { m.SentencesDerivedTotal.Inc() }
func (m *Metrics) Contradiction()   { m.ContradictionsTotal.Inc() }

func (m *Metrics) CellResolved(mine bool) {
	if mine {
		m.CellsResolvedTotal.WithLabelValues("mine").Inc()
		return
	}
	m.CellsResolvedTotal.WithLabelValues("safe").Inc()
}

// RecordGame records one finished game.
func (m *Metrics) RecordGame(outcome string, safeMoves, randomMoves int, d time.Duration) {
	m.GamesTotal.WithLabelValues(outcome).Inc()
	m.MovesPerGame.WithLabelValues("safe").Observe(float64(safeMoves))
	m.MovesPerGame.WithLabelValues("random").Observe(float64(randomMoves))
	m.GameDurationSeconds.Observe(d.Seconds())
}
