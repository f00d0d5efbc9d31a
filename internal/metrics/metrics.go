package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vct_survivor"

type Metrics struct {
	Assignments          *prometheus.CounterVec
	Picks                *prometheus.CounterVec
	ScheduleReplacements *prometheus.CounterVec
	UnparsableMatchTimes prometheus.Gauge
	ScheduleMatches      prometheus.Gauge
	ResultSyncs          *prometheus.CounterVec
	FeedRateRemaining    prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Assignments: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignments_total",
			Help:      "Assignment lookups by outcome (kept, created, reassigned, picked, no_pool).",
		}, []string{"outcome"}),
		Picks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "picks_total",
			Help:      "Pick submissions by result.",
		}, []string{"result"}),
		ScheduleReplacements: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_replacements_total",
			Help:      "Schedule replacement attempts by result.",
		}, []string{"result"}),
		UnparsableMatchTimes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "schedule_unparsable_match_times",
			Help:      "Matches in the current schedule whose match_time_iso cannot be parsed.",
		}),
		ScheduleMatches: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "schedule_matches",
			Help:      "Matches in the current schedule.",
		}),
		ResultSyncs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_syncs_total",
			Help:      "Results feed sync runs by result.",
		}, []string{"result"}),
		FeedRateRemaining: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "results_feed_rate_limit_remaining",
			Help:      "Remaining requests reported by the results feed.",
		}),
	}
}

// NewNop returns metrics registered on a private registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
