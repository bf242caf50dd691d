package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Ledger metrics
	ContributionsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wanderfund_contributions_applied_total",
			Help: "Contributions committed to the ledger by method",
		},
		[]string{"method"},
	)

	ContributionsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wanderfund_contributions_rejected_total",
			Help: "Contributions rejected by the engine by error code",
		},
		[]string{"code"},
	)

	ContributionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wanderfund_contribution_apply_duration_seconds",
			Help:    "Time taken to apply one contribution transaction",
			Buckets: prometheus.DefBuckets,
		},
	)

	GoalsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wanderfund_goals_completed_total",
			Help: "Savings goals that reached their target",
		},
	)

	// Reconciliation metrics
	Reconciliations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wanderfund_reconciliations_total",
			Help: "Webhook reconciliations by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	// Scheduler metrics
	SchedulerRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wanderfund_scheduler_runs_total",
			Help: "Recurring contribution passes executed",
		},
	)

	SchedulerGoals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wanderfund_scheduler_goals_total",
			Help: "Goals evaluated by the recurring scheduler by result",
		},
		[]string{"result"},
	)

	// Achievement and notification metrics
	AchievementsAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wanderfund_achievements_awarded_total",
			Help: "Achievements emitted by code",
		},
		[]string{"code"},
	)

	NotificationsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wanderfund_notifications_dropped_total",
			Help: "Achievement notifications dropped because the dispatch queue was full",
		},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wanderfund_api_requests_total",
			Help: "Total number of API requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wanderfund_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(ContributionsApplied)
	prometheus.MustRegister(ContributionsRejected)
	prometheus.MustRegister(ContributionDuration)
	prometheus.MustRegister(GoalsCompleted)
	prometheus.MustRegister(Reconciliations)
	prometheus.MustRegister(SchedulerRuns)
	prometheus.MustRegister(SchedulerGoals)
	prometheus.MustRegister(AchievementsAwarded)
	prometheus.MustRegister(NotificationsDropped)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
}

// Timer observes elapsed time into a histogram.
type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) ObserveDuration(h prometheus.Observer) {
	h.Observe(time.Since(t.start).Seconds())
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
