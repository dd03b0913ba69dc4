package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the recommendation HTTP handler
	RecommendLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "engine_recommend_latency_seconds",
		Help:    "Latency of the recommendations handler",
		Buckets: prometheus.DefBuckets,
	})

	RecommendationsServed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_recommendations_served_total",
			Help: "Count of recommendation responses by tenant and strategy.",
		},
		[]string{"tenant", "strategy"},
	)

	FeedbackEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_feedback_events_total",
			Help: "Count of feedback events by tenant and action.",
		},
		[]string{"tenant", "action"},
	)

	CampaignSelections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_campaign_selections_total",
			Help: "Count of campaign optimizations by tenant.",
		},
		[]string{"tenant"},
	)

	AnomalyChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_anomaly_checks_total",
			Help: "Count of anomaly checks by tenant and verdict.",
		},
		[]string{"tenant", "verdict"},
	)
)

func Init() {
	prometheus.MustRegister(
		RecommendLatency,
		RecommendationsServed,
		FeedbackEvents,
		CampaignSelections,
		AnomalyChecks,
	)
}
