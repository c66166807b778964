package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedRefreshes counts feed refresh attempts by view and outcome.
	FeedRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "animez_feed_refreshes_total",
		Help: "Total number of feed refreshes by view and outcome",
	}, []string{"view", "outcome"})

	// FeedRefreshesCoalesced counts change notifications absorbed by an
	// already-scheduled refresh.
	FeedRefreshesCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "animez_feed_refreshes_coalesced_total",
		Help: "Total number of change notifications coalesced into a pending refresh",
	})

	// FeedRefreshLatency records refresh latency by view.
	FeedRefreshLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "animez_feed_refresh_latency_seconds",
		Help:    "Feed refresh latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"view"})

	// ReactionToggles counts like/retweet toggles by kind and outcome.
	ReactionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "animez_reaction_toggles_total",
		Help: "Total number of reaction toggles by kind and outcome",
	}, []string{"kind", "outcome"})

	// PollVotes counts poll vote casts by outcome.
	PollVotes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "animez_poll_votes_total",
		Help: "Total number of poll votes by outcome",
	}, []string{"outcome"})

	// ChangeEvents counts change-notification events received per table.
	ChangeEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "animez_change_events_total",
		Help: "Total number of change notifications received per table",
	}, []string{"table"})
)

// ObserveRefresh records the latency of a completed feed refresh.
func ObserveRefresh(view string, start time.Time) {
	FeedRefreshLatency.WithLabelValues(view).Observe(time.Since(start).Seconds())
}
