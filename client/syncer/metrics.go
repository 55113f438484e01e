package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	passesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "amity_client",
		Name:      "sync_passes_total",
		Help:      "Sync passes started.",
	})

	passFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "amity_client",
		Name:      "sync_pass_failures_total",
		Help:      "Sync passes that ended early, by failing step.",
	}, []string{"step"})

	draftsPushed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "amity_client",
		Name:      "sync_drafts_pushed_total",
		Help:      "Drafts uploaded because the local copy won the merge.",
	})

	notificationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "amity_client",
		Name:      "sync_notifications_total",
		Help:      "Drafts-changed notifications delivered to observers.",
	})
)
