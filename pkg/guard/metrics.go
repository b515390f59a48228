package guard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/conciergehq/platform/pkg/plans"
)

const (
	decisionAdmitted = "admitted"
	decisionExceeded = "exceeded"
)

var quotaDecisions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "concierge",
		Subsystem: "guard",
		Name:      "quota_decisions_total",
		Help:      "Metered feature admission decisions.",
	},
	[]string{"feature", "decision"},
)

func quotaDecision(feature plans.Feature, decision string) {
	quotaDecisions.WithLabelValues(string(feature), decision).Inc()
}
