package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// gateMatrix labels resolutions made for the permission matrix rather than a single check.
const gateMatrix = "matrix"

var (
	decisions = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "deskhub_authz_decisions_total",
			Help: "Guard decisions, differentiated by gate, resource and outcome.",
		},
		[]string{"gate", "resource", "outcome"},
	)

	resolutionErrors = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "deskhub_authz_resolution_errors_total",
			Help: "Guard checks denied because the actor or its role could not be resolved.",
		},
		[]string{"gate"},
	)
)

// resourceLabel keeps label cardinality bounded to the known resources.
func resourceLabel(req Requirement) string {
	if req.Gate != GateResource {
		return "-"
	}

	if !req.Resource.Valid() {
		return "unknown"
	}

	return string(req.Resource)
}

func observeDecision(req Requirement, d Decision) {
	decisions.WithLabelValues(req.Gate.String(), resourceLabel(req), d.String()).Inc()
}

func observeResolutionError(gate string) {
	resolutionErrors.WithLabelValues(gate).Inc()
}
