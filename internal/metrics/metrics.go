// Prometheus 메트릭 정의 (/metrics 로 노출)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RemediationJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "infraai",
		Name:      "remediation_jobs_total",
		Help:      "Remediation worker executions by tool and job status.",
	}, []string{"tool", "status"})

	BackendCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "infraai",
		Name:      "backend_calls_total",
		Help:      "Command router backend calls by domain and outcome.",
	}, []string{"domain", "outcome"})

	AlertsEvaluated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "infraai",
		Name:      "alerts_evaluated_total",
		Help:      "Alert webhook evaluations by outcome.",
	}, []string{"outcome"})
)
