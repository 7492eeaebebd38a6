// pkg/apiclient/metrics.go
package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nexus_backend_requests_total",
		Help: "Outbound requests to the reporting backend by mount and status.",
	}, []string{"mount", "status"})

	rejects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nexus_backend_rejects_total",
		Help: "Requests rejected locally because no database was selected.",
	})
)
