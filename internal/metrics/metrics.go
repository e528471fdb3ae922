// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lexcase"

var registerOnce sync.Once

// Register registers every collector with reg. Must be called once from main;
// repeated calls are no-ops.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			RetrievalSearchDuration,
			RetrievalResults,
			CorpusDocuments,
			GenerationRequestsTotal,
			GenerationRequestDuration,
			GenerationTokensTotal,
			GenerationErrorsTotal,
			GenerationCacheTotal,
		)
	})
}
