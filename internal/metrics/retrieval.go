package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval Prometheus metrics.
var (
	RetrievalSearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_search_duration_seconds",
			Help:      "Lexical search duration per collection in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"collection"},
	)

	RetrievalResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_results",
			Help:      "Documents returned per collection and query",
			Buckets:   []float64{0, 1, 2, 4, 6, 8, 10, 20},
		},
		[]string{"collection"},
	)

	CorpusDocuments = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_documents",
			Help:      "Documents indexed per collection",
		},
		[]string{"collection"},
	)
)
