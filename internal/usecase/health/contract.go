package health

import (
	"context"

	"github.com/kailas-cloud/lexcase/internal/usecase/retrieval"
)

// Corpus reports collection sizes.
type Corpus interface {
	Stats() retrieval.Stats
}

// Pinger checks availability of an optional store (cache, journal).
type Pinger interface {
	Ping(ctx context.Context) error
}

// GeneratorChecker checks text-generation provider availability.
type GeneratorChecker interface {
	HealthCheck(ctx context.Context) error
}
