package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the service cannot retrieve anything.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckEmpty indicates a collection without documents.
	CheckEmpty CheckResult = "empty"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	corpus    Corpus
	generator GeneratorChecker
	cache     Pinger
	journal   Pinger
}

// New creates a Service. generator, cache and journal can be nil.
func New(corpus Corpus, generator GeneratorChecker, cache, journal Pinger) *Service {
	return &Service{corpus: corpus, generator: generator, cache: cache, journal: journal}
}

// Check runs health checks against all components.
// Both collections empty is Unhealthy; any other failure is Degraded.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	st := s.corpus.Stats()
	checks["laws"] = collectionResult(st.Laws.Documents)
	checks["precedents"] = collectionResult(st.Precedents.Documents)

	if s.generator != nil {
		checks["generator"] = result(s.generator.HealthCheck(ctx))
	}
	if s.cache != nil {
		checks["cache"] = result(s.cache.Ping(ctx))
	}
	if s.journal != nil {
		checks["journal"] = result(s.journal.Ping(ctx))
	}

	if checks["laws"] == CheckEmpty && checks["precedents"] == CheckEmpty {
		return Report{Status: Unhealthy, Checks: checks}
	}

	status := Healthy
	for _, v := range checks {
		if v != CheckOK {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func collectionResult(docs int) CheckResult {
	if docs == 0 {
		return CheckEmpty
	}
	return CheckOK
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
