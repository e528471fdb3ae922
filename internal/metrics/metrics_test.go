package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()

	Register(reg)
	Register(reg) // second call must not panic on duplicate registration

	GenerationCacheTotal.WithLabelValues("hit").Inc()

	n, err := testutil.GatherAndCount(reg, "lexcase_generation_cache_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n == 0 {
		t.Error("expected generation cache metric to be registered")
	}
}
