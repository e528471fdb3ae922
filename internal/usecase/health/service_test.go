package health

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/lexcase/internal/usecase/retrieval"
)

// --- Mocks ---

type mockCorpus struct {
	laws, precedents int
}

func (m *mockCorpus) Stats() retrieval.Stats {
	return retrieval.Stats{
		Laws:       retrieval.CollectionStats{Documents: m.laws},
		Precedents: retrieval.CollectionStats{Documents: m.precedents},
	}
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockGeneratorChecker struct {
	err error
}

func (m *mockGeneratorChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockCorpus{laws: 3, precedents: 2}, &mockGeneratorChecker{}, &mockPinger{}, &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{"laws", "precedents", "generator", "cache", "journal"} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
}

func TestCheck_OptionalComponentsOmitted(t *testing.T) {
	svc := New(&mockCorpus{laws: 1, precedents: 1}, nil, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if len(r.Checks) != 2 {
		t.Errorf("expected only corpus checks, got %v", r.Checks)
	}
}

func TestCheck_OneCollectionEmpty(t *testing.T) {
	svc := New(&mockCorpus{laws: 0, precedents: 4}, &mockGeneratorChecker{}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["laws"] != CheckEmpty {
		t.Errorf("expected laws %q, got %q", CheckEmpty, r.Checks["laws"])
	}
	if r.Checks["precedents"] != CheckOK {
		t.Errorf("expected precedents %q, got %q", CheckOK, r.Checks["precedents"])
	}
}

func TestCheck_BothCollectionsEmpty(t *testing.T) {
	svc := New(&mockCorpus{}, &mockGeneratorChecker{}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_GeneratorError(t *testing.T) {
	svc := New(&mockCorpus{laws: 1, precedents: 1}, &mockGeneratorChecker{err: errors.New("timeout")}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["generator"] != CheckError {
		t.Errorf("expected generator %q, got %q", CheckError, r.Checks["generator"])
	}
}

func TestCheck_StoreErrors(t *testing.T) {
	svc := New(
		&mockCorpus{laws: 1, precedents: 1},
		nil,
		&mockPinger{err: errors.New("cache down")},
		&mockPinger{err: errors.New("disk full")},
	)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["cache"] != CheckError || r.Checks["journal"] != CheckError {
		t.Errorf("unexpected checks %v", r.Checks)
	}
}
