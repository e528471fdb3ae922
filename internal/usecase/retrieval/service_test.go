package retrieval

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexcase/internal/domain"
	"github.com/kailas-cloud/lexcase/internal/domain/document"
)

// --- Mocks ---

type mockSource struct {
	laws       []document.Document
	precedents []document.Document
	err        error
	calls      []document.Kind
}

func (m *mockSource) Load(_ context.Context, kind document.Kind) ([]document.Document, error) {
	m.calls = append(m.calls, kind)
	if m.err != nil {
		return nil, m.err
	}
	if kind == document.KindLaw {
		return m.laws, nil
	}
	return m.precedents, nil
}

// --- Helpers ---

func law(t *testing.T, id, text string, demo bool) document.Document {
	t.Helper()
	d, err := document.New(id, "", text, document.NewStatuteMeta("TCK", demo))
	if err != nil {
		t.Fatalf("build statute: %v", err)
	}
	return d
}

func precedent(t *testing.T, id, text string, demo bool) document.Document {
	t.Helper()
	d, err := document.New(id, "", text, document.NewPrecedentMeta("1st Chamber", "2020-01-01", "E.1", "K.1", nil, demo))
	if err != nil {
		t.Fatalf("build precedent: %v", err)
	}
	return d
}

func sampleLaws(t *testing.T) []document.Document {
	return []document.Document{
		law(t, "tck-141", "whoever takes movable property belonging to another without consent commits theft", false),
		law(t, "tck-148", "whoever uses force or threat to take property commits robbery", true),
		law(t, "tbk-299", "lease contract obliges the tenant to pay rent to the landlord", false),
		law(t, "tbk-315", "if the tenant fails to pay rent the landlord may terminate the lease", false),
	}
}

func samplePrecedents(t *testing.T) []document.Document {
	return []document.Document{
		precedent(t, "y-1", "robbery requires force against the victim at the moment of taking", false),
		precedent(t, "y-2", "termination of lease for unpaid rent requires written notice to the tenant", true),
		precedent(t, "y-3", "theft of a mobile phone from a parked car at night", false),
	}
}

func ids(docs []*document.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID()
	}
	return out
}

func newService(laws, precedents []document.Document) *Service {
	return New(laws, precedents, DefaultConfig(), zap.NewNop())
}

// --- Tests ---

func TestSearch_BoundedSortedAboveFloor(t *testing.T) {
	svc := newService(sampleLaws(t), samplePrecedents(t))

	for _, k := range []int{1, 2, 10} {
		laws, precs := svc.SearchScored("tenant failed to pay rent, landlord wants to terminate the lease", k, k)
		for name, hits := range map[string][]Hit{"laws": laws, "precedents": precs} {
			if len(hits) > k {
				t.Errorf("k=%d %s: got %d hits", k, name, len(hits))
			}
			for i, h := range hits {
				if h.Score <= DefaultRelevanceFloor {
					t.Errorf("k=%d %s: hit %s at or below floor (%f)", k, name, h.Document.ID(), h.Score)
				}
				if i > 0 && h.Score > hits[i-1].Score {
					t.Errorf("k=%d %s: not sorted descending", k, name)
				}
			}
		}
	}

	laws, precs := svc.Search("tenant failed to pay rent, landlord wants to terminate the lease", 2, 2)
	if got := ids(laws); !reflect.DeepEqual(got, []string{"tbk-315", "tbk-299"}) {
		t.Errorf("laws = %v", got)
	}
	if got := ids(precs); len(got) == 0 || got[0] != "y-2" {
		t.Errorf("precedents = %v, want y-2 first", got)
	}
}

func TestSearch_EmptyStatutes(t *testing.T) {
	svc := newService(nil, samplePrecedents(t))

	laws, precs := svc.Search("robbery force victim", 10, 10)
	if len(laws) != 0 {
		t.Errorf("expected no statutes, got %v", ids(laws))
	}
	if len(precs) == 0 {
		t.Error("precedents must be unaffected by the empty statute collection")
	}
}

func TestSearch_EmptyPrecedents(t *testing.T) {
	svc := newService(sampleLaws(t), nil)

	laws, precs := svc.Search("robbery force", 10, 10)
	if len(precs) != 0 {
		t.Errorf("expected no precedents, got %v", ids(precs))
	}
	if len(laws) == 0 {
		t.Error("statutes must be unaffected by the empty precedent collection")
	}
}

func TestSearch_BothEmpty(t *testing.T) {
	svc := newService(nil, nil)

	laws, precs := svc.Search("anything at all", 10, 10)
	if laws != nil || precs != nil {
		t.Errorf("expected nothing, got %v %v", laws, precs)
	}
	if svc.Ready() {
		t.Error("Ready() should be false without documents")
	}
}

func TestSearch_Reflexive(t *testing.T) {
	docs := sampleLaws(t)
	svc := newService(docs, nil)

	for _, d := range docs {
		hits, _ := svc.SearchScored(d.Text(), len(docs), 0)
		if len(hits) == 0 {
			t.Fatalf("no hits for body of %s", d.ID())
		}
		if hits[0].Document.ID() != d.ID() && hits[0].Score > hits[1].Score {
			t.Errorf("body of %s ranked %s first", d.ID(), hits[0].Document.ID())
		}
	}
}

func TestSearch_Idempotent(t *testing.T) {
	svc := newService(sampleLaws(t), samplePrecedents(t))

	l1, p1 := svc.Search("theft of property at night", 3, 3)
	l2, p2 := svc.Search("theft of property at night", 3, 3)
	if !reflect.DeepEqual(ids(l1), ids(l2)) || !reflect.DeepEqual(ids(p1), ids(p2)) {
		t.Error("repeated searches differ")
	}
	if len(l1) > 0 && l1[0] != l2[0] {
		t.Error("results must reference the same stored document")
	}
}

func TestSearch_PunctuationAndOOV(t *testing.T) {
	svc := newService(sampleLaws(t), samplePrecedents(t))

	for _, q := range []string{"", "?!... ---", "zzzz qqqq xylophone"} {
		laws, precs := svc.Search(q, 10, 10)
		if len(laws) != 0 || len(precs) != 0 {
			t.Errorf("query %q: expected empty results, got %v %v", q, ids(laws), ids(precs))
		}
	}
}

func TestSearch_TruncatesBeforeFiltering(t *testing.T) {
	docs := []document.Document{
		law(t, "a", "burglary night dwelling", false),
		law(t, "b", "burglary night", false),
		law(t, "c", "burglary", false),
	}

	all := New(docs, nil, Config{RelevanceFloor: 0}, zap.NewNop())
	full, _ := all.SearchScored("burglary night dwelling", 3, 0)
	if len(full) != 3 {
		t.Fatalf("expected three hits without a floor, got %d", len(full))
	}

	// The third document clears the floor but ranks past top_k.
	floor := full[2].Score / 2
	svc := New(docs, nil, Config{RelevanceFloor: floor}, zap.NewNop())
	laws, _ := svc.Search("burglary night dwelling", 2, 0)
	if got := ids(laws); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("got %v, want [a b]", got)
	}

	// A floor above the second score leaves fewer than top_k.
	floor = (full[0].Score + full[1].Score) / 2
	svc = New(docs, nil, Config{RelevanceFloor: floor}, zap.NewNop())
	laws, _ = svc.Search("burglary night dwelling", 2, 0)
	if got := ids(laws); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("got %v, want [a]", got)
	}
}

func TestSearch_PreservesDemoMarker(t *testing.T) {
	svc := newService(sampleLaws(t), samplePrecedents(t))

	laws, precs := svc.Search("robbery force threat", 10, 10)
	if len(laws) == 0 || laws[0].ID() != "tck-148" || !laws[0].IsDemo() {
		t.Fatalf("expected demo statute tck-148 first, got %v", ids(laws))
	}
	if !document.AnyDemo(laws) {
		t.Error("AnyDemo(laws) = false")
	}
	if document.AnyDemo(precs) {
		t.Errorf("no demo precedent expected, got %v", ids(precs))
	}
}

func TestSearch_Concurrent(t *testing.T) {
	svc := newService(sampleLaws(t), samplePrecedents(t))
	want, _ := svc.Search("lease rent tenant", 5, 5)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _ := svc.Search("lease rent tenant", 5, 5)
			if !reflect.DeepEqual(ids(got), ids(want)) {
				t.Errorf("concurrent search differs: %v vs %v", ids(got), ids(want))
			}
		}()
	}
	wg.Wait()
}

func TestOpen_LoadsBothCollections(t *testing.T) {
	src := &mockSource{laws: sampleLaws(t), precedents: samplePrecedents(t)}

	svc, err := Open(context.Background(), src, DefaultConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = svc.Close() }()

	if !reflect.DeepEqual(src.calls, []document.Kind{document.KindLaw, document.KindPrecedent}) {
		t.Errorf("load calls = %v", src.calls)
	}
	if !svc.Ready() {
		t.Error("Ready() = false")
	}
}

func TestOpen_PropagatesLoadError(t *testing.T) {
	src := &mockSource{err: domain.NewLoadError("laws.jsonl", 3, errors.New("bad json"))}

	_, err := Open(context.Background(), src, DefaultConfig(), zap.NewNop())
	if !errors.Is(err, domain.ErrDataLoad) {
		t.Fatalf("expected ErrDataLoad, got %v", err)
	}
}

func TestStats(t *testing.T) {
	svc := newService(sampleLaws(t), nil)
	st := svc.Stats()

	if st.Laws.Documents != 4 || st.Laws.DemoDocuments != 1 || !st.Laws.IndexAvailable {
		t.Errorf("unexpected law stats %+v", st.Laws)
	}
	if st.Laws.Vocabulary == 0 {
		t.Error("expected non-empty vocabulary")
	}
	if st.Laws.VocabularyCap != DefaultLawMaxFeatures {
		t.Errorf("VocabularyCap = %d", st.Laws.VocabularyCap)
	}
	if st.Precedents.Documents != 0 || st.Precedents.IndexAvailable {
		t.Errorf("unexpected precedent stats %+v", st.Precedents)
	}
	if st.RelevanceFloor != DefaultRelevanceFloor {
		t.Errorf("RelevanceFloor = %f", st.RelevanceFloor)
	}
}

func TestGet(t *testing.T) {
	svc := newService(sampleLaws(t), samplePrecedents(t))

	d, ok := svc.Get(document.KindPrecedent, "y-3")
	if !ok || d.ID() != "y-3" {
		t.Fatalf("Get(y-3) = %v, %v", d, ok)
	}
	if _, ok := svc.Get(document.KindLaw, "y-3"); ok {
		t.Error("namespaces must be separate per collection")
	}
}
