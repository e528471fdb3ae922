package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kailas-cloud/lexcase/internal/domain/document"
	"github.com/kailas-cloud/lexcase/internal/usecase/retrieval"
)

type mockSearcher struct {
	laws, precedents []retrieval.Hit
	query            string
	kLaws, kPrec     int
}

func (m *mockSearcher) SearchScored(query string, kLaws, kPrec int) ([]retrieval.Hit, []retrieval.Hit) {
	m.query, m.kLaws, m.kPrec = query, kLaws, kPrec
	return m.laws, m.precedents
}

func hit(t *testing.T, id string, meta document.Meta, score float64) retrieval.Hit {
	t.Helper()
	d, err := document.New(id, "", "First sentence about rent. Second sentence about theft at night.", meta)
	if err != nil {
		t.Fatal(err)
	}
	return retrieval.Hit{Document: &d, Score: score}
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

func press(t *testing.T, m Model, k tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(Model), cmd
}

func TestModel_LoadingUntilSized(t *testing.T) {
	m := New(&mockSearcher{}, 10, 10, "summary")
	if m.View() != "Loading..." {
		t.Errorf("view before resize = %q", m.View())
	}
	if v := sized(t, m).View(); !strings.Contains(v, "lexcase corpus search") || !strings.Contains(v, "summary") {
		t.Errorf("view = %q", v)
	}
}

func TestModel_SearchAndNavigate(t *testing.T) {
	s := &mockSearcher{
		laws:       []retrieval.Hit{hit(t, "tck-141", document.NewStatuteMeta("TCK", false), 0.2)},
		precedents: []retrieval.Hit{hit(t, "y-3", document.NewPrecedentMeta("2nd Chamber", "2019", "E.1", "K.1", nil, true), 0.5)},
	}
	m := sized(t, New(s, 3, 4, ""))
	m.input.SetValue("  theft at night ")

	m, _ = press(t, m, tea.KeyEnter)
	if s.query != "theft at night" || s.kLaws != 3 || s.kPrec != 4 {
		t.Errorf("searcher called with %q %d %d", s.query, s.kLaws, s.kPrec)
	}
	if len(m.results) != 2 || m.results[0].Document.ID() != "y-3" {
		t.Fatalf("results not merged by score: %+v", m.results)
	}
	if !strings.Contains(m.status, "1 statutes, 1 precedents") {
		t.Errorf("status = %q", m.status)
	}
	if r := m.renderCurrentResult(); !strings.Contains(r, "[precedent] y-3") || !strings.Contains(r, "DEMO") {
		t.Errorf("current result = %q", r)
	}

	m, _ = press(t, m, tea.KeyDown)
	if m.cursor != 1 {
		t.Errorf("cursor after down = %d", m.cursor)
	}
	m, _ = press(t, m, tea.KeyDown)
	if m.cursor != 0 {
		t.Errorf("cursor should wrap, got %d", m.cursor)
	}
	m, _ = press(t, m, tea.KeyUp)
	if m.cursor != 1 {
		t.Errorf("cursor after up = %d", m.cursor)
	}
}

func TestModel_BlankQueryIgnored(t *testing.T) {
	s := &mockSearcher{}
	m := sized(t, New(s, 10, 10, ""))
	m.input.SetValue("   ")

	press(t, m, tea.KeyEnter)
	if s.query != "" {
		t.Error("blank query must not reach the searcher")
	}
}

func TestModel_NoMatches(t *testing.T) {
	m := sized(t, New(&mockSearcher{}, 10, 10, ""))
	m.input.SetValue("xylophone")

	m, _ = press(t, m, tea.KeyEnter)
	if !strings.Contains(m.renderCurrentResult(), "relevance floor") {
		t.Errorf("render = %q", m.renderCurrentResult())
	}
}

func TestModel_Quit(t *testing.T) {
	m := New(&mockSearcher{}, 10, 10, "")
	for _, k := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		_, cmd := press(t, m, k)
		if cmd == nil {
			t.Fatalf("%v: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%v: expected tea.QuitMsg", k)
		}
	}
}

func TestMergeHits_TiesKeepStatutesFirst(t *testing.T) {
	law := hit(t, "l", document.NewStatuteMeta("", false), 0.3)
	prec := hit(t, "p", document.NewPrecedentMeta("", "", "", "", nil, false), 0.3)

	got := mergeHits([]retrieval.Hit{law}, []retrieval.Hit{prec})
	if got[0].Document.ID() != "l" || got[1].Document.ID() != "p" {
		t.Errorf("order = %s, %s", got[0].Document.ID(), got[1].Document.ID())
	}
}

func TestBestSentence(t *testing.T) {
	sentences := []string{"The lease was signed in 2019.", "The tenant stopped paying rent.", "Rent and lease rent."}

	tests := []struct {
		query string
		want  int
	}{
		{"tenant rent", 1},
		{"lease rent", 2},
		{"nothing relevant", 0},
		{"?!", -1},
	}
	for _, tt := range tests {
		if got := bestSentence(sentences, tt.query); got != tt.want {
			t.Errorf("bestSentence(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestHighlightBestSentence_KeepsText(t *testing.T) {
	got := highlightBestSentence("One. Two!  Three?", "two")
	for _, s := range []string{"One.", "Two!", "Three?"} {
		if !strings.Contains(got, s) {
			t.Errorf("missing %q in %q", s, got)
		}
	}
	if highlightBestSentence("   ", "x") != "   " {
		t.Error("blank text must be returned unchanged")
	}
}
