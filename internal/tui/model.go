// Package tui is the interactive corpus search console.
package tui

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kailas-cloud/lexcase/internal/lexical"
	"github.com/kailas-cloud/lexcase/internal/usecase/retrieval"
)

// Searcher is the console-facing subset of the retrieval service.
type Searcher interface {
	SearchScored(query string, topKLaws, topKPrecedents int) (laws, precedents []retrieval.Hit)
}

// Model is the Bubble Tea model for the search console.
type Model struct {
	searcher       Searcher
	topKLaws       int
	topKPrecedents int
	input          textinput.Model
	viewport       viewport.Model
	results        []retrieval.Hit
	summary        string
	status         string
	cursor         int
	ready          bool
	lastQuery      string
}

// New creates a console over searcher. summary is shown under the title.
func New(searcher Searcher, topKLaws, topKPrecedents int, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe the case and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	return Model{
		searcher:       searcher,
		topKLaws:       topKLaws,
		topKPrecedents: topKPrecedents,
		input:          ti,
		viewport:       viewport.New(0, 0),
		summary:        summary,
		status:         "Corpus loaded. Type to search.",
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header and summary, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.Type {
		case tea.KeyEnter:
			if q := strings.TrimSpace(m.input.Value()); q != "" {
				m.search(q)
				return m, nil
			}
		case tea.KeyDown:
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case tea.KeyUp:
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) search(q string) {
	laws, precedents := m.searcher.SearchScored(q, m.topKLaws, m.topKPrecedents)
	m.results = mergeHits(laws, precedents)
	m.cursor = 0
	m.lastQuery = q
	m.status = fmt.Sprintf("%d statutes, %d precedents for %q", len(laws), len(precedents), q)
	m.viewport.SetContent(m.renderCurrentResult())
}

// View renders the layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("lexcase corpus search")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		if m.lastQuery != "" {
			return "No statute or precedent scored above the relevance floor."
		}
		return "No results yet."
	}
	h := m.results[m.cursor]
	d := h.Document

	badge := ""
	if d.IsDemo() {
		badge = " " + demoStyle.Render("DEMO")
	}
	title := fmt.Sprintf("Result %d/%d  [%s] %s%s  score=%.3f",
		m.cursor+1, len(m.results), d.Kind(), d.ID(), badge, h.Score)

	var meta string
	if p, ok := d.Precedent(); ok {
		meta = "\n" + metaStyle.Render(strings.TrimSpace(
			strings.Join([]string{p.Chamber(), p.Date(), p.CaseNumberE(), p.CaseNumberK()}, " ")))
	}
	return title + "\n" + titleStyle.Render(d.Title()) + meta + "\n\n" + highlightBestSentence(d.Text(), m.lastQuery)
}

// mergeHits interleaves both collections by similarity. Ties keep statutes first.
func mergeHits(laws, precedents []retrieval.Hit) []retrieval.Hit {
	out := make([]retrieval.Hit, 0, len(laws)+len(precedents))
	out = append(out, laws...)
	out = append(out, precedents...)
	slices.SortStableFunc(out, func(a, b retrieval.Hit) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	demoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	titleStyle     = lipgloss.NewStyle().Underline(true)
	metaStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	sentenceRe     = regexp.MustCompile(`[^.!?]+[.!?]*`)
)

// highlightBestSentence renders the sentence sharing the most distinct
// query tokens. The first sentence wins ties.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	var sentences []string
	for _, s := range sentenceRe.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) == 0 {
		return strings.TrimSpace(text)
	}

	if best := bestSentence(sentences, query); best >= 0 {
		sentences[best] = highlightStyle.Render(sentences[best])
	}
	return strings.Join(sentences, " ")
}

// bestSentence returns -1 when the query has no tokens.
func bestSentence(sentences []string, query string) int {
	qTokens := tokenSet(query)
	if len(qTokens) == 0 {
		return -1
	}
	bestIdx, bestScore := 0, -1
	for i, s := range sentences {
		if score := overlap(qTokens, s); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return bestIdx
}

func tokenSet(s string) map[string]struct{} {
	tokens := lexical.Tokens(s)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func overlap(query map[string]struct{}, sentence string) int {
	score := 0
	for t := range tokenSet(sentence) {
		if _, ok := query[t]; ok {
			score++
		}
	}
	return score
}
