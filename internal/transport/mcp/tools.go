package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kailas-cloud/lexcase/internal/domain/scoring"
	"github.com/kailas-cloud/lexcase/internal/usecase/generate"
	"github.com/kailas-cloud/lexcase/internal/usecase/retrieval"
)

const maxTopK = 100

// SearchArgument defines search_sources parameters.
type SearchArgument struct {
	Query          string `json:"query" jsonschema:"free-text description of the case or legal question"`
	TopKLaws       int    `json:"top_k_laws,omitempty" jsonschema:"maximum statutes to return (server default when omitted)"`
	TopKPrecedents int    `json:"top_k_precedents,omitempty" jsonschema:"maximum precedents to return (server default when omitted)"`
}

// SearchHandler handles the search_sources tool.
type SearchHandler struct {
	corpus         *retrieval.Service
	topKLaws       int
	topKPrecedents int
}

// NewSearchHandler creates a search handler. Non-positive defaults fall back to
// the generation defaults.
func NewSearchHandler(corpus *retrieval.Service, topKLaws, topKPrecedents int) *SearchHandler {
	if topKLaws <= 0 {
		topKLaws = generate.DefaultTopKLaws
	}
	if topKPrecedents <= 0 {
		topKPrecedents = generate.DefaultTopKPrecedents
	}
	return &SearchHandler{corpus: corpus, topKLaws: topKLaws, topKPrecedents: topKPrecedents}
}

// Handle runs the search and formats both collections as markdown.
// A blank query or an empty corpus yields empty sections, not an error.
func (h *SearchHandler) Handle(_ context.Context, _ *mcp.CallToolRequest, args SearchArgument) (*mcp.CallToolResult, any, error) {
	kLaws, err := resolveTopK(args.TopKLaws, h.topKLaws, "top_k_laws")
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}
	kPrecedents, err := resolveTopK(args.TopKPrecedents, h.topKPrecedents, "top_k_precedents")
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	laws, precedents := h.corpus.SearchScored(args.Query, kLaws, kPrecedents)
	return textResult(formatHits(laws, precedents)), nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *SearchHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "search_sources",
		Description: "Find the statutes and court precedents most similar to a case description (TF-IDF cosine similarity)",
	}
}

// RegisterSearchTool registers search_sources with an MCP server.
func RegisterSearchTool(server *mcp.Server, handler *SearchHandler) {
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}

// ScoreArgument holds the five sentencing axes.
type ScoreArgument struct {
	Intent       int `json:"intent" jsonschema:"degree of intent, 0-10"`
	History      int `json:"history" jsonschema:"criminal history, 0-10"`
	Manner       int `json:"manner" jsonschema:"manner of commission, 0-10"`
	VictimImpact int `json:"victim_impact" jsonschema:"harm to the victim, 0-10"`
	SocialHarm   int `json:"social_harm" jsonschema:"harm to society, 0-10"`
}

// ScoreHandler handles the score_criminal tool.
type ScoreHandler struct{}

// NewScoreHandler creates a score handler.
func NewScoreHandler() *ScoreHandler { return &ScoreHandler{} }

// Handle bands the axes.
func (h *ScoreHandler) Handle(_ context.Context, _ *mcp.CallToolRequest, args ScoreArgument) (*mcp.CallToolResult, any, error) {
	axes := scoring.Axes(args)
	if !axes.InRange() {
		return errorResult(fmt.Sprintf("every score must be between %d and %d", scoring.MinAxis, scoring.MaxAxis)), nil, nil
	}

	a := scoring.Score(axes)
	text := fmt.Sprintf("TOTAL: %d  |  Band: %s\n%s", a.Total, a.Band, a.Rationale)
	return textResult(text), nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *ScoreHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "score_criminal",
		Description: "Sum five 0-10 sentencing axes and map the total to a LOW/MEDIUM/HIGH discretion band",
	}
}

// RegisterScoreTool registers score_criminal with an MCP server.
func RegisterScoreTool(server *mcp.Server, handler *ScoreHandler) {
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}

func resolveTopK(v, def int, name string) (int, error) {
	switch {
	case v == 0:
		return def, nil
	case v < 0 || v > maxTopK:
		return 0, fmt.Errorf("%s must be between 1 and %d", name, maxTopK)
	default:
		return v, nil
	}
}

func formatHits(laws, precedents []retrieval.Hit) string {
	var sb strings.Builder
	writeSection(&sb, "Statutes", laws)
	sb.WriteString("\n")
	writeSection(&sb, "Precedents", precedents)
	return sb.String()
}

func writeSection(sb *strings.Builder, title string, hits []retrieval.Hit) {
	fmt.Fprintf(sb, "## %s (%d)\n\n", title, len(hits))
	if len(hits) == 0 {
		sb.WriteString("No matches above the relevance floor.\n")
		return
	}
	for i, h := range hits {
		d := h.Document
		demo := ""
		if d.IsDemo() {
			demo = " [DEMO]"
		}
		fmt.Fprintf(sb, "### %d. %s%s: %s\n", i+1, d.ID(), demo, d.Title())
		fmt.Fprintf(sb, "**Score**: %.4f\n", h.Score)
		if m, ok := d.Precedent(); ok {
			fmt.Fprintf(sb, "**Court**: %s %s %s %s\n", m.Chamber(), m.Date(), m.CaseNumberE(), m.CaseNumberK())
		}
		sb.WriteString("\n")
		sb.WriteString(d.Text())
		sb.WriteString("\n\n")
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	r := textResult(text)
	r.IsError = true
	return r
}
